package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"seqcode/domain/core"
	"seqcode/domain/sequence"
	"seqcode/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// lockSentinel is the throwaway value written to the preview column to take
// the row lock. The write has no meaning; the preview column doubles as the
// dummy column so the table needs no dedicated one.
const lockSentinel = "555"

const definitionColumns = `id, name, entity_name, attribute_name, trigger_event, trigger_attribute,
	conditional_attribute, conditional_value, character_length, prefix_template, suffix_template,
	next_code, active, last_preview, created_at, updated_at`

// DefinitionRepositoryImpl implements the definition store for PostgreSQL.
// Row-level write locks inside ACID transactions provide the mutual
// exclusion the generation path needs; no other locking service exists.
type DefinitionRepositoryImpl struct {
	db *sqlx.DB
}

// NewDefinitionRepository creates a new PostgreSQL definition repository
func NewDefinitionRepository(db *sqlx.DB) *DefinitionRepositoryImpl {
	return &DefinitionRepositoryImpl{db: db}
}

// Create persists a validated definition
func (r *DefinitionRepositoryImpl) Create(ctx context.Context, def *sequence.Definition) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sequence_definitions (id, name, entity_name, attribute_name, trigger_event,
			trigger_attribute, conditional_attribute, conditional_value, character_length,
			prefix_template, suffix_template, next_code, active, last_preview, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
	`, def.ID, def.Name, def.EntityName, def.AttributeName, def.TriggerEvent,
		def.TriggerAttribute, def.ConditionalAttribute, def.ConditionalValue, def.CharacterLength,
		def.PrefixTemplate, def.SuffixTemplate, def.NextCode, def.Active, def.LastPreview)
	if err != nil {
		return storeErr("create definition", err)
	}
	return nil
}

// Get retrieves one definition by id
func (r *DefinitionRepositoryImpl) Get(ctx context.Context, id core.DefinitionID) (*sequence.Definition, error) {
	var def sequence.Definition
	err := r.db.GetContext(ctx, &def, `
		SELECT `+definitionColumns+`
		FROM sequence_definitions
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrDefinitionNotFound, id)
	}
	if err != nil {
		return nil, storeErr("get definition", err)
	}
	return &def, nil
}

// Delete removes a definition
func (r *DefinitionRepositoryImpl) Delete(ctx context.Context, id core.DefinitionID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sequence_definitions WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete definition", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", core.ErrDefinitionNotFound, id)
	}
	return nil
}

// List returns definitions matching the filters, ordered by id ascending
func (r *DefinitionRepositoryImpl) List(ctx context.Context, filters ports.DefinitionFilters) ([]sequence.Definition, error) {
	query := `SELECT ` + definitionColumns + ` FROM sequence_definitions WHERE 1=1`
	args := []interface{}{}

	if filters.EntityName != "" {
		args = append(args, filters.EntityName)
		query += fmt.Sprintf(" AND entity_name = $%d", len(args))
	}
	if filters.TriggerEvent != nil {
		args = append(args, *filters.TriggerEvent)
		query += fmt.Sprintf(" AND trigger_event = $%d", len(args))
	}
	if filters.ActiveOnly {
		query += " AND active"
	}
	query += " ORDER BY id ASC"

	var defs []sequence.Definition
	if err := r.db.SelectContext(ctx, &defs, query, args...); err != nil {
		return nil, storeErr("list definitions", err)
	}
	return defs, nil
}

// ListByTarget returns every definition for an (entity, attribute) pair
func (r *DefinitionRepositoryImpl) ListByTarget(ctx context.Context, entityName, attributeName string) ([]sequence.Definition, error) {
	var defs []sequence.Definition
	err := r.db.SelectContext(ctx, &defs, `
		SELECT `+definitionColumns+`
		FROM sequence_definitions
		WHERE entity_name = $1 AND attribute_name = $2
		ORDER BY id ASC
	`, entityName, attributeName)
	if err != nil {
		return nil, storeErr("list definitions by target", err)
	}
	return defs, nil
}

// InTx runs fn inside one database transaction. Row locks taken through
// DefinitionTx.Lock are held until the transaction commits or rolls back.
func (r *DefinitionRepositoryImpl) InTx(ctx context.Context, fn func(tx ports.DefinitionTx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storeErr("begin transaction", err)
	}

	if err := fn(&definitionTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return storeErr("rollback transaction", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit transaction", err)
	}
	return nil
}

type definitionTx struct {
	tx *sqlx.Tx
}

// FindApplicable returns ids of active definitions for the entity and event,
// ordered ascending so every invocation locks in the same global order.
func (t *definitionTx) FindApplicable(ctx context.Context, entityName string, event sequence.TriggerEvent) ([]core.DefinitionID, error) {
	var ids []core.DefinitionID
	err := t.tx.SelectContext(ctx, &ids, `
		SELECT id
		FROM sequence_definitions
		WHERE entity_name = $1 AND trigger_event = $2 AND active
		ORDER BY id ASC
	`, entityName, event)
	if err != nil {
		return nil, storeErr("find applicable definitions", err)
	}
	return ids, nil
}

// Lock takes the exclusive row lock with a dummy write to the preview
// column. The lock blocks competing transactions until this one finishes.
func (t *definitionTx) Lock(ctx context.Context, id core.DefinitionID) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE sequence_definitions SET last_preview = $2 WHERE id = $1
	`, id, lockSentinel)
	if err != nil {
		return storeErr("lock definition", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", core.ErrDefinitionNotFound, id)
	}
	return nil
}

// Get re-reads a locked definition including its current counter state
func (t *definitionTx) Get(ctx context.Context, id core.DefinitionID) (*sequence.Definition, error) {
	var def sequence.Definition
	err := t.tx.GetContext(ctx, &def, `
		SELECT `+definitionColumns+`
		FROM sequence_definitions
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrDefinitionNotFound, id)
	}
	if err != nil {
		return nil, storeErr("read definition", err)
	}
	return &def, nil
}

// Advance persists the incremented counter and the diagnostic preview
func (t *definitionTx) Advance(ctx context.Context, id core.DefinitionID, nextCode, preview string) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE sequence_definitions
		SET next_code = $2, last_preview = $3, updated_at = NOW()
		WHERE id = $1
	`, id, nextCode, preview)
	if err != nil {
		return storeErr("advance counter", err)
	}
	return nil
}

func storeErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%w: %s: %s (%s)", core.ErrStore, op, pqErr.Message, pqErr.Code)
	}
	return core.NewStoreError(op, err)
}
