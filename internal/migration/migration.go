package migration

import (
	"context"

	"seqcode/internal/errors"

	"github.com/jmoiron/sqlx"
)

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSequenceDefinitionsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create sequence_definitions table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createSequenceDefinitionsTable(ctx context.Context, db *sqlx.DB) error {
	// id is TEXT so ORDER BY id matches the lock-ordering byte comparison
	// everywhere the id is sorted.
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sequence_definitions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			entity_name TEXT NOT NULL,
			attribute_name TEXT NOT NULL,
			trigger_event INTEGER NOT NULL DEFAULT 0,
			trigger_attribute TEXT NOT NULL DEFAULT '',
			conditional_attribute TEXT NOT NULL DEFAULT '',
			conditional_value INTEGER NOT NULL DEFAULT 0,
			character_length INTEGER NOT NULL DEFAULT 0,
			prefix_template TEXT NOT NULL DEFAULT '',
			suffix_template TEXT NOT NULL DEFAULT '',
			next_code TEXT NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			last_preview TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_sequence_definitions_applicable
			ON sequence_definitions (entity_name, trigger_event) WHERE active`,
		`CREATE INDEX IF NOT EXISTS idx_sequence_definitions_target
			ON sequence_definitions (entity_name, attribute_name)`,
	}

	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
