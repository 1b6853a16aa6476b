// Package memory provides in-process implementations of the engine's ports:
// a definition store with transactional row-lock semantics, plus fixture
// schema and lookup collaborators. It backs tests and single-node use; the
// postgres adapter is the production store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"seqcode/domain/core"
	"seqcode/domain/sequence"
	"seqcode/ports"
)

const lockSentinel = "555"

// Store keeps definitions in memory guarded by per-row mutexes, mirroring
// the locking discipline of the relational store: Lock blocks until a
// competing transaction releases the row, staged writes become visible only
// on commit.
type Store struct {
	mu    sync.Mutex
	defs  map[core.DefinitionID]*sequence.Definition
	locks map[core.DefinitionID]*sync.Mutex
}

// NewStore creates an empty in-memory definition store
func NewStore() *Store {
	return &Store{
		defs:  make(map[core.DefinitionID]*sequence.Definition),
		locks: make(map[core.DefinitionID]*sync.Mutex),
	}
}

// Create persists a validated definition
func (s *Store) Create(ctx context.Context, def *sequence.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.defs[def.ID]; exists {
		return core.NewStoreError("create definition", fmt.Errorf("id %s already exists", def.ID))
	}
	cp := *def
	now := time.Now()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.defs[def.ID] = &cp
	return nil
}

// Get retrieves one definition by id
func (s *Store) Get(ctx context.Context, id core.DefinitionID) (*sequence.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *Store) getLocked(id core.DefinitionID) (*sequence.Definition, error) {
	def, ok := s.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrDefinitionNotFound, id)
	}
	cp := *def
	return &cp, nil
}

// Delete removes a definition
func (s *Store) Delete(ctx context.Context, id core.DefinitionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.defs[id]; !ok {
		return fmt.Errorf("%w: %s", core.ErrDefinitionNotFound, id)
	}
	delete(s.defs, id)
	delete(s.locks, id)
	return nil
}

// List returns definitions matching the filters, ordered by id ascending
func (s *Store) List(ctx context.Context, filters ports.DefinitionFilters) ([]sequence.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []sequence.Definition
	for _, def := range s.defs {
		if filters.EntityName != "" && def.EntityName != filters.EntityName {
			continue
		}
		if filters.TriggerEvent != nil && def.TriggerEvent != *filters.TriggerEvent {
			continue
		}
		if filters.ActiveOnly && !def.Active {
			continue
		}
		out = append(out, *def)
	}
	sortDefinitions(out)
	return out, nil
}

// ListByTarget returns every definition for an (entity, attribute) pair
func (s *Store) ListByTarget(ctx context.Context, entityName, attributeName string) ([]sequence.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []sequence.Definition
	for _, def := range s.defs {
		if def.EntityName == entityName && def.AttributeName == attributeName {
			out = append(out, *def)
		}
	}
	sortDefinitions(out)
	return out, nil
}

// InTx runs fn against a transaction view. Row locks taken inside are held
// until fn returns; an error drops every staged write.
func (s *Store) InTx(ctx context.Context, fn func(tx ports.DefinitionTx) error) error {
	tx := &memTx{store: s, staged: make(map[core.DefinitionID]stagedRow)}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *Store) rowLock(id core.DefinitionID) (*sync.Mutex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.defs[id]; !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrDefinitionNotFound, id)
	}
	m, ok := s.locks[id]
	if !ok {
		m = &sync.Mutex{}
		s.locks[id] = m
	}
	return m, nil
}

func sortDefinitions(defs []sequence.Definition) {
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
}

type stagedRow struct {
	nextCode    string
	nextCodeSet bool
	preview     string
}

type memTx struct {
	store  *Store
	held   []core.DefinitionID
	staged map[core.DefinitionID]stagedRow
}

// FindApplicable returns ids of active definitions for the entity and event,
// ordered ascending.
func (t *memTx) FindApplicable(ctx context.Context, entityName string, event sequence.TriggerEvent) ([]core.DefinitionID, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	var ids []core.DefinitionID
	for id, def := range t.store.defs {
		if def.EntityName == entityName && def.TriggerEvent == event && def.Active {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Lock blocks until the row's mutex is free and stages the sentinel preview
// write, mirroring the relational dummy-column lock.
func (t *memTx) Lock(ctx context.Context, id core.DefinitionID) error {
	m, err := t.store.rowLock(id)
	if err != nil {
		return err
	}
	m.Lock()
	t.held = append(t.held, id)

	row := t.staged[id]
	row.preview = lockSentinel
	t.staged[id] = row
	return nil
}

// Get reads a definition with this transaction's staged writes overlaid
func (t *memTx) Get(ctx context.Context, id core.DefinitionID) (*sequence.Definition, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	def, err := t.store.getLocked(id)
	if err != nil {
		return nil, err
	}
	if row, ok := t.staged[id]; ok {
		if row.nextCodeSet {
			def.NextCode = row.nextCode
		}
		def.LastPreview = row.preview
	}
	return def, nil
}

// Advance stages the incremented counter and preview for commit
func (t *memTx) Advance(ctx context.Context, id core.DefinitionID, nextCode, preview string) error {
	t.staged[id] = stagedRow{nextCode: nextCode, nextCodeSet: true, preview: preview}
	return nil
}

func (t *memTx) commit() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	now := time.Now()
	for id, row := range t.staged {
		def, ok := t.store.defs[id]
		if !ok {
			continue
		}
		if row.nextCodeSet {
			def.NextCode = row.nextCode
		}
		def.LastPreview = row.preview
		def.UpdatedAt = now
	}
	t.staged = make(map[core.DefinitionID]stagedRow)
}

func (t *memTx) release() {
	t.store.mu.Lock()
	held := make([]*sync.Mutex, 0, len(t.held))
	// Unlock in reverse acquisition order
	for i := len(t.held) - 1; i >= 0; i-- {
		if m, ok := t.store.locks[t.held[i]]; ok {
			held = append(held, m)
		}
	}
	t.store.mu.Unlock()

	for _, m := range held {
		m.Unlock()
	}
	t.held = nil
}
