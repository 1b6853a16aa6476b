package ports

import (
	"context"

	"seqcode/domain/core"
	"seqcode/domain/sequence"
)

// DefinitionFilters narrows definition listings.
type DefinitionFilters struct {
	EntityName   string
	TriggerEvent *sequence.TriggerEvent
	ActiveOnly   bool
}

// DefinitionRepository provides administrative access to persisted sequence
// definitions. Counter state is never mutated through this interface; all
// advancement funnels through a DefinitionTx inside a running transaction.
type DefinitionRepository interface {
	// Create persists a validated definition.
	Create(ctx context.Context, def *sequence.Definition) error

	// Get returns one definition by id.
	Get(ctx context.Context, id core.DefinitionID) (*sequence.Definition, error)

	// Delete removes a definition.
	Delete(ctx context.Context, id core.DefinitionID) error

	// List returns definitions matching the filters, ordered by id ascending.
	List(ctx context.Context, filters DefinitionFilters) ([]sequence.Definition, error)

	// ListByTarget returns every definition for an (entity, attribute) pair,
	// regardless of state. Used for duplicate detection.
	ListByTarget(ctx context.Context, entityName, attributeName string) ([]sequence.Definition, error)
}

// DefinitionTx is the transaction-scoped view of the definition store the
// generation orchestrator runs against. Lock, Get and Advance all act inside
// the same store transaction; locks release when it commits or rolls back.
type DefinitionTx interface {
	// FindApplicable returns the ids of active definitions matching the
	// entity and trigger event, ordered ascending. The ordering is the
	// deadlock-avoidance contract and is load-bearing.
	FindApplicable(ctx context.Context, entityName string, event sequence.TriggerEvent) ([]core.DefinitionID, error)

	// Lock takes the exclusive row lock for a definition. Implemented as a
	// write to a non-semantic column; blocks until a competing transaction
	// releases the row.
	Lock(ctx context.Context, id core.DefinitionID) error

	// Get re-reads a (now locked) definition including its current counter.
	Get(ctx context.Context, id core.DefinitionID) (*sequence.Definition, error)

	// Advance persists the incremented counter and the rendered code as the
	// diagnostic preview.
	Advance(ctx context.Context, id core.DefinitionID, nextCode, preview string) error
}

// TxRunner opens a definition-store transaction around fn. An error from fn
// rolls back every lock-holding write issued inside; nil commits them
// atomically, releasing all row locks at once.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx DefinitionTx) error) error
}
