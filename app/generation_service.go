package app

import (
	"context"

	"seqcode/domain/core"
	"seqcode/domain/record"
	"seqcode/domain/sequence"
	"seqcode/internal"
	"seqcode/ports"
)

// GenerationService is the top-level code generation orchestrator. One call
// handles one incoming record write; all concurrency control lives in the
// backing store's transaction and row locks.
type GenerationService struct {
	store  ports.TxRunner
	logger *internal.Logger
}

// NewGenerationService creates a generation orchestrator
func NewGenerationService(store ports.TxRunner) *GenerationService {
	return &GenerationService{
		store:  store,
		logger: internal.DefaultLogger,
	}
}

// OnRecordWrite applies every applicable sequence definition to the target
// record, mutating it in place. The pre-update snapshot is supplied for
// update events only; lookup resolves parent template placeholders and may
// be scoped to this one write.
//
// The pass runs in one store transaction: all candidate definitions are
// locked first in ascending id order, eligibility is evaluated only after
// the locks are held, and counters advance inside the same transaction. Any
// error aborts the whole pass; the rollback undoes every lock-holding write,
// so partial numbering across definitions is never durable.
func (s *GenerationService) OnRecordWrite(ctx context.Context, entityName string, event sequence.TriggerEvent, target record.Record, preImage record.Record, lookup sequence.RelatedLookup) error {
	if target == nil {
		return nil
	}

	return s.store.InTx(ctx, func(tx ports.DefinitionTx) error {
		ids, err := tx.FindApplicable(ctx, entityName, event)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		// Lock every candidate before evaluating any of them. Eligibility
		// can depend on values only knowable under the lock, and the shared
		// ascending order is what keeps concurrent passes deadlock-free.
		for _, id := range ids {
			if err := tx.Lock(ctx, id); err != nil {
				return err
			}
		}

		for _, id := range ids {
			if err := s.generateOne(ctx, tx, id, event, target, preImage, lookup); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GenerationService) generateOne(ctx context.Context, tx ports.DefinitionTx, id core.DefinitionID, event sequence.TriggerEvent, target record.Record, preImage record.Record, lookup sequence.RelatedLookup) error {
	def, err := tx.Get(ctx, id)
	if err != nil {
		return err
	}

	if !sequence.Eligible(def, target, event, preImage) {
		s.logger.Debug("definition %s not eligible for %s on %s", def.ID, event, def.EntityName)
		return nil
	}

	code, err := composeCode(ctx, def, target, lookup)
	if err != nil {
		return err
	}
	target.Set(def.AttributeName, core.StringValue(code))

	next := sequence.Increment(sequence.Pad(def.NextCode, def.CharacterLength, sequence.AlphaNumeric), sequence.AlphaNumeric)
	if err := tx.Advance(ctx, id, next, code); err != nil {
		return err
	}

	s.logger.Trace("definition %s issued %q, counter now %q", def.ID, code, next)
	return nil
}

// composeCode renders prefix + counter segment + suffix against the current
// target record. Templates may reference values set by earlier definitions
// in the same pass.
func composeCode(ctx context.Context, def *sequence.Definition, target record.Record, lookup sequence.RelatedLookup) (string, error) {
	prefix, err := sequence.Render(ctx, def.PrefixTemplate, target, lookup)
	if err != nil {
		return "", err
	}
	suffix, err := sequence.Render(ctx, def.SuffixTemplate, target, lookup)
	if err != nil {
		return "", err
	}
	return prefix + def.CounterSegment() + suffix, nil
}
