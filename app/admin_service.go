package app

import (
	"context"

	"seqcode/domain/core"
	"seqcode/domain/record"
	"seqcode/domain/sequence"
	"seqcode/internal"
	"seqcode/ports"
)

// RegistrationAdvice tells the host's pipeline layer what to do after a
// definition change. The engine decides; wiring the actual hook is the
// host's concern.
type RegistrationAdvice struct {
	EntityName   string                `json:"entity_name"`
	TriggerEvent sequence.TriggerEvent `json:"trigger_event"`

	// RegisterHook is set when the created definition is the first active one
	// for its (entity, event) pair and the host must attach its write hook.
	RegisterHook bool `json:"register_hook"`

	// DeregisterHook is set when the deleted definition was the last active
	// one for its (entity, event) pair and the host may detach its hook.
	DeregisterHook bool `json:"deregister_hook"`
}

// AdminService manages the sequence definition lifecycle: validated
// creation, deletion with deregistration advice, listing and preview.
type AdminService struct {
	repo      ports.DefinitionRepository
	validator *sequence.Validator
	logger    *internal.Logger
}

// NewAdminService creates a definition administration service
func NewAdminService(repo ports.DefinitionRepository, validator *sequence.Validator) *AdminService {
	return &AdminService{
		repo:      repo,
		validator: validator,
		logger:    internal.DefaultLogger,
	}
}

// CreateDefinition validates and persists a new definition. Validation
// failures block the creation entirely so bad configuration never reaches
// generation time.
func (s *AdminService) CreateDefinition(ctx context.Context, def *sequence.Definition) (*RegistrationAdvice, error) {
	if err := s.validator.Validate(ctx, def, s.repo); err != nil {
		return nil, err
	}

	if def.ID.IsEmpty() {
		def.ID = core.NewDefinitionID()
	}
	if def.CharacterLength > 0 {
		def.NextCode = sequence.Pad(def.NextCode, def.CharacterLength, sequence.AlphaNumeric)
	}
	def.Active = true

	existing, err := s.activeOnPair(ctx, def.EntityName, def.TriggerEvent)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, def); err != nil {
		return nil, err
	}
	s.logger.Info("created sequence definition %s (%s.%s, %s)", def.ID, def.EntityName, def.AttributeName, def.TriggerEvent)

	return &RegistrationAdvice{
		EntityName:   def.EntityName,
		TriggerEvent: def.TriggerEvent,
		RegisterHook: len(existing) == 0,
	}, nil
}

// DeleteDefinition removes a definition and reports whether the host may
// detach its write hook for the pair.
func (s *AdminService) DeleteDefinition(ctx context.Context, id core.DefinitionID) (*RegistrationAdvice, error) {
	def, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	remaining, err := s.activeOnPair(ctx, def.EntityName, def.TriggerEvent)
	if err != nil {
		return nil, err
	}
	s.logger.Info("deleted sequence definition %s (%s.%s)", id, def.EntityName, def.AttributeName)

	return &RegistrationAdvice{
		EntityName:     def.EntityName,
		TriggerEvent:   def.TriggerEvent,
		DeregisterHook: len(remaining) == 0,
	}, nil
}

// GetDefinition returns one definition by id
func (s *AdminService) GetDefinition(ctx context.Context, id core.DefinitionID) (*sequence.Definition, error) {
	return s.repo.Get(ctx, id)
}

// ListDefinitions returns definitions matching the filters
func (s *AdminService) ListDefinitions(ctx context.Context, filters ports.DefinitionFilters) ([]sequence.Definition, error) {
	return s.repo.List(ctx, filters)
}

// PreviewNextCode renders the code a definition would produce for the sample
// record without locking or advancing the counter. Diagnostic only; the
// value is not reserved.
func (s *AdminService) PreviewNextCode(ctx context.Context, id core.DefinitionID, sample record.Record, lookup sequence.RelatedLookup) (string, error) {
	def, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if sample == nil {
		sample = record.Record{}
	}
	return composeCode(ctx, def, sample, lookup)
}

func (s *AdminService) activeOnPair(ctx context.Context, entityName string, event sequence.TriggerEvent) ([]sequence.Definition, error) {
	return s.repo.List(ctx, ports.DefinitionFilters{
		EntityName:   entityName,
		TriggerEvent: &event,
		ActiveOnly:   true,
	})
}
