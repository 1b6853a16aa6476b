package sequence

import (
	"context"
	"fmt"

	"seqcode/domain/core"
	"seqcode/domain/schema"
)

// DefinitionFinder looks up existing definitions targeting an entity
// attribute. The validator uses it for duplicate detection.
type DefinitionFinder interface {
	ListByTarget(ctx context.Context, entityName, attributeName string) ([]Definition, error)
}

// Validator checks a sequence definition before it is durably created.
// Validation runs once at creation time, never on the generation path.
type Validator struct {
	schema schema.Oracle
}

// NewValidator creates a definition validator backed by the host's schema
// oracle.
func NewValidator(oracle schema.Oracle) *Validator {
	return &Validator{schema: oracle}
}

// Validate runs every structural and semantic check on the definition and
// stamps its display name. Any returned error must block the creation.
func (v *Validator) Validate(ctx context.Context, def *Definition, finder DefinitionFinder) error {
	entity, err := v.schema.EntitySchema(ctx, def.EntityName)
	if err != nil {
		return err
	}

	target, ok := entity.Attribute(def.AttributeName)
	if !ok {
		return fmt.Errorf("%w: %s on %s", core.ErrAttributeNotFound, def.AttributeName, def.EntityName)
	}
	if !target.Type.IsText() {
		return fmt.Errorf("%w: attribute %s must be a text field", core.ErrAttributeType, def.AttributeName)
	}

	if def.TriggerAttribute != "" {
		if _, ok := entity.Attribute(def.TriggerAttribute); !ok {
			return fmt.Errorf("%w: trigger attribute %s on %s", core.ErrAttributeNotFound, def.TriggerAttribute, def.EntityName)
		}
	}

	if def.CharacterLength < 0 {
		return fmt.Errorf("%w: %d", core.ErrInvalidCounterLength, def.CharacterLength)
	}

	// Prefix before suffix so the surfaced error is stable when both fail.
	templates := []struct {
		field    string
		template string
	}{
		{"prefix", def.PrefixTemplate},
		{"suffix", def.SuffixTemplate},
	}
	for _, tpl := range templates {
		if err := v.validateTemplate(ctx, entity, tpl.field, tpl.template); err != nil {
			return err
		}
	}

	if err := v.validateConditional(def, entity); err != nil {
		return err
	}

	if err := v.checkDuplicates(ctx, def, finder); err != nil {
		return err
	}

	def.Name = DisplayName(def.EntityName, def.AttributeName)
	return nil
}

func (v *Validator) validateTemplate(ctx context.Context, entity *schema.EntitySchema, field, template string) error {
	params, err := ParseTemplate(template)
	if err != nil {
		return fmt.Errorf("%w in %s", err, field)
	}

	for _, p := range params {
		if !p.IsParent() {
			if _, ok := entity.Attribute(p.AttributeName); !ok {
				return core.NewTemplateError(fmt.Sprintf("%s is not a valid attribute name in %s", p.AttributeName, field))
			}
			continue
		}

		lookup, ok := entity.Attribute(p.ParentLookup)
		if !ok {
			return core.NewTemplateError(fmt.Sprintf("%s is not a valid attribute name in %s", p.ParentLookup, field))
		}
		if !lookup.Type.IsLookupClass() {
			return core.NewTemplateError(fmt.Sprintf("%s must be a lookup attribute in %s", p.ParentLookup, field))
		}

		// The attribute must exist on at least one target entity of the
		// lookup.
		found := false
		for _, targetEntity := range lookup.LookupTargets {
			parent, err := v.schema.EntitySchema(ctx, targetEntity)
			if err != nil {
				continue
			}
			if _, ok := parent.Attribute(p.AttributeName); ok {
				found = true
				break
			}
		}
		if !found {
			return core.NewTemplateError(fmt.Sprintf("invalid attribute %s on %s parent entity in %s", p.AttributeName, p.ParentLookup, field))
		}
	}
	return nil
}

func (v *Validator) validateConditional(def *Definition, entity *schema.EntitySchema) error {
	if !def.Conditional() {
		return nil
	}

	attr, ok := entity.Attribute(def.ConditionalAttribute)
	if !ok {
		return fmt.Errorf("%w: conditional attribute %s does not exist", core.ErrConditionalConfig, def.ConditionalAttribute)
	}
	if attr.Type != schema.TypeOptionSet {
		return fmt.Errorf("%w: conditional attribute %s must be an option set", core.ErrConditionalConfig, def.ConditionalAttribute)
	}
	if !attr.HasOption(def.ConditionalValue) {
		return fmt.Errorf("%w: value %d does not exist in option set %s", core.ErrConditionalConfig, def.ConditionalValue, def.ConditionalAttribute)
	}
	return nil
}

// checkDuplicates rejects overlapping definitions on the same target: an
// unconditional candidate conflicts with any existing definition, a
// conditional candidate conflicts on exact conditional attribute and value
// equality, absent values comparing as their zero forms.
func (v *Validator) checkDuplicates(ctx context.Context, def *Definition, finder DefinitionFinder) error {
	existing, err := finder.ListByTarget(ctx, def.EntityName, def.AttributeName)
	if err != nil {
		return err
	}

	if !def.Conditional() && len(existing) > 0 {
		return fmt.Errorf("%w for %s.%s", core.ErrDuplicateDefinition, def.EntityName, def.AttributeName)
	}

	for _, other := range existing {
		if other.ConditionalAttribute == def.ConditionalAttribute && other.ConditionalValue == def.ConditionalValue {
			return fmt.Errorf("%w for %s.%s", core.ErrDuplicateDefinition, def.EntityName, def.AttributeName)
		}
	}
	return nil
}
