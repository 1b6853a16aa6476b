package sequence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"seqcode/domain/core"
	"seqcode/domain/schema"
)

type fixtureOracle struct {
	entities map[string]*schema.EntitySchema
}

func (o *fixtureOracle) EntitySchema(ctx context.Context, entityName string) (*schema.EntitySchema, error) {
	e, ok := o.entities[entityName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrEntityNotFound, entityName)
	}
	return e, nil
}

func (o *fixtureOracle) AttributeSchema(ctx context.Context, entityName, attributeName string) (*schema.AttributeSchema, error) {
	e, err := o.EntitySchema(ctx, entityName)
	if err != nil {
		return nil, err
	}
	attr, ok := e.Attribute(attributeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrAttributeNotFound, attributeName)
	}
	return attr, nil
}

type fixtureFinder struct {
	existing []Definition
}

func (f *fixtureFinder) ListByTarget(ctx context.Context, entityName, attributeName string) ([]Definition, error) {
	var out []Definition
	for _, d := range f.existing {
		if d.EntityName == entityName && d.AttributeName == attributeName {
			out = append(out, d)
		}
	}
	return out, nil
}

func invoiceOracle() *fixtureOracle {
	return &fixtureOracle{entities: map[string]*schema.EntitySchema{
		"invoice": {
			Name: "invoice",
			Attributes: []schema.AttributeSchema{
				{Name: "invoice_number", Type: schema.TypeText},
				{Name: "notes", Type: schema.TypeMemo},
				{Name: "name", Type: schema.TypeText},
				{Name: "amount", Type: schema.TypeInteger},
				{Name: "category", Type: schema.TypeOptionSet, OptionValues: []int{1, 2}},
				{Name: "account", Type: schema.TypeLookup, LookupTargets: []string{"account"}},
			},
		},
		"account": {
			Name: "account",
			Attributes: []schema.AttributeSchema{
				{Name: "region", Type: schema.TypeText},
			},
		},
	}}
}

func validCandidate() *Definition {
	return &Definition{
		EntityName:      "invoice",
		AttributeName:   "invoice_number",
		TriggerEvent:    TriggerCreate,
		CharacterLength: 4,
		PrefixTemplate:  "{name}-",
		SuffixTemplate:  "-{account.region}",
	}
}

// TestValidateAccepts tests a fully valid definition and the name stamp
func TestValidateAccepts(t *testing.T) {
	v := NewValidator(invoiceOracle())
	def := validCandidate()

	if err := v.Validate(context.Background(), def, &fixtureFinder{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Name != "Sequence for invoice, invoice_number" {
		t.Errorf("unexpected stamped name %q", def.Name)
	}
}

// TestValidateRejections walks every distinct failure class
func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Definition)
		existing []Definition
		sentinel error
	}{
		{
			name:     "missing target attribute",
			mutate:   func(d *Definition) { d.AttributeName = "nope" },
			sentinel: core.ErrAttributeNotFound,
		},
		{
			name:     "non-text target attribute",
			mutate:   func(d *Definition) { d.AttributeName = "amount" },
			sentinel: core.ErrAttributeType,
		},
		{
			name:     "missing trigger attribute",
			mutate:   func(d *Definition) { d.TriggerAttribute = "nope" },
			sentinel: core.ErrAttributeNotFound,
		},
		{
			name:     "unbalanced prefix braces",
			mutate:   func(d *Definition) { d.PrefixTemplate = "{name" },
			sentinel: core.ErrTemplate,
		},
		{
			name:     "unknown placeholder attribute",
			mutate:   func(d *Definition) { d.SuffixTemplate = "{ghost}" },
			sentinel: core.ErrTemplate,
		},
		{
			name:     "parent placeholder through non-lookup",
			mutate:   func(d *Definition) { d.PrefixTemplate = "{name.region}" },
			sentinel: core.ErrTemplate,
		},
		{
			name:     "parent attribute missing on target entity",
			mutate:   func(d *Definition) { d.PrefixTemplate = "{account.ghost}" },
			sentinel: core.ErrTemplate,
		},
		{
			name:     "conditional attribute missing",
			mutate:   func(d *Definition) { d.ConditionalAttribute = "ghost"; d.ConditionalValue = 1 },
			sentinel: core.ErrConditionalConfig,
		},
		{
			name:     "conditional attribute not an option set",
			mutate:   func(d *Definition) { d.ConditionalAttribute = "name"; d.ConditionalValue = 1 },
			sentinel: core.ErrConditionalConfig,
		},
		{
			name:     "conditional value not a legal option",
			mutate:   func(d *Definition) { d.ConditionalAttribute = "category"; d.ConditionalValue = 9 },
			sentinel: core.ErrConditionalConfig,
		},
		{
			name:     "negative counter length",
			mutate:   func(d *Definition) { d.CharacterLength = -1 },
			sentinel: core.ErrInvalidCounterLength,
		},
		{
			name:   "unconditional duplicate",
			mutate: func(d *Definition) {},
			existing: []Definition{
				{EntityName: "invoice", AttributeName: "invoice_number", ConditionalAttribute: "category", ConditionalValue: 1},
			},
			sentinel: core.ErrDuplicateDefinition,
		},
		{
			name: "conditional duplicate on same value",
			mutate: func(d *Definition) {
				d.ConditionalAttribute = "category"
				d.ConditionalValue = 1
			},
			existing: []Definition{
				{EntityName: "invoice", AttributeName: "invoice_number", ConditionalAttribute: "category", ConditionalValue: 1},
			},
			sentinel: core.ErrDuplicateDefinition,
		},
	}

	v := NewValidator(invoiceOracle())
	for _, test := range tests {
		def := validCandidate()
		test.mutate(def)
		err := v.Validate(context.Background(), def, &fixtureFinder{existing: test.existing})
		if err == nil {
			t.Errorf("%s: expected error, got none", test.name)
			continue
		}
		if !errors.Is(err, test.sentinel) {
			t.Errorf("%s: error %v does not wrap expected sentinel", test.name, err)
		}
	}
}

// TestValidateConditionalPartitionAllowed tests that disjoint conditional
// values on the same target are not duplicates
func TestValidateConditionalPartitionAllowed(t *testing.T) {
	v := NewValidator(invoiceOracle())

	def := validCandidate()
	def.ConditionalAttribute = "category"
	def.ConditionalValue = 2

	finder := &fixtureFinder{existing: []Definition{
		{EntityName: "invoice", AttributeName: "invoice_number", ConditionalAttribute: "category", ConditionalValue: 1},
	}}

	if err := v.Validate(context.Background(), def, finder); err != nil {
		t.Fatalf("disjoint conditional values should coexist, got %v", err)
	}
}

// TestValidateTemplateOrder tests that when both templates are invalid the
// prefix error surfaces, deterministically.
func TestValidateTemplateOrder(t *testing.T) {
	v := NewValidator(invoiceOracle())

	def := validCandidate()
	def.PrefixTemplate = "{bad_prefix_attr}-"
	def.SuffixTemplate = "-{bad_suffix_attr}"

	err := v.Validate(context.Background(), def, &fixtureFinder{})
	if err == nil {
		t.Fatal("expected error, got none")
	}
	if !core.IsTemplateError(err) {
		t.Fatalf("error %v is not a template error", err)
	}
	if !strings.Contains(err.Error(), "prefix") {
		t.Errorf("expected the prefix failure to surface first, got %v", err)
	}
}
