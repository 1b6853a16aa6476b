// Package schema models the attribute metadata the engine needs from its
// host. The host platform owns the real metadata service; the engine only
// consumes it through the Oracle interface.
package schema

import (
	"context"
)

// AttributeType enumerates the attribute type codes the engine cares about.
type AttributeType string

const (
	TypeText      AttributeType = "text"
	TypeMemo      AttributeType = "memo"
	TypeInteger   AttributeType = "integer"
	TypeOptionSet AttributeType = "optionset"
	TypeLookup    AttributeType = "lookup"
	TypeCustomer  AttributeType = "customer"
	TypeOwner     AttributeType = "owner"
)

// IsText reports whether values of this type can hold a generated code.
func (t AttributeType) IsText() bool {
	return t == TypeText || t == TypeMemo
}

// IsLookupClass reports whether the attribute references another record.
// Customer and owner attributes behave as lookups for template traversal.
func (t AttributeType) IsLookupClass() bool {
	return t == TypeLookup || t == TypeCustomer || t == TypeOwner
}

// AttributeSchema describes one attribute on an entity.
type AttributeSchema struct {
	Name          string        `json:"name"`
	Type          AttributeType `json:"type"`
	LookupTargets []string      `json:"lookup_targets,omitempty"`
	OptionValues  []int         `json:"option_values,omitempty"`
}

// HasOption reports whether the option set admits the given value.
func (a AttributeSchema) HasOption(value int) bool {
	for _, v := range a.OptionValues {
		if v == value {
			return true
		}
	}
	return false
}

// EntitySchema describes an entity and its attributes.
type EntitySchema struct {
	Name       string            `json:"name"`
	Attributes []AttributeSchema `json:"attributes"`
}

// Attribute returns the named attribute schema, if present.
func (e *EntitySchema) Attribute(name string) (*AttributeSchema, bool) {
	for i := range e.Attributes {
		if e.Attributes[i].Name == name {
			return &e.Attributes[i], true
		}
	}
	return nil, false
}

// Oracle answers metadata questions about host entities.
type Oracle interface {
	// EntitySchema returns the full attribute list for an entity.
	// Fails with core.ErrEntityNotFound for unknown entities.
	EntitySchema(ctx context.Context, entityName string) (*EntitySchema, error)

	// AttributeSchema returns one attribute's metadata.
	// Fails with core.ErrAttributeNotFound for unknown attributes.
	AttributeSchema(ctx context.Context, entityName, attributeName string) (*AttributeSchema, error)
}
