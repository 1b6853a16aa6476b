package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"seqcode/domain/core"
	"seqcode/domain/schema"
)

// SchemaOracle serves entity metadata from a static in-memory catalog. The
// host platform owns the real metadata service; this fixture stands in for
// it in tests and single-node deployments, loaded from a JSON catalog file.
type SchemaOracle struct {
	entities map[string]*schema.EntitySchema
}

// NewSchemaOracle creates an oracle over the given entity schemas
func NewSchemaOracle(entities ...*schema.EntitySchema) *SchemaOracle {
	byName := make(map[string]*schema.EntitySchema, len(entities))
	for _, e := range entities {
		byName[e.Name] = e
	}
	return &SchemaOracle{entities: byName}
}

// NewSchemaOracleFromFile loads the entity catalog from a JSON file holding
// a list of entity schemas.
func NewSchemaOracleFromFile(path string) (*SchemaOracle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema catalog: %w", err)
	}

	var entities []*schema.EntitySchema
	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, fmt.Errorf("failed to parse schema catalog: %w", err)
	}
	return NewSchemaOracle(entities...), nil
}

// EntitySchema returns the full attribute list for an entity
func (o *SchemaOracle) EntitySchema(ctx context.Context, entityName string) (*schema.EntitySchema, error) {
	e, ok := o.entities[entityName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrEntityNotFound, entityName)
	}
	return e, nil
}

// AttributeSchema returns one attribute's metadata
func (o *SchemaOracle) AttributeSchema(ctx context.Context, entityName, attributeName string) (*schema.AttributeSchema, error) {
	e, err := o.EntitySchema(ctx, entityName)
	if err != nil {
		return nil, err
	}
	attr, ok := e.Attribute(attributeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", core.ErrAttributeNotFound, attributeName, entityName)
	}
	return attr, nil
}
