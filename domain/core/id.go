package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// DefinitionID identifies a sequence definition. Ascending string order over
// definition IDs is the global lock-acquisition order, so the order must be
// total and stable across every store implementation.
type DefinitionID ID

// NewDefinitionID creates a new definition identifier
func NewDefinitionID() DefinitionID {
	return DefinitionID(NewID())
}

// String returns the string representation
func (id DefinitionID) String() string { return ID(id).String() }

// IsEmpty checks if the ID is empty
func (id DefinitionID) IsEmpty() bool { return ID(id).IsEmpty() }

// ParseDefinitionID parses a string into DefinitionID
func ParseDefinitionID(s string) (DefinitionID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("definition ID cannot be empty")
	}
	return DefinitionID(s), nil
}
