package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound           = errors.New("resource not found")
	ErrDefinitionNotFound = fmt.Errorf("%w: sequence definition", ErrNotFound)
	ErrRecordNotFound     = fmt.Errorf("%w: record", ErrNotFound)
	ErrEntityNotFound     = fmt.Errorf("%w: entity", ErrNotFound)

	// Template errors
	ErrTemplate = errors.New("invalid template")

	// Configuration validation errors
	ErrAttributeNotFound    = errors.New("attribute does not exist")
	ErrAttributeType        = errors.New("attribute has wrong type")
	ErrConditionalConfig    = errors.New("invalid conditional configuration")
	ErrDuplicateDefinition  = errors.New("duplicate sequence definition exists")
	ErrInvalidCounterLength = errors.New("invalid counter length")

	// Generation errors
	ErrStore            = errors.New("sequence store failure")
	ErrNoEligibleNumber = errors.New("no eligible numbers available")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewTemplateError(reason string) error {
	return fmt.Errorf("%w: %s", ErrTemplate, reason)
}

func NewStoreError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStore, op, err)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsTemplateError(err error) bool {
	return errors.Is(err, ErrTemplate)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrAttributeNotFound) ||
		errors.Is(err, ErrAttributeType) ||
		errors.Is(err, ErrConditionalConfig) ||
		errors.Is(err, ErrDuplicateDefinition) ||
		errors.Is(err, ErrTemplate)
}

func IsStoreError(err error) bool {
	return errors.Is(err, ErrStore)
}
