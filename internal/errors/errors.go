package errors

import (
	"errors"
	"fmt"

	"seqcode/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeFor(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode returns the error code for an error, classifying domain sentinels
// when the error carries no explicit code.
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeFor(err)
}

// Predefined error codes
const (
	CodeConfigInvalid       = "CONFIG_INVALID"
	CodeTemplateError       = "TEMPLATE_ERROR"
	CodeAttributeNotFound   = "ATTRIBUTE_NOT_FOUND"
	CodeAttributeType       = "ATTRIBUTE_TYPE_ERROR"
	CodeConditionalConfig   = "CONDITIONAL_CONFIG_ERROR"
	CodeDuplicateDefinition = "DUPLICATE_DEFINITION"
	CodeStoreError          = "STORE_ERROR"
	CodeNoEligibleNumber    = "NO_ELIGIBLE_NUMBER"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInternalError       = "INTERNAL_ERROR"
)

// CodeFor maps domain sentinel errors onto the code taxonomy.
func CodeFor(err error) string {
	switch {
	case err == nil:
		return ""
	case core.IsTemplateError(err):
		return CodeTemplateError
	case errors.Is(err, core.ErrAttributeNotFound):
		return CodeAttributeNotFound
	case errors.Is(err, core.ErrAttributeType):
		return CodeAttributeType
	case errors.Is(err, core.ErrConditionalConfig):
		return CodeConditionalConfig
	case errors.Is(err, core.ErrDuplicateDefinition):
		return CodeDuplicateDefinition
	case core.IsStoreError(err):
		return CodeStoreError
	case errors.Is(err, core.ErrNoEligibleNumber):
		return CodeNoEligibleNumber
	case core.IsNotFoundError(err):
		return CodeNotFound
	default:
		return CodeInternalError
	}
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
