package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the classes of failures the engine distinguishes
type ErrorCategory string

const (
	// Fatal at construction time, never recoverable by the engine
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"

	// Recovered by clamping to the limit, never by exceeding it
	ErrorCategoryLimitBreach ErrorCategory = "LIMIT_BREACH"

	// Recovered by substituting a documented conservative default
	ErrorCategoryDataUnavailable ErrorCategory = "DATA_UNAVAILABLE"

	// Invalid caller input (bad price, bad position state)
	ErrorCategoryValidation ErrorCategory = "VALIDATION"
)

// EngineError is a categorized error with component context
type EngineError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s in %s: %v", e.Category, e.Component, e.Message, e.Operation, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s in %s", e.Category, e.Component, e.Message, e.Operation)
}

// Unwrap returns the underlying error for error unwrapping
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// IsFatal reports whether the error should abort engine construction
func (e *EngineError) IsFatal() bool {
	return e.Category == ErrorCategoryConfiguration
}

// NewEngineError creates a new categorized engine error
func NewEngineError(category ErrorCategory, component, operation, message string) *EngineError {
	return &EngineError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
	}
}

// WrapError wraps an existing error with engine error context
func WrapError(err error, category ErrorCategory, component, operation string) *EngineError {
	if err == nil {
		return nil
	}

	return &EngineError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
	}
}

// NewConfigurationError builds the fatal construction-time error used by
// config validation
func NewConfigurationError(component, message string) *EngineError {
	return NewEngineError(ErrorCategoryConfiguration, component, "construct", message)
}

// NewLimitBreachError reports a reservation that would exceed an exposure limit
func NewLimitBreachError(component, message string) *EngineError {
	return NewEngineError(ErrorCategoryLimitBreach, component, "reserve", message)
}

// IsCategory reports whether err is (or wraps) an EngineError of the given category
func IsCategory(err error, category ErrorCategory) bool {
	var engineErr *EngineError
	if !stderrors.As(err, &engineErr) {
		return false
	}
	return engineErr.Category == category
}
