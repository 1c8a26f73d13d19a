package errors

import (
	"fmt"
)

// ErrorCategory represents different types of errors the advisor can surface
type ErrorCategory string

const (
	// Fatal categories: the caller must fix the input and retry
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"
	ErrorCategoryValidation    ErrorCategory = "VALIDATION"

	// Extraction errors come from the integration adapter parsing agent state
	ErrorCategoryExtraction ErrorCategory = "EXTRACTION"
)

// AdvisorError represents a categorized error with context
type AdvisorError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
}

// Error implements the error interface
func (e *AdvisorError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *AdvisorError) Unwrap() error {
	return e.Underlying
}

// IsFatal returns whether the caller must intervene before retrying
func (e *AdvisorError) IsFatal() bool {
	return e.Category == ErrorCategoryConfiguration || e.Category == ErrorCategoryValidation
}

// NewAdvisorError creates a new categorized advisor error
func NewAdvisorError(category ErrorCategory, component, operation, message string) *AdvisorError {
	return &AdvisorError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
	}
}

// NewConfigurationError reports an out-of-range or unknown configuration value.
// The message should name the offending field and the accepted range.
func NewConfigurationError(field, message string) *AdvisorError {
	err := NewAdvisorError(ErrorCategoryConfiguration, "risk", "validate_config", message)
	err.Context["field"] = field
	return err
}

// WrapError wraps an existing error with advisor error context
func WrapError(err error, category ErrorCategory, component, operation string) *AdvisorError {
	if err == nil {
		return nil
	}

	return &AdvisorError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (e *AdvisorError) WithContext(key string, value interface{}) *AdvisorError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}
