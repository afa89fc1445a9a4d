// Package errors provides the typed domain errors shared across the engine.
package errors

import (
	"fmt"
	"net/http"
)

// Type identifies the category of error
type Type string

const (
	// TypeValidation indicates invalid request input
	TypeValidation Type = "VALIDATION_ERROR"

	// TypeRuleViolation indicates a request that violates plan rules
	TypeRuleViolation Type = "RULE_VIOLATION"

	// TypePricing indicates an unsupported or malformed plan configuration
	TypePricing Type = "PRICING_ERROR"

	// TypeNotFound indicates a resource not found error
	TypeNotFound Type = "RESOURCE_NOT_FOUND"

	// TypeConflict indicates a uniqueness or state conflict
	TypeConflict Type = "CONFLICT"

	// TypeStorage indicates a storage backend error
	TypeStorage Type = "STORAGE_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Details map[string]interface{} `json:"details,omitempty"`

	// Violations carries the complete ordered list of violated plan rules.
	// Only set for TypeRuleViolation.
	Violations []string `json:"violations,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// WithDetail adds a detail entry to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// HTTPStatus maps the error type to the transport status used by the API
// layer. Rule violations and pricing errors are both informational 422s:
// the first is fixed by changing the request, the second by changing the plan.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeRuleViolation, TypePricing:
		return http.StatusUnprocessableEntity
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, t Type) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == t
	}
	return false
}

// Validation creates an input validation error
func Validation(message string) *Error {
	return New(TypeValidation, message)
}

// RuleViolation creates an error carrying the full ordered violation list
func RuleViolation(violations []string) *Error {
	return &Error{
		Type:       TypeRuleViolation,
		Message:    "Subscription request violates plan rules",
		Violations: violations,
	}
}

// Pricing creates a pricing configuration error
func Pricing(message string) *Error {
	return New(TypePricing, message)
}

// Pricingf creates a formatted pricing configuration error
func Pricingf(format string, args ...interface{}) *Error {
	return Newf(TypePricing, format, args...)
}

// NotFound creates a not found error
func NotFound(resource, id string) *Error {
	return Newf(TypeNotFound, "%s with id %s not found", resource, id)
}

// Conflict creates a conflict error
func Conflict(message string) *Error {
	return New(TypeConflict, message)
}

// Storage creates a storage error
func Storage(message string, cause error) *Error {
	return Wrap(TypeStorage, message, cause)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
