package model

import (
	"errors"
	"fmt"
)

// Error kinds carried by ParseError. Match them with errors.Is.
var (
	ErrMalformedInput     = errors.New("malformed input")
	ErrUnsupportedVariant = errors.New("unsupported document variant")
	ErrInvalidDateFormat  = errors.New("invalid date format")
	ErrInvalidDecimal     = errors.New("invalid decimal")
)

// ParseError represents reading errors with syntax context
type ParseError struct {
	Syntax  Syntax
	Kind    error
	Field   string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Syntax, e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Syntax, e.Field, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the error kind of e.
func (e *ParseError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// NewParseError creates a new parse error
func NewParseError(syntax Syntax, kind error, field, message string, cause error) *ParseError {
	return &ParseError{
		Syntax:  syntax,
		Kind:    kind,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed on %s: %s (value=%v, rule=%s)", e.Field, e.Message, e.Value, e.Rule)
	}
	return fmt.Sprintf("validation failed on %s: %s (rule=%s)", e.Field, e.Message, e.Rule)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, rule, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Rule:    rule,
		Message: message,
	}
}

// ExtractionError represents failures pulling an embedded XML payload out of a container
type ExtractionError struct {
	Method  string
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed [%s]: %s (%v)", e.Method, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed [%s]: %s", e.Method, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// NewExtractionError creates a new extraction error
func NewExtractionError(method, message string, cause error) *ExtractionError {
	return &ExtractionError{
		Method:  method,
		Message: message,
		Cause:   cause,
	}
}
