// Package errors defines the structured error taxonomy shared by the
// scaffolding engine, the template registry and the CLI.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeScaffold   ErrorType = "scaffold"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeAlreadyExists      = "ERR_ALREADY_EXISTS"
	ErrCodeTemplateNotFound   = "ERR_TEMPLATE_NOT_FOUND"
	ErrCodeSourceNotFound     = "ERR_SOURCE_NOT_FOUND"
	ErrCodeIOFailure          = "ERR_IO_FAILURE"
	ErrCodeInvalidProjectName = "ERR_INVALID_PROJECT_NAME"
	ErrCodeConfigInvalid      = "ERR_CONFIG_INVALID"
	ErrCodeInternalError      = "ERR_INTERNAL"
)

// Sentinels for errors.Is. Comparison is by type and code, so any *Error
// built by the constructors below matches its sentinel.
var (
	ErrAlreadyExists    = &Error{Type: ErrorTypeScaffold, Code: ErrCodeAlreadyExists}
	ErrTemplateNotFound = &Error{Type: ErrorTypeScaffold, Code: ErrCodeTemplateNotFound}
	ErrSourceNotFound   = &Error{Type: ErrorTypeScaffold, Code: ErrCodeSourceNotFound}
	ErrIOFailure        = &Error{Type: ErrorTypeIO, Code: ErrCodeIOFailure}
)

// Error is a structured error type with context.
type Error struct {
	Type      ErrorType
	Code      string
	Message   string
	Cause     error
	Context   map[string]interface{}
	Component string
	Path      string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Component != "" {
		parts = append(parts, e.Component+":")
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath records the filesystem path the error refers to.
func (e *Error) WithPath(path string) *Error {
	e.Path = path

	return e.WithContext("path", path)
}

// WithComponent adds component context.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component

	return e
}

// Error creation functions

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *Error {
	return &Error{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper functions for the scaffolding taxonomy

// ErrAlreadyExistsAt reports that the destination project path is taken.
func ErrAlreadyExistsAt(path string) *Error {
	return (&Error{
		Type:    ErrorTypeScaffold,
		Code:    ErrCodeAlreadyExists,
		Message: fmt.Sprintf("directory '%s' already exists", path),
	}).WithPath(path)
}

// ErrTemplateNotFoundFor reports a template identifier without a base directory.
func ErrTemplateNotFoundFor(templateID, path string) *Error {
	return (&Error{
		Type:    ErrorTypeScaffold,
		Code:    ErrCodeTemplateNotFound,
		Message: fmt.Sprintf("template '%s' not found", templateID),
	}).WithPath(path).WithContext("template", templateID)
}

// ErrSourceNotFoundAt reports a source tree missing at copy time.
func ErrSourceNotFoundAt(path string, cause error) *Error {
	return (&Error{
		Type:    ErrorTypeScaffold,
		Code:    ErrCodeSourceNotFound,
		Message: fmt.Sprintf("source directory '%s' not found", path),
		Cause:   cause,
	}).WithPath(path)
}

// ErrIOFailureAt wraps a filesystem read or write failure.
func ErrIOFailureAt(op, path string, cause error) *Error {
	return NewIOError(ErrCodeIOFailure, fmt.Sprintf("%s %s", op, path), cause).
		WithPath(path).
		WithContext("op", op)
}

// ErrInvalidProjectName reports a project name that is not a single path component.
func ErrInvalidProjectName(name, reason string) *Error {
	return NewValidationError(
		ErrCodeInvalidProjectName,
		fmt.Sprintf("invalid project name '%s': %s", name, reason),
	).WithContext("name", name)
}
