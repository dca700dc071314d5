// Package errors provides structured error types for seamline.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and preview server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly configuration error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The geometry engine reports five kinds of local, non-retryable failures:
//   - INVALID_PARAMETER_TYPE: parameter type outside length/curve
//   - INVALID_SCALE_SHAPE: a pair of factors given where a scalar is required
//   - NON_CURVED_EDGE: curve operation on an edge without curvature
//   - DEGENERATE_EDGE: zero-length edge in a coordinate conversion
//   - NON_INVERTIBLE_VALUE: zero value found while restoring a template
//
// The remaining codes describe malformed input and lookups:
//   - INVALID_*: Input validation failures
//   - UNKNOWN_*, NOT_FOUND: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNonCurvedEdge, "edge %d of %s has no curvature", id, panel)
//	if errors.Is(err, errors.ErrCodeNonCurvedEdge) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFileNotFound, origErr, "failed to open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Geometry engine errors
	ErrCodeInvalidParameterType Code = "INVALID_PARAMETER_TYPE"
	ErrCodeInvalidScaleShape    Code = "INVALID_SCALE_SHAPE"
	ErrCodeNonCurvedEdge        Code = "NON_CURVED_EDGE"
	ErrCodeDegenerateEdge       Code = "DEGENERATE_EDGE"
	ErrCodeNonInvertibleValue   Code = "NON_INVERTIBLE_VALUE"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidSpec   Code = "INVALID_SPEC"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidName   Code = "INVALID_NAME"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeUnknownPanel     Code = "UNKNOWN_PANEL"
	ErrCodeUnknownEdge      Code = "UNKNOWN_EDGE"
	ErrCodeUnknownParameter Code = "UNKNOWN_PARAMETER"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
// Only the outermost *Error is inspected.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

// IsConfiguration reports whether err describes a malformed spec or an
// invalid parameter history, as opposed to an I/O or internal failure.
func IsConfiguration(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidParameterType, ErrCodeInvalidScaleShape, ErrCodeNonCurvedEdge,
		ErrCodeDegenerateEdge, ErrCodeNonInvertibleValue, ErrCodeInvalidSpec,
		ErrCodeUnknownPanel, ErrCodeUnknownEdge, ErrCodeUnknownParameter:
		return true
	}
	return false
}
