// Package errors provides structured error types for the conceptmap tools.
//
// Every error that crosses the CLI or HTTP boundary carries a machine-readable
// [Code]. Errors raised by the concept graph itself are plain Go errors;
// [FromGraph] classifies them so callers can map them to exit messages and
// status codes.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *NOT_FOUND: Resource not found
//   - DANGLING_REFERENCE: A dependency names a node that does not exist
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "unknown export format %q", format)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // Handle validation error
//	}
//
//	// Classify graph errors
//	_, err := g.Ancestors(id)
//	return errors.FromGraph(err)
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/matzehuels/conceptmap/pkg/concept"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidRecord Code = "INVALID_RECORD"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Graph integrity errors
	ErrCodeDanglingReference Code = "DANGLING_REFERENCE"

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
		return e.Message
	}
	return err.Error()
}

// FromGraph classifies an error returned by the concept graph. Errors that
// already carry a code and nil are returned unchanged; anything the graph
// did not produce becomes INTERNAL_ERROR.
func FromGraph(err error) error {
	if err == nil {
		return nil
	}
	var coded *Error
	if errors.As(err, &coded) {
		return err
	}

	var (
		notFound *concept.NotFoundError
		dangling *concept.DanglingReferenceError
	)
	switch {
	case errors.As(err, &notFound):
		return Wrap(ErrCodeNotFound, err, "no concept named %q", notFound.ID)
	case errors.As(err, &dangling):
		return Wrap(ErrCodeDanglingReference, err, "%q depends on %q, which does not exist", dangling.NodeID, dangling.MissingID)
	case errors.Is(err, concept.ErrInvalidNodeID),
		errors.Is(err, concept.ErrDuplicateNodeID),
		errors.Is(err, concept.ErrDuplicateEdge),
		errors.Is(err, concept.ErrEdgeTarget):
		return Wrap(ErrCodeInvalidRecord, err, "invalid concept data")
	}
	return Wrap(ErrCodeInternal, err, "unexpected error")
}

// HTTPStatus returns the response status for an error code.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidRecord, ErrCodeDanglingReference:
		return http.StatusUnprocessableEntity
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
