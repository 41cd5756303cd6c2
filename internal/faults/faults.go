// Package faults provides the coded error type shared by the generation
// engine and its collaborators.
//
// Codes group failures the way callers need to react to them:
//   - VALIDATION: bad dimensions or insufficient space, reported before any
//     geometry is built; the caller fixes its inputs and retries.
//   - INVALID_SHAPE_REF: a stack points at a custom shape that does not exist;
//     the engine recovers with a fallback shape and surfaces a warning.
//   - GENERATION: solid construction failed; the previous output stays valid.
//
// Usage:
//
//	err := faults.New(faults.ErrCodeNotFound, "tray %q not found", id)
//	if faults.Is(err, faults.ErrCodeNotFound) {
//	    // ...
//	}
package faults

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeValidation      Code = "VALIDATION"
	ErrCodeInvalidShapeRef Code = "INVALID_SHAPE_REF"
	ErrCodeGeneration      Code = "GENERATION"
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeNotFound        Code = "NOT_FOUND"
)

// Error is a structured error with a code, an optional list of detail
// messages and an optional cause.
type Error struct {
	Code    Code     // Machine-readable error code
	Message string   // Human-readable summary
	Details []string // Individual violations, surfaced verbatim to users
	Cause   error    // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if len(e.Details) > 0 {
		msg += ": " + strings.Join(e.Details, "; ")
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates an Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Validation creates a VALIDATION error carrying every violation message.
func Validation(details []string) *Error {
	return &Error{
		Code:    ErrCodeValidation,
		Message: "invalid dimensions",
		Details: append([]string(nil), details...),
	}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from err, or "" when err is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Details returns the violation list of a coded error, or nil.
func Details(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}
