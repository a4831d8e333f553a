package errors

import (
	"fmt"
	"io"
	"strings"
)

// RuntimeError is the interface implemented by all runtime-raised errors.
type RuntimeError interface {
	error         // Embed the standard error interface
	Kind() string // e.g., "TypeError", "RangeError", "Exception"
	// Message returns the specific error message without the kind prefix.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// --- Concrete Error Types ---

// TypeError is raised when an operation is applied to a value of the wrong
// kind: deleting a non-configurable property, a non-object weak key,
// calling a non-callable value.
type TypeError struct {
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *TypeError) Error() string   { return "TypeError: " + e.Msg }
func (e *TypeError) Kind() string    { return "TypeError" }
func (e *TypeError) Message() string { return e.Msg }
func (e *TypeError) Unwrap() error   { return e.Cause }
func (e *TypeError) CausedBy(cause error) *TypeError {
	e.Cause = cause
	return e
}

// RangeError is raised for numeric arguments outside their allowed range
// (radix, array length, repeat count, normalization form).
type RangeError struct {
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *RangeError) Error() string   { return "RangeError: " + e.Msg }
func (e *RangeError) Kind() string    { return "RangeError" }
func (e *RangeError) Message() string { return e.Msg }
func (e *RangeError) Unwrap() error   { return e.Cause }
func (e *RangeError) CausedBy(cause error) *RangeError {
	e.Cause = cause
	return e
}

// ReferenceError is raised when a runtime entry point is used outside the
// context it needs, e.g. awaiting outside an async body.
type ReferenceError struct {
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *ReferenceError) Error() string   { return "ReferenceError: " + e.Msg }
func (e *ReferenceError) Kind() string    { return "ReferenceError" }
func (e *ReferenceError) Message() string { return e.Msg }
func (e *ReferenceError) Unwrap() error   { return e.Cause }
func (e *ReferenceError) CausedBy(cause error) *ReferenceError {
	e.Cause = cause
	return e
}

// SyntaxError is raised for malformed patterns and flags handed to the
// regular expression engine.
type SyntaxError struct {
	Msg   string
	Cause error
}

func (e *SyntaxError) Error() string   { return "SyntaxError: " + e.Msg }
func (e *SyntaxError) Kind() string    { return "SyntaxError" }
func (e *SyntaxError) Message() string { return e.Msg }
func (e *SyntaxError) Unwrap() error   { return e.Cause }
func (e *SyntaxError) CausedBy(cause error) *SyntaxError {
	e.Cause = cause
	return e
}

// AggregateError bundles several rejection reasons into one error. Reasons
// are kept in input order, never only the first.
type AggregateError struct {
	Msg     string
	Reasons []any // value.Value of each rejection, in input order
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("AggregateError: %s (%d errors)", e.Msg, len(e.Reasons))
}
func (e *AggregateError) Kind() string    { return "AggregateError" }
func (e *AggregateError) Message() string { return e.Msg }
func (e *AggregateError) Unwrap() error   { return nil }

// Exception carries an arbitrary thrown source-level value. The payload is a
// value.Value; this package sits below the value model so it is typed any.
type Exception struct {
	Value any
}

func (e *Exception) Error() string {
	if s, ok := e.Value.(fmt.Stringer); ok {
		return "Uncaught " + s.String()
	}
	return fmt.Sprintf("Uncaught %v", e.Value)
}
func (e *Exception) Kind() string    { return "Exception" }
func (e *Exception) Message() string { return fmt.Sprint(e.Value) }
func (e *Exception) Unwrap() error   { return nil }

// --- Helpers for creating errors ---

// NewTypeError formats a TypeError.
func NewTypeError(format string, args ...any) *TypeError {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

// NewRangeError formats a RangeError.
func NewRangeError(format string, args ...any) *RangeError {
	return &RangeError{Msg: fmt.Sprintf(format, args...)}
}

// NewReferenceError formats a ReferenceError.
func NewReferenceError(format string, args ...any) *ReferenceError {
	return &ReferenceError{Msg: fmt.Sprintf(format, args...)}
}

// NewSyntaxError formats a SyntaxError.
func NewSyntaxError(format string, args ...any) *SyntaxError {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...)}
}

// Throw raises v as a source-level exception. Throwing an error that is
// already a RuntimeError returns it unchanged.
func Throw(v any) error {
	if err, ok := v.(RuntimeError); ok {
		return err
	}
	return &Exception{Value: v}
}

// KindOf reports the Kind of err, or "Error" for foreign Go errors.
func KindOf(err error) string {
	if re, ok := err.(RuntimeError); ok {
		return re.Kind()
	}
	return "Error"
}

// --- Error Reporting ---

// DisplayErrors writes a list of runtime errors in a user-friendly format,
// one per line, followed by the chain of Go causes.
func DisplayErrors(w io.Writer, errs []error) {
	for _, err := range errs {
		if err == nil {
			continue
		}
		fmt.Fprintf(w, "%s\n", err)
		cause := err
		depth := 1
		for {
			u, ok := cause.(interface{ Unwrap() error })
			if !ok {
				break
			}
			cause = u.Unwrap()
			if cause == nil {
				break
			}
			fmt.Fprintf(w, "%scaused by: %s\n", strings.Repeat("  ", depth), cause)
			depth++
		}
	}
}
