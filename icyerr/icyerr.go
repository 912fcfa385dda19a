// Package icyerr defines the engine's classified error taxonomy:
// every internal error carries a Class, an Origin, a message and an
// optional cause, so callers can branch on "what kind of failure" without
// string-matching messages.
package icyerr

import (
	"fmt"

	"github.com/go-stack/stack"
	"github.com/pkg/errors"
)

// Class partitions errors by what the caller should do about them.
type Class string

const (
	Corruption        Class = "corruption"
	Internal          Class = "internal"
	Conflict          Class = "conflict"
	Unsupported       Class = "unsupported"
	InvariantViolation Class = "invariant_violation"
)

// Origin names the subsystem that raised the error.
type Origin string

const (
	OriginSerialize Origin = "serialize"
	OriginStore     Origin = "store"
	OriginIndex     Origin = "index"
	OriginQuery     Origin = "query"
	OriginResponse  Origin = "response"
	OriginExecutor  Origin = "executor"
	OriginInterface Origin = "interface"
)

// Error is the concrete classified error type. It wraps an optional cause
// and, for InvariantViolation, the call site that raised it.
type Error struct {
	Class   Class
	Origin  Origin
	Message string
	Cause   error
	site    string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s/%s: %s: %v", e.Class, e.Origin, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s/%s: %s", e.Class, e.Origin, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// CallSite returns the file:line that raised an InvariantViolation, if
// captured. Empty for every other class.
func (e *Error) CallSite() string { return e.site }

// New builds a plain classified error.
func New(class Class, origin Origin, message string) *Error {
	return &Error{Class: class, Origin: origin, Message: message}
}

// Wrap attaches a classified envelope around an existing error.
func Wrap(cause error, class Class, origin Origin, message string) *Error {
	return &Error{Class: class, Origin: origin, Message: message, Cause: errors.WithStack(cause)}
}

// Corrupt reports persisted state that is structurally inconsistent.
// Recovery never attempts to repair these silently.
func Corrupt(origin Origin, format string, args ...any) *Error {
	return New(Corruption, origin, fmt.Sprintf(format, args...))
}

// UnsupportedErr reports a well-formed request the engine refuses to
// service (oversized payload at construction time, unsupported value kind).
func UnsupportedErr(origin Origin, format string, args ...any) *Error {
	return New(Unsupported, origin, fmt.Sprintf(format, args...))
}

// ConflictErr is the only class application code routinely recovers from
//  — e.g. a unique-index violation.
func ConflictErr(origin Origin, format string, args ...any) *Error {
	return New(Conflict, origin, fmt.Sprintf(format, args...))
}

// Invariant raises an InvariantViolation: "should be impossible if the
// engine is correct". It captures the call site (the function that
// called Invariant) for diagnostics; it is never swallowed.
func Invariant(origin Origin, format string, args ...any) *Error {
	cs := stack.Caller(1)
	return &Error{
		Class:   InvariantViolation,
		Origin:  origin,
		Message: fmt.Sprintf(format, args...),
		site:    fmt.Sprintf("%+v", cs),
	}
}

// Is reports whether err is a classified Error with exactly this Class.
func Is(err error, class Class) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == class
	}
	return false
}

// OriginOf returns the classified Origin of err, and false if err is not a
// classified Error.
func OriginOf(err error) (Origin, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Origin, true
	}
	return "", false
}
