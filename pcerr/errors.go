// Package pcerr defines the engine's error taxonomy (spec §7). Parse-time
// errors are surfaced immediately as ordinary Go errors; UnsatCertified is
// a solve outcome, not something this package models as an error value;
// Overflow and InternalInvariantViolated carry an optional cause wrapped
// with github.com/pkg/errors' WithStack, reachable through their Unwrap
// method (errors.Is/errors.As), the same idiom the teacher repo uses
// throughout pkg/... instead of bare fmt.Errorf("%w", ...) chains.
package pcerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParseError reports a malformed input or a structural violation detected
// while a theory is still being built (duplicate set id, empty set, zero
// weight in a product aggregate, header mismatch, ...).
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return "parse error: " + e.Reason }

func NewParseError(format string, args ...interface{}) error {
	return &ParseError{Reason: fmt.Sprintf(format, args...)}
}

// Overflow reports that weight arithmetic saturated under the Int64
// backend. NewOverflow's cause argument names the operation that
// triggered it.
type Overflow struct {
	cause error
}

func (e *Overflow) Error() string {
	msg := "weight arithmetic overflowed under the Int64 backend; enable the BigInt backend"
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

func (e *Overflow) Unwrap() error { return e.cause }

func NewOverflow(cause error) error {
	return &Overflow{cause: errors.WithStack(cause)}
}

// NotYetImplemented labels a clearly optional feature the engine does not
// (yet) support, e.g. resetting state after search when new constraints
// were added mid-search.
type NotYetImplemented struct {
	Feature string
}

func (e *NotYetImplemented) Error() string {
	return "not yet implemented: " + e.Feature
}

func NewNotYetImplemented(feature string) error {
	return &NotYetImplemented{Feature: feature}
}

// InternalInvariantViolated marks an assertion failure: a bug, not a
// recoverable condition. Callers that observe this should abort rather
// than attempt to continue search.
type InternalInvariantViolated struct {
	Invariant string
	cause     error
}

func (e *InternalInvariantViolated) Error() string {
	msg := "internal invariant violated: " + e.Invariant
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

func (e *InternalInvariantViolated) Unwrap() error { return e.cause }

func NewInvariantViolation(invariant string, cause error) error {
	return &InternalInvariantViolated{Invariant: invariant, cause: errors.WithStack(cause)}
}

// Interrupted is the structured termination result returned by Solve when
// the caller's context is cancelled at a decision boundary (spec §5).
type Interrupted struct{}

func (Interrupted) Error() string { return "search interrupted before a result was reached" }
