package parse

import (
	"fmt"

	"github.com/cognicore/mathgraph/pkg/mathgraph/internalerr"
)

// ErrorKind classifies a parse failure.
type ErrorKind int

const (
	UnknownPredicate ErrorKind = iota + 1
	ArityMismatch
	UnexpectedToken
	UnboundIdentifierInGoal
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownPredicate:
		return "unknown predicate"
	case ArityMismatch:
		return "arity mismatch"
	case UnexpectedToken:
		return "unexpected token"
	case UnboundIdentifierInGoal:
		return "unbound identifier in goal"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Span is a half-open byte range into the parsed input.
type Span struct {
	Start int
	End   int
}

// Error reports the first problem found in an input. The parser never
// recovers or guesses; callers get exactly one typed error.
type Error struct {
	Kind ErrorKind
	Span Span
	// Input is the text that failed to parse.
	Input string
	// Source names the input within a problem, e.g. "fact 2" or "goal".
	Source string
	Msg    string
}

func (e *Error) Error() string {
	where := ""
	if e.Source != "" {
		where = e.Source + ": "
	}
	return fmt.Sprintf("parse: %s%s at %d-%d in %q: %s", where, e.Kind, e.Span.Start, e.Span.End, e.Input, e.Msg)
}

// Unwrap lets errors.Is(err, internalerr.ErrInvalidInput) match.
func (e *Error) Unwrap() error {
	return internalerr.ErrInvalidInput
}

// Fragment returns the offending slice of the input.
func (e *Error) Fragment() string {
	if e.Span.Start < 0 || e.Span.End > len(e.Input) || e.Span.Start > e.Span.End {
		return ""
	}
	return e.Input[e.Span.Start:e.Span.End]
}
