// Package fault carries internal-consistency failures of code generation.
//
// A failure here means an upstream phase handed the generator something it
// cannot lower: a store into a read-only value, a missing accessor, a stack
// shape with no duplication instruction. Such failures are deterministic,
// never retried, and abort the current unit. They travel as panics through
// the recursive emission code and are turned back into errors once, at the
// unit boundary, by Recover.
package fault

import (
	"errors"
	"fmt"
)

// Kind enumerates internal failure classes.
type Kind uint8

const (
	// UnsupportedStore is a store into a value that has no storage.
	UnsupportedStore Kind = iota + 1
	// MissingAccessor is a getter or setter emission on a half that was not resolved.
	MissingAccessor
	// UnsupportedDup is a stack duplication shape with no instruction.
	UnsupportedDup
	// MissingArgument is a resolved call missing a required argument.
	MissingArgument
	// NotImplemented names a construct the backend does not lower yet.
	NotImplemented
	// StackUnderflow is an instruction popping more words than are on the stack.
	StackUnderflow
	// MalformedInput is any other inconsistency in the input tree.
	MalformedInput
	// UnsupportedComplexReceiver is a compound operation on a value whose receiver cannot be shared.
	UnsupportedComplexReceiver
)

func (k Kind) String() string {
	switch k {
	case UnsupportedStore:
		return "unsupported store"
	case MissingAccessor:
		return "missing accessor"
	case UnsupportedDup:
		return "unsupported dup"
	case MissingArgument:
		return "missing argument"
	case NotImplemented:
		return "not implemented"
	case StackUnderflow:
		return "stack underflow"
	case MalformedInput:
		return "malformed input"
	case UnsupportedComplexReceiver:
		return "unsupported complex receiver"
	default:
		return fmt.Sprintf("fault kind=%d", k)
	}
}

// Error is an internal-consistency failure.
type Error struct {
	Kind    Kind
	Subject any    // offending value, call or declaration
	Detail  string // human-readable explanation
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Subject != nil {
		msg += fmt.Sprintf(" (%v)", e.Subject)
	}
	return msg
}

// Raise aborts the current unit with a failure of the given kind.
func Raise(kind Kind, subject any, format string, args ...any) {
	panic(&Error{Kind: kind, Subject: subject, Detail: fmt.Sprintf(format, args...)})
}

// Recover converts a raised *Error into *errp. Any other panic is re-raised.
// Use as: defer fault.Recover(&err).
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if fe, ok := r.(*Error); ok {
		if errp != nil {
			*errp = fe
		}
		return
	}
	panic(r)
}

// Is reports whether err is (or wraps) a failure of the given kind.
func Is(err error, kind Kind) bool {
	var fe *Error
	if !errors.As(err, &fe) {
		return false
	}
	return fe.Kind == kind
}

// Catch runs fn and returns any raised failure as an error.
func Catch(fn func()) (err error) {
	defer Recover(&err)
	fn()
	return nil
}
