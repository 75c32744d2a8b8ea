package classmeta

import (
	"fmt"
	"strings"
)

// ErrorKind enumerates hierarchy errors.
type ErrorKind uint8

const (
	ErrUnknownSuper ErrorKind = iota + 1
	ErrUnknownInterface
	ErrDuplicateClass
	ErrDuplicateSignature
	ErrCycle
	ErrSuperIsInterface
	ErrRecordOverflow
)

// Error is a malformed class hierarchy.
type Error struct {
	Kind  ErrorKind
	Class string
	Name  string   // offending super, interface or signature
	Cycle []string // for ErrCycle
	Err   error    // for ErrRecordOverflow
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ErrUnknownSuper:
		return fmt.Sprintf("class %s: unknown superclass %s", e.Class, e.Name)
	case ErrUnknownInterface:
		return fmt.Sprintf("%s: unknown interface %s", e.Class, e.Name)
	case ErrDuplicateClass:
		return fmt.Sprintf("class %s declared twice", e.Class)
	case ErrDuplicateSignature:
		return fmt.Sprintf("class %s: virtual method %s declared twice", e.Class, e.Name)
	case ErrCycle:
		return fmt.Sprintf("inheritance cycle: %s", strings.Join(e.Cycle, " -> "))
	case ErrSuperIsInterface:
		return fmt.Sprintf("class %s: superclass %s is an interface", e.Class, e.Name)
	case ErrRecordOverflow:
		return fmt.Sprintf("class %s: metadata record overflow: %v", e.Class, e.Err)
	default:
		return fmt.Sprintf("class metadata error kind=%d class %s", e.Kind, e.Class)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
