package layout

import (
	"fmt"
)

// LayoutErrorKind enumerates types of layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrBadTarget indicates unusable target sizes.
	LayoutErrBadTarget LayoutErrorKind = iota + 1
	// LayoutErrUnsizedField indicates a void or unknown field type.
	LayoutErrUnsizedField
	// LayoutErrNoSuchField indicates a field-offset query for a missing field.
	LayoutErrNoSuchField
	// LayoutErrOffsetConversion indicates an offset that does not fit the record width.
	LayoutErrOffsetConversion
)

// LayoutError represents an error during memory layout calculation.
type LayoutError struct {
	Kind   LayoutErrorKind
	Class  string
	Field  string
	Detail string
	Err    error // for LayoutErrOffsetConversion
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrBadTarget:
		return fmt.Sprintf("bad layout target: %s", e.Detail)
	case LayoutErrUnsizedField:
		return fmt.Sprintf("class %s: field %s has no size (%s)", e.Class, e.Field, e.Detail)
	case LayoutErrNoSuchField:
		return fmt.Sprintf("class %s has no field %s", e.Class, e.Field)
	case LayoutErrOffsetConversion:
		if e.Err != nil {
			return fmt.Sprintf("class %s: offset conversion error: %v", e.Class, e.Err)
		}
		return fmt.Sprintf("class %s: offset conversion error", e.Class)
	default:
		return fmt.Sprintf("layout error kind=%d class %s", e.Kind, e.Class)
	}
}

func (e *LayoutError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
