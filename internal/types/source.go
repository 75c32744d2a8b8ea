package types

// SourceType carries the source-level facts that the representation type
// erases: nullability, inline-class identity, function-ness and the bottom type.
// A nil *SourceType means "nothing beyond the representation type is known".
type SourceType struct {
	Name     string
	Nullable bool
	Nothing  bool
	Function bool
	Inline   *InlineClass
}

// InlineClass describes a type erased to its single underlying value when
// possible and boxed into Box otherwise.
type InlineClass struct {
	Box        TypeID // boxed representation, always an object type
	Underlying TypeID // unboxed representation
}

// Canonical names of the inline-class box/unbox members.
const (
	BoxMethod   = "box-impl"
	UnboxMethod = "unbox-impl"
)

// IsInline reports whether st denotes an inline class.
func (st *SourceType) IsInline() bool {
	return st != nil && st.Inline != nil
}

// IsNullable reports whether st admits null.
func (st *SourceType) IsNullable() bool {
	return st != nil && st.Nullable
}

// IsNothing reports whether st is the bottom type.
func (st *SourceType) IsNothing() bool {
	return st != nil && st.Nothing
}

// SameInline reports whether both sides are the same inline class.
func SameInline(a, b *SourceType) bool {
	if !a.IsInline() || !b.IsInline() {
		return false
	}
	return a.Inline.Box == b.Inline.Box
}

// IsUnboxedAs reports whether a value of representation rep, described by st,
// is held in the inline class's unboxed form.
func (st *SourceType) IsUnboxedAs(in *Interner, rep TypeID) bool {
	if !st.IsInline() {
		return false
	}
	if rep != st.Inline.Underlying {
		return false
	}
	// A nullable inline class over a primitive cannot be held unboxed.
	if st.Nullable && !in.IsReference(st.Inline.Underlying) {
		return false
	}
	return true
}
