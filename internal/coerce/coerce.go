// Package coerce maps a (source, target) type pair to the instruction
// sequence that turns a value of the first on top of the stack into the second.
package coerce

import (
	"stackc/internal/asm"
	"stackc/internal/types"
)

// Coerce converts the value on top of the stack from `from` to `to`.
// Source types, when present, select inline-class boxing ahead of the
// representation rules.
func Coerce(e *asm.Emitter, from types.TypeID, fromSrc *types.SourceType, to types.TypeID, toSrc *types.SourceType) {
	if coerceInline(e, from, fromSrc, to, toSrc) {
		return
	}
	coerceRep(e, from, to)
}

// Simple converts between representation types only.
func Simple(e *asm.Emitter, from, to types.TypeID) {
	coerceRep(e, from, to)
}

func coerceInline(e *asm.Emitter, from types.TypeID, fromSrc *types.SourceType, to types.TypeID, toSrc *types.SourceType) bool {
	// Both sides must be described; a bare representation type says nothing
	// about which form the other side expects.
	if fromSrc == nil || toSrc == nil {
		return false
	}
	if !fromSrc.IsInline() && !toSrc.IsInline() {
		return false
	}
	in := e.Types
	fromUnboxed := fromSrc.IsUnboxedAs(in, from)
	toUnboxed := toSrc.IsUnboxedAs(in, to)
	switch {
	case types.SameInline(fromSrc, toSrc):
		if fromUnboxed == toUnboxed {
			return false
		}
		if fromUnboxed {
			Box(e, fromSrc)
			coerceRep(e, fromSrc.Inline.Box, to)
		} else {
			coerceRep(e, from, toSrc.Inline.Box)
			Unbox(e, toSrc)
		}
		return true
	case fromUnboxed:
		Box(e, fromSrc)
		Coerce(e, fromSrc.Inline.Box, nil, to, toSrc)
		return true
	case toUnboxed:
		coerceRep(e, from, toSrc.Inline.Box)
		Unbox(e, toSrc)
		return true
	}
	return false
}

// needsNullGuard reports whether box/unbox must skip nulls: a nullable
// inline class over a reference keeps null as null in both forms.
func needsNullGuard(in *types.Interner, st *types.SourceType) bool {
	return st.Nullable && in.IsReference(st.Inline.Underlying)
}

// Box turns the inline class's underlying value on top of the stack into its box.
func Box(e *asm.Emitter, st *types.SourceType) {
	ic := st.Inline
	box := asm.Method{
		Owner:  boxOwner(e.Types, ic),
		Name:   types.BoxMethod,
		Kind:   asm.InvokeStatic,
		Params: []types.TypeID{ic.Underlying},
		Return: ic.Box,
	}
	if !needsNullGuard(e.Types, st) {
		e.Invoke(box)
		return
	}
	guarded(e, func() { e.Invoke(box) }, ic.Box)
}

// Unbox turns the box on top of the stack into the underlying value.
func Unbox(e *asm.Emitter, st *types.SourceType) {
	ic := st.Inline
	unbox := asm.Method{
		Owner:  boxOwner(e.Types, ic),
		Name:   types.UnboxMethod,
		Kind:   asm.InvokeVirtual,
		Return: ic.Underlying,
	}
	if !needsNullGuard(e.Types, st) {
		e.Invoke(unbox)
		return
	}
	guarded(e, func() { e.Invoke(unbox) }, ic.Underlying)
}

// guarded emits: dup; ifnull L; convert; goto E; L: checkcast result; E:
// The null path keeps the original reference and only retypes it.
func guarded(e *asm.Emitter, convert func(), result types.TypeID) {
	isNull := e.NewLabel()
	end := e.NewLabel()
	e.Dup(1, 0)
	e.IfNull(isNull)
	convert()
	e.Goto(end)
	e.Mark(isNull)
	if result != e.Types.Builtins().Object {
		e.CheckCast(result)
	}
	e.Mark(end)
}

func boxOwner(in *types.Interner, ic *types.InlineClass) string {
	return in.MustLookup(ic.Box).Name
}

func coerceRep(e *asm.Emitter, from, to types.TypeID) {
	if from == to {
		return
	}
	in := e.Types
	b := in.Builtins()
	fk, tk := in.KindOf(from), in.KindOf(to)
	switch {
	case tk == types.KindVoid:
		e.Pop(from)
	case fk == types.KindVoid:
		switch {
		case to == b.Unit || to == b.Object:
			PutUnit(e)
		case tk.IsReference():
			e.AConstNull()
		default:
			PushDefault(e, to)
		}
	case to == b.Unit:
		e.Pop(from)
		PutUnit(e)
	case tk == types.KindArray:
		if fk.IsPrimitive() {
			box(e, from)
		}
		e.CheckCast(to)
	case tk == types.KindObject:
		if fk.IsPrimitive() {
			boxed := box(e, from)
			if to != b.Object && to != b.Number && to != boxed {
				e.CheckCast(to)
			}
			return
		}
		if to != b.Object {
			e.CheckCast(to)
		}
	case tk.IsPrimitive() && fk.IsReference():
		unbox(e, from, to)
	default:
		e.Convert(from, to)
	}
}

// PutUnit pushes the Unit singleton.
func PutUnit(e *asm.Emitter) {
	e.GetStatic(asm.FieldRef{Owner: types.UnitName, Name: "INSTANCE", Type: e.Types.Builtins().Unit})
}

// PushDefault pushes the zero value of a primitive type.
func PushDefault(e *asm.Emitter, t types.TypeID) {
	switch e.Types.KindOf(t) {
	case types.KindLong:
		e.LConst(0)
	case types.KindFloat:
		e.FConst(0)
	case types.KindDouble:
		e.DConst(0)
	default:
		e.IConst(0)
	}
}

// box wraps a primitive into its wrapper class and returns the wrapper type.
func box(e *asm.Emitter, prim types.TypeID) types.TypeID {
	boxed := e.Types.Boxed(prim)
	e.Invoke(asm.Method{
		Owner:  e.Types.MustLookup(boxed).Name,
		Name:   "valueOf",
		Kind:   asm.InvokeStatic,
		Params: []types.TypeID{prim},
		Return: boxed,
	})
	return boxed
}

func valueMethod(owner string, prim types.TypeID, in *types.Interner) asm.Method {
	return asm.Method{
		Owner:  owner,
		Name:   in.KindOf(prim).String() + "Value",
		Kind:   asm.InvokeVirtual,
		Return: prim,
	}
}

// unbox reads a primitive out of a reference. Exact wrappers use their own
// accessor; everything else goes through Number and narrows from int.
func unbox(e *asm.Emitter, from, to types.TypeID) {
	in := e.Types
	b := in.Builtins()
	if prim, ok := in.Unboxed(from); ok {
		e.Invoke(valueMethod(in.MustLookup(from).Name, prim, in))
		coerceRep(e, prim, to)
		return
	}
	switch in.KindOf(to) {
	case types.KindBool, types.KindChar:
		wrapper := in.Boxed(to)
		e.CheckCast(wrapper)
		e.Invoke(valueMethod(in.MustLookup(wrapper).Name, to, in))
	case types.KindByte, types.KindShort:
		if from != b.Number {
			e.CheckCast(b.Number)
		}
		e.Invoke(valueMethod(types.NumberName, b.Int, in))
		e.Convert(b.Int, to)
	default:
		if from != b.Number {
			e.CheckCast(b.Number)
		}
		e.Invoke(valueMethod(types.NumberName, to, in))
	}
}
