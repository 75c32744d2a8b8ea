package value

import (
	"math"

	"stackc/internal/asm"
	"stackc/internal/coerce"
	"stackc/internal/fault"
	"stackc/internal/types"
)

// Put emits v's receiver (when needed), then v, then the coercion to t.
// Exactly Size(t) words are left on the stack.
func Put(g *Gen, v Value, t types.TypeID, src *types.SourceType) {
	if t == types.NoTypeID {
		t = g.Types.Builtins().Void
	}
	if wr, ok := v.(WithReceiver); ok {
		PutReceiver(g, wr, true)
	}
	putSelector(g, v, t, src)
}

// PutNatural emits v at its own type.
func PutNatural(g *Gen, v Value) {
	Put(g, v, v.Type(), v.Source())
}

func coerceTo(g *Gen, from types.TypeID, fromSrc *types.SourceType, to types.TypeID, toSrc *types.SourceType) {
	coerce.Coerce(g.Asm, from, fromSrc, to, toSrc)
}

func putSelector(g *Gen, v Value, t types.TypeID, src *types.SourceType) {
	b := g.Types.Builtins()
	switch v := v.(type) {
	case *Local:
		g.Asm.Load(v.Slot, v.T)
		coerceTo(g, v.T, v.Src, t, src)

	case *LateinitLocal:
		g.Asm.Load(v.Slot, v.T)
		assertInitialized(g, v.T, v.Name)
		coerceTo(g, v.T, v.Src, t, src)

	case *Constant:
		putConstant(g, v, t, src)

	case *BoolConst:
		if t == b.Void {
			return
		}
		if v.Value {
			g.Asm.IConst(1)
		} else {
			g.Asm.IConst(0)
		}
		coerceTo(g, b.Bool, nil, t, src)

	case *Field:
		ref := asm.FieldRef{Owner: v.Owner, Name: v.Name, Type: v.T}
		if v.Static {
			g.Asm.GetStatic(ref)
		} else {
			g.Asm.GetField(ref)
		}
		coerceTo(g, v.T, v.Src, t, src)

	case *Property:
		putProperty(g, v, t, src)

	case *ArrayElement:
		g.Asm.ArrayLoad(v.T)
		coerceTo(g, v.T, v.Src, t, src)

	case *CollectionElement:
		if v.Getter == nil {
			fault.Raise(fault.MissingAccessor, v, "no get call resolved for indexed read")
		}
		EmitCall(g, v.Getter)
		coerceTo(g, v.Getter.Return, v.Getter.ReturnSource, t, src)

	case *SharedVariable:
		ref, elem := g.Types.SharedRef(v.T)
		g.Asm.Load(v.Slot, ref)
		putElement(g, ref, elem, v.T, v.Src, v.Lateinit, v.Name, t, src)

	case *CapturedSharedField:
		ref, elem := g.Types.SharedRef(v.T)
		putElement(g, ref, elem, v.T, v.Src, v.Lateinit, v.Name, t, src)

	case *Delegate:
		emitDelegateCall(g, v, v.Getter, DelegateArgs{ThisRef: v.ThisRef, Property: v.Metadata})
		coerceTo(g, v.Getter.Return, v.Getter.ReturnSource, t, src)

	case *Receiver:
		putSequence(g, v.Values, t, src)

	case *CollectionElementReceiver:
		v.put(g, false)

	case *ComplexReceiver:
		v.put(g)

	case *DelegatedForComplexReceiver:
		putSelector(g, v.Original, t, src)

	case *OnStack:
		coerceTo(g, v.T, v.Src, t, src)

	case *Expression:
		if g.Exprs == nil {
			fault.Raise(fault.NotImplemented, v.Node, "no expression generator attached")
		}
		g.Exprs.EmitExpr(g, v.Node)
		coerceTo(g, v.T, v.Src, t, src)

	case noneValue:
		coerceTo(g, b.Void, nil, t, src)

	default:
		fault.Raise(fault.MalformedInput, v, "unknown value variant %T", v)
	}
}

// putSequence emits each sub-value at its natural type. A single value is
// coerced to t; a void target discards everything.
func putSequence(g *Gen, values []Value, t types.TypeID, src *types.SourceType) {
	void := g.Types.Builtins().Void
	if t == void {
		for _, sv := range values {
			Put(g, sv, void, nil)
		}
		return
	}
	for _, sv := range values {
		PutNatural(g, sv)
	}
	if len(values) == 1 {
		coerceTo(g, values[0].Type(), values[0].Source(), t, src)
	}
}

func putElement(g *Gen, ref, elem, declared types.TypeID, declaredSrc *types.SourceType, lateinit bool, name string, t types.TypeID, src *types.SourceType) {
	g.Asm.GetField(asm.FieldRef{Owner: g.Types.MustLookup(ref).Name, Name: types.RefElementField, Type: elem})
	if lateinit {
		assertInitialized(g, elem, name)
	}
	coerce.Simple(g.Asm, elem, declared)
	coerceTo(g, declared, declaredSrc, t, src)
}

func putProperty(g *Gen, v *Property, t types.TypeID, src *types.SourceType) {
	switch {
	case v.IsConst:
		putConstant(g, &Constant{base: v.base, Value: v.ConstValue}, t, src)
	case v.Getter != nil:
		EmitCall(g, v.Getter)
		coerceTo(g, v.Getter.Return, v.Getter.ReturnSource, t, src)
	case v.hasField():
		ft := v.fieldType()
		ref := asm.FieldRef{Owner: v.FieldOwner, Name: v.FieldName, Type: ft}
		if v.FieldStatic {
			g.Asm.GetStatic(ref)
		} else {
			g.Asm.GetField(ref)
		}
		if v.Lateinit && !v.SkipLateinitCheck {
			assertInitialized(g, ft, v.Name)
		}
		coerceTo(g, ft, v.Src, t, src)
	default:
		fault.Raise(fault.MissingAccessor, v, "property %s has neither getter nor backing field", v.Name)
	}
}

// assertInitialized checks the reference on top of the stack and raises the
// uninitialized-property failure naming name when it is null.
func assertInitialized(g *Gen, t types.TypeID, name string) {
	if !g.Types.IsReference(t) {
		return
	}
	ok := g.Asm.NewLabel()
	g.Asm.Dup(1, 0)
	g.Asm.IfNonNull(ok)
	g.Asm.LdcString(name, g.internString(name))
	g.Asm.Invoke(asm.Method{
		Owner:  types.IntrinsicsName,
		Name:   "throwUninitializedPropertyAccessException",
		Kind:   asm.InvokeStatic,
		Params: []types.TypeID{g.Types.Builtins().String},
		Return: g.Types.Builtins().Void,
	})
	g.Asm.Mark(ok)
}

// putConstant pushes the literal with the push form of its kind. A null
// literal is left uncoerced.
func putConstant(g *Gen, v *Constant, t types.TypeID, src *types.SourceType) {
	b := g.Types.Builtins()
	if v.Value == nil {
		if t != b.Void {
			g.Asm.AConstNull()
		}
		return
	}
	if bv, ok := v.Value.(bool); ok {
		putSelector(g, NewBool(bv), t, src)
		return
	}
	pushed := pushLiteral(g, v.Value, v.T)
	if pushed == v.T {
		coerceTo(g, v.T, v.Src, t, src)
		return
	}
	coerceTo(g, pushed, nil, t, src)
}

// pushLiteral pushes lit using the kind of hint when hint is primitive, else
// the literal's own Go kind, and returns the pushed type.
func pushLiteral(g *Gen, lit any, hint types.TypeID) types.TypeID {
	b := g.Types.Builtins()
	if s, ok := lit.(string); ok {
		g.Asm.LdcString(s, g.internString(s))
		return b.String
	}
	i, f, isInt := numeric(lit)
	kind := g.Types.KindOf(hint)
	if !kind.IsPrimitive() {
		switch lit.(type) {
		case int64:
			kind = types.KindLong
		case float32:
			kind = types.KindFloat
		case float64:
			kind = types.KindDouble
		default:
			kind = types.KindInt
		}
		hint = b.Int
		switch kind {
		case types.KindLong:
			hint = b.Long
		case types.KindFloat:
			hint = b.Float
		case types.KindDouble:
			hint = b.Double
		}
	}
	if !isInt {
		i = int64(f)
	} else {
		f = float64(i)
	}
	switch kind {
	case types.KindLong:
		g.Asm.LConst(i)
	case types.KindFloat:
		g.Asm.FConst(float32(f))
	case types.KindDouble:
		g.Asm.DConst(f)
	default:
		if i < math.MinInt32 || i > math.MaxInt32 {
			fault.Raise(fault.MalformedInput, lit, "literal does not fit %s", kind)
		}
		g.Asm.IConst(int32(i))
	}
	return hint
}

func numeric(lit any) (int64, float64, bool) {
	switch x := lit.(type) {
	case int:
		return int64(x), 0, true
	case int8:
		return int64(x), 0, true
	case int16:
		return int64(x), 0, true
	case int32:
		return int64(x), 0, true
	case int64:
		return x, 0, true
	case uint8:
		return int64(x), 0, true
	case uint16:
		return int64(x), 0, true
	case float32:
		return 0, float64(x), false
	case float64:
		return 0, x, false
	}
	fault.Raise(fault.MalformedInput, lit, "unsupported literal %T", lit)
	return 0, 0, false
}

// CondJump jumps to label when the literal equals !jumpIfFalse, and emits
// nothing otherwise.
func (v *BoolConst) CondJump(g *Gen, label *asm.Label, jumpIfFalse bool) {
	if v.Value != jumpIfFalse {
		g.Asm.Goto(label)
	}
}
