package value

import (
	"stackc/internal/asm"
	"stackc/internal/coerce"
	"stackc/internal/fault"
	"stackc/internal/types"
)

// Store evaluates src and writes it into v: receiver, value, then the
// store instruction.
func Store(g *Gen, v Value, src Value) {
	switch v := v.(type) {
	case *SharedVariable:
		ref, _ := g.Types.SharedRef(v.T)
		g.Asm.Load(v.Slot, ref)
		Put(g, src, v.T, v.Src)
		putElementField(g, v.T)
		return
	case *Delegate:
		storeTarget(g, v)
		emitDelegateCall(g, v, v.Setter, DelegateArgs{ThisRef: v.ThisRef, Property: v.Metadata, Value: src})
		popResult(g, v.Setter)
		return
	}
	if wr, ok := v.(WithReceiver); ok {
		PutReceiver(g, wr, false)
	}
	t, ts := storeTarget(g, v)
	Put(g, src, t, ts)
	storeSelector(g, v, t, ts)
}

// StoreSelector writes the value on top of the stack, of type top, into v.
// Receiver words, when v needs them, are expected under the value.
func StoreSelector(g *Gen, v Value, top types.TypeID, topSrc *types.SourceType) {
	storeSelector(g, v, top, topSrc)
}

// storeTarget is the exact type the store instruction or setter consumes.
func storeTarget(g *Gen, v Value) (types.TypeID, *types.SourceType) {
	switch v := v.(type) {
	case *Local, *LateinitLocal, *Field, *ArrayElement, *SharedVariable, *CapturedSharedField:
		return v.Type(), v.Source()
	case *Property:
		switch {
		case v.IsConst:
			fault.Raise(fault.UnsupportedStore, v, "const property %s is read-only", v.Name)
		case v.Setter != nil:
			return setterValue(v.Setter)
		case v.hasField():
			return v.fieldType(), v.Src
		}
		fault.Raise(fault.MissingAccessor, v, "property %s has neither setter nor backing field", v.Name)
	case *CollectionElement:
		if v.Setter == nil {
			fault.Raise(fault.MissingAccessor, v, "no set call resolved for indexed write")
		}
		return setterValue(v.Setter)
	case *Delegate:
		if v.Setter == nil {
			fault.Raise(fault.MissingAccessor, v, "delegated property %s has no setValue", v.Name)
		}
		return setterValue(v.Setter)
	case *DelegatedForComplexReceiver:
		return storeTarget(g, v.Original)
	}
	fault.Raise(fault.UnsupportedStore, v, "cannot store into %T", v)
	return types.NoTypeID, nil
}

func setterValue(c *Callable) (types.TypeID, *types.SourceType) {
	if len(c.Params) == 0 {
		fault.Raise(fault.MissingArgument, c, "setter %s takes no value", c.Name)
	}
	last := len(c.Params) - 1
	return c.Params[last], c.paramSource(last)
}

func popResult(g *Gen, c *Callable) {
	g.Asm.Pop(c.Return)
}

func storeSelector(g *Gen, v Value, top types.TypeID, topSrc *types.SourceType) {
	t, ts := storeTarget(g, v)
	coerceTo(g, top, topSrc, t, ts)
	switch v := v.(type) {
	case *Local:
		g.Asm.Store(v.Slot, v.T)
	case *LateinitLocal:
		g.Asm.Store(v.Slot, v.T)
	case *Field:
		ref := asm.FieldRef{Owner: v.Owner, Name: v.Name, Type: v.T}
		if v.Static {
			g.Asm.PutStatic(ref)
		} else {
			g.Asm.PutField(ref)
		}
	case *Property:
		if v.Setter != nil {
			EmitCall(g, v.Setter)
			popResult(g, v.Setter)
			return
		}
		ref := asm.FieldRef{Owner: v.FieldOwner, Name: v.FieldName, Type: v.fieldType()}
		if v.FieldStatic {
			g.Asm.PutStatic(ref)
		} else {
			g.Asm.PutField(ref)
		}
	case *ArrayElement:
		g.Asm.ArrayStore(v.T)
	case *CollectionElement:
		EmitCall(g, v.Setter)
		popResult(g, v.Setter)
	case *SharedVariable:
		ref, _ := g.Types.SharedRef(v.T)
		g.Asm.Load(v.Slot, ref)
		swapUnder(g, v.T)
		putElementField(g, v.T)
	case *CapturedSharedField:
		putElementField(g, v.T)
	case *Delegate:
		mark := g.Frame.Mark()
		defer mark.DropTo()
		slot := g.Frame.EnterTemp(t)
		g.Asm.Store(slot, t)
		emitDelegateCall(g, v, v.Setter, DelegateArgs{ThisRef: v.ThisRef, Property: v.Metadata, Value: NewLocal(slot, t, ts)})
		popResult(g, v.Setter)
	case *DelegatedForComplexReceiver:
		storeSelector(g, v.Original, t, ts)
	}
}

// swapUnder moves the one-word reference on top below a value of type t.
func swapUnder(g *Gen, t types.TypeID) {
	if g.size(t) == 1 {
		g.Asm.Swap()
		return
	}
	g.Asm.Dup(1, 2)
	g.Asm.Pop(g.Types.Builtins().Object)
}

// putElementField writes the value of declared type t into the shared
// wrapper under it.
func putElementField(g *Gen, t types.TypeID) {
	ref, elem := g.Types.SharedRef(t)
	coerce.Simple(g.Asm, t, elem)
	g.Asm.PutField(asm.FieldRef{Owner: g.Types.MustLookup(ref).Name, Name: types.RefElementField, Type: elem})
}
