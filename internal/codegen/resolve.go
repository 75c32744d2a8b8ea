package codegen

import (
	"fortio.org/safecast"

	"stackc/internal/asm"
	"stackc/internal/fault"
	"stackc/internal/ir"
	"stackc/internal/types"
	"stackc/internal/value"
)

// typ parses a descriptor; the empty descriptor is void.
func (u *unit) typ(desc string) types.TypeID {
	if desc == "" {
		return u.in.Builtins().Void
	}
	id, err := u.in.Parse(desc)
	if err != nil {
		fault.Raise(fault.MalformedInput, desc, "%v", err)
	}
	return id
}

// optTyp is typ with NoTypeID for an absent descriptor.
func (u *unit) optTyp(desc string) types.TypeID {
	if desc == "" {
		return types.NoTypeID
	}
	return u.typ(desc)
}

func (u *unit) source(st *ir.SourceType) *types.SourceType {
	if st == nil {
		return nil
	}
	if out, ok := u.sources[st]; ok {
		return out
	}
	out := &types.SourceType{Name: st.Name, Nullable: st.Nullable, Nothing: st.Nothing, Function: st.Function}
	if st.Inline != nil {
		out.Inline = &types.InlineClass{Box: u.in.Object(st.Inline.Box), Underlying: u.typ(st.Inline.Underlying)}
	}
	u.sources[st] = out
	return out
}

func invokeKind(kind string) asm.InvokeKind {
	switch kind {
	case "virtual":
		return asm.InvokeVirtual
	case "special":
		return asm.InvokeSpecial
	case "interface":
		return asm.InvokeInterface
	default:
		return asm.InvokeStatic
	}
}

// callable resolves an ir call. Virtual calls on module classes go through
// the vtable slot of the owner, which the dispatch receiver class must
// derive from; calls to functions the
// module does not define are recorded as imports.
func (u *unit) callable(call *ir.Call) *value.Callable {
	if call == nil {
		return nil
	}
	c := &value.Callable{
		Owner:        call.Owner,
		Name:         call.Name,
		Kind:         invokeKind(call.Kind),
		Extension:    u.optTyp(call.Extension),
		Dispatch:     u.optTyp(call.Dispatch),
		Return:       u.typ(call.Return),
		ReturnSource: u.source(call.ReturnSource),
		Inline:       call.Inline,
	}
	for i, p := range call.Params {
		c.Params = append(c.Params, u.typ(p))
		var src *types.SourceType
		if i < len(call.ParamSources) {
			src = u.source(call.ParamSources[i])
		}
		c.ParamSources = append(c.ParamSources, src)
	}
	if c.Dispatch == types.NoTypeID && c.HasDispatch() {
		c.Dispatch = u.in.Object(call.Owner)
	}

	m := c.Method()
	desc := m.Descriptor(u.in)
	if c.Kind == asm.InvokeVirtual && c.Extension == types.NoTypeID {
		if cm, ok := u.meta.Class(call.Owner); ok {
			if dm, ok := u.meta.Class(u.in.MustLookup(c.Dispatch).Name); ok && !dm.IsSubclassOf(cm) {
				fault.Raise(fault.MalformedInput, call, "dispatch receiver %s does not derive from %s", dm.Name, cm.Name)
			}
			if slot, ok := cm.SlotOf(m.Signature(u.in)); ok {
				c.ViaVTable, c.Slot = true, slot
				return c
			}
		}
	}
	if _, ok := u.byKey[funcKey(call.Owner, call.Name, desc)]; !ok {
		u.importOf(call.Owner, call.Name, desc)
	}
	return c
}

// literal converts a const expression to the Go value the value model
// pushes: int32, int64, float32, float64, string, bool or nil.
func (u *unit) literal(e *ir.Expr, t types.TypeID) any {
	if e.Null {
		return nil
	}
	kind := u.in.KindOf(t)
	if prim, ok := u.in.Unboxed(t); ok {
		kind = u.in.KindOf(prim)
	}
	switch kind {
	case types.KindBool:
		return e.Bool
	case types.KindLong:
		return e.Int
	case types.KindFloat:
		return float32(e.Float)
	case types.KindDouble:
		return e.Float
	case types.KindInt, types.KindShort, types.KindByte, types.KindChar:
		v, err := safecast.Conv[int32](e.Int)
		if err != nil {
			fault.Raise(fault.MalformedInput, e.Int, "literal does not fit %s: %v", u.in.Descriptor(t), err)
		}
		return v
	default:
		return e.Str
	}
}
