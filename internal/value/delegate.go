package value

import (
	"fmt"

	"stackc/internal/fault"
	"stackc/internal/types"
)

// Delegate is a local delegated property: reads call getValue and writes
// call setValue on the delegate object held in Object.
type Delegate struct {
	base
	Name   string
	Object Value // the delegate instance
	Getter *Callable
	Setter *Callable // nil for read-only delegates

	// ThisRef is the property-owner argument; locals have none and pass null.
	ThisRef Value
	// Metadata is the property descriptor token passed as the second argument.
	Metadata Value
}

// NewDelegate builds a delegated local. A nil thisRef passes a null owner.
func NewDelegate(t types.TypeID, src *types.SourceType, name string, object Value, getter, setter *Callable, thisRef, metadata Value) *Delegate {
	if getter == nil {
		fault.Raise(fault.MissingAccessor, name, "delegated property %s has no getValue", name)
	}
	if thisRef == nil {
		thisRef = NewConstant(nil, types.FixedBuiltins().Object, nil)
	}
	return &Delegate{
		base:     base{T: t, Src: src, sideEffects: true},
		Name:     name,
		Object:   object,
		Getter:   getter,
		Setter:   setter,
		ThisRef:  thisRef,
		Metadata: metadata,
	}
}

func (v *Delegate) String() string { return fmt.Sprintf("delegate %s", v.Name) }

// DelegateArgs are the synthetic arguments of one accessor call. They live
// exactly as long as the emission of that call.
type DelegateArgs struct {
	ThisRef  Value
	Property Value
	Value    Value // nil for getValue
}

func (a DelegateArgs) values() []Value {
	out := []Value{a.ThisRef, a.Property}
	if a.Value != nil {
		out = append(out, a.Value)
	}
	return out
}

// emitDelegateCall pushes the delegate object and args against c's
// parameter list and emits the call.
func emitDelegateCall(g *Gen, v *Delegate, c *Callable, args DelegateArgs) {
	recvType := c.Extension
	if recvType == types.NoTypeID {
		recvType = c.DispatchType(g.Types)
	}
	Put(g, v.Object, recvType, nil)
	vals := args.values()
	if len(vals) != len(c.Params) {
		fault.Raise(fault.MissingArgument, c, "%s takes %d arguments, %d supplied", c.Name, len(c.Params), len(vals))
	}
	for i, a := range vals {
		if a == nil {
			fault.Raise(fault.MissingArgument, c, "argument %d of %s is missing", i, c.Name)
		}
		Put(g, a, c.Params[i], c.paramSource(i))
	}
	EmitCall(g, c)
}
