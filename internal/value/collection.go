package value

import (
	"fmt"

	"stackc/internal/fault"
	"stackc/internal/types"
)

// CollectionElementReceiver is the receiver-and-arguments part of obj[args]:
// the dispatch receiver, the extension receiver and the index arguments, as
// resolved for the call the receiver was derived from.
type CollectionElementReceiver struct {
	base
	Getter *Callable
	Setter *Callable

	Dispatch  Value // nil when the derived call takes no dispatch receiver
	Extension Value // nil when the derived call takes no extension receiver
	Args      []Value
	// Defaults marks Args entries that are default values of getter-only
	// parameters; the setter never takes them. They always trail the
	// explicit arguments.
	Defaults []bool
	// FromGetter is set when Args follow the getter's parameter list.
	FromGetter bool
}

// NewCollectionElementReceiver builds the receiver of an indexed access.
func NewCollectionElementReceiver(getter, setter *Callable, dispatch, extension Value, args []Value, defaults []bool, fromGetter bool) *CollectionElementReceiver {
	r := &CollectionElementReceiver{
		Getter:     getter,
		Setter:     setter,
		Dispatch:   dispatch,
		Extension:  extension,
		Args:       args,
		Defaults:   defaults,
		FromGetter: fromGetter,
	}
	for i := 1; i < len(args); i++ {
		if r.isDefault(i-1) && !r.isDefault(i) {
			fault.Raise(fault.MalformedInput, r, "default index argument %d is followed by an explicit one", i-1)
		}
	}
	for _, v := range r.parts() {
		if v.CanHaveSideEffects() {
			r.sideEffects = true
		}
	}
	if dispatch != nil {
		r.T = dispatch.Type()
	} else if extension != nil {
		r.T = extension.Type()
	}
	return r
}

func (r *CollectionElementReceiver) String() string {
	return fmt.Sprintf("collection receiver %v%v", r.Dispatch, r.Args)
}

func (r *CollectionElementReceiver) parts() []Value {
	out := make([]Value, 0, len(r.Args)+2)
	if r.Dispatch != nil {
		out = append(out, r.Dispatch)
	}
	if r.Extension != nil {
		out = append(out, r.Extension)
	}
	return append(out, r.Args...)
}

// derived returns the call whose parameter list Args follow.
func (r *CollectionElementReceiver) derived() *Callable {
	if r.FromGetter || r.Setter == nil {
		return r.Getter
	}
	return r.Setter
}

func (r *CollectionElementReceiver) isDefault(i int) bool {
	return i < len(r.Defaults) && r.Defaults[i]
}

// setterSkips reports whether argument i is one the setter does not take.
func (r *CollectionElementReceiver) setterSkips(i int) bool {
	return r.FromGetter && r.isDefault(i)
}

func (r *CollectionElementReceiver) argType(g *Gen, i int) types.TypeID {
	if c := r.derived(); c != nil && i < len(c.Params) {
		return c.Params[i]
	}
	return r.Args[i].Type()
}

func (r *CollectionElementReceiver) dispatchType(g *Gen) types.TypeID {
	if c := r.derived(); c != nil {
		return c.DispatchType(g.Types)
	}
	return g.Types.Builtins().Object
}

func (r *CollectionElementReceiver) extensionType() types.TypeID {
	if c := r.derived(); c != nil && c.Extension != types.NoTypeID {
		return c.Extension
	}
	return r.Extension.Type()
}

// put evaluates dispatch receiver, extension receiver and arguments in that
// order. For a write the trailing getter-only defaults are discarded again,
// last first.
func (r *CollectionElementReceiver) put(g *Gen, forWrite bool) {
	if r.Dispatch != nil {
		Put(g, r.Dispatch, r.dispatchType(g), nil)
	}
	if r.Extension != nil {
		Put(g, r.Extension, r.extensionType(), nil)
	}
	c := r.derived()
	for i, arg := range r.Args {
		var src *types.SourceType
		if c != nil {
			src = c.paramSource(i)
		}
		Put(g, arg, r.argType(g, i), src)
	}
	if forWrite {
		for i := len(r.Args) - 1; i >= 0 && r.setterSkips(i); i-- {
			g.Asm.Pop(r.argType(g, i))
		}
	}
}

// words returns the stack size of the receiver as a setter sees it, or
// UnknownSize when both a dispatch and an extension receiver are present.
func (r *CollectionElementReceiver) words(g *Gen) int {
	if r.Dispatch != nil && r.Extension != nil {
		return UnknownSize
	}
	n := 0
	if r.Dispatch != nil {
		n++
	}
	if r.Extension != nil {
		n += g.size(r.extensionType())
	}
	for i := range r.Args {
		if r.setterSkips(i) {
			continue
		}
		n += g.size(r.argType(g, i))
	}
	return n
}

// isStandardStack reports the one-word receiver plus one-word index shape
// that a plain dup2 can copy. params counts c's value parameters.
func isStandardStack(g *Gen, c *Callable, params int) bool {
	if len(c.Params) != params || g.size(c.Params[0]) != 1 {
		return false
	}
	hasExt := c.Extension != types.NoTypeID
	if hasExt == c.HasDispatch() {
		return false
	}
	return !hasExt || g.size(c.Extension) == 1
}

// dup copies the receiver for a following setter call while restoring the
// original on top for the getter. The standard shape is a single dup2;
// anything else spills into temporaries and reloads them twice.
func (r *CollectionElementReceiver) dup(g *Gen) {
	if r.Getter == nil || r.Setter == nil {
		fault.Raise(fault.MissingAccessor, r, "compound access needs both get and set")
	}
	if isStandardStack(g, r.Getter, 1) && isStandardStack(g, r.Setter, 2) {
		g.Asm.Dup(2, 0)
		return
	}

	mark := g.Frame.Mark()
	defer mark.DropTo()

	argSlots := make([]int, len(r.Args))
	for i := len(r.Args) - 1; i >= 0; i-- {
		t := r.argType(g, i)
		argSlots[i] = g.Frame.EnterTemp(t)
		g.Asm.Store(argSlots[i], t)
	}
	extSlot, dispSlot := -1, -1
	if r.Extension != nil {
		extSlot = g.Frame.EnterTemp(r.extensionType())
		g.Asm.Store(extSlot, r.extensionType())
	}
	if r.Dispatch != nil {
		dispSlot = g.Frame.EnterTemp(r.dispatchType(g))
		g.Asm.Store(dispSlot, r.dispatchType(g))
	}
	if extSlot < 0 && dispSlot < 0 {
		fault.Raise(fault.UnsupportedDup, r, "indexed access without a receiver")
	}

	// Copy for the setter, deeper on the stack.
	if r.Setter.HasDispatch() {
		if dispSlot < 0 {
			fault.Raise(fault.MissingArgument, r.Setter, "setter needs a dispatch receiver")
		}
		g.Asm.Load(dispSlot, r.dispatchType(g))
	}
	if r.Setter.Extension != types.NoTypeID {
		if extSlot < 0 {
			fault.Raise(fault.MissingArgument, r.Setter, "setter needs an extension receiver")
		}
		g.Asm.Load(extSlot, r.extensionType())
	}
	setterArgs := 0
	for i := range r.Args {
		if r.setterSkips(i) {
			continue
		}
		g.Asm.Load(argSlots[i], r.argType(g, i))
		setterArgs++
	}
	if setterArgs != len(r.Setter.Params)-1 {
		fault.Raise(fault.MissingArgument, r.Setter, "setter takes %d index arguments, receiver supplies %d", len(r.Setter.Params)-1, setterArgs)
	}

	// Restore the original for the getter.
	if dispSlot >= 0 {
		g.Asm.Load(dispSlot, r.dispatchType(g))
	}
	if extSlot >= 0 {
		g.Asm.Load(extSlot, r.extensionType())
	}
	for i := range r.Args {
		g.Asm.Load(argSlots[i], r.argType(g, i))
	}
}

// CollectionElement is obj[args] through conventional get/set calls.
type CollectionElement struct {
	base
	Getter   *Callable
	Setter   *Callable
	Receiver *CollectionElementReceiver
}

// NewCollectionElement builds an indexed access over receiver.
func NewCollectionElement(t types.TypeID, src *types.SourceType, receiver *CollectionElementReceiver) *CollectionElement {
	return &CollectionElement{
		base:     base{T: t, Src: src, sideEffects: true},
		Getter:   receiver.Getter,
		Setter:   receiver.Setter,
		Receiver: receiver,
	}
}

func (v *CollectionElement) String() string { return fmt.Sprintf("%v[]", v.Receiver.Dispatch) }
