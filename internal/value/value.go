// Package value models "a value that can be put onto the operand stack or
// stored into": locals, fields, properties, array and collection elements,
// captured variables, constants and receiver composites.
//
// Value is a closed sum type. Every variant is a struct in this package and
// operations dispatch with type switches in Put, Store, StoreSelector and
// Dup. Variants accessed through an object, array or index additionally
// implement WithReceiver, which the receiver composition layer in
// receiver.go is written against.
//
// put always runs receiver, then value, then coercion to the requested type.
package value

import (
	"stackc/internal/asm"
	"stackc/internal/types"
)

// Value is a stack value or storage location.
type Value interface {
	// Type is the representation type the value naturally produces.
	Type() types.TypeID
	// Source is the richer source-level type, nil when unknown.
	Source() *types.SourceType
	// CanHaveSideEffects reports whether producing the value is observable.
	CanHaveSideEffects() bool

	isValue()
}

// WithReceiver is implemented by values accessed through a receiver.
type WithReceiver interface {
	Value
	// ReceiverValue is the object/array/index the value is accessed through.
	ReceiverValue() Value
	// IsNonStaticAccess reports whether the read (or write) needs the
	// receiver words on the stack.
	IsNonStaticAccess(isRead bool) bool
}

// ExprEmitter generates full sub-expressions for Expression values.
type ExprEmitter interface {
	// EmitExpr leaves one value of the node's natural type on the stack.
	EmitExpr(g *Gen, node any)
}

// Inliner expands calls to inline accessors in place.
type Inliner interface {
	InlineCall(g *Gen, c *Callable)
}

// StringPool assigns literal-pool indices to string constants.
type StringPool interface {
	Intern(s string) int
}

// Gen is the per-function emission context. It is owned by one traversal.
type Gen struct {
	Asm     *asm.Emitter
	Types   *types.Interner
	Frame   *asm.FrameMap
	Exprs   ExprEmitter
	Inliner Inliner
	Strings StringPool
}

// NewGen returns a context with a fresh emitter and frame.
func NewGen(in *types.Interner) *Gen {
	return &Gen{
		Asm:   asm.NewEmitter(in),
		Types: in,
		Frame: asm.NewFrameMap(in),
	}
}

func (g *Gen) size(t types.TypeID) int {
	return g.Types.Size(t)
}

func (g *Gen) internString(s string) int {
	if g.Strings == nil {
		return -1
	}
	return g.Strings.Intern(s)
}

// base carries the fields every variant shares.
type base struct {
	T           types.TypeID
	Src         *types.SourceType
	sideEffects bool
}

func (b *base) Type() types.TypeID          { return b.T }
func (b *base) Source() *types.SourceType   { return b.Src }
func (b *base) CanHaveSideEffects() bool    { return b.sideEffects }
func (*base) isValue()                      {}

// Callable is a resolved accessor or convention call.
type Callable struct {
	Owner string
	Name  string
	Kind  asm.InvokeKind

	// Extension is the extension receiver type, NoTypeID when absent.
	// It is passed as the first argument.
	Extension types.TypeID
	// Dispatch is the dispatch receiver type for non-static calls.
	Dispatch types.TypeID

	Params       []types.TypeID // value parameters, receivers excluded
	ParamSources []*types.SourceType
	Return       types.TypeID
	ReturnSource *types.SourceType

	Inline bool
	// ViaVTable dispatches through vtable slot Slot instead of a direct call.
	ViaVTable bool
	Slot      int
}

// NeedsReceiver reports whether the call consumes a receiver word.
func (c *Callable) NeedsReceiver() bool {
	return c.Kind != asm.InvokeStatic || c.Extension != types.NoTypeID
}

// HasDispatch reports whether the call takes a dispatch receiver.
func (c *Callable) HasDispatch() bool {
	return c.Kind != asm.InvokeStatic
}

// DispatchType returns the dispatch receiver type, Object when unspecified.
func (c *Callable) DispatchType(in *types.Interner) types.TypeID {
	if c.Dispatch != types.NoTypeID {
		return c.Dispatch
	}
	return in.Builtins().Object
}

// Method lowers the callable to a call instruction target.
func (c *Callable) Method() asm.Method {
	params := c.Params
	if c.Extension != types.NoTypeID {
		params = append([]types.TypeID{c.Extension}, c.Params...)
	}
	return asm.Method{Owner: c.Owner, Name: c.Name, Kind: c.Kind, Params: params, Return: c.Return}
}

func (c *Callable) paramSource(i int) *types.SourceType {
	if i < len(c.ParamSources) {
		return c.ParamSources[i]
	}
	return nil
}

// EmitCall emits the call for c with its arguments already on the stack.
func EmitCall(g *Gen, c *Callable) {
	switch {
	case c.Inline && g.Inliner != nil:
		g.Inliner.InlineCall(g, c)
	case c.ViaVTable:
		g.Asm.InvokeSlot(c.Method(), c.Slot)
	default:
		g.Asm.Invoke(c.Method())
	}
}
