package codegen

import (
	"stackc/internal/asm"
	"stackc/internal/coerce"
	"stackc/internal/fault"
	"stackc/internal/ir"
	"stackc/internal/types"
	"stackc/internal/value"
)

// typeOf is the natural type an expression leaves on the stack.
func (fg *funcGen) typeOf(e *ir.Expr) types.TypeID {
	u := fg.u
	b := u.in.Builtins()
	switch e.Kind {
	case ir.ExprAssign, ir.ExprCompound, ir.ExprLet, ir.ExprReturn:
		return b.Void
	}
	if e.Type != "" {
		return u.typ(e.Type)
	}
	switch e.Kind {
	case ir.ExprConst:
		if e.Null {
			return b.Object
		}
	case ir.ExprLocal, ir.ExprThis:
		name := e.Name
		if e.Kind == ir.ExprThis {
			name = "this"
		}
		return fg.lookup(name).Type()
	case ir.ExprCall:
		return u.typ(e.Call.Return)
	case ir.ExprNew:
		return u.in.Object(e.Owner)
	case ir.ExprDefault, ir.ExprIncr:
		return fg.typeOf(e.X)
	case ir.ExprIndex:
		if tt, ok := u.in.Lookup(fg.typeOf(e.X)); ok && tt.Kind == types.KindArray {
			return tt.Elem
		}
	case ir.ExprElement:
		if e.Getter != nil {
			return u.typ(e.Getter.Return)
		}
		if e.Setter != nil && len(e.Setter.Params) > 0 {
			return u.typ(e.Setter.Params[len(e.Setter.Params)-1])
		}
	case ir.ExprIf, ir.ExprBlock:
		return b.Void
	}
	fault.Raise(fault.MalformedInput, e.Kind, "cannot infer the type of a %s expression", e.Kind)
	return types.NoTypeID
}

// valueOf builds the value model for e. Places become their storage
// variants; everything else is deferred to emitNatural.
func (fg *funcGen) valueOf(e *ir.Expr) value.Value {
	u := fg.u
	switch e.Kind {
	case ir.ExprConst:
		t := fg.typeOf(e)
		return value.NewConstant(u.literal(e, t), t, u.source(e.Source))
	case ir.ExprLocal:
		return fg.lookup(e.Name)
	case ir.ExprThis:
		return fg.lookup("this")
	case ir.ExprField:
		recv := value.None
		if e.Recv != nil {
			recv = fg.valueOf(e.Recv)
		}
		return value.NewField(fg.typeOf(e), u.source(e.Source), e.Owner, e.Name, e.Static, recv, e)
	case ir.ExprProperty:
		return fg.property(e)
	case ir.ExprIndex:
		return value.NewArrayElement(fg.typeOf(e), u.source(e.Source), fg.valueOf(e.X), fg.valueOf(e.Y))
	case ir.ExprElement:
		return fg.element(e)
	case ir.ExprCaptured:
		return value.NewCapturedSharedField(u.in, fg.typeOf(e), u.source(e.Source), e.Owner, e.Name, fg.valueOf(e.Recv), e.Lateinit, e.Name)
	case ir.ExprDefault:
		return fg.valueOf(e.X)
	default:
		return value.NewExpression(fg.typeOf(e), u.source(e.Source), e)
	}
}

// receiverOf composes a dispatch and an extension receiver, dispatch first.
func (fg *funcGen) receiverOf(dispatch, ext *ir.Expr) value.Value {
	switch {
	case dispatch == nil && ext == nil:
		return value.None
	case ext == nil:
		return fg.valueOf(dispatch)
	case dispatch == nil:
		return fg.valueOf(ext)
	}
	return value.NewReceiver(fg.typeOf(dispatch), fg.valueOf(dispatch), fg.valueOf(ext))
}

func (fg *funcGen) property(e *ir.Expr) *value.Property {
	u := fg.u
	p := value.NewProperty(fg.typeOf(e), u.source(e.Source), e.Name, u.callable(e.Getter), u.callable(e.Setter), fg.receiverOf(e.Recv, e.Ext))
	if e.FieldName != "" {
		p.FieldOwner = e.Owner
		if p.FieldOwner == "" {
			p.FieldOwner = u.facade
		}
		p.FieldName = e.FieldName
		p.FieldStatic = e.FieldStatic
	}
	p.Lateinit = e.Lateinit
	p.SkipLateinitCheck = e.CompanionAccessor
	if e.Const != nil {
		p.IsConst = true
		p.ConstValue = u.literal(e.Const, fg.typeOf(e.Const))
	}
	p.Call = e
	return p
}

func (fg *funcGen) element(e *ir.Expr) *value.CollectionElement {
	u := fg.u
	getter, setter := u.callable(e.Getter), u.callable(e.Setter)
	var dispatch, ext value.Value
	if e.Recv != nil {
		dispatch = fg.valueOf(e.Recv)
	}
	if e.Ext != nil {
		ext = fg.valueOf(e.Ext)
	}
	args := make([]value.Value, len(e.Args))
	defaults := make([]bool, len(e.Args))
	for i := range e.Args {
		a := &e.Args[i]
		args[i] = fg.valueOf(a)
		defaults[i] = a.Kind == ir.ExprDefault
	}
	r := value.NewCollectionElementReceiver(getter, setter, dispatch, ext, args, defaults, getter != nil)
	return value.NewCollectionElement(fg.typeOf(e), u.source(e.Source), r)
}

func (fg *funcGen) put(e *ir.Expr, t types.TypeID, src *types.SourceType) {
	value.Put(fg.g, fg.valueOf(e), t, src)
}

// discard emits e for its effects only.
func (fg *funcGen) discard(e *ir.Expr) {
	if e.Kind == ir.ExprIncr {
		fg.incr(e, value.UpdateDiscard)
		return
	}
	fg.emitNatural(e)
	fg.g.Asm.Pop(fg.typeOf(e))
}

// emitNatural leaves exactly one value of typeOf(e) on the stack, or
// nothing when that type is void.
func (fg *funcGen) emitNatural(e *ir.Expr) {
	g := fg.g
	switch e.Kind {
	case ir.ExprConst, ir.ExprLocal, ir.ExprThis, ir.ExprField, ir.ExprProperty,
		ir.ExprIndex, ir.ExprElement, ir.ExprCaptured, ir.ExprDefault:
		fg.put(e, fg.typeOf(e), fg.u.source(e.Source))
	case ir.ExprCall:
		fg.emitCall(e)
	case ir.ExprNew:
		fg.emitNew(e)
	case ir.ExprAssign:
		value.Store(g, fg.valueOf(e.X), fg.valueOf(e.Y))
	case ir.ExprCompound:
		fg.compound(e)
	case ir.ExprIncr:
		mode := value.UpdatePostfix
		if e.Prefix {
			mode = value.UpdatePrefix
		}
		fg.incr(e, mode)
	case ir.ExprBinary:
		t := fg.typeOf(e)
		if !arithOp(e.Op) {
			fault.Raise(fault.MalformedInput, e.Op, "unknown binary operator %q", e.Op)
		}
		fg.put(e.X, t, nil)
		fg.put(e.Y, fg.operandType(e.Op, t), nil)
		fg.arith(e.Op, t)
	case ir.ExprIf:
		fg.emitIf(e, fg.typeOf(e))
	case ir.ExprBlock:
		fg.branch(e.Body, fg.typeOf(e))
	case ir.ExprLet:
		fg.emitLet(e)
	case ir.ExprReturn:
		fg.emitReturn(e.X, false)
	case ir.ExprArrayLiteral:
		fault.Raise(fault.NotImplemented, e.Kind, "array literals are not supported")
	case ir.ExprTry:
		fault.Raise(fault.NotImplemented, e.Kind, "try/catch is not supported")
	case ir.ExprInterfaceCall:
		fault.Raise(fault.NotImplemented, e.Kind, "dynamic interface dispatch is not supported")
	default:
		fault.Raise(fault.MalformedInput, e.Kind, "unknown expression kind %q", e.Kind)
	}
}

func arithOp(op string) bool {
	switch op {
	case "add", "sub", "mul", "div", "rem", "and", "or", "xor", "shl", "shr", "ushr":
		return true
	}
	return false
}

// emitCall pushes receivers and arguments, calls, and leaves the result at
// the expression's type. A callee returning Nothing is followed by an
// explicit throw.
func (fg *funcGen) emitCall(e *ir.Expr) {
	u, g := fg.u, fg.g
	c := u.callable(e.Call)
	if c.HasDispatch() {
		recv := e.Recv
		if recv == nil {
			recv = &ir.Expr{Kind: ir.ExprThis}
		}
		fg.put(recv, c.DispatchType(u.in), nil)
	}
	if c.Extension != types.NoTypeID {
		if e.Ext == nil {
			fault.Raise(fault.MissingArgument, c, "%s.%s needs an extension receiver", c.Owner, c.Name)
		}
		fg.put(e.Ext, c.Extension, nil)
	}
	fg.args(c, e.Args)
	value.EmitCall(g, c)
	if c.ReturnSource.IsNothing() {
		g.Asm.AConstNull()
		g.Asm.AThrow()
	}
	coerce.Coerce(g.Asm, c.Return, c.ReturnSource, fg.typeOf(e), u.source(e.Source))
}

func (fg *funcGen) args(c *value.Callable, list []ir.Expr) {
	if len(list) != len(c.Params) {
		fault.Raise(fault.MissingArgument, c, "%s.%s takes %d arguments, %d supplied", c.Owner, c.Name, len(c.Params), len(list))
	}
	for i := range list {
		var src *types.SourceType
		if i < len(c.ParamSources) {
			src = c.ParamSources[i]
		}
		fg.put(&list[i], c.Params[i], src)
	}
}

// emitNew allocates the class and runs its constructor on a duplicate.
func (fg *funcGen) emitNew(e *ir.Expr) {
	g := fg.g
	t := fg.u.in.Object(e.Owner)
	c := fg.u.callable(e.Call)
	c.Kind = asm.InvokeSpecial
	g.Asm.New(t)
	g.Asm.Dup(1, 0)
	fg.args(c, e.Args)
	g.Asm.Invoke(c.Method())
	coerce.Simple(g.Asm, t, fg.typeOf(e))
}

func (fg *funcGen) compound(e *ir.Expr) {
	g := fg.g
	if !arithOp(e.Op) {
		fault.Raise(fault.MalformedInput, e.Op, "unknown compound operator %q", e.Op)
	}
	target := fg.valueOf(e.X)
	t := target.Type()
	if (e.Op == "add" || e.Op == "sub") && e.Y.Kind == ir.ExprConst {
		delta := int(e.Y.Int)
		if e.Op == "sub" {
			delta = -delta
		}
		if l, ok := target.(*value.Local); ok && value.CanIncrementInPlace(g, l, delta) {
			value.IncrementLocal(g, l, delta, value.UpdateDiscard)
			return
		}
	}
	value.Modify(g, target, value.UpdateDiscard, func(*value.Gen) {
		fg.put(e.Y, fg.operandType(e.Op, t), nil)
		fg.arith(e.Op, t)
	})
}

func (fg *funcGen) incr(e *ir.Expr, mode value.Update) {
	g := fg.g
	target := fg.valueOf(e.X)
	if l, ok := target.(*value.Local); ok && value.CanIncrementInPlace(g, l, e.Delta) {
		value.IncrementLocal(g, l, e.Delta, mode)
		return
	}
	t := target.Type()
	value.Modify(g, target, mode, func(g *value.Gen) {
		value.Put(g, value.NewConstant(int64(e.Delta), t, nil), t, nil)
		fg.arith("add", t)
	})
}

// operandType is the type the right operand of op is pushed at: shift
// counts are always int.
func (fg *funcGen) operandType(op string, t types.TypeID) types.TypeID {
	if asm.IsShift(op) {
		return fg.u.in.Builtins().Int
	}
	return t
}

// arith applies op to the operands on the stack. Byte, short and char
// arithmetic runs at int and the result is narrowed back to t.
func (fg *funcGen) arith(op string, t types.TypeID) {
	g := fg.g
	switch fg.u.in.KindOf(t) {
	case types.KindByte, types.KindShort, types.KindChar:
		i := fg.u.in.Builtins().Int
		g.Asm.Arith(op, i)
		coerce.Simple(g.Asm, i, t)
	default:
		g.Asm.Arith(op, t)
	}
}

// emitIf branches on e.X. A literal condition selects its branch at
// compile time.
func (fg *funcGen) emitIf(e *ir.Expr, t types.TypeID) {
	g := fg.g
	elseL := g.Asm.NewLabel()
	cond := fg.valueOf(e.X)
	if bc, ok := cond.(*value.BoolConst); ok {
		bc.CondJump(g, elseL, true)
		if bc.Value {
			fg.branch(e.Then, t)
			return
		}
		g.Asm.Mark(elseL)
		fg.branch(e.Else, t)
		return
	}

	endL := g.Asm.NewLabel()
	value.Put(g, cond, fg.u.in.Builtins().Bool, nil)
	g.Asm.IfEq(elseL)
	fg.branch(e.Then, t)
	joined := g.Asm.Reachable()
	if joined {
		g.Asm.Goto(endL)
	}
	g.Asm.Mark(elseL)
	fg.branch(e.Else, t)
	if joined || g.Asm.Reachable() {
		g.Asm.Mark(endL)
	}
}

// branch emits a nested block in its own scope. A non-void block yields
// its last expression.
func (fg *funcGen) branch(list []ir.Expr, t types.TypeID) {
	fg.push()
	defer fg.pop()
	void := fg.u.in.Builtins().Void
	if t != void && len(list) == 0 {
		fault.Raise(fault.MalformedInput, fg.d.fn.Name, "empty block must produce %s", fg.u.in.Descriptor(t))
	}
	for i := range list {
		e := &list[i]
		if i == len(list)-1 && t != void {
			fg.put(e, t, nil)
			return
		}
		fg.discard(e)
	}
}

// emitLet declares a local. Shared locals live in a wrapper object; delegated
// locals hold the delegate and route reads and writes through it.
func (fg *funcGen) emitLet(e *ir.Expr) {
	u, g := fg.u, fg.g
	src := u.source(e.Source)
	switch {
	case e.Delegate != nil:
		dt := fg.typeOf(e.Delegate)
		slot := g.Frame.Enter(e.Name+"$delegate", dt)
		fg.put(e.Delegate, dt, nil)
		g.Asm.Store(slot, dt)
		meta := value.NewConstant(e.Meta, u.in.Builtins().String, nil)
		d := value.NewDelegate(fg.letType(e), src, e.Name, value.NewLocal(slot, dt, nil), u.callable(e.Getter), u.callable(e.Setter), nil, meta)
		fg.bind(e.Name, d)

	case e.Shared:
		t := fg.letType(e)
		ref, _ := u.in.SharedRef(t)
		slot := g.Frame.Enter(e.Name, ref)
		g.Asm.New(ref)
		g.Asm.Dup(1, 0)
		g.Asm.Invoke(asm.Method{Owner: u.in.MustLookup(ref).Name, Name: "<init>", Kind: asm.InvokeSpecial, Return: u.in.Builtins().Void})
		g.Asm.Store(slot, ref)
		sv := value.NewSharedVariable(slot, t, src, e.Lateinit, e.Name)
		fg.bind(e.Name, sv)
		if e.Y != nil {
			value.Store(g, sv, fg.valueOf(e.Y))
		}

	default:
		t := fg.letType(e)
		slot := g.Frame.Enter(e.Name, t)
		var v value.Value = value.NewLocal(slot, t, src)
		if e.Lateinit {
			v = value.NewLateinitLocal(slot, t, src, e.Name)
			if e.Y == nil && u.in.IsReference(t) {
				g.Asm.AConstNull()
				g.Asm.Store(slot, t)
			}
		}
		if e.Y != nil {
			value.Store(g, v, fg.valueOf(e.Y))
		}
		fg.bind(e.Name, v)
	}
}

// letType is the declared type of a let, or its initialiser's type.
func (fg *funcGen) letType(e *ir.Expr) types.TypeID {
	switch {
	case e.Type != "":
		return fg.u.typ(e.Type)
	case e.Y != nil:
		return fg.typeOf(e.Y)
	case e.Getter != nil:
		return fg.u.typ(e.Getter.Return)
	}
	fault.Raise(fault.MalformedInput, e.Name, "let %s has neither a type nor an initialiser", e.Name)
	return types.NoTypeID
}
