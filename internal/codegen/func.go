package codegen

import (
	"stackc/internal/asm"
	"stackc/internal/fault"
	"stackc/internal/ir"
	"stackc/internal/types"
	"stackc/internal/value"
)

// funcGen emits one function body. It is the ExprEmitter and Inliner of its
// value.Gen, so nested expressions and inline accessors come back here.
type funcGen struct {
	u *unit
	d *funcDecl
	g *value.Gen

	scopes  []scope
	inlines []inlineFrame
}

type scope struct {
	names map[string]value.Value
	mark  asm.Mark
}

// inlineFrame is an inline body being expanded: returns jump to end with
// the result on the stack.
type inlineFrame struct {
	decl   *funcDecl
	end    *asm.Label
	ret    types.TypeID
	retSrc *types.SourceType
}

func newFuncGen(u *unit, d *funcDecl) *funcGen {
	g := value.NewGen(u.in)
	fg := &funcGen{u: u, d: d, g: g}
	g.Exprs = fg
	g.Inliner = fg
	g.Strings = u.strings
	return fg
}

func (fg *funcGen) run() {
	fg.push()
	defer fg.pop()
	if !fg.d.static {
		t := fg.u.in.Object(fg.d.owner)
		fg.bind("this", value.NewLocal(fg.g.Frame.Enter("this", t), t, nil))
	}
	for i, p := range fg.d.fn.Params {
		t := fg.d.params[i]
		fg.bind(p.Name, value.NewLocal(fg.g.Frame.Enter(p.Name, t), t, fg.u.source(p.Source)))
	}
	fg.body(fg.d.fn.Body, fg.d.ret, fg.u.source(fg.d.fn.ReturnSource))
}

// body emits a function or inline body. A trailing value expression in a
// non-void body is its result.
func (fg *funcGen) body(list []ir.Expr, ret types.TypeID, retSrc *types.SourceType) {
	void := fg.u.in.Builtins().Void
	for i := range list {
		e := &list[i]
		if i == len(list)-1 && ret != void && e.Kind != ir.ExprReturn && fg.typeOf(e) != void {
			fg.emitReturn(e, true)
			return
		}
		fg.discard(e)
	}
	if !fg.g.Asm.Reachable() {
		return
	}
	if ret != void {
		fault.Raise(fault.MalformedInput, fg.d.fn.Name, "missing return in %s.%s", fg.d.owner, fg.d.fn.Name)
	}
	fg.emitReturn(nil, true)
}

// emitReturn leaves the function, or the innermost inline body, with x.
// tail marks the fallthrough position of an inline body, where no jump is
// needed.
func (fg *funcGen) emitReturn(x *ir.Expr, tail bool) {
	if n := len(fg.inlines); n > 0 {
		fr := fg.inlines[n-1]
		if x != nil {
			fg.put(x, fr.ret, fr.retSrc)
		}
		if !tail {
			fg.g.Asm.Goto(fr.end)
		}
		return
	}
	ret := fg.d.ret
	if x != nil {
		fg.put(x, ret, fg.u.source(fg.d.fn.ReturnSource))
	}
	fg.g.Asm.Return(ret)
}

func (fg *funcGen) push() {
	fg.scopes = append(fg.scopes, scope{names: make(map[string]value.Value), mark: fg.g.Frame.Mark()})
}

func (fg *funcGen) pop() {
	n := len(fg.scopes) - 1
	fg.scopes[n].mark.DropTo()
	fg.scopes = fg.scopes[:n]
}

func (fg *funcGen) bind(name string, v value.Value) {
	fg.scopes[len(fg.scopes)-1].names[name] = v
}

func (fg *funcGen) lookup(name string) value.Value {
	for i := len(fg.scopes) - 1; i >= 0; i-- {
		if v, ok := fg.scopes[i].names[name]; ok {
			return v
		}
	}
	fault.Raise(fault.MalformedInput, name, "undefined local %q in %s.%s", name, fg.d.owner, fg.d.fn.Name)
	return nil
}

// EmitExpr implements value.ExprEmitter.
func (fg *funcGen) EmitExpr(_ *value.Gen, node any) {
	e, ok := node.(*ir.Expr)
	if !ok {
		fault.Raise(fault.MalformedInput, node, "not an expression node")
	}
	fg.emitNatural(e)
}

// InlineCall implements value.Inliner. A call to an inline function the
// module defines is expanded in place: the arguments already on the stack
// are spilled to fresh locals, which the callee body then sees as its
// parameters. Other inline calls stay ordinary calls.
func (fg *funcGen) InlineCall(g *value.Gen, c *value.Callable) {
	m := c.Method()
	d, ok := fg.u.byKey[funcKey(c.Owner, c.Name, m.Descriptor(fg.u.in))]
	if !ok || fg.expanding(d) {
		g.Asm.Invoke(m)
		return
	}

	outer := fg.scopes
	fg.scopes = nil
	fg.push()
	defer func() {
		fg.pop()
		fg.scopes = outer
	}()

	var slots []*value.Local
	if !d.static {
		t := c.DispatchType(g.Types)
		l := value.NewLocal(g.Frame.Enter("this", t), t, nil)
		fg.bind("this", l)
		slots = append(slots, l)
	}
	for i, p := range d.fn.Params {
		t := d.params[i]
		l := value.NewLocal(g.Frame.Enter(p.Name, t), t, fg.u.source(p.Source))
		fg.bind(p.Name, l)
		slots = append(slots, l)
	}
	for i := len(slots) - 1; i >= 0; i-- {
		g.Asm.Store(slots[i].Slot, slots[i].Type())
	}

	end := g.Asm.NewLabel()
	fg.inlines = append(fg.inlines, inlineFrame{decl: d, end: end, ret: c.Return, retSrc: c.ReturnSource})
	fg.body(d.fn.Body, c.Return, c.ReturnSource)
	fg.inlines = fg.inlines[:len(fg.inlines)-1]
	g.Asm.Mark(end)
}

func (fg *funcGen) expanding(d *funcDecl) bool {
	if d == fg.d {
		return true
	}
	for _, fr := range fg.inlines {
		if fr.decl == d {
			return true
		}
	}
	return false
}
