// Package codegen assembles an ir.Module into an Artifact: one instruction
// list per function, the class metadata data segment, and the module's
// import, export, global and string tables.
//
// Assembly of one module is a single synchronous traversal. Internal
// failures raised by the value model abort it and come back from Assemble
// as a *fault.Error.
package codegen

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"stackc/internal/asm"
	"stackc/internal/classmeta"
	"stackc/internal/fault"
	"stackc/internal/ir"
	"stackc/internal/layout"
	"stackc/internal/trace"
	"stackc/internal/types"
)

// Options configures one assembly.
type Options struct {
	// Target is the linear-memory model used for field offsets. The zero
	// value selects layout.Linear32.
	Target layout.Target
}

// funcDecl is a function defined by the module.
type funcDecl struct {
	id     int
	owner  string
	fn     *ir.Func
	static bool
	params []types.TypeID
	ret    types.TypeID
	desc   string
}

type unit struct {
	mod    *ir.Module
	in     *types.Interner
	facade string

	meta   *classmeta.Module
	layout *layout.LayoutEngine

	decls   []*funcDecl
	byKey   map[string]*funcDecl
	imports map[string]int
	strings *stringPool
	sources map[*ir.SourceType]*types.SourceType

	art  *Artifact
	span *trace.Span
}

// Assemble lowers m. The tracer and parent span are taken from ctx.
func Assemble(ctx context.Context, m *ir.Module, opts Options) (art *Artifact, err error) {
	in := types.NewInterner()
	if err := ir.Validate(m, in); err != nil {
		return nil, fmt.Errorf("unit %s: %w", m.Name, err)
	}
	if opts.Target == (layout.Target{}) {
		opts.Target = layout.Linear32()
	}

	_, span := trace.StartUnit(ctx, m.Name)
	defer func() {
		if err != nil {
			span.End(err.Error())
			return
		}
		span.WithExtra("funcs", strconv.Itoa(len(art.Functions))).End("")
	}()
	defer fault.Recover(&err)

	u := &unit{
		mod:     m,
		in:      in,
		facade:  m.FacadeName(),
		layout:  layout.New(opts.Target, in),
		byKey:   make(map[string]*funcDecl),
		imports: make(map[string]int),
		strings: newStringPool(),
		sources: make(map[*ir.SourceType]*types.SourceType),
		span:    span,
		art:     &Artifact{Module: m.Name, Facade: m.FacadeName()},
	}
	u.declare()
	if err := u.buildClasses(); err != nil {
		return nil, fmt.Errorf("unit %s: %w", m.Name, err)
	}
	u.emitAll()
	if err := u.exports(); err != nil {
		return nil, fmt.Errorf("unit %s: %w", m.Name, err)
	}
	u.art.Strings = u.strings.list
	return u.art, nil
}

func funcKey(owner, name, desc string) string {
	return owner + "." + name + desc
}

// declare assigns function ids: top-level functions, then methods in class
// order, then the global initialiser when one is needed.
func (u *unit) declare() {
	for i := range u.mod.Funcs {
		u.addDecl(u.facade, &u.mod.Funcs[i], true)
	}
	for i := range u.mod.Classes {
		c := &u.mod.Classes[i]
		for j := range c.Methods {
			u.addDecl(c.Name, &c.Methods[j], c.Methods[j].Static)
		}
		for _, f := range c.Fields {
			if f.Static {
				u.art.Globals = append(u.art.Globals, Global{Owner: c.Name, Name: f.Name, Type: f.Type})
			}
		}
	}

	var inits []ir.Expr
	for i := range u.mod.Globals {
		g := &u.mod.Globals[i]
		u.art.Globals = append(u.art.Globals, Global{Owner: u.facade, Name: g.Name, Type: g.Type})
		if g.Init == nil {
			continue
		}
		inits = append(inits, ir.Expr{
			Kind: ir.ExprAssign,
			X:    &ir.Expr{Kind: ir.ExprField, Owner: u.facade, Name: g.Name, Type: g.Type, Static: true},
			Y:    g.Init,
		})
	}
	if len(inits) > 0 {
		u.addDecl(u.facade, &ir.Func{Name: "<clinit>", Return: "V", Static: true, Body: inits}, true)
	}
}

func (u *unit) addDecl(owner string, f *ir.Func, static bool) {
	d := &funcDecl{id: len(u.decls), owner: owner, fn: f, static: static}
	for _, p := range f.Params {
		d.params = append(d.params, u.typ(p.Type))
	}
	d.ret = u.typ(f.Return)
	d.desc = u.in.MethodDescriptor(d.params, d.ret)
	key := funcKey(owner, f.Name, d.desc)
	if _, dup := u.byKey[key]; dup {
		fault.Raise(fault.MalformedInput, key, "function defined twice")
	}
	u.decls = append(u.decls, d)
	u.byKey[key] = d
}

func (u *unit) buildClasses() error {
	decls := make([]classmeta.ClassDecl, 0, len(u.mod.Classes))
	for i := range u.mod.Classes {
		c := &u.mod.Classes[i]
		cd := classmeta.ClassDecl{Name: c.Name, Super: c.Super, Interfaces: c.Interfaces}
		for _, f := range c.Fields {
			if !f.Static {
				cd.Fields = append(cd.Fields, classmeta.FieldDecl{Name: f.Name, Type: u.typ(f.Type)})
			}
		}
		for j := range c.Methods {
			f := &c.Methods[j]
			if !f.Virtual {
				continue
			}
			d := u.declOf(c.Name, f)
			cd.Virtuals = append(cd.Virtuals, classmeta.MethodDecl{Name: f.Name, Signature: f.Name + d.desc, FuncID: d.id})
		}
		decls = append(decls, cd)
	}
	ifaces := make([]classmeta.InterfaceDecl, 0, len(u.mod.Interfaces))
	for _, it := range u.mod.Interfaces {
		ifaces = append(ifaces, classmeta.InterfaceDecl{Name: it.Name, Supers: it.Supers})
	}

	meta, err := classmeta.Build(decls, ifaces)
	if err != nil {
		return err
	}
	u.meta = meta
	seg, err := meta.DataSegment()
	if err != nil {
		return err
	}
	u.art.Data = seg.Data
	u.art.Signatures = seg.Signatures

	for _, im := range meta.Interfaces {
		out := Interface{ID: im.ID, Name: im.Name}
		for _, s := range im.Supers {
			out.Supers = append(out.Supers, s.ID)
		}
		u.art.Interfaces = append(u.art.Interfaces, out)
	}
	for _, c := range meta.Classes {
		lay, err := u.layout.ClassLayout(c)
		if err != nil {
			return err
		}
		out := Class{ID: c.ID, Name: c.Name, Super: -1, Size: lay.Size, Record: seg.Offsets[c.ID]}
		if c.Super != nil {
			out.Super = c.Super.ID
		}
		for _, vm := range c.VirtualMethods {
			out.VTable = append(out.VTable, Slot{Signature: vm.Signature, Owner: vm.Owner, Func: vm.Function.FuncID})
		}
		for _, im := range c.Interfaces {
			out.Interfaces = append(out.Interfaces, im.ID)
		}
		for i, f := range c.Fields {
			out.Fields = append(out.Fields, FieldSlot{
				Owner:  f.Owner,
				Name:   f.Name,
				Type:   u.in.Descriptor(f.Type),
				Offset: lay.FieldOffsets[i],
			})
		}
		u.art.Classes = append(u.art.Classes, out)
	}
	return nil
}

func (u *unit) declOf(owner string, f *ir.Func) *funcDecl {
	for _, d := range u.decls {
		if d.owner == owner && d.fn == f {
			return d
		}
	}
	fault.Raise(fault.MalformedInput, f.Name, "method of %s was never declared", owner)
	return nil
}

// emitAll emits every declared function. Methods are grouped under a span
// per class.
func (u *unit) emitAll() {
	var class string
	var span *trace.Span
	for _, d := range u.decls {
		if d.owner != class {
			if span != nil {
				span.End("")
			}
			class = d.owner
			span = u.span.Child(trace.ScopeClass, "class:"+class)
		}
		u.art.Functions = append(u.art.Functions, u.emitFunc(d, span))
	}
	if span != nil {
		span.End("")
	}
}

func (u *unit) emitFunc(d *funcDecl, class *trace.Span) Function {
	span := class.Child(trace.ScopeFunc, "func:"+d.owner+"."+d.fn.Name)
	fg := newFuncGen(u, d)
	fg.run()

	g := fg.g
	out := Function{
		ID:         d.id,
		Owner:      d.owner,
		Name:       d.fn.Name,
		Descriptor: d.desc,
		Return:     u.in.Descriptor(d.ret),
		Static:     d.static,
		MaxStack:   g.Asm.MaxDepth(),
		MaxLocals:  g.Frame.MaxLocals(),
		Code:       asm.Listing(u.in, g.Asm.Code()),
	}
	for _, ls := range g.Frame.Table() {
		out.Locals = append(out.Locals, Local{Slot: ls.Slot, Name: ls.Name, Type: u.in.Descriptor(ls.Type), Temp: ls.Temp})
	}
	span.WithExtra("max_stack", strconv.Itoa(out.MaxStack)).End("")
	return out
}

// importOf records a call target the module does not define.
func (u *unit) importOf(owner, name, desc string) {
	name = norm.NFC.String(name)
	key := funcKey(owner, name, desc)
	if _, ok := u.imports[key]; ok {
		return
	}
	u.imports[key] = len(u.art.Imports)
	u.art.Imports = append(u.art.Imports, Import{ID: len(u.art.Imports), Owner: owner, Name: name, Descriptor: desc})
}

// exports publishes functions marked for export under their NFC names.
// Two functions whose names normalise to the same string collide.
func (u *unit) exports() error {
	seen := make(map[string]int)
	for _, d := range u.decls {
		if !d.fn.Export {
			continue
		}
		name := norm.NFC.String(d.fn.Name)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("export %q: functions #%d and #%d share the name", name, prev, d.id)
		}
		seen[name] = d.id
		u.art.Exports = append(u.art.Exports, Export{Name: name, Func: d.id})
	}
	return nil
}

// stringPool deduplicates string literals in first-use order.
type stringPool struct {
	index map[string]int
	list  []string
}

func newStringPool() *stringPool {
	return &stringPool{index: make(map[string]int)}
}

func (p *stringPool) Intern(s string) int {
	if i, ok := p.index[s]; ok {
		return i
	}
	i := len(p.list)
	p.index[s] = i
	p.list = append(p.list, s)
	return i
}
