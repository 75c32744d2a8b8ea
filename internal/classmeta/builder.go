package classmeta

import (
	"errors"
)

// Module holds the metadata of every class and interface of one module.
// It is built once and then only queried.
type Module struct {
	// Classes is in ID order: the root first, then superclasses before
	// subclasses.
	Classes    []*ClassMetadata
	Interfaces []*InterfaceMetadata

	classes    map[string]*ClassMetadata
	interfaces map[string]*InterfaceMetadata
}

// Class returns the metadata of the named class.
func (m *Module) Class(name string) (*ClassMetadata, bool) {
	c, ok := m.classes[name]
	return c, ok
}

// Interface returns the metadata of the named interface.
func (m *Module) Interface(name string) (*InterfaceMetadata, bool) {
	im, ok := m.interfaces[name]
	return im, ok
}

// Root returns the universal superclass.
func (m *Module) Root() *ClassMetadata {
	return m.Classes[0]
}

type builder struct {
	decls      map[string]*ClassDecl
	order      []string
	ifaceDecls map[string]*InterfaceDecl
	ifaceOrder []string

	mod   *Module
	state map[string]visit
	stack []string
	errs  []error
}

type visit uint8

const (
	unvisited visit = iota
	visiting
	done
)

// Build resolves the hierarchy. Classes are processed strictly after their
// superclasses; interface IDs are assigned in the order classes reach them,
// then in declaration order for interfaces no class implements.
func Build(classes []ClassDecl, interfaces []InterfaceDecl) (*Module, error) {
	b := &builder{
		decls:      make(map[string]*ClassDecl, len(classes)),
		ifaceDecls: make(map[string]*InterfaceDecl, len(interfaces)),
		state:      make(map[string]visit, len(classes)),
		mod: &Module{
			classes:    make(map[string]*ClassMetadata, len(classes)+1),
			interfaces: make(map[string]*InterfaceMetadata, len(interfaces)),
		},
	}
	root := &ClassMetadata{ID: 0, Name: RootName}
	b.mod.Classes = append(b.mod.Classes, root)
	b.mod.classes[RootName] = root

	for i := range interfaces {
		d := &interfaces[i]
		if _, dup := b.ifaceDecls[d.Name]; dup {
			b.errs = append(b.errs, &Error{Kind: ErrDuplicateClass, Class: d.Name})
			continue
		}
		b.ifaceDecls[d.Name] = d
		b.ifaceOrder = append(b.ifaceOrder, d.Name)
	}
	for i := range classes {
		d := &classes[i]
		_, dup := b.decls[d.Name]
		if dup || d.Name == RootName {
			b.errs = append(b.errs, &Error{Kind: ErrDuplicateClass, Class: d.Name})
			continue
		}
		if _, clash := b.ifaceDecls[d.Name]; clash {
			b.errs = append(b.errs, &Error{Kind: ErrDuplicateClass, Class: d.Name})
			continue
		}
		b.decls[d.Name] = d
		b.order = append(b.order, d.Name)
	}

	for _, name := range b.order {
		b.visitClass(name)
	}
	for _, name := range b.ifaceOrder {
		b.visitInterface(name, name)
	}
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	return b.mod, nil
}

func (b *builder) visitClass(name string) *ClassMetadata {
	if c, ok := b.mod.classes[name]; ok {
		return c
	}
	switch b.state[name] {
	case visiting:
		cycle := append([]string(nil), b.stack...)
		for i, n := range cycle {
			if n == name {
				cycle = cycle[i:]
				break
			}
		}
		b.errs = append(b.errs, &Error{Kind: ErrCycle, Class: name, Cycle: append(cycle, name)})
		return nil
	case done:
		return nil
	}
	d := b.decls[name]
	b.state[name] = visiting
	b.stack = append(b.stack, name)
	defer func() {
		b.stack = b.stack[:len(b.stack)-1]
		b.state[name] = done
	}()

	superName := d.Super
	if superName == "" {
		superName = RootName
	}
	var super *ClassMetadata
	switch {
	case superName == RootName:
		super = b.mod.Root()
	case b.decls[superName] != nil:
		super = b.visitClass(superName)
		if super == nil {
			return nil
		}
	case b.ifaceDecls[superName] != nil:
		b.errs = append(b.errs, &Error{Kind: ErrSuperIsInterface, Class: name, Name: superName})
		return nil
	default:
		b.errs = append(b.errs, &Error{Kind: ErrUnknownSuper, Class: name, Name: superName})
		return nil
	}

	c := &ClassMetadata{
		ID:    len(b.mod.Classes),
		Name:  name,
		Super: super,
	}
	c.Fields = append(append([]Field(nil), super.Fields...), ownFields(d)...)
	vtable, err := buildVTable(super, d)
	if err != nil {
		b.errs = append(b.errs, err)
		return nil
	}
	c.VirtualMethods = vtable
	c.Interfaces = append([]*InterfaceMetadata(nil), super.Interfaces...)
	for _, in := range d.Interfaces {
		im := b.visitInterface(in, name)
		if im == nil {
			continue
		}
		c.Interfaces = addInterface(c.Interfaces, im)
	}

	b.mod.Classes = append(b.mod.Classes, c)
	b.mod.classes[name] = c
	return c
}

func ownFields(d *ClassDecl) []Field {
	out := make([]Field, 0, len(d.Fields))
	for _, f := range d.Fields {
		out = append(out, Field{Owner: d.Name, Name: f.Name, Type: f.Type})
	}
	return out
}

// buildVTable copies the superclass slots, retargets the ones whose
// signature d redeclares and appends the rest in declaration order.
func buildVTable(super *ClassMetadata, d *ClassDecl) ([]VirtualMethod, error) {
	vtable := append([]VirtualMethod(nil), super.VirtualMethods...)
	seen := make(map[string]struct{}, len(d.Virtuals))
	for _, m := range d.Virtuals {
		if _, dup := seen[m.Signature]; dup {
			return nil, &Error{Kind: ErrDuplicateSignature, Class: d.Name, Name: m.Signature}
		}
		seen[m.Signature] = struct{}{}
		slot := VirtualMethod{Signature: m.Signature, Owner: d.Name, Function: m}
		if i, ok := super.SlotOf(m.Signature); ok {
			vtable[i] = slot
			continue
		}
		vtable = append(vtable, slot)
	}
	return vtable, nil
}

// visitInterface assigns an ID on first sight, super-interfaces first.
func (b *builder) visitInterface(name, from string) *InterfaceMetadata {
	if im, ok := b.mod.interfaces[name]; ok {
		return im
	}
	d := b.ifaceDecls[name]
	if d == nil {
		b.errs = append(b.errs, &Error{Kind: ErrUnknownInterface, Class: from, Name: name})
		return nil
	}
	if b.state[name] == visiting {
		b.errs = append(b.errs, &Error{Kind: ErrCycle, Class: name, Cycle: []string{from, name}})
		return nil
	}
	b.state[name] = visiting
	supers := make([]*InterfaceMetadata, 0, len(d.Supers))
	for _, s := range d.Supers {
		if sm := b.visitInterface(s, name); sm != nil {
			supers = append(supers, sm)
		}
	}
	b.state[name] = done
	im := &InterfaceMetadata{ID: len(b.mod.Interfaces), Name: name, Supers: supers}
	b.mod.Interfaces = append(b.mod.Interfaces, im)
	b.mod.interfaces[name] = im
	return im
}

// addInterface appends im and its super-interfaces unless already present.
func addInterface(set []*InterfaceMetadata, im *InterfaceMetadata) []*InterfaceMetadata {
	for _, have := range set {
		if have == im {
			return set
		}
	}
	set = append(set, im)
	for _, s := range im.Supers {
		set = addInterface(set, s)
	}
	return set
}
