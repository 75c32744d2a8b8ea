// Package classmeta builds per-class dispatch metadata for a module: class
// and interface IDs, virtual method tables with signature-stable slots, the
// transitive interface sets and the binary records embedded in the data
// segment.
package classmeta

import (
	"stackc/internal/types"
)

// RootName is the universal superclass. It has ID 0 and an empty vtable.
const RootName = types.ObjectName

// MethodDecl is a virtual (overridable or overriding) method of a class.
type MethodDecl struct {
	Name      string
	Signature string // name plus descriptor, dispatch receiver excluded
	FuncID    int    // global function index in the module
}

// FieldDecl is an instance field.
type FieldDecl struct {
	Name string
	Type types.TypeID
}

// ClassDecl is the input description of one class.
type ClassDecl struct {
	Name       string
	Super      string // empty means RootName
	Interfaces []string
	Fields     []FieldDecl
	Virtuals   []MethodDecl
}

// InterfaceDecl is the input description of one interface.
type InterfaceDecl struct {
	Name   string
	Supers []string
}

// Field is a field of a class instance, qualified by its declaring class.
type Field struct {
	Owner string
	Name  string
	Type  types.TypeID
}

// VirtualMethod is one vtable slot.
type VirtualMethod struct {
	Signature string
	Owner     string // class whose declaration the slot targets
	Function  MethodDecl
}

// InterfaceMetadata is the runtime identity of an interface.
type InterfaceMetadata struct {
	ID     int
	Name   string
	Supers []*InterfaceMetadata
}

// ClassMetadata describes one class after inheritance is resolved.
type ClassMetadata struct {
	ID    int
	Name  string
	Super *ClassMetadata

	// Fields lists inherited fields first, in the superclass's order,
	// followed by the class's own fields in declaration order.
	Fields []Field
	// Interfaces is the transitive set of implemented interfaces, in
	// first-reached order.
	Interfaces []*InterfaceMetadata
	// VirtualMethods keeps every inherited slot at its index and appends
	// new slots in declaration order.
	VirtualMethods []VirtualMethod
}

// IsRoot reports whether c is the universal superclass.
func (c *ClassMetadata) IsRoot() bool {
	return c.Super == nil
}

// OwnFields returns the fields declared by c itself.
func (c *ClassMetadata) OwnFields() []Field {
	if c.Super == nil {
		return c.Fields
	}
	return c.Fields[len(c.Super.Fields):]
}

// SlotOf returns the vtable index of signature.
func (c *ClassMetadata) SlotOf(signature string) (int, bool) {
	for i, vm := range c.VirtualMethods {
		if vm.Signature == signature {
			return i, true
		}
	}
	return -1, false
}

// FieldIndex returns the position of the named field in Fields. A field
// shadowed by a subclass resolves to the most derived declaration.
func (c *ClassMetadata) FieldIndex(name string) (int, bool) {
	for i := len(c.Fields) - 1; i >= 0; i-- {
		if c.Fields[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// Implements reports whether c implements the interface with the given ID.
func (c *ClassMetadata) Implements(id int) bool {
	for _, im := range c.Interfaces {
		if im.ID == id {
			return true
		}
	}
	return false
}

// IsSubclassOf reports whether c is other or derives from it.
func (c *ClassMetadata) IsSubclassOf(other *ClassMetadata) bool {
	for k := c; k != nil; k = k.Super {
		if k == other {
			return true
		}
	}
	return false
}
