package value

import (
	"fmt"

	"stackc/internal/fault"
	"stackc/internal/types"
)

// Local is a slot reference.
type Local struct {
	base
	Slot int
}

// NewLocal returns a slot reference. slot must be non-negative.
func NewLocal(slot int, t types.TypeID, src *types.SourceType) *Local {
	if slot < 0 {
		fault.Raise(fault.MalformedInput, slot, "negative local slot")
	}
	return &Local{base: base{T: t, Src: src}, Slot: slot}
}

func (v *Local) String() string { return fmt.Sprintf("local#%d", v.Slot) }

// LateinitLocal is a slot whose reads assert the variable was initialised.
type LateinitLocal struct {
	base
	Slot int
	Name string
}

// NewLateinitLocal returns a lateinit slot reference named name for diagnostics.
func NewLateinitLocal(slot int, t types.TypeID, src *types.SourceType, name string) *LateinitLocal {
	if slot < 0 {
		fault.Raise(fault.MalformedInput, slot, "negative local slot")
	}
	return &LateinitLocal{base: base{T: t, Src: src}, Slot: slot, Name: name}
}

func (v *LateinitLocal) String() string { return fmt.Sprintf("lateinit %s#%d", v.Name, v.Slot) }

// Constant is a compile-time literal other than a boolean.
// Value holds int32, int64, float32, float64, string or nil.
type Constant struct {
	base
	Value any
}

// NewConstant returns a literal value. Booleans get the branch-friendly
// BoolConst form.
func NewConstant(v any, t types.TypeID, src *types.SourceType) Value {
	if b, ok := v.(bool); ok {
		return NewBool(b)
	}
	return &Constant{base: base{T: t, Src: src}, Value: v}
}

func (v *Constant) String() string { return fmt.Sprintf("const %v", v.Value) }

// BoolConst is a boolean literal that can fuse into branches.
type BoolConst struct {
	base
	Value bool
}

var (
	boolTrue  = &BoolConst{base: base{T: types.FixedBuiltins().Bool}, Value: true}
	boolFalse = &BoolConst{base: base{T: types.FixedBuiltins().Bool}, Value: false}
)

// NewBool returns the shared boolean literal.
func NewBool(b bool) *BoolConst {
	if b {
		return boolTrue
	}
	return boolFalse
}

func (v *BoolConst) String() string { return fmt.Sprintf("const %t", v.Value) }

// Field is a named field read through Receiver. Static selects the access
// form: an instance-qualified access uses the instance instructions even when
// the field's storage is static.
type Field struct {
	base
	Owner    string
	Name     string
	Static   bool
	Receiver Value
	Decl     any // source declaration, for diagnostics
}

// NewField builds a field access. receiver is None for static access.
func NewField(t types.TypeID, src *types.SourceType, owner, name string, static bool, receiver Value, decl any) *Field {
	if receiver == nil {
		receiver = None
	}
	return &Field{base: base{T: t, Src: src}, Owner: owner, Name: name, Static: static, Receiver: receiver, Decl: decl}
}

func (v *Field) String() string { return v.Owner + "." + v.Name }

// Property is a property backed by accessors, a field, or both.
type Property struct {
	base
	Name   string
	Getter *Callable
	Setter *Callable

	FieldOwner  string
	FieldName   string
	FieldType   types.TypeID
	FieldStatic bool

	Receiver Value

	Lateinit bool
	// SkipLateinitCheck suppresses the lateinit assertion when the access
	// point is the synthetic companion accessor of this very property.
	SkipLateinitCheck bool

	// IsConst inlines ConstValue instead of any accessor or field access.
	IsConst    bool
	ConstValue any

	Call any // resolved call, for diagnostics
}

// NewProperty builds a property access through receiver. Callers fill in
// the backing field or constant.
func NewProperty(t types.TypeID, src *types.SourceType, name string, getter, setter *Callable, receiver Value) *Property {
	if receiver == nil {
		receiver = None
	}
	return &Property{
		base:     base{T: t, Src: src, sideEffects: getter != nil || receiver.CanHaveSideEffects()},
		Name:     name,
		Getter:   getter,
		Setter:   setter,
		Receiver: receiver,
	}
}

func (v *Property) String() string { return "property " + v.Name }

func (v *Property) hasField() bool {
	return v.FieldOwner != "" && v.FieldName != ""
}

func (v *Property) fieldType() types.TypeID {
	if v.FieldType != types.NoTypeID {
		return v.FieldType
	}
	return v.T
}

// ArrayElement is array[index] through raw array instructions.
type ArrayElement struct {
	base
	Array    Value
	Index    Value
	receiver *Receiver
}

// NewArrayElement builds an element access; the array and index are
// produced, in that order, as one two-word receiver.
func NewArrayElement(elem types.TypeID, src *types.SourceType, array, index Value) *ArrayElement {
	return &ArrayElement{
		base:     base{T: elem, Src: src, sideEffects: true},
		Array:    array,
		Index:    index,
		receiver: NewReceiver(array.Type(), array, index),
	}
}

func (v *ArrayElement) String() string { return fmt.Sprintf("%v[%v]", v.Array, v.Index) }

// SharedVariable is a captured mutable local boxed in a one-field wrapper
// object held in Slot.
type SharedVariable struct {
	base
	Slot     int
	Lateinit bool
	Name     string
}

// NewSharedVariable returns a shared-variable reference.
func NewSharedVariable(slot int, t types.TypeID, src *types.SourceType, lateinit bool, name string) *SharedVariable {
	if slot < 0 {
		fault.Raise(fault.MalformedInput, slot, "negative local slot")
	}
	return &SharedVariable{base: base{T: t, Src: src}, Slot: slot, Lateinit: lateinit, Name: name}
}

func (v *SharedVariable) String() string { return fmt.Sprintf("shared %s#%d", v.Name, v.Slot) }

// CapturedSharedField is a shared variable reached through a closure field:
// receiver.FieldName holds the wrapper, whose element holds the value.
type CapturedSharedField struct {
	base
	Owner     string
	FieldName string
	Lateinit  bool
	Name      string
	ref       *Field
}

// NewCapturedSharedField builds the access; closure is the closure instance.
func NewCapturedSharedField(in *types.Interner, t types.TypeID, src *types.SourceType, owner, fieldName string, closure Value, lateinit bool, name string) *CapturedSharedField {
	refType, _ := in.SharedRef(t)
	return &CapturedSharedField{
		base:      base{T: t, Src: src},
		Owner:     owner,
		FieldName: fieldName,
		Lateinit:  lateinit,
		Name:      name,
		ref:       NewField(refType, nil, owner, fieldName, false, closure, nil),
	}
}

func (v *CapturedSharedField) String() string { return fmt.Sprintf("captured %s.%s", v.Owner, v.FieldName) }

// Receiver produces its sub-values in order, each at its natural type. It
// sequences side effects such as dispatch-then-extension receivers.
type Receiver struct {
	base
	Values []Value
}

// NewReceiver composes sub-values into one receiver.
func NewReceiver(t types.TypeID, values ...Value) *Receiver {
	r := &Receiver{base: base{T: t}, Values: values}
	for _, v := range values {
		if v.CanHaveSideEffects() {
			r.sideEffects = true
		}
	}
	return r
}

func (v *Receiver) String() string { return fmt.Sprintf("receiver%v", v.Values) }

// OnStack marks a value already produced onto the stack.
type OnStack struct {
	base
}

// NewOnStack returns a marker for a value of type t already on the stack.
func NewOnStack(t types.TypeID, src *types.SourceType) *OnStack {
	return &OnStack{base: base{T: t, Src: src}}
}

func (v *OnStack) String() string { return "on-stack" }

// Expression defers production to the full expression generator.
type Expression struct {
	base
	Node any
}

// NewExpression wraps an expression node of natural type t.
func NewExpression(t types.TypeID, src *types.SourceType, node any) *Expression {
	return &Expression{base: base{T: t, Src: src, sideEffects: true}, Node: node}
}

func (v *Expression) String() string { return fmt.Sprintf("expr %v", v.Node) }

// noneValue is the empty receiver.
type noneValue struct{}

func (noneValue) Type() types.TypeID        { return types.NoTypeID }
func (noneValue) Source() *types.SourceType { return nil }
func (noneValue) CanHaveSideEffects() bool  { return false }
func (noneValue) isValue()                  {}
func (noneValue) String() string            { return "none" }

// None is the "no receiver" value. It produces nothing.
var None Value = noneValue{}
