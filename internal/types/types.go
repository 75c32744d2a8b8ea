package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates the representation kinds of the stack machine.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindByte
	KindShort
	KindChar
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindBool:
		return "boolean"
	case KindByte:
		return "byte"
	case KindShort:
		return "short"
	case KindChar:
		return "char"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsPrimitive reports kinds held directly in a slot or stack word.
func (k Kind) IsPrimitive() bool {
	return k >= KindBool && k <= KindDouble
}

// IsReference reports kinds held as object references.
func (k Kind) IsReference() bool {
	return k == KindObject || k == KindArray
}

// IsIntLike reports kinds that occupy an int word on the stack.
func (k Kind) IsIntLike() bool {
	switch k {
	case KindBool, KindByte, KindShort, KindChar, KindInt:
		return true
	}
	return false
}

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind Kind
	Elem TypeID // for arrays
	Name string // internal class name for objects, e.g. "java/lang/String"
}

// Well-known class names of the target runtime.
const (
	ObjectName     = "java/lang/Object"
	StringName     = "java/lang/String"
	NumberName     = "java/lang/Number"
	UnitName       = "stackc/rt/Unit"
	IntrinsicsName = "stackc/rt/Intrinsics"
	RefPrefix      = "stackc/rt/Ref$"
)

// MakeObject builds a class type descriptor.
func MakeObject(name string) Type {
	return Type{Kind: KindObject, Name: name}
}

// MakeArray builds an array type descriptor.
func MakeArray(elem TypeID) Type {
	return Type{Kind: KindArray, Elem: elem}
}
