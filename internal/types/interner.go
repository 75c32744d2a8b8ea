package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the primitive and runtime types every unit needs.
type Builtins struct {
	Invalid TypeID
	Void    TypeID
	Bool    TypeID
	Byte    TypeID
	Short   TypeID
	Char    TypeID
	Int     TypeID
	Long    TypeID
	Float   TypeID
	Double  TypeID
	Object  TypeID
	String  TypeID
	Number  TypeID
	Unit    TypeID
}

// wrapperNames maps primitive kinds to their boxed wrapper classes.
var wrapperNames = map[Kind]string{
	KindBool:   "java/lang/Boolean",
	KindByte:   "java/lang/Byte",
	KindShort:  "java/lang/Short",
	KindChar:   "java/lang/Character",
	KindInt:    "java/lang/Integer",
	KindLong:   "java/lang/Long",
	KindFloat:  "java/lang/Float",
	KindDouble: "java/lang/Double",
}

// refNames maps primitive kinds to the one-field wrapper used for captured mutable locals.
var refNames = map[Kind]string{
	KindBool:   RefPrefix + "BooleanRef",
	KindByte:   RefPrefix + "ByteRef",
	KindShort:  RefPrefix + "ShortRef",
	KindChar:   RefPrefix + "CharRef",
	KindInt:    RefPrefix + "IntRef",
	KindLong:   RefPrefix + "LongRef",
	KindFloat:  RefPrefix + "FloatRef",
	KindDouble: RefPrefix + "DoubleRef",
}

// RefElementField is the name of the single field of every shared-variable wrapper.
const RefElementField = "element"

// Interner provides stable TypeIDs by hashing structural descriptors.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	unboxed  map[string]TypeID
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:   make(map[typeKey]TypeID, 64),
		unboxed: make(map[string]TypeID, len(wrapperNames)),
	}
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Byte = in.Intern(Type{Kind: KindByte})
	in.builtins.Short = in.Intern(Type{Kind: KindShort})
	in.builtins.Char = in.Intern(Type{Kind: KindChar})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Long = in.Intern(Type{Kind: KindLong})
	in.builtins.Float = in.Intern(Type{Kind: KindFloat})
	in.builtins.Double = in.Intern(Type{Kind: KindDouble})
	in.builtins.Object = in.Intern(MakeObject(ObjectName))
	in.builtins.String = in.Intern(MakeObject(StringName))
	in.builtins.Number = in.Intern(MakeObject(NumberName))
	in.builtins.Unit = in.Intern(MakeObject(UnitName))
	for kind, name := range wrapperNames {
		in.unboxed[name] = in.Intern(Type{Kind: kind})
	}
	return in
}

// fixedBuiltins holds the builtin ids. NewInterner seeds builtins in a fixed
// order, so they are identical in every interner.
var fixedBuiltins = NewInterner().Builtins()

// FixedBuiltins returns the builtin ids shared by all interners.
func FixedBuiltins() Builtins {
	return fixedBuiltins
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// Object interns a class type by internal name.
func (in *Interner) Object(name string) TypeID {
	return in.Intern(MakeObject(name))
}

// ArrayOf interns an array of elem.
func (in *Interner) ArrayOf(elem TypeID) TypeID {
	return in.Intern(MakeArray(elem))
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// KindOf returns the kind of id, KindInvalid for unknown ids.
func (in *Interner) KindOf(id TypeID) Kind {
	tt, ok := in.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}

// Size returns the number of stack words a value of id occupies.
func (in *Interner) Size(id TypeID) int {
	switch in.KindOf(id) {
	case KindInvalid, KindVoid:
		return 0
	case KindLong, KindDouble:
		return 2
	default:
		return 1
	}
}

// IsPrimitive reports whether id is a primitive (non-void) type.
func (in *Interner) IsPrimitive(id TypeID) bool {
	return in.KindOf(id).IsPrimitive()
}

// IsReference reports whether id is an object or array type.
func (in *Interner) IsReference(id TypeID) bool {
	return in.KindOf(id).IsReference()
}

// Boxed returns the wrapper class of a primitive type, or id itself otherwise.
func (in *Interner) Boxed(id TypeID) TypeID {
	name, ok := wrapperNames[in.KindOf(id)]
	if !ok {
		return id
	}
	return in.Object(name)
}

// Unboxed returns the primitive type wrapped by a boxed wrapper class.
func (in *Interner) Unboxed(id TypeID) (TypeID, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindObject {
		return NoTypeID, false
	}
	prim, ok := in.unboxed[tt.Name]
	return prim, ok
}

// SharedRef returns the one-field wrapper class used for a captured mutable
// variable of type id, and the type of its element field.
func (in *Interner) SharedRef(id TypeID) (ref, element TypeID) {
	if name, ok := refNames[in.KindOf(id)]; ok {
		return in.Object(name), id
	}
	return in.Object(RefPrefix + "ObjectRef"), in.builtins.Object
}

type typeKey struct {
	Kind Kind
	Elem TypeID
	Name string
}
