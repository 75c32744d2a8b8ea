package asm

import (
	"fmt"
	"strconv"
	"strings"

	"stackc/internal/types"
)

// Label is a branch target inside one function body.
type Label struct {
	ID int

	depth    int
	hasDepth bool
}

func (l *Label) String() string {
	if l == nil {
		return "L?"
	}
	return "L" + strconv.Itoa(l.ID)
}

// FieldRef names a field by owner class, name and type.
type FieldRef struct {
	Owner string
	Name  string
	Type  types.TypeID
}

// Method names a call target and its stack signature.
type Method struct {
	Owner  string
	Name   string
	Kind   InvokeKind
	Params []types.TypeID // value parameters, dispatch receiver excluded
	Return types.TypeID
}

// HasReceiver reports whether the call consumes a dispatch receiver word.
func (m *Method) HasReceiver() bool {
	return m.Kind != InvokeStatic
}

// Descriptor renders the method descriptor.
func (m *Method) Descriptor(in *types.Interner) string {
	return in.MethodDescriptor(m.Params, m.Return)
}

// ArgWords returns the number of stack words the call consumes.
func (m *Method) ArgWords(in *types.Interner) int {
	n := 0
	if m.HasReceiver() {
		n++
	}
	for _, p := range m.Params {
		n += in.Size(p)
	}
	return n
}

// Signature is the slot identity of a virtual method: name plus descriptor.
func (m *Method) Signature(in *types.Interner) string {
	return m.Name + m.Descriptor(in)
}

// Instr is a single emitted instruction.
type Instr struct {
	Op     Opcode
	Type   types.TypeID // operand type of typed ops; class for checkcast/new
	From   types.TypeID // source type of OpConvert
	Slot   int          // local slot, or vtable slot for OpInvokeSlot
	Int    int64
	Float  float64
	Str    string
	Field  *FieldRef
	Method *Method
	Label  *Label
}

// typePrefix returns the JVM-style mnemonic prefix for a stack type.
func typePrefix(in *types.Interner, id types.TypeID) string {
	switch in.KindOf(id) {
	case types.KindLong:
		return "l"
	case types.KindFloat:
		return "f"
	case types.KindDouble:
		return "d"
	case types.KindObject, types.KindArray:
		return "a"
	case types.KindVoid:
		return ""
	default:
		return "i"
	}
}

// arrayPrefix is typePrefix with the narrow element forms of array access.
func arrayPrefix(in *types.Interner, id types.TypeID) string {
	switch in.KindOf(id) {
	case types.KindBool, types.KindByte:
		return "b"
	case types.KindChar:
		return "c"
	case types.KindShort:
		return "s"
	default:
		return typePrefix(in, id)
	}
}

func convertSuffix(in *types.Interner, id types.TypeID) string {
	switch in.KindOf(id) {
	case types.KindByte:
		return "b"
	case types.KindChar:
		return "c"
	case types.KindShort:
		return "s"
	default:
		return typePrefix(in, id)
	}
}

// Mnemonic returns the instruction name without operands.
func (ins *Instr) Mnemonic(in *types.Interner) string {
	switch ins.Op {
	case OpLoad:
		return typePrefix(in, ins.Type) + "load"
	case OpStore:
		return typePrefix(in, ins.Type) + "store"
	case OpArrayLoad:
		return arrayPrefix(in, ins.Type) + "aload"
	case OpArrayStore:
		return arrayPrefix(in, ins.Type) + "astore"
	case OpConvert:
		return typePrefix(in, ins.From) + "2" + convertSuffix(in, ins.Type)
	case OpArith:
		return typePrefix(in, ins.Type) + ins.Str
	case OpReturn:
		return typePrefix(in, ins.Type) + "return"
	case OpInvoke:
		return ins.Method.Kind.String()
	default:
		return ins.Op.String()
	}
}

// Format renders the instruction with its operands, e.g. "iload 2".
func (ins *Instr) Format(in *types.Interner) string {
	name := ins.Mnemonic(in)
	switch ins.Op {
	case OpIConst, OpBIPush, OpSIPush, OpLConst:
		return name + " " + strconv.FormatInt(ins.Int, 10)
	case OpFConst, OpDConst:
		return name + " " + strconv.FormatFloat(ins.Float, 'g', -1, 64)
	case OpLdc, OpLdc2:
		return name + " " + ins.Str
	case OpLoad, OpStore:
		return name + " " + strconv.Itoa(ins.Slot)
	case OpIInc:
		return fmt.Sprintf("%s %d %d", name, ins.Slot, ins.Int)
	case OpCheckCast, OpNew:
		return name + " " + className(in, ins.Type)
	case OpGetStatic, OpPutStatic, OpGetField, OpPutField:
		f := ins.Field
		return fmt.Sprintf("%s %s.%s:%s", name, f.Owner, f.Name, in.Descriptor(f.Type))
	case OpInvoke:
		m := ins.Method
		return fmt.Sprintf("%s %s.%s%s", name, m.Owner, m.Name, m.Descriptor(in))
	case OpInvokeSlot:
		m := ins.Method
		return fmt.Sprintf("%s %s#%d %s%s", name, m.Owner, ins.Slot, m.Name, m.Descriptor(in))
	case OpIfNull, OpIfNonNull, OpIfEq, OpGoto:
		return name + " " + ins.Label.String()
	case OpLabel:
		return ins.Label.String() + ":"
	default:
		return name
	}
}

// className renders the operand of checkcast/new: internal name for classes,
// descriptor for arrays.
func className(in *types.Interner, id types.TypeID) string {
	tt, ok := in.Lookup(id)
	if ok && tt.Kind == types.KindObject {
		return tt.Name
	}
	return in.Descriptor(id)
}

// Listing renders code one instruction per line.
func Listing(in *types.Interner, code []Instr) []string {
	out := make([]string, 0, len(code))
	for i := range code {
		out = append(out, code[i].Format(in))
	}
	return out
}

// FormatAll joins a listing with "; " for compact assertions and traces.
func FormatAll(in *types.Interner, code []Instr) string {
	return strings.Join(Listing(in, code), "; ")
}
