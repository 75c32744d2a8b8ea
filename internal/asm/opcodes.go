package asm

import "fmt"

// Opcode enumerates stack-machine instructions.
type Opcode uint8

const (
	OpNop Opcode = iota
	OpAConstNull
	OpIConst  // small int literal in [-1, 5]
	OpBIPush  // int literal in byte range
	OpSIPush  // int literal in short range
	OpLConst  // long 0 or 1
	OpFConst  // float 0, 1 or 2
	OpDConst  // double 0 or 1
	OpLdc     // one-word pooled constant
	OpLdc2    // two-word pooled constant
	OpLoad    // typed slot load
	OpStore   // typed slot store
	OpIInc    // in-place int slot increment
	OpArrayLoad
	OpArrayStore
	OpPop
	OpPop2
	OpDup
	OpDupX1
	OpDupX2
	OpDup2
	OpDup2X1
	OpDup2X2
	OpSwap
	OpConvert // primitive conversion From -> Type
	OpArith   // typed binary arithmetic, Str holds the operator
	OpCheckCast
	OpNew
	OpGetStatic
	OpPutStatic
	OpGetField
	OpPutField
	OpInvoke
	OpInvokeSlot // indirect call through the receiver's vtable slot
	OpIfNull
	OpIfNonNull
	OpIfEq
	OpGoto
	OpLabel
	OpAThrow
	OpReturn
)

var opNames = [...]string{
	OpNop:        "nop",
	OpAConstNull: "aconst_null",
	OpIConst:     "iconst",
	OpBIPush:     "bipush",
	OpSIPush:     "sipush",
	OpLConst:     "lconst",
	OpFConst:     "fconst",
	OpDConst:     "dconst",
	OpLdc:        "ldc",
	OpLdc2:       "ldc2_w",
	OpLoad:       "load",
	OpStore:      "store",
	OpIInc:       "iinc",
	OpArrayLoad:  "aload",
	OpArrayStore: "astore",
	OpPop:        "pop",
	OpPop2:       "pop2",
	OpDup:        "dup",
	OpDupX1:      "dup_x1",
	OpDupX2:      "dup_x2",
	OpDup2:       "dup2",
	OpDup2X1:     "dup2_x1",
	OpDup2X2:     "dup2_x2",
	OpSwap:       "swap",
	OpConvert:    "convert",
	OpArith:      "arith",
	OpCheckCast:  "checkcast",
	OpNew:        "new",
	OpGetStatic:  "getstatic",
	OpPutStatic:  "putstatic",
	OpGetField:   "getfield",
	OpPutField:   "putfield",
	OpInvoke:     "invoke",
	OpInvokeSlot: "invokeslot",
	OpIfNull:     "ifnull",
	OpIfNonNull:  "ifnonnull",
	OpIfEq:       "ifeq",
	OpGoto:       "goto",
	OpLabel:      "label",
	OpAThrow:     "athrow",
	OpReturn:     "return",
}

func (op Opcode) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", op)
}

// IsTerminal reports opcodes after which the next instruction is unreachable.
func (op Opcode) IsTerminal() bool {
	switch op {
	case OpGoto, OpAThrow, OpReturn:
		return true
	}
	return false
}

// InvokeKind selects the call instruction form.
type InvokeKind uint8

const (
	InvokeStatic InvokeKind = iota
	InvokeVirtual
	InvokeSpecial
	InvokeInterface
)

func (k InvokeKind) String() string {
	switch k {
	case InvokeStatic:
		return "invokestatic"
	case InvokeVirtual:
		return "invokevirtual"
	case InvokeSpecial:
		return "invokespecial"
	case InvokeInterface:
		return "invokeinterface"
	default:
		return fmt.Sprintf("InvokeKind(%d)", k)
	}
}
