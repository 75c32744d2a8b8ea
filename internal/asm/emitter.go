package asm

import (
	"math"
	"strconv"

	"stackc/internal/fault"
	"stackc/internal/types"
)

// Emitter appends instructions to one function body while tracking the
// static operand-stack depth in words.
type Emitter struct {
	Types *types.Interner

	code      []Instr
	depth     int
	maxDepth  int
	reachable bool
	labels    int
}

// NewEmitter returns an empty emitter over the given interner.
func NewEmitter(in *types.Interner) *Emitter {
	return &Emitter{Types: in, reachable: true}
}

// Code returns the emitted instructions.
func (e *Emitter) Code() []Instr {
	return e.code
}

// Depth returns the current stack depth in words.
func (e *Emitter) Depth() int {
	return e.depth
}

// MaxDepth returns the maximum stack depth reached so far.
func (e *Emitter) MaxDepth() int {
	return e.maxDepth
}

// Reachable reports whether the next instruction can be reached by fallthrough.
func (e *Emitter) Reachable() bool {
	return e.reachable
}

// Count returns how many emitted instructions satisfy pred.
func (e *Emitter) Count(pred func(*Instr) bool) int {
	n := 0
	for i := range e.code {
		if pred(&e.code[i]) {
			n++
		}
	}
	return n
}

func (e *Emitter) emit(ins Instr, pop, push int) {
	if e.depth < pop {
		fault.Raise(fault.StackUnderflow, ins.Format(e.Types), "needs %d words, stack holds %d", pop, e.depth)
	}
	e.depth += push - pop
	if e.depth > e.maxDepth {
		e.maxDepth = e.depth
	}
	e.code = append(e.code, ins)
	e.reachable = !ins.Op.IsTerminal()
}

func (e *Emitter) size(t types.TypeID) int {
	return e.Types.Size(t)
}

// NewLabel allocates a label; place it with Mark.
func (e *Emitter) NewLabel() *Label {
	e.labels++
	return &Label{ID: e.labels}
}

// Mark places l at the current position. After an unconditional jump the
// depth is restored from the first branch that targeted l.
func (e *Emitter) Mark(l *Label) {
	if !e.reachable && l.hasDepth {
		e.depth = l.depth
	}
	if !l.hasDepth {
		l.depth, l.hasDepth = e.depth, true
	}
	e.code = append(e.code, Instr{Op: OpLabel, Label: l})
	e.reachable = true
}

func (e *Emitter) jump(op Opcode, l *Label, pop int) {
	e.emit(Instr{Op: op, Label: l}, pop, 0)
	if !l.hasDepth {
		l.depth, l.hasDepth = e.depth, true
	}
}

// Load pushes local slot of type t.
func (e *Emitter) Load(slot int, t types.TypeID) {
	e.emit(Instr{Op: OpLoad, Slot: slot, Type: t}, 0, e.size(t))
}

// Store pops the top value into local slot of type t.
func (e *Emitter) Store(slot int, t types.TypeID) {
	e.emit(Instr{Op: OpStore, Slot: slot, Type: t}, e.size(t), 0)
}

// IInc increments an int slot in place.
func (e *Emitter) IInc(slot int, delta int) {
	e.emit(Instr{Op: OpIInc, Slot: slot, Int: int64(delta)}, 0, 0)
}

// IConst pushes an int using the narrowest push form.
func (e *Emitter) IConst(v int32) {
	b := e.Types.Builtins()
	switch {
	case v >= -1 && v <= 5:
		e.emit(Instr{Op: OpIConst, Int: int64(v), Type: b.Int}, 0, 1)
	case v >= math.MinInt8 && v <= math.MaxInt8:
		e.emit(Instr{Op: OpBIPush, Int: int64(v), Type: b.Int}, 0, 1)
	case v >= math.MinInt16 && v <= math.MaxInt16:
		e.emit(Instr{Op: OpSIPush, Int: int64(v), Type: b.Int}, 0, 1)
	default:
		e.emit(Instr{Op: OpLdc, Str: strconv.FormatInt(int64(v), 10), Type: b.Int}, 0, 1)
	}
}

// LConst pushes a long.
func (e *Emitter) LConst(v int64) {
	b := e.Types.Builtins()
	if v == 0 || v == 1 {
		e.emit(Instr{Op: OpLConst, Int: v, Type: b.Long}, 0, 2)
		return
	}
	e.emit(Instr{Op: OpLdc2, Str: strconv.FormatInt(v, 10) + "L", Type: b.Long}, 0, 2)
}

// FConst pushes a float.
func (e *Emitter) FConst(v float32) {
	b := e.Types.Builtins()
	if (v == 0 && !math.Signbit(float64(v))) || v == 1 || v == 2 {
		e.emit(Instr{Op: OpFConst, Float: float64(v), Type: b.Float}, 0, 1)
		return
	}
	e.emit(Instr{Op: OpLdc, Str: strconv.FormatFloat(float64(v), 'g', -1, 32) + "f", Type: b.Float}, 0, 1)
}

// DConst pushes a double.
func (e *Emitter) DConst(v float64) {
	b := e.Types.Builtins()
	if (v == 0 && !math.Signbit(v)) || v == 1 {
		e.emit(Instr{Op: OpDConst, Float: v, Type: b.Double}, 0, 2)
		return
	}
	e.emit(Instr{Op: OpLdc2, Str: strconv.FormatFloat(v, 'g', -1, 64), Type: b.Double}, 0, 2)
}

// AConstNull pushes null.
func (e *Emitter) AConstNull() {
	e.emit(Instr{Op: OpAConstNull, Type: e.Types.Builtins().Object}, 0, 1)
}

// LdcString pushes a pooled string. index is its position in the literal pool.
func (e *Emitter) LdcString(s string, index int) {
	e.emit(Instr{Op: OpLdc, Str: strconv.Quote(s), Int: int64(index), Type: e.Types.Builtins().String}, 0, 1)
}

// ArrayLoad pops array and index, pushes an element of type elem.
func (e *Emitter) ArrayLoad(elem types.TypeID) {
	e.emit(Instr{Op: OpArrayLoad, Type: elem}, 2, e.size(elem))
}

// ArrayStore pops array, index and value.
func (e *Emitter) ArrayStore(elem types.TypeID) {
	e.emit(Instr{Op: OpArrayStore, Type: elem}, 2+e.size(elem), 0)
}

// Pop discards a value of type t.
func (e *Emitter) Pop(t types.TypeID) {
	switch e.size(t) {
	case 0:
	case 1:
		e.emit(Instr{Op: OpPop}, 1, 0)
	default:
		e.emit(Instr{Op: OpPop2}, 2, 0)
	}
}

// Dup duplicates a top value of size top, inserting the copy below under
// more words. This covers the six dup forms; other shapes are unsupported.
func (e *Emitter) Dup(top, under int) {
	var op Opcode
	switch {
	case top == 0:
		return
	case top == 1 && under == 0:
		op = OpDup
	case top == 2 && under == 0:
		op = OpDup2
	case top == 1 && under == 1:
		op = OpDupX1
	case top == 2 && under == 1:
		op = OpDup2X1
	case top == 1 && under == 2:
		op = OpDupX2
	case top == 2 && under == 2:
		op = OpDup2X2
	default:
		fault.Raise(fault.UnsupportedDup, nil, "no dup for %d words over %d words", top, under)
	}
	e.emit(Instr{Op: op}, top+under, 2*top+under)
}

// Swap exchanges two one-word values.
func (e *Emitter) Swap() {
	e.emit(Instr{Op: OpSwap}, 2, 2)
}

// Convert emits the primitive conversion from -> to, going through int for
// narrow targets.
func (e *Emitter) Convert(from, to types.TypeID) {
	in := e.Types
	b := in.Builtins()
	fk, tk := normalizeKind(in.KindOf(from)), in.KindOf(to)
	if from == to || (fk == types.KindInt && (tk == types.KindInt || tk == types.KindBool)) {
		return
	}
	conv := func(f, t types.TypeID) {
		e.emit(Instr{Op: OpConvert, From: f, Type: t}, in.Size(f), in.Size(t))
	}
	switch fk {
	case types.KindLong, types.KindFloat, types.KindDouble:
		switch tk {
		case types.KindLong, types.KindFloat, types.KindDouble:
			if fk != tk {
				conv(from, to)
			}
			return
		}
		conv(from, b.Int)
		e.Convert(b.Int, to)
	default:
		switch tk {
		case types.KindByte, types.KindChar, types.KindShort, types.KindLong, types.KindFloat, types.KindDouble:
			conv(b.Int, to)
		}
	}
}

func normalizeKind(k types.Kind) types.Kind {
	if k.IsIntLike() {
		return types.KindInt
	}
	return k
}

// Arith emits a binary operator on t. Shifts take their count as an int
// above the value being shifted.
func (e *Emitter) Arith(op string, t types.TypeID) {
	sz := e.size(t)
	pop := 2 * sz
	if IsShift(op) {
		pop = sz + 1
	}
	e.emit(Instr{Op: OpArith, Str: op, Type: t}, pop, sz)
}

// IsShift reports whether op is shl, shr or ushr.
func IsShift(op string) bool {
	return op == "shl" || op == "shr" || op == "ushr"
}

// CheckCast narrows the reference on top of the stack to t.
func (e *Emitter) CheckCast(t types.TypeID) {
	e.emit(Instr{Op: OpCheckCast, Type: t}, 1, 1)
}

// New pushes an uninitialised instance of class t.
func (e *Emitter) New(t types.TypeID) {
	e.emit(Instr{Op: OpNew, Type: t}, 0, 1)
}

// GetStatic pushes a static field.
func (e *Emitter) GetStatic(f FieldRef) {
	e.emit(Instr{Op: OpGetStatic, Field: &f, Type: f.Type}, 0, e.size(f.Type))
}

// PutStatic pops into a static field.
func (e *Emitter) PutStatic(f FieldRef) {
	e.emit(Instr{Op: OpPutStatic, Field: &f, Type: f.Type}, e.size(f.Type), 0)
}

// GetField pops an instance and pushes its field.
func (e *Emitter) GetField(f FieldRef) {
	e.emit(Instr{Op: OpGetField, Field: &f, Type: f.Type}, 1, e.size(f.Type))
}

// PutField pops an instance and a value.
func (e *Emitter) PutField(f FieldRef) {
	e.emit(Instr{Op: OpPutField, Field: &f, Type: f.Type}, 1+e.size(f.Type), 0)
}

// Invoke emits a direct call.
func (e *Emitter) Invoke(m Method) {
	e.emit(Instr{Op: OpInvoke, Method: &m, Type: m.Return}, m.ArgWords(e.Types), e.size(m.Return))
}

// InvokeSlot emits an indirect call through vtable slot of the receiver's class.
func (e *Emitter) InvokeSlot(m Method, slot int) {
	e.emit(Instr{Op: OpInvokeSlot, Method: &m, Slot: slot, Type: m.Return}, m.ArgWords(e.Types), e.size(m.Return))
}

// IfNull pops a reference and jumps when it is null.
func (e *Emitter) IfNull(l *Label) { e.jump(OpIfNull, l, 1) }

// IfNonNull pops a reference and jumps when it is not null.
func (e *Emitter) IfNonNull(l *Label) { e.jump(OpIfNonNull, l, 1) }

// IfEq pops an int and jumps when it is zero.
func (e *Emitter) IfEq(l *Label) { e.jump(OpIfEq, l, 1) }

// Goto jumps unconditionally.
func (e *Emitter) Goto(l *Label) { e.jump(OpGoto, l, 0) }

// AThrow pops a throwable and raises it. The static depth is kept so that
// dead code following a call that never returns still balances.
func (e *Emitter) AThrow() {
	e.emit(Instr{Op: OpAThrow}, 1, 0)
}

// Return pops a value of t (nothing for void) and leaves the function.
func (e *Emitter) Return(t types.TypeID) {
	e.emit(Instr{Op: OpReturn, Type: t}, e.size(t), 0)
	e.depth = 0
}
