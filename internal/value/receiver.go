package value

import (
	"fmt"

	"stackc/internal/fault"
	"stackc/internal/types"
)

// UnknownSize is the receiver size of shapes that cannot be sized statically.
const UnknownSize = -1

func (v *Field) ReceiverValue() Value { return v.Receiver }

func (v *Field) IsNonStaticAccess(bool) bool { return !v.Static }

func (v *Property) ReceiverValue() Value { return v.Receiver }

// IsNonStaticAccess depends on direction: the getter or setter decides when
// present, the backing field otherwise. Const reads never need a receiver.
func (v *Property) IsNonStaticAccess(isRead bool) bool {
	if isRead {
		switch {
		case v.IsConst:
			return false
		case v.Getter != nil:
			return v.Getter.NeedsReceiver()
		}
		return !v.FieldStatic
	}
	if v.Setter != nil {
		return v.Setter.NeedsReceiver()
	}
	return !v.FieldStatic
}

func (v *ArrayElement) ReceiverValue() Value { return v.receiver }

func (v *ArrayElement) IsNonStaticAccess(bool) bool { return true }

func (v *CapturedSharedField) ReceiverValue() Value { return v.ref }

func (v *CapturedSharedField) IsNonStaticAccess(bool) bool { return true }

func (v *CollectionElement) ReceiverValue() Value { return v.Receiver }

func (v *CollectionElement) IsNonStaticAccess(bool) bool { return true }

// PutReceiver emits v's receiver when the access in the given direction
// needs it. Otherwise a receiver with side effects is still evaluated and
// discarded.
func PutReceiver(g *Gen, v WithReceiver, isRead bool) {
	recv := v.ReceiverValue()
	if recv == nil || recv == None {
		return
	}
	if v.IsNonStaticAccess(isRead) {
		if ce, ok := v.(*CollectionElement); ok {
			ce.Receiver.put(g, !isRead)
			return
		}
		PutNatural(g, recv)
		return
	}
	if recv.CanHaveSideEffects() {
		Put(g, recv, g.Types.Builtins().Void, nil)
	}
}

// ReceiverSize returns the stack words v's receiver occupies for a write.
func ReceiverSize(g *Gen, v Value) int {
	switch v := v.(type) {
	case *CollectionElement:
		return v.Receiver.words(g)
	case *DelegatedForComplexReceiver:
		return ReceiverSize(g, v.Original)
	case WithReceiver:
		if !v.IsNonStaticAccess(false) {
			return 0
		}
		return valueWords(g, v.ReceiverValue())
	}
	return 0
}

func valueWords(g *Gen, v Value) int {
	switch v := v.(type) {
	case nil, noneValue:
		return 0
	case *Receiver:
		n := 0
		for _, sv := range v.Values {
			n += valueWords(g, sv)
		}
		return n
	case *CollectionElementReceiver:
		return v.words(g)
	}
	return g.size(v.Type())
}

// Dup duplicates the just-produced value of v. With withReceiver the copy
// is placed under the receiver words so a following store still finds them.
func Dup(g *Gen, v Value, withReceiver bool) {
	under := 0
	if withReceiver {
		under = ReceiverSize(g, v)
		if under == UnknownSize {
			fault.Raise(fault.UnsupportedDup, v, "receiver size is not statically known")
		}
	}
	top := g.size(v.Type())
	if top > 2 || under > 2 {
		fault.Raise(fault.UnsupportedDup, v, "no dup for %d words over %d words", top, under)
	}
	g.Asm.Dup(top, under)
}

// dupReceiver copies the receiver words of v already on the stack.
func dupReceiver(g *Gen, v WithReceiver) {
	if ce, ok := v.(*CollectionElement); ok {
		ce.Receiver.dup(g)
		return
	}
	n := valueWords(g, v.ReceiverValue())
	if n > 2 {
		fault.Raise(fault.UnsupportedDup, v, "receiver of %d words", n)
	}
	g.Asm.Dup(n, 0)
}

// ComplexReceiver evaluates a receiver once and duplicates it for each
// following operation that needs it. Flags list the operations in stack
// order, deepest first: true for a read, false for a write.
type ComplexReceiver struct {
	base
	Original WithReceiver
	Flags    []bool
}

// ComplexReceiverOf wraps v's receiver for the given operations.
func ComplexReceiverOf(v WithReceiver, flags ...bool) *ComplexReceiver {
	recv := v.ReceiverValue()
	t := types.NoTypeID
	if recv != nil {
		t = recv.Type()
	}
	return &ComplexReceiver{base: base{T: t, sideEffects: recv != nil && recv.CanHaveSideEffects()}, Original: v, Flags: flags}
}

func (v *ComplexReceiver) String() string { return fmt.Sprintf("complex %v%v", v.Original, v.Flags) }

func (v *ComplexReceiver) put(g *Gen) {
	recv := v.Original.ReceiverValue()
	if recv == nil || recv == None {
		return
	}
	produced := false
	for _, isRead := range v.Flags {
		if !v.Original.IsNonStaticAccess(isRead) {
			continue
		}
		if !produced {
			if ce, ok := v.Original.(*CollectionElement); ok {
				ce.Receiver.put(g, false)
			} else {
				PutNatural(g, recv)
			}
			produced = true
			continue
		}
		dupReceiver(g, v.Original)
	}
	if !produced && recv.CanHaveSideEffects() {
		Put(g, recv, g.Types.Builtins().Void, nil)
	}
}

// DelegatedForComplexReceiver reads and writes Original with its receiver
// produced by a ComplexReceiver.
type DelegatedForComplexReceiver struct {
	base
	Original WithReceiver
	Complex  *ComplexReceiver
}

// NewDelegatedForComplexReceiver pairs v with the complex receiver cr.
func NewDelegatedForComplexReceiver(v WithReceiver, cr *ComplexReceiver) *DelegatedForComplexReceiver {
	return &DelegatedForComplexReceiver{
		base:     base{T: v.Type(), Src: v.Source(), sideEffects: v.CanHaveSideEffects()},
		Original: v,
		Complex:  cr,
	}
}

func (v *DelegatedForComplexReceiver) String() string { return fmt.Sprintf("via %v", v.Complex) }

func (v *DelegatedForComplexReceiver) ReceiverValue() Value { return v.Complex }

// IsNonStaticAccess is always true: the complex receiver itself decides
// which words to produce.
func (v *DelegatedForComplexReceiver) IsNonStaticAccess(bool) bool { return true }

// WriteReadReceiver prepares v for a read-modify-write. Local delegated
// properties and properties with an inline getter cannot be used this way.
func WriteReadReceiver(v Value) *DelegatedForComplexReceiver {
	switch x := v.(type) {
	case *Delegate:
		fault.Raise(fault.UnsupportedComplexReceiver, v, "not supported for local delegated properties or inline properties")
	case *Property:
		if (x.Getter != nil && x.Getter.Inline) || (x.Setter != nil && x.Setter.Inline) {
			fault.Raise(fault.UnsupportedComplexReceiver, v, "not supported for local delegated properties or inline properties")
		}
	}
	wr, ok := v.(WithReceiver)
	if !ok {
		return nil
	}
	return NewDelegatedForComplexReceiver(wr, ComplexReceiverOf(wr, false, true))
}

// Update selects what a read-modify-write leaves on the stack.
type Update int

const (
	// UpdateDiscard leaves nothing (compound assignment statements).
	UpdateDiscard Update = iota
	// UpdatePrefix leaves the new value.
	UpdatePrefix
	// UpdatePostfix leaves the old value.
	UpdatePostfix
)

// Modify emits v = op(v). The receiver of v is evaluated exactly once; op
// transforms the value of v's type on top of the stack in place.
func Modify(g *Gen, v Value, mode Update, op func(g *Gen)) {
	target := v
	withReceiver := false
	if d := WriteReadReceiver(v); d != nil {
		target, withReceiver = d, true
	}
	Put(g, target, v.Type(), v.Source())
	if mode == UpdatePostfix {
		Dup(g, target, withReceiver)
	}
	op(g)
	if mode == UpdatePrefix {
		Dup(g, target, withReceiver)
	}
	StoreSelector(g, target, v.Type(), v.Source())
}

// CanIncrementInPlace reports whether IncrementLocal applies.
func CanIncrementInPlace(g *Gen, v Value, delta int) bool {
	l, ok := v.(*Local)
	return ok && g.Types.KindOf(l.T) == types.KindInt && delta >= -32768 && delta <= 32767
}

// IncrementLocal adds delta to an int local without any receiver handling:
// iinc then load for prefix, load then iinc for postfix.
func IncrementLocal(g *Gen, v *Local, delta int, mode Update) {
	if mode == UpdatePostfix {
		g.Asm.Load(v.Slot, v.T)
	}
	g.Asm.IInc(v.Slot, delta)
	if mode == UpdatePrefix {
		g.Asm.Load(v.Slot, v.T)
	}
}
