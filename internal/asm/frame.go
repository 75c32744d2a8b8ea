package asm

import (
	"fmt"

	"stackc/internal/types"
)

// LocalSlot is one entry of a function's locals table.
type LocalSlot struct {
	Slot int
	Name string
	Type types.TypeID
	Temp bool
}

// FrameMap allocates local slots. Temporaries follow a strict stack
// discipline: take a Mark, enter temps, then DropTo the mark.
type FrameMap struct {
	in      *types.Interner
	live    []LocalSlot
	table   []LocalSlot
	next    int
	maxNext int
}

// NewFrameMap returns an empty frame.
func NewFrameMap(in *types.Interner) *FrameMap {
	return &FrameMap{in: in}
}

func (f *FrameMap) enter(name string, t types.TypeID, temp bool) int {
	slot := f.next
	size := f.in.Size(t)
	if size == 0 {
		panic(fmt.Errorf("frame: cannot allocate a slot of type %s", f.in.Descriptor(t)))
	}
	ls := LocalSlot{Slot: slot, Name: name, Type: t, Temp: temp}
	f.live = append(f.live, ls)
	f.table = append(f.table, ls)
	f.next += size
	if f.next > f.maxNext {
		f.maxNext = f.next
	}
	return slot
}

// Enter allocates a named slot.
func (f *FrameMap) Enter(name string, t types.TypeID) int {
	return f.enter(name, t, false)
}

// EnterTemp allocates an anonymous temporary slot.
func (f *FrameMap) EnterTemp(t types.TypeID) int {
	return f.enter("", t, true)
}

// Mark is a restore point of a FrameMap.
type Mark struct {
	frame *FrameMap
	next  int
	live  int
}

// Mark records the current allocation point.
func (f *FrameMap) Mark() Mark {
	return Mark{frame: f, next: f.next, live: len(f.live)}
}

// DropTo releases every slot entered after the mark.
func (m Mark) DropTo() {
	f := m.frame
	if f == nil {
		return
	}
	if len(f.live) < m.live {
		panic(fmt.Errorf("frame: drop to mark %d below live count %d", m.live, len(f.live)))
	}
	f.live = f.live[:m.live]
	f.next = m.next
}

// Next returns the next free slot index.
func (f *FrameMap) Next() int {
	return f.next
}

// MaxLocals returns the number of slot words the function needs.
func (f *FrameMap) MaxLocals() int {
	return f.maxNext
}

// Table returns every slot ever allocated, in allocation order.
func (f *FrameMap) Table() []LocalSlot {
	return f.table
}
