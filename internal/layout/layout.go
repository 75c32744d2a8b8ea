package layout

import (
	"fortio.org/safecast"

	"stackc/internal/classmeta"
	"stackc/internal/types"
)

// ClassLayout places the instance fields of one class in linear memory.
// FieldOffsets and FieldSizes are parallel to ClassMetadata.Fields; an
// inherited field keeps the offset it has in its superclass.
type ClassLayout struct {
	Size         int
	Align        int
	FieldOffsets []int
	FieldSizes   []int
}

type computed struct {
	layout ClassLayout
	err    error
}

// LayoutEngine lays out the classes of one module. Results, failures
// included, are memoized by class ID.
type LayoutEngine struct {
	Target Target
	Types  *types.Interner

	done map[int]computed
}

func New(target Target, in *types.Interner) *LayoutEngine {
	return &LayoutEngine{Target: target, Types: in, done: make(map[int]computed)}
}

// ClassLayout lays out c, its superclasses first.
func (e *LayoutEngine) ClassLayout(c *classmeta.ClassMetadata) (ClassLayout, error) {
	if err := e.Target.Validate(); err != nil {
		return ClassLayout{}, err
	}
	if r, ok := e.done[c.ID]; ok {
		return r.layout, r.err
	}
	if e.done == nil {
		e.done = make(map[int]computed)
	}
	l, err := e.computeClass(c)
	e.done[c.ID] = computed{layout: l, err: err}
	return l, err
}

// FieldOffset is the byte offset of c's field name.
func (e *LayoutEngine) FieldOffset(c *classmeta.ClassMetadata, name string) (int, error) {
	idx, ok := c.FieldIndex(name)
	if !ok {
		return 0, &LayoutError{Kind: LayoutErrNoSuchField, Class: c.Name, Field: name}
	}
	l, err := e.ClassLayout(c)
	if err != nil {
		return 0, err
	}
	return l.FieldOffsets[idx], nil
}

// Offsets32 narrows c's field offsets to the u32 slots of a metadata record.
func (e *LayoutEngine) Offsets32(c *classmeta.ClassMetadata) ([]uint32, error) {
	l, err := e.ClassLayout(c)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, 0, len(l.FieldOffsets))
	for _, off := range l.FieldOffsets {
		v, err := safecast.Conv[uint32](off)
		if err != nil {
			return nil, &LayoutError{Kind: LayoutErrOffsetConversion, Class: c.Name, Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}
