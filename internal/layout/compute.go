package layout

import (
	"stackc/internal/classmeta"
	"stackc/internal/types"
)

func (e *LayoutEngine) computeClass(c *classmeta.ClassMetadata) (ClassLayout, error) {
	if c.Super == nil {
		return ClassLayout{Size: roundUp(e.Target.HeaderSize, e.refAlign()), Align: e.refAlign()}, nil
	}
	super, err := e.ClassLayout(c.Super)
	if err != nil {
		return ClassLayout{}, err
	}
	n := len(c.Fields)
	l := ClassLayout{
		Align:        super.Align,
		FieldOffsets: make([]int, n),
		FieldSizes:   make([]int, n),
	}
	inherited := copy(l.FieldOffsets, super.FieldOffsets)
	copy(l.FieldSizes, super.FieldSizes)

	offset := super.Size
	for i := inherited; i < n; i++ {
		f := c.Fields[i]
		size, align := e.scalar(f.Type)
		if size == 0 {
			return ClassLayout{}, &LayoutError{Kind: LayoutErrUnsizedField, Class: c.Name, Field: f.Name, Detail: e.Types.Descriptor(f.Type)}
		}
		offset = roundUp(offset, align)
		l.FieldOffsets[i] = offset
		l.FieldSizes[i] = size
		offset += size
		l.Align = maxInt(l.Align, align)
	}
	l.Size = roundUp(offset, l.Align)
	return l, nil
}

// scalar returns the in-memory size and alignment of a field type.
func (e *LayoutEngine) scalar(t types.TypeID) (size, align int) {
	switch e.Types.KindOf(t) {
	case types.KindBool, types.KindByte:
		return 1, 1
	case types.KindShort, types.KindChar:
		return 2, 2
	case types.KindInt, types.KindFloat:
		return 4, 4
	case types.KindLong, types.KindDouble:
		return 8, 8
	case types.KindObject, types.KindArray:
		return e.Target.RefSize, e.refAlign()
	default:
		return 0, 1
	}
}

func (e *LayoutEngine) refAlign() int {
	if e.Target.RefAlign > 0 {
		return e.Target.RefAlign
	}
	return e.Target.RefSize
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
