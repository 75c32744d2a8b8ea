package layout

import "fmt"

// Target describes the linear-memory object model: reference width and the
// per-object header that holds the class id.
type Target struct {
	Name       string // e.g. "linear32"
	RefSize    int    // bytes
	RefAlign   int    // bytes
	HeaderSize int    // bytes before the first field
}

// Linear32 is the default 32-bit linear memory target.
func Linear32() Target {
	return Target{
		Name:       "linear32",
		RefSize:    4,
		RefAlign:   4,
		HeaderSize: 4,
	}
}

// Validate rejects sizes the engine cannot lay out.
func (t Target) Validate() error {
	if t.RefSize <= 0 || t.HeaderSize < 0 {
		return &LayoutError{Kind: LayoutErrBadTarget, Detail: fmt.Sprintf("ref_size=%d header_size=%d", t.RefSize, t.HeaderSize)}
	}
	if t.RefAlign < 0 || (t.RefAlign > 0 && t.RefAlign&(t.RefAlign-1) != 0) {
		return &LayoutError{Kind: LayoutErrBadTarget, Detail: fmt.Sprintf("ref_align=%d is not a power of two", t.RefAlign)}
	}
	return nil
}
