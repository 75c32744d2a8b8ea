package classmeta

import (
	"encoding/binary"
	"fmt"

	"fortio.org/safecast"
)

// RecordWords returns the number of i32 words in c's metadata record.
func (c *ClassMetadata) RecordWords() int {
	return 3 + 2*len(c.VirtualMethods) + len(c.Interfaces)
}

// Record serialises c as little-endian i32 words:
//
//	[super id][vtable length][vtable: function ids][signature ids]
//	[interface count][interface ids]
//
// The root's super id is -1. sigID maps a slot signature to its module-wide
// signature index.
func (c *ClassMetadata) Record(sigID func(string) int) ([]byte, error) {
	words := make([]int, 0, c.RecordWords())
	superID := -1
	if c.Super != nil {
		superID = c.Super.ID
	}
	words = append(words, superID, len(c.VirtualMethods))
	for _, vm := range c.VirtualMethods {
		words = append(words, vm.Function.FuncID)
	}
	for _, vm := range c.VirtualMethods {
		id := 0
		if sigID != nil {
			id = sigID(vm.Signature)
		}
		words = append(words, id)
	}
	words = append(words, len(c.Interfaces))
	for _, im := range c.Interfaces {
		words = append(words, im.ID)
	}

	buf := make([]byte, 0, 4*len(words))
	for _, w := range words {
		v, err := safecast.Conv[int32](w)
		if err != nil {
			return nil, &Error{Kind: ErrRecordOverflow, Class: c.Name, Err: err}
		}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v))
	}
	return buf, nil
}

// Segment is the class-metadata part of a module's data segment.
type Segment struct {
	Data []byte
	// Offsets maps class ID to the byte offset of its record.
	Offsets []int
	// Signatures lists every distinct slot signature in first-use order;
	// record signature ids index into it.
	Signatures []string
}

// DataSegment lays out every class record end to end in ID order.
func (m *Module) DataSegment() (*Segment, error) {
	seg := &Segment{Offsets: make([]int, len(m.Classes))}
	sigIndex := make(map[string]int)
	sigID := func(sig string) int {
		if id, ok := sigIndex[sig]; ok {
			return id
		}
		id := len(seg.Signatures)
		sigIndex[sig] = id
		seg.Signatures = append(seg.Signatures, sig)
		return id
	}
	for _, c := range m.Classes {
		rec, err := c.Record(sigID)
		if err != nil {
			return nil, err
		}
		seg.Offsets[c.ID] = len(seg.Data)
		seg.Data = append(seg.Data, rec...)
	}
	return seg, nil
}

// RecordView is a decoded metadata record.
type RecordView struct {
	SuperID    int32
	VTable     []int32
	Signatures []int32
	Interfaces []int32
}

// DecodeRecord reads one record from the front of data and returns it with
// the number of bytes consumed.
func DecodeRecord(data []byte) (RecordView, int, error) {
	var rv RecordView
	n := 0
	read := func() (int32, error) {
		if len(data) < n+4 {
			return 0, fmt.Errorf("record truncated at byte %d", n)
		}
		v := int32(binary.LittleEndian.Uint32(data[n:]))
		n += 4
		return v, nil
	}
	readN := func() ([]int32, error) {
		count, err := read()
		if err != nil {
			return nil, err
		}
		if count < 0 || int(count) > (len(data)-n)/4 {
			return nil, fmt.Errorf("bad record length %d at byte %d", count, n-4)
		}
		out := make([]int32, count)
		for i := range out {
			out[i], _ = read()
		}
		return out, nil
	}
	var err error
	if rv.SuperID, err = read(); err != nil {
		return rv, n, err
	}
	if rv.VTable, err = readN(); err != nil {
		return rv, n, err
	}
	if len(data) < n+4*len(rv.VTable) {
		return rv, n, fmt.Errorf("record truncated at byte %d", n)
	}
	rv.Signatures = make([]int32, len(rv.VTable))
	for i := range rv.Signatures {
		rv.Signatures[i], _ = read()
	}
	if rv.Interfaces, err = readN(); err != nil {
		return rv, n, err
	}
	return rv, n, nil
}
