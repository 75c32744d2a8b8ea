package layout_test

import (
	"errors"
	"testing"

	"stackc/internal/classmeta"
	"stackc/internal/layout"
	"stackc/internal/types"
)

func build(t *testing.T, in *types.Interner) *classmeta.Module {
	t.Helper()
	b := in.Builtins()
	m, err := classmeta.Build([]classmeta.ClassDecl{
		{Name: "A", Fields: []classmeta.FieldDecl{{Name: "flag", Type: b.Bool}, {Name: "n", Type: b.Long}}},
		{Name: "B", Super: "A", Fields: []classmeta.FieldDecl{{Name: "c", Type: b.Char}, {Name: "next", Type: in.Object("B")}}},
	}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func TestClassLayoutInheritedPrefix(t *testing.T) {
	in := types.NewInterner()
	m := build(t, in)
	e := layout.New(layout.Linear32(), in)
	a, _ := m.Class("A")
	b, _ := m.Class("B")

	la, err := e.ClassLayout(a)
	if err != nil {
		t.Fatal(err)
	}
	// header 4, flag at 4, n aligned to 8.
	if la.FieldOffsets[0] != 4 || la.FieldOffsets[1] != 8 || la.Size != 16 || la.Align != 8 {
		t.Fatalf("layout(A) = %+v", la)
	}
	lb, err := e.ClassLayout(b)
	if err != nil {
		t.Fatal(err)
	}
	for i := range la.FieldOffsets {
		if lb.FieldOffsets[i] != la.FieldOffsets[i] {
			t.Fatalf("inherited field %d moved: %d vs %d", i, lb.FieldOffsets[i], la.FieldOffsets[i])
		}
	}
	if lb.FieldOffsets[2] != 16 || lb.FieldOffsets[3] != 20 || lb.Size != 24 {
		t.Fatalf("layout(B) = %+v", lb)
	}
	off, err := e.FieldOffset(b, "next")
	if err != nil || off != 20 {
		t.Fatalf("FieldOffset(next) = %d, %v", off, err)
	}
	offs, err := e.Offsets32(b)
	if err != nil || len(offs) != 4 || offs[3] != 20 {
		t.Fatalf("Offsets32 = %v, %v", offs, err)
	}
}

func TestRootLayoutIsHeaderOnly(t *testing.T) {
	in := types.NewInterner()
	m := build(t, in)
	target := layout.Linear32()
	target.HeaderSize = 8
	l, err := layout.New(target, in).ClassLayout(m.Root())
	if err != nil || l.Size != 8 || len(l.FieldOffsets) != 0 {
		t.Fatalf("root = %+v, %v", l, err)
	}
}

func TestLayoutErrors(t *testing.T) {
	in := types.NewInterner()
	m := build(t, in)
	b, _ := m.Class("B")

	_, err := layout.New(layout.Linear32(), in).FieldOffset(b, "missing")
	var le *layout.LayoutError
	if !errors.As(err, &le) || le.Kind != layout.LayoutErrNoSuchField {
		t.Fatalf("missing field: %v", err)
	}

	bad := layout.Linear32()
	bad.RefAlign = 3
	_, err = layout.New(bad, in).ClassLayout(b)
	if !errors.As(err, &le) || le.Kind != layout.LayoutErrBadTarget {
		t.Fatalf("bad target: %v", err)
	}

	vm, err := classmeta.Build([]classmeta.ClassDecl{
		{Name: "V", Fields: []classmeta.FieldDecl{{Name: "nothing", Type: in.Builtins().Void}}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	v, _ := vm.Class("V")
	_, err = layout.New(layout.Linear32(), in).ClassLayout(v)
	if !errors.As(err, &le) || le.Kind != layout.LayoutErrUnsizedField {
		t.Fatalf("void field: %v", err)
	}
}
