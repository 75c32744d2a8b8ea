package asm

import (
	"testing"

	"stackc/internal/fault"
	"stackc/internal/types"
)

func TestIConstPicksNarrowestForm(t *testing.T) {
	in := types.NewInterner()
	tests := []struct {
		v    int32
		want string
	}{
		{5, "iconst 5"},
		{-1, "iconst -1"},
		{100, "bipush 100"},
		{-200, "sipush -200"},
		{70000, "ldc 70000"},
	}
	for _, tt := range tests {
		e := NewEmitter(in)
		e.IConst(tt.v)
		if got := FormatAll(in, e.Code()); got != tt.want {
			t.Fatalf("IConst(%d) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestConvert(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	tests := []struct {
		name     string
		from, to types.TypeID
		want     string
	}{
		{"int to long", b.Int, b.Long, "i2l"},
		{"long to byte", b.Long, b.Byte, "l2i; i2b"},
		{"double to float", b.Double, b.Float, "d2f"},
		{"byte to int", b.Byte, b.Int, ""},
		{"int to char", b.Int, b.Char, "i2c"},
		{"float to short", b.Float, b.Short, "f2i; i2s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEmitter(in)
			e.Load(0, tt.from)
			e.Convert(tt.from, tt.to)
			code := e.Code()[1:]
			if got := FormatAll(in, code); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			if e.Depth() != in.Size(tt.to) {
				t.Fatalf("depth %d, want %d", e.Depth(), in.Size(tt.to))
			}
		})
	}
}

func TestArithStackEffect(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	tests := []struct {
		op        string
		t         types.TypeID
		count     types.TypeID
		want      string
		max, left int
	}{
		{"add", b.Long, b.Long, "ladd", 4, 2},
		{"shl", b.Long, b.Int, "lshl", 3, 2},
		{"ushr", b.Int, b.Int, "iushr", 2, 1},
	}
	for _, tt := range tests {
		e := NewEmitter(in)
		e.Load(0, tt.t)
		e.Load(2, tt.count)
		e.Arith(tt.op, tt.t)
		code := e.Code()
		if got := code[len(code)-1].Format(in); got != tt.want {
			t.Fatalf("Arith(%s) = %q, want %q", tt.op, got, tt.want)
		}
		if e.Depth() != tt.left || e.MaxDepth() != tt.max {
			t.Fatalf("%s: depth %d max %d, want %d max %d", tt.want, e.Depth(), e.MaxDepth(), tt.left, tt.max)
		}
	}
}

func TestDupShapes(t *testing.T) {
	in := types.NewInterner()
	tests := []struct {
		top, under int
		want       string
	}{
		{1, 0, "dup"},
		{2, 0, "dup2"},
		{1, 1, "dup_x1"},
		{2, 1, "dup2_x1"},
		{1, 2, "dup_x2"},
		{2, 2, "dup2_x2"},
	}
	for _, tt := range tests {
		e := NewEmitter(in)
		for i := 0; i < tt.top+tt.under; i++ {
			e.IConst(0)
		}
		e.Dup(tt.top, tt.under)
		code := e.Code()
		if got := code[len(code)-1].Format(in); got != tt.want {
			t.Fatalf("Dup(%d,%d) = %q, want %q", tt.top, tt.under, got, tt.want)
		}
		if e.Depth() != 2*tt.top+tt.under {
			t.Fatalf("Dup(%d,%d) depth %d", tt.top, tt.under, e.Depth())
		}
	}
}

func TestDupUnsupportedShape(t *testing.T) {
	in := types.NewInterner()
	e := NewEmitter(in)
	err := fault.Catch(func() { e.Dup(1, 3) })
	if !fault.Is(err, fault.UnsupportedDup) {
		t.Fatalf("expected UnsupportedDup, got %v", err)
	}
}

func TestStackUnderflowIsFatal(t *testing.T) {
	in := types.NewInterner()
	e := NewEmitter(in)
	err := fault.Catch(func() { e.Pop(in.Builtins().Long) })
	if !fault.Is(err, fault.StackUnderflow) {
		t.Fatalf("expected StackUnderflow, got %v", err)
	}
}

func TestBranchRestoresDepthAfterGoto(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	e := NewEmitter(in)
	e.Load(0, b.Object)
	e.Dup(1, 0)
	isNull := e.NewLabel()
	end := e.NewLabel()
	e.IfNull(isNull)
	e.Pop(b.Object)
	e.IConst(1)
	e.Goto(end)
	e.Mark(isNull)
	if e.Depth() != 1 {
		t.Fatalf("depth at null branch = %d, want 1", e.Depth())
	}
	e.Pop(b.Object)
	e.IConst(0)
	e.Mark(end)
	if e.Depth() != 1 {
		t.Fatalf("depth at join = %d, want 1", e.Depth())
	}
}

func TestFrameMapMarkDropTo(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	f := NewFrameMap(in)
	f.Enter("this", b.Object)
	mark := f.Mark()
	if got := f.EnterTemp(b.Long); got != 1 {
		t.Fatalf("first temp slot = %d, want 1", got)
	}
	if got := f.EnterTemp(b.Int); got != 3 {
		t.Fatalf("second temp slot = %d, want 3", got)
	}
	mark.DropTo()
	if f.Next() != 1 {
		t.Fatalf("next after drop = %d, want 1", f.Next())
	}
	if f.MaxLocals() != 4 {
		t.Fatalf("max locals = %d, want 4", f.MaxLocals())
	}
	if len(f.Table()) != 3 {
		t.Fatalf("locals table keeps released temps, got %d entries", len(f.Table()))
	}
}
