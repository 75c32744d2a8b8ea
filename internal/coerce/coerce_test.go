package coerce

import (
	"fmt"
	"strings"
	"testing"

	"stackc/internal/asm"
	"stackc/internal/types"
)

type fixture struct {
	in  *types.Interner
	b   types.Builtins
	k   *types.SourceType // inline class over int
	kn  *types.SourceType // nullable inline class over String
	box types.TypeID
	nbx types.TypeID
}

func newFixture() *fixture {
	in := types.NewInterner()
	b := in.Builtins()
	box := in.Object("demo/Meters")
	nbx := in.Object("demo/Name")
	return &fixture{
		in:  in,
		b:   b,
		box: box,
		nbx: nbx,
		k:   &types.SourceType{Name: "Meters", Inline: &types.InlineClass{Box: box, Underlying: b.Int}},
		kn:  &types.SourceType{Name: "Name?", Nullable: true, Inline: &types.InlineClass{Box: nbx, Underlying: b.String}},
	}
}

// emit coerces a freshly loaded value and returns the coercion listing.
func (f *fixture) emit(from types.TypeID, fromSrc *types.SourceType, to types.TypeID, toSrc *types.SourceType) (*asm.Emitter, string) {
	e := asm.NewEmitter(f.in)
	if from != f.b.Void {
		e.Load(0, from)
	}
	start := len(e.Code())
	Coerce(e, from, fromSrc, to, toSrc)
	return e, asm.FormatAll(f.in, e.Code()[start:])
}

func TestCoerceIdempotence(t *testing.T) {
	f := newFixture()
	cases := []struct {
		t  types.TypeID
		st *types.SourceType
	}{
		{f.b.Int, nil},
		{f.b.Long, nil},
		{f.b.String, nil},
		{f.in.ArrayOf(f.b.Int), nil},
		{f.b.Int, f.k},   // unboxed inline
		{f.box, f.k},     // boxed inline
		{f.b.String, f.kn},
		{f.nbx, f.kn},
	}
	for _, c := range cases {
		_, got := f.emit(c.t, c.st, c.t, c.st)
		if got != "" {
			t.Fatalf("coerce(%s, %s) = %q, want no-op", f.in.Descriptor(c.t), f.in.Descriptor(c.t), got)
		}
	}
}

func TestCoerceGenericRules(t *testing.T) {
	f := newFixture()
	b := f.b
	tests := []struct {
		name     string
		from, to types.TypeID
		want     string
	}{
		{"int to long", b.Int, b.Long, "i2l"},
		{"long to void", b.Long, b.Void, "pop2"},
		{"void to unit", b.Void, b.Unit, "getstatic stackc/rt/Unit.INSTANCE:Lstackc/rt/Unit;"},
		{"void to string", b.Void, b.String, "aconst_null"},
		{"void to long", b.Void, b.Long, "lconst 0"},
		{"void to boolean", b.Void, b.Bool, "iconst 0"},
		{"int to unit", b.Int, b.Unit, "pop; getstatic stackc/rt/Unit.INSTANCE:Lstackc/rt/Unit;"},
		{"object to array", b.Object, f.in.ArrayOf(b.Int), "checkcast [I"},
		{"object to string", b.Object, b.String, "checkcast java/lang/String"},
		{"string to object", b.String, b.Object, ""},
		{"int to object", b.Int, b.Object, "invokestatic java/lang/Integer.valueOf(I)Ljava/lang/Integer;"},
		{"integer to int", f.in.Boxed(b.Int), b.Int, "invokevirtual java/lang/Integer.intValue()I"},
		{"integer to long", f.in.Boxed(b.Int), b.Long, "invokevirtual java/lang/Integer.intValue()I; i2l"},
		{"object to int", b.Object, b.Int, "checkcast java/lang/Number; invokevirtual java/lang/Number.intValue()I"},
		{"number to double", b.Number, b.Double, "invokevirtual java/lang/Number.doubleValue()D"},
		{"object to byte", b.Object, b.Byte, "checkcast java/lang/Number; invokevirtual java/lang/Number.intValue()I; i2b"},
		{"object to boolean", b.Object, b.Bool, "checkcast java/lang/Boolean; invokevirtual java/lang/Boolean.booleanValue()Z"},
		{"object to char", b.Object, b.Char, "checkcast java/lang/Character; invokevirtual java/lang/Character.charValue()C"},
		{"double to int", b.Double, b.Int, "d2i"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := f.emit(tt.from, nil, tt.to, nil)
			if got != tt.want {
				t.Fatalf("got %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestCoerceStackBalance(t *testing.T) {
	f := newFixture()
	b := f.b
	all := []types.TypeID{b.Void, b.Bool, b.Byte, b.Char, b.Short, b.Int, b.Long, b.Float, b.Double, b.Object, b.String, b.Number, b.Unit, f.in.Boxed(b.Long)}
	for _, from := range all {
		for _, to := range all {
			e, _ := f.emit(from, nil, to, nil)
			if e.Depth() != f.in.Size(to) {
				t.Fatalf("coerce %s -> %s leaves %d words, want %d",
					f.in.Descriptor(from), f.in.Descriptor(to), e.Depth(), f.in.Size(to))
			}
		}
	}
}

func TestCoerceInlineBoxing(t *testing.T) {
	f := newFixture()
	b := f.b
	_, got := f.emit(b.Int, f.k, f.box, f.k)
	if got != "invokestatic demo/Meters.box-impl(I)Ldemo/Meters;" {
		t.Fatalf("box: %q", got)
	}
	_, got = f.emit(f.box, f.k, b.Int, f.k)
	if got != "invokevirtual demo/Meters.unbox-impl()I" {
		t.Fatalf("unbox: %q", got)
	}
	// Leaving the inline class for Any boxes first.
	_, got = f.emit(b.Int, f.k, b.Object, &types.SourceType{Name: "Any"})
	if got != "invokestatic demo/Meters.box-impl(I)Ldemo/Meters;" {
		t.Fatalf("to Any: %q", got)
	}
	// Without a source type on the target the representation rules apply.
	_, got = f.emit(b.Int, f.k, b.Long, nil)
	if got != "i2l" {
		t.Fatalf("unknown target: %q", got)
	}
}

func TestCoerceNullableInlineGuardsNull(t *testing.T) {
	f := newFixture()
	_, got := f.emit(f.b.String, f.kn, f.nbx, f.kn)
	want := "dup; ifnull L1; invokestatic demo/Name.box-impl(Ljava/lang/String;)Ldemo/Name;; goto L2; L1:; checkcast demo/Name; L2:"
	if got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
}

// boxed is a runtime inline-class box in the test machine.
type boxed struct {
	class string
	v     any
}

// run interprets the subset of instructions coercions emit.
func run(t *testing.T, in *types.Interner, code []asm.Instr, local any) any {
	t.Helper()
	labels := map[int]int{}
	for i := range code {
		if code[i].Op == asm.OpLabel {
			labels[code[i].Label.ID] = i
		}
	}
	var stack []any
	pop := func() any {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}
	for pc := 0; pc < len(code); pc++ {
		ins := &code[pc]
		switch ins.Op {
		case asm.OpLoad:
			stack = append(stack, local)
		case asm.OpAConstNull:
			stack = append(stack, nil)
		case asm.OpDup:
			stack = append(stack, stack[len(stack)-1])
		case asm.OpIfNull:
			if pop() == nil {
				pc = labels[ins.Label.ID]
			}
		case asm.OpGoto:
			pc = labels[ins.Label.ID]
		case asm.OpLabel, asm.OpCheckCast:
		case asm.OpInvoke:
			switch ins.Method.Name {
			case types.BoxMethod:
				stack = append(stack, boxed{class: ins.Method.Owner, v: pop()})
			case types.UnboxMethod:
				bx, ok := pop().(boxed)
				if !ok {
					t.Fatalf("unbox of non-box")
				}
				stack = append(stack, bx.v)
			default:
				t.Fatalf("unexpected call %s", ins.Format(in))
			}
		default:
			t.Fatalf("unexpected instruction %s", ins.Format(in))
		}
	}
	if len(stack) != 1 {
		t.Fatalf("stack %v after run", stack)
	}
	return stack[0]
}

func TestInlineRoundTrip(t *testing.T) {
	f := newFixture()
	roundTrip := func(v any, under types.TypeID, boxT types.TypeID, st *types.SourceType) (any, any) {
		e, _ := f.emit(under, st, boxT, st)
		k := run(t, f.in, e.Code(), v)
		e2, _ := f.emit(boxT, st, under, st)
		back := run(t, f.in, e2.Code(), k)
		return k, back
	}
	for _, v := range []any{int64(0), int64(42), int64(-7)} {
		k, back := roundTrip(v, f.b.Int, f.box, f.k)
		if k != (boxed{class: "demo/Meters", v: v}) || back != v {
			t.Fatalf("round trip of %v: box=%v back=%v", v, k, back)
		}
	}
	k, back := roundTrip("ada", f.b.String, f.nbx, f.kn)
	if k != (boxed{class: "demo/Name", v: "ada"}) || back != "ada" {
		t.Fatalf("nullable round trip: box=%v back=%v", k, back)
	}
	k, back = roundTrip(nil, f.b.String, f.nbx, f.kn)
	if k != nil || back != nil {
		t.Fatalf("null must stay null: box=%v back=%v", k, back)
	}
}

func TestPushDefault(t *testing.T) {
	f := newFixture()
	var got []string
	for _, tt := range []types.TypeID{f.b.Bool, f.b.Int, f.b.Long, f.b.Float, f.b.Double} {
		e := asm.NewEmitter(f.in)
		PushDefault(e, tt)
		got = append(got, asm.FormatAll(f.in, e.Code()))
	}
	want := "iconst 0|iconst 0|lconst 0|fconst 0|dconst 0"
	if strings.Join(got, "|") != want {
		t.Fatalf("defaults %s", fmt.Sprint(got))
	}
}
