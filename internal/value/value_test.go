package value

import (
	"strings"
	"testing"

	"stackc/internal/asm"
	"stackc/internal/fault"
	"stackc/internal/types"
)

type fixture struct {
	in *types.Interner
	b  types.Builtins
	g  *Gen
}

func newFixture() *fixture {
	in := types.NewInterner()
	return &fixture{in: in, b: in.Builtins(), g: NewGen(in)}
}

func (f *fixture) listing() string {
	return asm.FormatAll(f.in, f.g.Asm.Code())
}

// countingExprs emits a call to demo/F.make for every node and counts calls.
type countingExprs struct {
	ret   types.TypeID
	calls int
}

func (c *countingExprs) EmitExpr(g *Gen, node any) {
	c.calls++
	g.Asm.Invoke(asm.Method{Owner: "demo/F", Name: "make", Kind: asm.InvokeStatic, Return: c.ret})
}

type pool struct{ strs []string }

func (p *pool) Intern(s string) int {
	for i, x := range p.strs {
		if x == s {
			return i
		}
	}
	p.strs = append(p.strs, s)
	return len(p.strs) - 1
}

func addOne(t types.TypeID) func(g *Gen) {
	return func(g *Gen) {
		switch g.Types.KindOf(t) {
		case types.KindLong:
			g.Asm.LConst(1)
		default:
			g.Asm.IConst(1)
		}
		g.Asm.Arith("add", t)
	}
}

func TestLocalPut(t *testing.T) {
	f := newFixture()
	Put(f.g, NewLocal(2, f.b.Int, nil), f.b.Int, nil)
	if got := f.listing(); got != "iload 2" {
		t.Fatalf("put(int) = %q", got)
	}

	f = newFixture()
	Put(f.g, NewLocal(2, f.b.Int, nil), f.b.Long, nil)
	if got := f.listing(); got != "iload 2; i2l" {
		t.Fatalf("put(long) = %q", got)
	}
	if f.g.Asm.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", f.g.Asm.Depth())
	}
}

func TestNegativeSlotIsMalformed(t *testing.T) {
	f := newFixture()
	err := fault.Catch(func() { NewLocal(-1, f.b.Int, nil) })
	if !fault.Is(err, fault.MalformedInput) {
		t.Fatalf("expected MalformedInput, got %v", err)
	}
}

func TestConstantPushForms(t *testing.T) {
	cases := []struct {
		name string
		lit  any
		typ  func(b types.Builtins) types.TypeID
		to   func(b types.Builtins) types.TypeID
		want string
	}{
		{"int to long", int32(5), func(b types.Builtins) types.TypeID { return b.Int }, func(b types.Builtins) types.TypeID { return b.Long }, "iconst 5; i2l"},
		{"bipush", int32(100), func(b types.Builtins) types.TypeID { return b.Int }, func(b types.Builtins) types.TypeID { return b.Int }, "bipush 100"},
		{"long", int64(1), func(b types.Builtins) types.TypeID { return b.Long }, func(b types.Builtins) types.TypeID { return b.Long }, "lconst 1"},
		{"double", 2.5, func(b types.Builtins) types.TypeID { return b.Double }, func(b types.Builtins) types.TypeID { return b.Double }, "ldc2_w 2.5"},
		{"string", "hi", func(b types.Builtins) types.TypeID { return b.String }, func(b types.Builtins) types.TypeID { return b.String }, `ldc "hi"`},
		{"null", nil, func(b types.Builtins) types.TypeID { return b.String }, func(b types.Builtins) types.TypeID { return b.String }, "aconst_null"},
		{"boxed", int32(3), func(b types.Builtins) types.TypeID { return b.Object }, func(b types.Builtins) types.TypeID { return b.Object }, "iconst 3; invokestatic java/lang/Integer.valueOf(I)Ljava/lang/Integer;"},
		{"discarded", int32(3), func(b types.Builtins) types.TypeID { return b.Int }, func(b types.Builtins) types.TypeID { return b.Void }, "iconst 3; pop"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			Put(f.g, NewConstant(tc.lit, tc.typ(f.b), nil), tc.to(f.b), nil)
			if got := f.listing(); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBoolConstIsBranchFriendly(t *testing.T) {
	f := newFixture()
	v := NewConstant(true, f.b.Bool, nil)
	bc, ok := v.(*BoolConst)
	if !ok {
		t.Fatalf("boolean literal became %T", v)
	}
	l := f.g.Asm.NewLabel()
	bc.CondJump(f.g, l, true)
	if len(f.g.Asm.Code()) != 0 {
		t.Fatalf("true literal with jump-if-false emitted %q", f.listing())
	}
	bc.CondJump(f.g, l, false)
	if got := f.listing(); got != "goto L1" {
		t.Fatalf("got %q", got)
	}
	if NewBool(false) != NewBool(false) {
		t.Fatalf("boolean literals are not shared")
	}
}

func TestConstPropertySkipsFieldAccess(t *testing.T) {
	f := newFixture()
	p := &Property{
		base:       base{T: f.b.Int},
		Name:       "LIMIT",
		FieldOwner: "demo/Cfg",
		FieldName:  "LIMIT",
		Receiver:   None,
		IsConst:    true,
		ConstValue: int32(7),
	}
	Put(f.g, p, f.b.Int, nil)
	if got := f.listing(); got != "iconst 7" {
		t.Fatalf("got %q", got)
	}
	err := fault.Catch(func() { Store(f.g, p, NewConstant(int32(1), f.b.Int, nil)) })
	if !fault.Is(err, fault.UnsupportedStore) {
		t.Fatalf("store into const: %v", err)
	}
}

func TestPropertyPrefersGetterThenField(t *testing.T) {
	f := newFixture()
	owner := f.in.Object("demo/P")
	recv := NewLocal(0, owner, nil)
	getter := &Callable{Owner: "demo/P", Name: "getX", Kind: asm.InvokeVirtual, Dispatch: owner, Return: f.b.Int}
	p := &Property{base: base{T: f.b.Int}, Name: "x", Getter: getter, FieldOwner: "demo/P", FieldName: "x", Receiver: recv}
	Put(f.g, p, f.b.Int, nil)
	if got := f.listing(); got != "aload 0; invokevirtual demo/P.getX()I" {
		t.Fatalf("getter read = %q", got)
	}

	f = newFixture()
	owner = f.in.Object("demo/P")
	p = &Property{base: base{T: f.b.Int}, Name: "x", FieldOwner: "demo/P", FieldName: "x", Receiver: NewLocal(0, owner, nil)}
	Store(f.g, p, NewConstant(int32(4), f.b.Int, nil))
	if got := f.listing(); got != "aload 0; iconst 4; putfield demo/P.x:I" {
		t.Fatalf("field write = %q", got)
	}

	f = newFixture()
	err := fault.Catch(func() {
		Put(f.g, &Property{base: base{T: f.b.Int}, Name: "ghost", Receiver: None}, f.b.Int, nil)
	})
	if !fault.Is(err, fault.MissingAccessor) {
		t.Fatalf("expected MissingAccessor, got %v", err)
	}
}

func TestStaticAccessStillEvaluatesSideEffects(t *testing.T) {
	f := newFixture()
	exprs := &countingExprs{ret: f.in.Object("demo/Box")}
	f.g.Exprs = exprs
	recv := NewExpression(exprs.ret, nil, "make()")
	fld := NewField(f.b.Int, nil, "demo/Box", "COUNT", true, recv, nil)
	Put(f.g, fld, f.b.Int, nil)
	want := "invokestatic demo/F.make()Ldemo/Box;; pop; getstatic demo/Box.COUNT:I"
	if got := f.listing(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLateinitLocalAssertsWithName(t *testing.T) {
	f := newFixture()
	p := &pool{}
	f.g.Strings = p
	Put(f.g, NewLateinitLocal(0, f.b.String, nil, "name"), f.b.String, nil)
	want := `aload 0; dup; ifnonnull L1; ldc "name"; invokestatic stackc/rt/Intrinsics.throwUninitializedPropertyAccessException(Ljava/lang/String;)V; L1:`
	if got := f.listing(); got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
	if len(p.strs) != 1 || p.strs[0] != "name" {
		t.Fatalf("pool = %v", p.strs)
	}
	if f.g.Asm.Depth() != 1 {
		t.Fatalf("depth = %d", f.g.Asm.Depth())
	}
}

func TestLateinitPropertyFieldRead(t *testing.T) {
	for _, tc := range []struct {
		name string
		skip bool
		want string
	}{
		{"checked", false, `getstatic demo/Cfg.name:Ljava/lang/String;; dup; ifnonnull L1; ldc "name"; invokestatic stackc/rt/Intrinsics.throwUninitializedPropertyAccessException(Ljava/lang/String;)V; L1:`},
		{"own accessor", true, `getstatic demo/Cfg.name:Ljava/lang/String;`},
	} {
		f := newFixture()
		f.g.Strings = &pool{}
		v := &Property{
			base:              base{T: f.b.String},
			Name:              "name",
			FieldOwner:        "demo/Cfg",
			FieldName:         "name",
			FieldStatic:       true,
			Receiver:          None,
			Lateinit:          true,
			SkipLateinitCheck: tc.skip,
		}
		Put(f.g, v, f.b.String, nil)
		if got := f.listing(); got != tc.want {
			t.Fatalf("%s: got %q\nwant %q", tc.name, got, tc.want)
		}
		if f.g.Asm.Depth() != 1 {
			t.Fatalf("%s: depth = %d", tc.name, f.g.Asm.Depth())
		}
	}
}

func intMap(f *fixture, getParams, setParams []types.TypeID) (types.TypeID, *Callable, *Callable) {
	m := f.in.Object("demo/IntMap")
	get := &Callable{Owner: "demo/IntMap", Name: "get", Kind: asm.InvokeVirtual, Dispatch: m, Params: getParams, Return: f.b.Int}
	set := &Callable{Owner: "demo/IntMap", Name: "set", Kind: asm.InvokeVirtual, Dispatch: m, Params: setParams, Return: f.b.Void}
	return m, get, set
}

func TestCollectionCompoundUsesDup2(t *testing.T) {
	f := newFixture()
	m, get, set := intMap(f, []types.TypeID{f.b.Int}, []types.TypeID{f.b.Int, f.b.Int})
	recv := NewCollectionElementReceiver(get, set, NewLocal(0, m, nil), nil, []Value{NewLocal(1, f.b.Int, nil)}, nil, true)
	ce := NewCollectionElement(f.b.Int, nil, recv)

	Modify(f.g, ce, UpdateDiscard, addOne(f.b.Int))
	want := "aload 0; iload 1; dup2; invokevirtual demo/IntMap.get(I)I; iconst 1; iadd; invokevirtual demo/IntMap.set(II)V"
	if got := f.listing(); got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
	if f.g.Asm.Depth() != 0 {
		t.Fatalf("depth = %d", f.g.Asm.Depth())
	}
}

func TestCollectionCompoundSpillsIrregularShape(t *testing.T) {
	f := newFixture()
	m, get, set := intMap(f, []types.TypeID{f.b.Int, f.b.Int}, []types.TypeID{f.b.Int, f.b.Int})
	f.g.Frame.Enter("m", m)
	f.g.Frame.Enter("k", f.b.Int)
	args := []Value{NewLocal(1, f.b.Int, nil), NewConstant(int32(0), f.b.Int, nil)}
	recv := NewCollectionElementReceiver(get, set, NewLocal(0, m, nil), nil, args, []bool{false, true}, true)
	ce := NewCollectionElement(f.b.Int, nil, recv)

	Modify(f.g, ce, UpdateDiscard, addOne(f.b.Int))
	want := strings.Join([]string{
		"aload 0", "iload 1", "iconst 0",
		"istore 2", "istore 3", "astore 4",
		"aload 4", "iload 3",
		"aload 4", "iload 3", "iload 2",
		"invokevirtual demo/IntMap.get(II)I",
		"iconst 1", "iadd",
		"invokevirtual demo/IntMap.set(II)V",
	}, "; ")
	if got := f.listing(); got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
	if f.g.Frame.Next() != 2 {
		t.Fatalf("temporaries leaked: next slot %d", f.g.Frame.Next())
	}
	if f.g.Frame.MaxLocals() != 5 {
		t.Fatalf("max locals = %d", f.g.Frame.MaxLocals())
	}
}

func TestCollectionWriteDropsGetterDefaults(t *testing.T) {
	f := newFixture()
	m, get, set := intMap(f, []types.TypeID{f.b.Int, f.b.Int}, []types.TypeID{f.b.Int, f.b.Int})
	args := []Value{NewLocal(1, f.b.Int, nil), NewConstant(int32(0), f.b.Int, nil)}
	recv := NewCollectionElementReceiver(get, set, NewLocal(0, m, nil), nil, args, []bool{false, true}, true)
	Store(f.g, NewCollectionElement(f.b.Int, nil, recv), NewConstant(int32(9), f.b.Int, nil))
	want := "aload 0; iload 1; iconst 0; pop; bipush 9; invokevirtual demo/IntMap.set(II)V"
	if got := f.listing(); got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestCollectionWriteReceiverMatchesWords(t *testing.T) {
	f := newFixture()
	m, get, set := intMap(f, []types.TypeID{f.b.Int, f.b.Int}, []types.TypeID{f.b.Int, f.b.Int})
	args := []Value{NewLocal(1, f.b.Int, nil), NewConstant(int32(0), f.b.Int, nil)}
	recv := NewCollectionElementReceiver(get, set, NewLocal(0, m, nil), nil, args, []bool{false, true}, true)
	recv.put(f.g, true)
	if got, want := f.g.Asm.Depth(), recv.words(f.g); got != want {
		t.Fatalf("write receiver left %d words, words() = %d", got, want)
	}
}

func TestCollectionDefaultMustTrail(t *testing.T) {
	f := newFixture()
	m, get, set := intMap(f, []types.TypeID{f.b.Int, f.b.Int}, []types.TypeID{f.b.Int, f.b.Int})
	args := []Value{NewConstant(int32(0), f.b.Int, nil), NewLocal(1, f.b.Int, nil)}
	err := fault.Catch(func() {
		NewCollectionElementReceiver(get, set, NewLocal(0, m, nil), nil, args, []bool{true, false}, true)
	})
	if !fault.Is(err, fault.MalformedInput) {
		t.Fatalf("expected MalformedInput, got %v", err)
	}
}

func TestCollectionMissingAccessor(t *testing.T) {
	f := newFixture()
	m, _, set := intMap(f, nil, []types.TypeID{f.b.Int, f.b.Int})
	recv := NewCollectionElementReceiver(nil, set, NewLocal(0, m, nil), nil, []Value{NewLocal(1, f.b.Int, nil)}, nil, false)
	err := fault.Catch(func() { Put(f.g, NewCollectionElement(f.b.Int, nil, recv), f.b.Int, nil) })
	if !fault.Is(err, fault.MissingAccessor) {
		t.Fatalf("expected MissingAccessor, got %v", err)
	}
}

func TestReceiverEvaluatedOnceInCompound(t *testing.T) {
	f := newFixture()
	box := f.in.Object("demo/Box")
	exprs := &countingExprs{ret: box}
	f.g.Exprs = exprs
	fld := NewField(f.b.Int, nil, "demo/Box", "count", false, NewExpression(box, nil, "make()"), nil)

	Modify(f.g, fld, UpdateDiscard, addOne(f.b.Int))
	if exprs.calls != 1 {
		t.Fatalf("receiver evaluated %d times", exprs.calls)
	}
	want := "invokestatic demo/F.make()Ldemo/Box;; dup; getfield demo/Box.count:I; iconst 1; iadd; putfield demo/Box.count:I"
	if got := f.listing(); got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestIncrementShapes(t *testing.T) {
	f := newFixture()
	arr := NewArrayElement(f.b.Int, nil, NewLocal(0, f.in.ArrayOf(f.b.Int), nil), NewLocal(1, f.b.Int, nil))
	Modify(f.g, arr, UpdatePostfix, addOne(f.b.Int))
	want := "aload 0; iload 1; dup2; iaload; dup_x2; iconst 1; iadd; iastore"
	if got := f.listing(); got != want {
		t.Fatalf("array postfix = %q", got)
	}
	if f.g.Asm.Depth() != 1 {
		t.Fatalf("postfix leaves %d words", f.g.Asm.Depth())
	}

	f = newFixture()
	owner := f.in.Object("demo/C")
	fld := NewField(f.b.Long, nil, "demo/C", "n", false, NewLocal(0, owner, nil), nil)
	Modify(f.g, fld, UpdatePrefix, addOne(f.b.Long))
	want = "aload 0; dup; getfield demo/C.n:J; lconst 1; ladd; dup2_x1; putfield demo/C.n:J"
	if got := f.listing(); got != want {
		t.Fatalf("field prefix = %q", got)
	}

	f = newFixture()
	local := NewLocal(3, f.b.Int, nil)
	if !CanIncrementInPlace(f.g, local, 1) {
		t.Fatalf("int local should increment in place")
	}
	IncrementLocal(f.g, local, 1, UpdatePostfix)
	IncrementLocal(f.g, local, -1, UpdatePrefix)
	if got := f.listing(); got != "iload 3; iinc 3 1; iinc 3 -1; iload 3" {
		t.Fatalf("local increments = %q", got)
	}
	if CanIncrementInPlace(f.g, NewLocal(0, f.b.Long, nil), 1) {
		t.Fatalf("long local cannot use iinc")
	}
}

func TestSharedVariable(t *testing.T) {
	f := newFixture()
	sv := NewSharedVariable(0, f.b.Long, nil, false, "total")
	Modify(f.g, sv, UpdatePrefix, addOne(f.b.Long))
	want := "aload 0; getfield stackc/rt/Ref$LongRef.element:J; lconst 1; ladd; dup2; aload 0; dup_x2; pop; putfield stackc/rt/Ref$LongRef.element:J"
	if got := f.listing(); got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}

	f = newFixture()
	sv = NewSharedVariable(1, f.b.String, nil, false, "s")
	Store(f.g, sv, NewConstant("x", f.b.String, nil))
	Put(f.g, sv, f.b.String, nil)
	want = `aload 1; ldc "x"; putfield stackc/rt/Ref$ObjectRef.element:Ljava/lang/Object;; aload 1; getfield stackc/rt/Ref$ObjectRef.element:Ljava/lang/Object;; checkcast java/lang/String`
	if got := f.listing(); got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestCapturedSharedField(t *testing.T) {
	f := newFixture()
	closure := f.in.Object("demo/Lambda")
	v := NewCapturedSharedField(f.in, f.b.Int, nil, "demo/Lambda", "cnt", NewLocal(0, closure, nil), false, "cnt")
	Modify(f.g, v, UpdateDiscard, addOne(f.b.Int))
	want := "aload 0; getfield demo/Lambda.cnt:Lstackc/rt/Ref$IntRef;; dup; getfield stackc/rt/Ref$IntRef.element:I; iconst 1; iadd; putfield stackc/rt/Ref$IntRef.element:I"
	if got := f.listing(); got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestDelegate(t *testing.T) {
	f := newFixture()
	del := f.in.Object("demo/Lazy")
	meta := NewConstant("p", f.b.String, nil)
	get := &Callable{Owner: "demo/Lazy", Name: "getValue", Kind: asm.InvokeVirtual, Dispatch: del, Params: []types.TypeID{f.b.Object, f.b.String}, Return: f.b.Object}
	set := &Callable{Owner: "demo/Lazy", Name: "setValue", Kind: asm.InvokeVirtual, Dispatch: del, Params: []types.TypeID{f.b.Object, f.b.String, f.b.Object}, Return: f.b.Void}
	d := NewDelegate(f.b.String, nil, "p", NewLocal(0, del, nil), get, set, nil, meta)

	Put(f.g, d, f.b.String, nil)
	want := `aload 0; aconst_null; ldc "p"; invokevirtual demo/Lazy.getValue(Ljava/lang/Object;Ljava/lang/String;)Ljava/lang/Object;; checkcast java/lang/String`
	if got := f.listing(); got != want {
		t.Fatalf("read = %q", got)
	}

	f.g = NewGen(f.in)
	f.g.Frame.Enter("lazy", del)
	f.g.Frame.Enter("s", f.b.String)
	f.g.Asm.Load(1, f.b.String)
	StoreSelector(f.g, d, f.b.String, nil)
	want = `aload 1; astore 2; aload 0; aconst_null; ldc "p"; aload 2; invokevirtual demo/Lazy.setValue(Ljava/lang/Object;Ljava/lang/String;Ljava/lang/Object;)V`
	if got := f.listing(); got != want {
		t.Fatalf("store selector = %q", got)
	}
	if f.g.Frame.Next() != 2 {
		t.Fatalf("delegate temp leaked")
	}

	err := fault.Catch(func() { Modify(f.g, d, UpdateDiscard, func(*Gen) {}) })
	if !fault.Is(err, fault.UnsupportedComplexReceiver) {
		t.Fatalf("expected UnsupportedComplexReceiver, got %v", err)
	}
}

func TestUnsupportedStores(t *testing.T) {
	f := newFixture()
	for _, v := range []Value{
		NewConstant(int32(1), f.b.Int, nil),
		NewBool(true),
		NewOnStack(f.b.Int, nil),
		NewReceiver(f.b.Int, NewLocal(0, f.b.Int, nil)),
		None,
	} {
		err := fault.Catch(func() { Store(f.g, v, NewLocal(0, f.b.Int, nil)) })
		if !fault.Is(err, fault.UnsupportedStore) {
			t.Fatalf("store into %v: %v", v, err)
		}
	}
}

func TestReceiverSizes(t *testing.T) {
	f := newFixture()
	owner := f.in.Object("demo/C")
	arr := NewArrayElement(f.b.Long, nil, NewLocal(0, f.in.ArrayOf(f.b.Long), nil), NewLocal(1, f.b.Int, nil))
	cases := []struct {
		v    Value
		want int
	}{
		{NewLocal(0, f.b.Int, nil), 0},
		{NewField(f.b.Int, nil, "demo/C", "s", true, None, nil), 0},
		{NewField(f.b.Int, nil, "demo/C", "i", false, NewLocal(0, owner, nil), nil), 1},
		{arr, 2},
	}
	for _, tc := range cases {
		if got := ReceiverSize(f.g, tc.v); got != tc.want {
			t.Fatalf("ReceiverSize(%v) = %d, want %d", tc.v, got, tc.want)
		}
	}

	ext := f.in.Object("demo/Ext")
	m, _, _ := intMap(f, nil, nil)
	get := &Callable{Owner: "demo/Ext", Name: "get", Kind: asm.InvokeVirtual, Dispatch: m, Extension: ext, Params: []types.TypeID{f.b.Int}, Return: f.b.Int}
	recv := NewCollectionElementReceiver(get, nil, NewLocal(0, m, nil), NewLocal(1, ext, nil), []Value{NewLocal(2, f.b.Int, nil)}, nil, true)
	ce := NewCollectionElement(f.b.Int, nil, recv)
	if got := ReceiverSize(f.g, ce); got != UnknownSize {
		t.Fatalf("mixed receivers size = %d", got)
	}
	f.g.Asm.Load(0, f.b.Int)
	err := fault.Catch(func() { Dup(f.g, ce, true) })
	if !fault.Is(err, fault.UnsupportedDup) {
		t.Fatalf("expected UnsupportedDup, got %v", err)
	}
}

func TestPutLeavesExactlyTargetWords(t *testing.T) {
	f := newFixture()
	owner := f.in.Object("demo/C")
	values := []Value{
		NewLocal(0, f.b.Int, nil),
		NewLocal(1, f.b.Long, nil),
		NewConstant(int32(2), f.b.Int, nil),
		NewConstant(1.5, f.b.Double, nil),
		NewConstant("s", f.b.String, nil),
		NewBool(false),
		NewField(f.b.Double, nil, "demo/C", "d", false, NewLocal(0, owner, nil), nil),
		NewArrayElement(f.b.Int, nil, NewLocal(0, f.in.ArrayOf(f.b.Int), nil), NewLocal(1, f.b.Int, nil)),
		NewSharedVariable(2, f.b.Float, nil, false, "x"),
		None,
	}
	targets := []types.TypeID{f.b.Void, f.b.Int, f.b.Long, f.b.Double, f.b.Object}
	for _, v := range values {
		for _, to := range targets {
			g := NewGen(f.in)
			err := fault.Catch(func() { Put(g, v, to, nil) })
			if err != nil {
				// String to a primitive is not a valid request.
				continue
			}
			if got, want := g.Asm.Depth(), f.in.Size(to); got != want {
				t.Fatalf("put(%v, %s) leaves %d words, want %d: %s", v, f.in.Descriptor(to), got, want, asm.FormatAll(f.in, g.Asm.Code()))
			}
		}
	}
}
