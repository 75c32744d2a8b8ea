package ir

import (
	"strings"
	"testing"

	"stackc/internal/types"
)

const counterUnit = `
name = "counter"

[[class]]
name = "demo/Counter"
[[class.field]]
name = "n"
type = "I"

[[class.method]]
name = "bump"
return = "V"
virtual = true
[[class.method.body]]
kind = "incr"
delta = 1
[class.method.body.x]
kind = "field"
owner = "demo/Counter"
name = "n"
type = "I"
[class.method.body.x.recv]
kind = "this"
type = "Ldemo/Counter;"

[[func]]
name = "answer"
return = "I"
static = true
export = true
[[func.body]]
kind = "return"
[func.body.x]
kind = "const"
type = "I"
int = 42
`

func TestDecodeTOMLAndRoundTripMsgpack(t *testing.T) {
	m, err := Decode([]byte(counterUnit), FormatTOML)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := Validate(m, types.NewInterner()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(m.Classes) != 1 || len(m.Classes[0].Methods) != 1 || m.Funcs[0].Body[0].X.Int != 42 {
		t.Fatalf("decoded %+v", m)
	}
	data, err := Encode(m, FormatMsgpack)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Decode(data, FormatMsgpack)
	if err != nil {
		t.Fatal(err)
	}
	incr := back.Classes[0].Methods[0].Body[0]
	if incr.Kind != ExprIncr || incr.X.Recv.Kind != ExprThis || incr.Delta != 1 {
		t.Fatalf("msgpack lost structure: %+v", incr)
	}
	text, err := Encode(back, FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	again, err := Decode(text, FormatTOML)
	if err != nil {
		t.Fatalf("re-decode TOML: %v\n%s", err, text)
	}
	if again.Funcs[0].Name != "answer" || !again.Funcs[0].Export {
		t.Fatalf("TOML round trip lost the function")
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode([]byte("name = \"x\"\nbogus = 1\n"), FormatTOML)
	if err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	m := &Module{
		Name: "bad",
		Funcs: []Func{{
			Name:   "f",
			Return: "Q",
			Body: []Expr{
				{Kind: "mystery"},
				{Kind: ExprAssign, X: &Expr{Kind: ExprConst, Type: "I"}, Y: &Expr{Kind: ExprConst, Type: "I"}},
				{Kind: ExprField, Owner: "demo/C", Name: "x", Type: "I"},
			},
		}},
	}
	err := Validate(m, types.NewInterner())
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{"return", "mystery", "not assignable", "without receiver"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %q", err, want)
		}
	}
}

func TestFormatOf(t *testing.T) {
	if f, ok := FormatOf("units/a.TOML"); !ok || f != FormatTOML {
		t.Fatalf("toml not detected")
	}
	if f, ok := FormatOf("a.mp"); !ok || f != FormatMsgpack {
		t.Fatalf("msgpack not detected")
	}
	if _, ok := FormatOf("a.json"); ok {
		t.Fatalf("json accepted")
	}
}

func TestValidateNamesVoidLetInitialiser(t *testing.T) {
	in := types.NewInterner()
	call := &Call{Owner: "demo/Log", Name: "flush", Kind: "static", Return: "V"}
	for _, tc := range []struct {
		name string
		let  Expr
		want string
	}{
		{"void call", Expr{Kind: ExprLet, Name: "x", Y: &Expr{Kind: ExprCall, Call: call}}, "let x: initialiser is void"},
		{"void type", Expr{Kind: ExprLet, Name: "y", Type: "V"}, "let y: initialiser is void"},
		{"no name", Expr{Kind: ExprLet, Type: "I"}, "let expression without name"},
		{"no type", Expr{Kind: ExprLet, Name: "z"}, "let expression without type"},
	} {
		m := &Module{Name: "m", Funcs: []Func{{Name: "f", Body: []Expr{tc.let}}}}
		err := Validate(m, in)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: got %v, want error mentioning %q", tc.name, err, tc.want)
		}
	}
}
