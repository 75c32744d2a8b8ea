package ir

// ExprKind enumerates expression kinds.
type ExprKind string

const (
	// ExprConst is a literal; Type selects which value field is meaningful.
	ExprConst ExprKind = "const"
	// ExprLocal reads or names a local by Name.
	ExprLocal ExprKind = "local"
	// ExprThis is the receiver of the enclosing method.
	ExprThis ExprKind = "this"
	// ExprField is Recv.Name on class Owner; Static selects the access form.
	ExprField ExprKind = "field"
	// ExprProperty is an accessor- or field-backed property.
	ExprProperty ExprKind = "property"
	// ExprIndex is X[Y] on an array.
	ExprIndex ExprKind = "index"
	// ExprElement is Recv[Args] through Getter/Setter calls.
	ExprElement ExprKind = "element"
	// ExprCaptured is a shared variable held in closure field Owner.Name of Recv.
	ExprCaptured ExprKind = "captured"
	// ExprCall is a resolved call with receivers and arguments.
	ExprCall ExprKind = "call"
	// ExprNew allocates Owner and runs constructor Call with Args.
	ExprNew ExprKind = "new"
	// ExprDefault marks an argument not supplied at the call site; X is
	// the default value.
	ExprDefault ExprKind = "default"
	// ExprAssign stores Y into X.
	ExprAssign ExprKind = "assign"
	// ExprCompound is X = X Op Y with X's receiver evaluated once.
	ExprCompound ExprKind = "compound"
	// ExprIncr adds Delta to X; Prefix selects which value is the result.
	ExprIncr ExprKind = "incr"
	// ExprBinary is X Op Y on Type.
	ExprBinary ExprKind = "binary"
	// ExprIf branches on boolean X.
	ExprIf ExprKind = "if"
	// ExprBlock evaluates Body in order; the last expression is the result.
	ExprBlock ExprKind = "block"
	// ExprLet declares local Name, optionally initialised from Y.
	ExprLet ExprKind = "let"
	// ExprReturn leaves the function with optional X.
	ExprReturn ExprKind = "return"

	// Accepted by the decoder, rejected by the assembler.
	ExprArrayLiteral  ExprKind = "array-literal"
	ExprTry           ExprKind = "try"
	ExprInterfaceCall ExprKind = "interface-call"
)

// Known reports whether k is a defined kind.
func (k ExprKind) Known() bool {
	switch k {
	case ExprConst, ExprLocal, ExprThis, ExprField, ExprProperty, ExprIndex, ExprElement,
		ExprCaptured, ExprCall, ExprNew, ExprDefault, ExprAssign, ExprCompound, ExprIncr,
		ExprBinary, ExprIf, ExprBlock, ExprLet, ExprReturn,
		ExprArrayLiteral, ExprTry, ExprInterfaceCall:
		return true
	}
	return false
}

// IsPlace reports kinds that can be assigned to.
func (k ExprKind) IsPlace() bool {
	switch k {
	case ExprLocal, ExprField, ExprProperty, ExprIndex, ExprElement, ExprCaptured:
		return true
	}
	return false
}

// Expr is one node. Kind selects which fields are meaningful.
type Expr struct {
	Kind   ExprKind    `toml:"kind" msgpack:"k"`
	Type   string      `toml:"type,omitempty" msgpack:"t,omitempty"`
	Source *SourceType `toml:"source,omitempty" msgpack:"src,omitempty"`

	// Literal payload.
	Int   int64   `toml:"int,omitempty" msgpack:"i,omitempty"`
	Float float64 `toml:"float,omitempty" msgpack:"f,omitempty"`
	Str   string  `toml:"str,omitempty" msgpack:"s,omitempty"`
	Bool  bool    `toml:"bool,omitempty" msgpack:"b,omitempty"`
	Null  bool    `toml:"null,omitempty" msgpack:"null,omitempty"`

	Name     string `toml:"name" msgpack:"n,omitempty"`
	Owner    string `toml:"owner,omitempty" msgpack:"o,omitempty"`
	Static   bool   `toml:"static,omitempty" msgpack:"st,omitempty"`
	Lateinit bool   `toml:"lateinit,omitempty" msgpack:"li,omitempty"`
	// CompanionAccessor marks a property read inside the property's own
	// synthetic accessor, which skips the lateinit check.
	CompanionAccessor bool `toml:"companion_accessor,omitempty" msgpack:"ca,omitempty"`
	// Shared marks a let whose local is captured mutably.
	Shared bool `toml:"shared,omitempty" msgpack:"sh,omitempty"`

	Recv *Expr  `toml:"recv,omitempty" msgpack:"r,omitempty"`
	Ext  *Expr  `toml:"ext,omitempty" msgpack:"e,omitempty"`
	Args []Expr `toml:"args,omitempty" msgpack:"a,omitempty"`

	Call   *Call `toml:"call,omitempty" msgpack:"c,omitempty"`
	Getter *Call `toml:"getter,omitempty" msgpack:"g,omitempty"`
	Setter *Call `toml:"setter,omitempty" msgpack:"set,omitempty"`

	// Property backing field and compile-time constant.
	FieldName   string `toml:"field_name,omitempty" msgpack:"fn,omitempty"`
	FieldStatic bool   `toml:"field_static,omitempty" msgpack:"fs,omitempty"`
	Const       *Expr  `toml:"const,omitempty" msgpack:"cv,omitempty"`

	// Delegate is the delegate instance of a delegated let; Meta names the
	// property descriptor passed to its accessors.
	Delegate *Expr  `toml:"delegate,omitempty" msgpack:"d,omitempty"`
	Meta     string `toml:"meta,omitempty" msgpack:"m,omitempty"`

	X  *Expr  `toml:"x,omitempty" msgpack:"x,omitempty"`
	Y  *Expr  `toml:"y,omitempty" msgpack:"y,omitempty"`
	Op string `toml:"op,omitempty" msgpack:"op,omitempty"`

	Delta  int  `toml:"delta,omitempty" msgpack:"dl,omitempty"`
	Prefix bool `toml:"prefix,omitempty" msgpack:"pf,omitempty"`

	Then []Expr `toml:"then,omitempty" msgpack:"th,omitempty"`
	Else []Expr `toml:"else,omitempty" msgpack:"el,omitempty"`
	Body []Expr `toml:"body,omitempty" msgpack:"bd,omitempty"`
}

// Walk calls fn for e and every nested expression, parents first. It stops
// descending into a node when fn returns false.
func Walk(e *Expr, fn func(*Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, sub := range []*Expr{e.Recv, e.Ext, e.Const, e.Delegate, e.X, e.Y} {
		Walk(sub, fn)
	}
	for _, list := range [][]Expr{e.Args, e.Then, e.Else, e.Body} {
		for i := range list {
			Walk(&list[i], fn)
		}
	}
}
