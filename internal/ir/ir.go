// Package ir is the typed declaration and expression tree the assembler
// consumes. Resolution and type inference happen upstream; every call here
// is already resolved to an owner, a descriptor and its receivers.
//
// Types are written as JVM-style descriptors ("I", "Ljava/lang/String;").
// Trees round-trip through TOML (hand-written units) and msgpack (tool
// output).
package ir

// Module is one compilation unit.
type Module struct {
	Name       string      `toml:"name" msgpack:"name"`
	Classes    []Class     `toml:"class,omitempty" msgpack:"classes"`
	Interfaces []Interface `toml:"interface,omitempty" msgpack:"interfaces"`
	Funcs      []Func      `toml:"func,omitempty" msgpack:"funcs"`
	Globals    []Global    `toml:"global,omitempty" msgpack:"globals"`
}

// FacadeName is the owner class of a module's top-level functions and globals.
func (m *Module) FacadeName() string {
	return m.Name + "Kt"
}

// Interface declares an interface and its super-interfaces.
type Interface struct {
	Name   string   `toml:"name" msgpack:"name"`
	Supers []string `toml:"supers,omitempty" msgpack:"supers"`
}

// Class declares a class. Methods with Virtual set take part in dispatch.
type Class struct {
	Name       string   `toml:"name" msgpack:"name"`
	Super      string   `toml:"super,omitempty" msgpack:"super"`
	Interfaces []string `toml:"interfaces,omitempty" msgpack:"interfaces"`
	Fields     []Field  `toml:"field,omitempty" msgpack:"fields"`
	Methods    []Func   `toml:"method,omitempty" msgpack:"methods"`
}

// Field declares an instance or static field.
type Field struct {
	Name   string `toml:"name" msgpack:"name"`
	Type   string `toml:"type,omitempty" msgpack:"type"`
	Static bool   `toml:"static,omitempty" msgpack:"static"`
}

// Global is a module-level variable, stored as a static field of the facade.
type Global struct {
	Name string `toml:"name" msgpack:"name"`
	Type string `toml:"type,omitempty" msgpack:"type"`
	Init *Expr  `toml:"init,omitempty" msgpack:"init"`
}

// Func is a function or method with its body.
type Func struct {
	Name         string      `toml:"name" msgpack:"name"`
	Params       []Param     `toml:"param,omitempty" msgpack:"params"`
	Return       string      `toml:"return,omitempty" msgpack:"return"`
	ReturnSource *SourceType `toml:"return_source,omitempty" msgpack:"return_source"`
	// Static functions take no this; methods take their class as slot 0.
	Static  bool   `toml:"static,omitempty" msgpack:"static"`
	Virtual bool   `toml:"virtual,omitempty" msgpack:"virtual"`
	Export  bool   `toml:"export,omitempty" msgpack:"export"`
	Body    []Expr `toml:"body,omitempty" msgpack:"body"`
}

// Param is a value parameter.
type Param struct {
	Name   string      `toml:"name" msgpack:"name"`
	Type   string      `toml:"type,omitempty" msgpack:"type"`
	Source *SourceType `toml:"source,omitempty" msgpack:"source"`
}

// SourceType carries what the descriptor cannot: nullability and
// inline-class identity.
type SourceType struct {
	Name     string       `toml:"name" msgpack:"name"`
	Nullable bool         `toml:"nullable,omitempty" msgpack:"nullable"`
	Nothing  bool         `toml:"nothing,omitempty" msgpack:"nothing"`
	Function bool         `toml:"function,omitempty" msgpack:"function"`
	Inline   *InlineClass `toml:"inline,omitempty" msgpack:"inline"`
}

// InlineClass names the box class and the underlying representation.
type InlineClass struct {
	Box        string `toml:"box,omitempty" msgpack:"box"`
	Underlying string `toml:"underlying,omitempty" msgpack:"underlying"`
}

// Call is a resolved callee.
type Call struct {
	Owner string `toml:"owner,omitempty" msgpack:"owner"`
	Name  string `toml:"name" msgpack:"name"`
	// Kind is one of "static", "virtual", "special", "interface".
	Kind string `toml:"kind" msgpack:"kind"`
	// Extension is the extension receiver descriptor, empty when absent.
	Extension string `toml:"extension,omitempty" msgpack:"extension"`
	// Dispatch is the dispatch receiver descriptor; defaults to the owner.
	Dispatch     string        `toml:"dispatch,omitempty" msgpack:"dispatch"`
	Params       []string      `toml:"params,omitempty" msgpack:"params"`
	ParamSources []*SourceType `toml:"param_sources,omitempty" msgpack:"param_sources"`
	Return       string        `toml:"return,omitempty" msgpack:"return"`
	ReturnSource *SourceType   `toml:"return_source,omitempty" msgpack:"return_source"`
	Inline       bool          `toml:"inline,omitempty" msgpack:"inline"`
}
