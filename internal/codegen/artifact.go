package codegen

// Artifact is the assembled form of one module. It is what the driver
// caches and writes to disk, so every field is plain data.
type Artifact struct {
	Module string `msgpack:"module"`
	Facade string `msgpack:"facade"`
	// Digest identifies the input the artifact was built from.
	Digest string `msgpack:"digest,omitempty"`

	Functions  []Function  `msgpack:"functions"`
	Imports    []Import    `msgpack:"imports"`
	Exports    []Export    `msgpack:"exports"`
	Globals    []Global    `msgpack:"globals"`
	Strings    []string    `msgpack:"strings"`
	Classes    []Class     `msgpack:"classes"`
	Interfaces []Interface `msgpack:"interfaces"`

	// Data is the class-metadata data segment; Signatures is the table its
	// per-slot signature ids index.
	Data       []byte   `msgpack:"data"`
	Signatures []string `msgpack:"signatures"`
}

// Function is one emitted function body.
type Function struct {
	ID         int     `msgpack:"id"`
	Owner      string  `msgpack:"owner"`
	Name       string  `msgpack:"name"`
	Descriptor string  `msgpack:"desc"`
	Return     string  `msgpack:"return"`
	Static     bool    `msgpack:"static"`
	Locals     []Local `msgpack:"locals"`
	MaxStack   int     `msgpack:"max_stack"`
	MaxLocals  int     `msgpack:"max_locals"`
	// Code holds one rendered instruction per entry, labels included.
	Code []string `msgpack:"code"`
}

// Local is one entry of a function's locals table.
type Local struct {
	Slot int    `msgpack:"slot"`
	Name string `msgpack:"name"`
	Type string `msgpack:"type"`
	Temp bool   `msgpack:"temp,omitempty"`
}

// Import is a function the module calls but does not define.
type Import struct {
	ID         int    `msgpack:"id"`
	Owner      string `msgpack:"owner"`
	Name       string `msgpack:"name"`
	Descriptor string `msgpack:"desc"`
}

// Export publishes a module function under Name.
type Export struct {
	Name string `msgpack:"name"`
	Func int    `msgpack:"func"`
}

// Global is a static field: module globals live on the facade class.
type Global struct {
	Owner string `msgpack:"owner"`
	Name  string `msgpack:"name"`
	Type  string `msgpack:"type"`
}

// Class is the runtime metadata of one class, root included.
type Class struct {
	ID         int         `msgpack:"id"`
	Name       string      `msgpack:"name"`
	Super      int         `msgpack:"super"` // -1 for the root
	VTable     []Slot      `msgpack:"vtable"`
	Interfaces []int       `msgpack:"interfaces"`
	Fields     []FieldSlot `msgpack:"fields"`
	Size       int         `msgpack:"size"`
	Record     int         `msgpack:"record"` // byte offset into Data
}

// Slot is one vtable entry.
type Slot struct {
	Signature string `msgpack:"sig"`
	Owner     string `msgpack:"owner"`
	Func      int    `msgpack:"func"`
}

// FieldSlot places an instance field in linear memory.
type FieldSlot struct {
	Owner  string `msgpack:"owner"`
	Name   string `msgpack:"name"`
	Type   string `msgpack:"type"`
	Offset int    `msgpack:"offset"`
}

// Interface is the runtime identity of an interface.
type Interface struct {
	ID     int    `msgpack:"id"`
	Name   string `msgpack:"name"`
	Supers []int  `msgpack:"supers"`
}

// Func returns the function with the given id.
func (a *Artifact) Func(id int) (*Function, bool) {
	for i := range a.Functions {
		if a.Functions[i].ID == id {
			return &a.Functions[i], true
		}
	}
	return nil, false
}

// Lookup finds a function by owner and name.
func (a *Artifact) Lookup(owner, name string) (*Function, bool) {
	for i := range a.Functions {
		if a.Functions[i].Owner == owner && a.Functions[i].Name == name {
			return &a.Functions[i], true
		}
	}
	return nil, false
}
