package codegen

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// WriteListing renders the artifact as text: tables first, then every
// function with its locals and numbered code.
func (a *Artifact) WriteListing(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "module %s (facade %s)\n", a.Module, a.Facade)

	if len(a.Strings) > 0 {
		fmt.Fprintln(bw, "strings:")
		for i, s := range a.Strings {
			fmt.Fprintf(bw, "  #%d %q\n", i, s)
		}
	}
	if len(a.Imports) > 0 {
		fmt.Fprintln(bw, "imports:")
		for _, im := range a.Imports {
			fmt.Fprintf(bw, "  #%d %s.%s%s\n", im.ID, im.Owner, im.Name, im.Descriptor)
		}
	}
	if len(a.Exports) > 0 {
		fmt.Fprintln(bw, "exports:")
		for _, ex := range a.Exports {
			fmt.Fprintf(bw, "  %s -> fn#%d\n", ex.Name, ex.Func)
		}
	}
	if len(a.Globals) > 0 {
		fmt.Fprintln(bw, "globals:")
		for _, g := range a.Globals {
			fmt.Fprintf(bw, "  %s.%s:%s\n", g.Owner, g.Name, g.Type)
		}
	}
	for i := range a.Classes {
		a.writeClass(bw, &a.Classes[i])
	}
	for i := range a.Functions {
		writeFunction(bw, &a.Functions[i])
	}
	return bw.Flush()
}

// WriteClasses renders only the class metadata: interfaces, classes and the
// signature table the data segment refers to.
func (a *Artifact) WriteClasses(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, it := range a.Interfaces {
		fmt.Fprintf(bw, "interface #%d %s", it.ID, it.Name)
		if len(it.Supers) > 0 {
			fmt.Fprintf(bw, " extends %v", it.Supers)
		}
		fmt.Fprintln(bw)
	}
	for i := range a.Classes {
		a.writeClass(bw, &a.Classes[i])
	}
	if len(a.Signatures) > 0 {
		fmt.Fprintln(bw, "signatures:")
		for i, s := range a.Signatures {
			fmt.Fprintf(bw, "  #%d %s\n", i, s)
		}
	}
	fmt.Fprintf(bw, "data segment: %d bytes\n", len(a.Data))
	return bw.Flush()
}

func (a *Artifact) writeClass(w io.Writer, c *Class) {
	fmt.Fprintf(w, "class #%d %s", c.ID, c.Name)
	if c.Super >= 0 {
		fmt.Fprintf(w, " extends #%d", c.Super)
	}
	fmt.Fprintf(w, " size=%d record@%d\n", c.Size, c.Record)
	width := 0
	for _, f := range c.Fields {
		width = max(width, runewidth.StringWidth(f.Name))
	}
	for _, f := range c.Fields {
		fmt.Fprintf(w, "  field %s %-4s @%d\n", runewidth.FillRight(f.Name, width), f.Type, f.Offset)
	}
	for i, s := range c.VTable {
		fmt.Fprintf(w, "  slot %d %s -> fn#%d (%s)\n", i, s.Signature, s.Func, s.Owner)
	}
	for _, id := range c.Interfaces {
		name := ""
		for _, it := range a.Interfaces {
			if it.ID == id {
				name = it.Name
			}
		}
		fmt.Fprintf(w, "  implements #%d %s\n", id, name)
	}
}

func writeFunction(w io.Writer, f *Function) {
	kind := "method"
	if f.Static {
		kind = "static"
	}
	fmt.Fprintf(w, "fn#%d %s.%s%s %s max_stack=%d max_locals=%d\n", f.ID, f.Owner, f.Name, f.Descriptor, kind, f.MaxStack, f.MaxLocals)
	if len(f.Locals) > 0 {
		width := 0
		for _, l := range f.Locals {
			width = max(width, runewidth.StringWidth(localName(l)))
		}
		fmt.Fprintln(w, "  locals:")
		for _, l := range f.Locals {
			fmt.Fprintf(w, "    %2d %s %s\n", l.Slot, runewidth.FillRight(localName(l), width), l.Type)
		}
	}
	fmt.Fprintln(w, "  code:")
	width := 0
	for _, ins := range f.Code {
		op, _, _ := strings.Cut(ins, " ")
		width = max(width, runewidth.StringWidth(op))
	}
	n := 0
	for _, ins := range f.Code {
		if strings.HasSuffix(ins, ":") {
			fmt.Fprintf(w, "   %s\n", ins)
			continue
		}
		op, operand, _ := strings.Cut(ins, " ")
		line := strings.TrimRight(runewidth.FillRight(op, width)+" "+operand, " ")
		fmt.Fprintf(w, "    %3d  %s\n", n, line)
		n++
	}
}

func localName(l Local) string {
	if l.Temp {
		return "<temp>"
	}
	return l.Name
}
