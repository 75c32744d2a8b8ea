package ir

import (
	"errors"
	"fmt"

	"stackc/internal/types"
)

// Validate checks structural invariants of a decoded module: descriptors
// parse, kinds are known and each kind carries its required payload.
func Validate(m *Module, in *types.Interner) error {
	if m == nil {
		return nil
	}
	var errs []error
	if m.Name == "" {
		errs = append(errs, errors.New("module has no name"))
	}
	for i := range m.Interfaces {
		if m.Interfaces[i].Name == "" {
			errs = append(errs, fmt.Errorf("interface #%d has no name", i))
		}
	}
	for i := range m.Globals {
		g := &m.Globals[i]
		if err := checkDesc(in, g.Type, false); err != nil {
			errs = append(errs, fmt.Errorf("global %s: %w", g.Name, err))
		}
		if g.Init != nil {
			if err := validateExpr(g.Init, in); err != nil {
				errs = append(errs, fmt.Errorf("global %s: %w", g.Name, err))
			}
		}
	}
	for i := range m.Funcs {
		if err := validateFunc(&m.Funcs[i], in); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", m.Funcs[i].Name, err))
		}
	}
	for i := range m.Classes {
		c := &m.Classes[i]
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("class #%d has no name", i))
			continue
		}
		for j := range c.Fields {
			if err := checkDesc(in, c.Fields[j].Type, false); err != nil {
				errs = append(errs, fmt.Errorf("class %s: field %s: %w", c.Name, c.Fields[j].Name, err))
			}
		}
		for j := range c.Methods {
			if err := validateFunc(&c.Methods[j], in); err != nil {
				errs = append(errs, fmt.Errorf("class %s: method %s: %w", c.Name, c.Methods[j].Name, err))
			}
		}
	}
	return errors.Join(errs...)
}

func checkDesc(in *types.Interner, desc string, voidOK bool) error {
	if desc == "" {
		return errors.New("missing type")
	}
	id, err := in.Parse(desc)
	if err != nil {
		return err
	}
	if !voidOK && in.KindOf(id) == types.KindVoid {
		return fmt.Errorf("type %s cannot be void", desc)
	}
	return nil
}

func validateFunc(f *Func, in *types.Interner) error {
	var errs []error
	if f.Name == "" {
		errs = append(errs, errors.New("missing name"))
	}
	if f.Return != "" {
		if err := checkDesc(in, f.Return, true); err != nil {
			errs = append(errs, fmt.Errorf("return: %w", err))
		}
	}
	if f.Virtual && f.Static {
		errs = append(errs, errors.New("static function cannot be virtual"))
	}
	for _, p := range f.Params {
		if err := checkDesc(in, p.Type, false); err != nil {
			errs = append(errs, fmt.Errorf("param %s: %w", p.Name, err))
		}
	}
	for i := range f.Body {
		if err := validateExpr(&f.Body[i], in); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func validateCall(c *Call, in *types.Interner) error {
	if c.Owner == "" || c.Name == "" {
		return errors.New("call without owner or name")
	}
	switch c.Kind {
	case "", "static", "virtual", "special", "interface":
	default:
		return fmt.Errorf("call %s.%s: unknown kind %q", c.Owner, c.Name, c.Kind)
	}
	for _, d := range append([]string{c.Extension, c.Dispatch}, c.Params...) {
		if d == "" {
			continue
		}
		if err := checkDesc(in, d, false); err != nil {
			return fmt.Errorf("call %s.%s: %w", c.Owner, c.Name, err)
		}
	}
	if c.Return != "" {
		if err := checkDesc(in, c.Return, true); err != nil {
			return fmt.Errorf("call %s.%s: %w", c.Owner, c.Name, err)
		}
	}
	return nil
}

func validateExpr(root *Expr, in *types.Interner) error {
	var errs []error
	Walk(root, func(e *Expr) bool {
		if !e.Kind.Known() {
			errs = append(errs, fmt.Errorf("unknown expression kind %q", e.Kind))
			return false
		}
		if e.Type != "" {
			if err := checkDesc(in, e.Type, true); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", e.Kind, err))
			}
		}
		for _, c := range []*Call{e.Call, e.Getter, e.Setter} {
			if c == nil {
				continue
			}
			if err := validateCall(c, in); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", e.Kind, err))
			}
		}
		if err := requirePayload(e); err != nil {
			errs = append(errs, err)
		}
		return true
	})
	return errors.Join(errs...)
}

func requirePayload(e *Expr) error {
	missing := func(what string) error {
		return fmt.Errorf("%s expression without %s", e.Kind, what)
	}
	switch e.Kind {
	case ExprConst:
		if e.Type == "" {
			return missing("type")
		}
	case ExprLocal:
		if e.Name == "" {
			return missing("name")
		}
	case ExprField:
		if e.Owner == "" || e.Name == "" || e.Type == "" {
			return missing("owner, name and type")
		}
		if !e.Static && e.Recv == nil {
			return missing("receiver")
		}
	case ExprProperty:
		if e.Getter == nil && e.FieldName == "" && e.Const == nil {
			return missing("getter, backing field or constant")
		}
		if e.Type == "" {
			return missing("type")
		}
	case ExprIndex, ExprBinary:
		if e.X == nil || e.Y == nil {
			return missing("operands")
		}
	case ExprElement:
		if e.Getter == nil && e.Setter == nil {
			return missing("get or set call")
		}
	case ExprCaptured:
		if e.Owner == "" || e.Name == "" || e.Recv == nil {
			return missing("closure owner, field and receiver")
		}
	case ExprCall, ExprNew:
		if e.Call == nil {
			return missing("call")
		}
	case ExprDefault:
		if e.X == nil {
			return missing("default value")
		}
	case ExprAssign, ExprCompound:
		if e.X == nil || e.Y == nil {
			return missing("target and value")
		}
		if !e.X.Kind.IsPlace() {
			return fmt.Errorf("%s target is not assignable (%s)", e.Kind, e.X.Kind)
		}
	case ExprIncr:
		if e.X == nil || !e.X.Kind.IsPlace() {
			return missing("assignable target")
		}
	case ExprIf:
		if e.X == nil {
			return missing("condition")
		}
	case ExprLet:
		if e.Name == "" {
			return missing("name")
		}
		if e.Type == "V" || (e.Y != nil && isVoid(e.Y)) {
			return fmt.Errorf("let %s: initialiser is void", e.Name)
		}
		if e.Type == "" {
			return missing("type")
		}
		if e.Delegate != nil && e.Getter == nil {
			return missing("getValue call")
		}
	}
	return nil
}

// isVoid reports whether e is known to produce no value.
func isVoid(e *Expr) bool {
	if e.Type != "" {
		return e.Type == "V"
	}
	return e.Kind == ExprCall && e.Call != nil && (e.Call.Return == "" || e.Call.Return == "V")
}
