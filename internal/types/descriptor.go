package types

import (
	"fmt"
	"strings"
)

var primitiveDescriptors = map[Kind]byte{
	KindVoid:   'V',
	KindBool:   'Z',
	KindByte:   'B',
	KindShort:  'S',
	KindChar:   'C',
	KindInt:    'I',
	KindLong:   'J',
	KindFloat:  'F',
	KindDouble: 'D',
}

// Descriptor renders id in field-descriptor syntax ("I", "[J", "Ljava/lang/String;").
func (in *Interner) Descriptor(id TypeID) string {
	var sb strings.Builder
	in.writeDescriptor(&sb, id)
	return sb.String()
}

func (in *Interner) writeDescriptor(sb *strings.Builder, id TypeID) {
	tt, ok := in.Lookup(id)
	if !ok {
		sb.WriteString("?")
		return
	}
	switch tt.Kind {
	case KindObject:
		sb.WriteByte('L')
		sb.WriteString(tt.Name)
		sb.WriteByte(';')
	case KindArray:
		sb.WriteByte('[')
		in.writeDescriptor(sb, tt.Elem)
	default:
		sb.WriteByte(primitiveDescriptors[tt.Kind])
	}
}

// MethodDescriptor renders a method descriptor "(params)ret".
func (in *Interner) MethodDescriptor(params []TypeID, ret TypeID) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, p := range params {
		in.writeDescriptor(&sb, p)
	}
	sb.WriteByte(')')
	if ret == NoTypeID {
		ret = in.builtins.Void
	}
	in.writeDescriptor(&sb, ret)
	return sb.String()
}

// Parse interns the type named by a field descriptor.
func (in *Interner) Parse(desc string) (TypeID, error) {
	id, rest, err := in.parseOne(desc)
	if err != nil {
		return NoTypeID, fmt.Errorf("descriptor %q: %w", desc, err)
	}
	if rest != "" {
		return NoTypeID, fmt.Errorf("descriptor %q: trailing %q", desc, rest)
	}
	return id, nil
}

// MustParse is Parse for descriptors known to be well formed.
func (in *Interner) MustParse(desc string) TypeID {
	id, err := in.Parse(desc)
	if err != nil {
		panic(err)
	}
	return id
}

func (in *Interner) parseOne(desc string) (TypeID, string, error) {
	if desc == "" {
		return NoTypeID, "", fmt.Errorf("empty descriptor")
	}
	switch desc[0] {
	case 'V':
		return in.builtins.Void, desc[1:], nil
	case 'Z':
		return in.builtins.Bool, desc[1:], nil
	case 'B':
		return in.builtins.Byte, desc[1:], nil
	case 'S':
		return in.builtins.Short, desc[1:], nil
	case 'C':
		return in.builtins.Char, desc[1:], nil
	case 'I':
		return in.builtins.Int, desc[1:], nil
	case 'J':
		return in.builtins.Long, desc[1:], nil
	case 'F':
		return in.builtins.Float, desc[1:], nil
	case 'D':
		return in.builtins.Double, desc[1:], nil
	case 'L':
		end := strings.IndexByte(desc, ';')
		if end < 2 {
			return NoTypeID, "", fmt.Errorf("unterminated class name")
		}
		return in.Object(desc[1:end]), desc[end+1:], nil
	case '[':
		elem, rest, err := in.parseOne(desc[1:])
		if err != nil {
			return NoTypeID, "", err
		}
		if in.KindOf(elem) == KindVoid {
			return NoTypeID, "", fmt.Errorf("array of void")
		}
		return in.ArrayOf(elem), rest, nil
	default:
		return NoTypeID, "", fmt.Errorf("unexpected %q", desc[0])
	}
}
