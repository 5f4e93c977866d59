package vm

import (
	"fmt"
	"strings"
)

// Type is a parsed field type from a method descriptor.
type Type struct {
	Elem  *Type  // element type for arrays
	Class string // binary class name for objects, e.g. "java/lang/String"
	Kind  Kind
}

func (t Type) String() string {
	switch t.Kind {
	case KindObject:
		return "L" + t.Class + ";"
	case KindArray:
		return "[" + t.Elem.String()
	}
	return string(t.Kind)
}

// Accepts reports whether v can be passed where t is expected.
// Reference types accept any reference, including null.
func (t Type) Accepts(v Value) bool {
	if t.Kind.IsReference() {
		return v.Kind().IsReference()
	}
	return v.Kind() == t.Kind
}

// Descriptor is a parsed JNI method descriptor such as "(Ljava/lang/String;I)V".
type Descriptor struct {
	Params []Type
	Return Type
	raw    string
}

// String returns the descriptor text.
func (d *Descriptor) String() string { return d.raw }

// ParseDescriptor parses a method descriptor.
func ParseDescriptor(s string) (*Descriptor, error) {
	if !strings.HasPrefix(s, "(") {
		return nil, fmt.Errorf("descriptor %q: missing '('", s)
	}
	rest := s[1:]
	d := &Descriptor{raw: s}

	for {
		if rest == "" {
			return nil, fmt.Errorf("descriptor %q: missing ')'", s)
		}
		if rest[0] == ')' {
			rest = rest[1:]
			break
		}
		t, n, err := parseType(rest)
		if err != nil {
			return nil, fmt.Errorf("descriptor %q: %w", s, err)
		}
		if t.Kind == KindVoid {
			return nil, fmt.Errorf("descriptor %q: void parameter", s)
		}
		d.Params = append(d.Params, t)
		rest = rest[n:]
	}

	ret, n, err := parseType(rest)
	if err != nil {
		return nil, fmt.Errorf("descriptor %q: return: %w", s, err)
	}
	if n != len(rest) {
		return nil, fmt.Errorf("descriptor %q: trailing %q", s, rest[n:])
	}
	d.Return = ret
	return d, nil
}

// MustParseDescriptor is like ParseDescriptor but panics on malformed input.
// Intended for static method tables initialized at package load.
func MustParseDescriptor(s string) *Descriptor {
	d, err := ParseDescriptor(s)
	if err != nil {
		panic(err)
	}
	return d
}

func parseType(s string) (Type, int, error) {
	if s == "" {
		return Type{}, 0, fmt.Errorf("unexpected end")
	}
	switch k := Kind(s[0]); k {
	case KindVoid, KindBoolean, KindByte, KindChar, KindShort, KindInt, KindLong, KindFloat, KindDouble:
		return Type{Kind: k}, 1, nil
	case KindObject:
		end := strings.IndexByte(s, ';')
		if end < 2 {
			return Type{}, 0, fmt.Errorf("malformed class type %q", s)
		}
		return Type{Kind: KindObject, Class: s[1:end]}, end + 1, nil
	case KindArray:
		elem, n, err := parseType(s[1:])
		if err != nil {
			return Type{}, 0, err
		}
		if elem.Kind == KindVoid {
			return Type{}, 0, fmt.Errorf("array of void")
		}
		return Type{Kind: KindArray, Elem: &elem}, n + 1, nil
	default:
		return Type{}, 0, fmt.Errorf("unknown type %q", s[0])
	}
}

// Method names a foreign method together with its parsed descriptor.
type Method struct {
	desc       *Descriptor
	Name       string
	Descriptor string
}

// NewMethod builds a Method, panicking on a malformed descriptor. Method
// tables are package-level variables, so a bad entry fails at init.
func NewMethod(name, descriptor string) Method {
	return Method{
		Name:       name,
		Descriptor: descriptor,
		desc:       MustParseDescriptor(descriptor),
	}
}

// Constructor returns the <init> method with the given descriptor.
func Constructor(descriptor string) Method {
	return NewMethod("<init>", descriptor)
}

// Parsed returns the parsed descriptor.
func (m Method) Parsed() *Descriptor {
	if m.desc == nil {
		m.desc = MustParseDescriptor(m.Descriptor)
	}
	return m.desc
}

func (m Method) String() string {
	return m.Name + m.Descriptor
}
