package vm

import (
	"fmt"
	"math"
)

// Kind is a foreign value kind, spelled as its descriptor character.
type Kind byte

const (
	KindVoid    Kind = 'V'
	KindBoolean Kind = 'Z'
	KindByte    Kind = 'B'
	KindChar    Kind = 'C'
	KindShort   Kind = 'S'
	KindInt     Kind = 'I'
	KindLong    Kind = 'J'
	KindFloat   Kind = 'F'
	KindDouble  Kind = 'D'
	KindObject  Kind = 'L'
	KindArray   Kind = '['
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBoolean:
		return "boolean"
	case KindByte:
		return "byte"
	case KindChar:
		return "char"
	case KindShort:
		return "short"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	}
	return fmt.Sprintf("kind(%q)", byte(k))
}

// IsReference reports whether values of this kind are object references.
func (k Kind) IsReference() bool {
	return k == KindObject || k == KindArray
}

// Value is a tagged foreign value, the host-side counterpart of a JNI jvalue.
type Value struct {
	obj  Object
	bits uint64
	kind Kind
}

// Void is the result of a method returning nothing.
var Void = Value{kind: KindVoid}

func Bool(b bool) Value {
	v := Value{kind: KindBoolean}
	if b {
		v.bits = 1
	}
	return v
}

func Byte(b int8) Value     { return Value{kind: KindByte, bits: uint64(b)} }
func Char(c uint16) Value   { return Value{kind: KindChar, bits: uint64(c)} }
func Short(s int16) Value   { return Value{kind: KindShort, bits: uint64(s)} }
func Int(i int32) Value     { return Value{kind: KindInt, bits: uint64(i)} }
func Long(l int64) Value    { return Value{kind: KindLong, bits: uint64(l)} }
func Float(f float32) Value { return Value{kind: KindFloat, bits: uint64(math.Float32bits(f))} }
func Double(d float64) Value {
	return Value{kind: KindDouble, bits: math.Float64bits(d)}
}

// Ref wraps an object reference. A nil obj is the foreign null.
func Ref(obj Object) Value { return Value{kind: KindObject, obj: obj} }

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

func (v Value) mismatch(want Kind) error {
	return fmt.Errorf("vm: value is %s, not %s", v.kind, want)
}

func (v Value) Bool() (bool, error) {
	if v.kind != KindBoolean {
		return false, v.mismatch(KindBoolean)
	}
	return v.bits != 0, nil
}

func (v Value) Byte() (int8, error) {
	if v.kind != KindByte {
		return 0, v.mismatch(KindByte)
	}
	return int8(v.bits), nil
}

func (v Value) Char() (uint16, error) {
	if v.kind != KindChar {
		return 0, v.mismatch(KindChar)
	}
	return uint16(v.bits), nil
}

func (v Value) Short() (int16, error) {
	if v.kind != KindShort {
		return 0, v.mismatch(KindShort)
	}
	return int16(v.bits), nil
}

func (v Value) Int() (int32, error) {
	if v.kind != KindInt {
		return 0, v.mismatch(KindInt)
	}
	return int32(v.bits), nil
}

func (v Value) Long() (int64, error) {
	if v.kind != KindLong {
		return 0, v.mismatch(KindLong)
	}
	return int64(v.bits), nil
}

func (v Value) Float() (float32, error) {
	if v.kind != KindFloat {
		return 0, v.mismatch(KindFloat)
	}
	return math.Float32frombits(uint32(v.bits)), nil
}

func (v Value) Double() (float64, error) {
	if v.kind != KindDouble {
		return 0, v.mismatch(KindDouble)
	}
	return math.Float64frombits(v.bits), nil
}

// Object returns the referenced object; nil means the foreign null.
func (v Value) Object() (Object, error) {
	if !v.kind.IsReference() {
		return nil, v.mismatch(KindObject)
	}
	return v.obj, nil
}

// Bits returns the raw primitive payload. Backends use it to fill native
// argument slots.
func (v Value) Bits() uint64 { return v.bits }

func (v Value) String() string {
	switch v.kind {
	case KindVoid:
		return "void"
	case KindBoolean:
		b, _ := v.Bool()
		return fmt.Sprintf("boolean(%t)", b)
	case KindFloat:
		f, _ := v.Float()
		return fmt.Sprintf("float(%g)", f)
	case KindDouble:
		d, _ := v.Double()
		return fmt.Sprintf("double(%g)", d)
	case KindObject, KindArray:
		if v.obj == nil {
			return "null"
		}
		return fmt.Sprintf("ref(%s)", v.obj.RefKind())
	}
	return fmt.Sprintf("%s(%d)", v.kind, int64(v.bits))
}
