package vm

import (
	"github.com/wippyai/tika-bridge/errors"
)

// The helpers in this file pair every foreign call with CheckException, so a
// pending exception never outlives the call site that raised it. Lookup
// misses become KindSetup errors; everything else that goes wrong inside the
// foreign runtime becomes KindBridgeCall.

// FindClass resolves a class by binary name.
func FindClass(env Env, phase errors.Phase, name string) (Class, error) {
	cls, err := env.FindClass(name)
	if terr := translate(env, phase, name, Method{}, err); terr != nil {
		return nil, terr
	}
	if cls == nil {
		return nil, errors.ClassNotFound(phase, name, nil)
	}
	return cls, nil
}

// NewObject constructs an instance of cls with the given constructor.
func NewObject(env Env, phase errors.Phase, cls Class, ctor Method, args ...Value) (Object, error) {
	if err := CheckArgs(phase, ctor, args); err != nil {
		err.Class = cls.ClassName()
		return nil, err
	}
	obj, err := env.NewObject(cls, ctor.Descriptor, args...)
	if terr := translate(env, phase, cls.ClassName(), ctor, err); terr != nil {
		return nil, terr
	}
	if obj == nil {
		return nil, errors.New(phase, errors.KindBridgeCall).
			Class(cls.ClassName()).
			Method(ctor.Name, ctor.Descriptor).
			Detail("constructor returned null").
			Build()
	}
	return obj, nil
}

// Call invokes an instance method. class is used for error reporting only.
func Call(env Env, phase errors.Phase, obj Object, class string, m Method, args ...Value) (Value, error) {
	if obj == nil {
		return Value{}, errors.New(phase, errors.KindBridgeCall).
			Class(class).
			Method(m.Name, m.Descriptor).
			Detail("null receiver").
			Build()
	}
	if err := CheckArgs(phase, m, args); err != nil {
		err.Class = class
		return Value{}, err
	}
	v, err := env.CallMethod(obj, m.Name, m.Descriptor, args...)
	if terr := translate(env, phase, class, m, err); terr != nil {
		return Value{}, terr
	}
	if err := checkReturn(phase, class, m, v); err != nil {
		return Value{}, err
	}
	return v, nil
}

// CallStatic invokes a static method on cls.
func CallStatic(env Env, phase errors.Phase, cls Class, m Method, args ...Value) (Value, error) {
	if err := CheckArgs(phase, m, args); err != nil {
		err.Class = cls.ClassName()
		return Value{}, err
	}
	v, err := env.CallStaticMethod(cls, m.Name, m.Descriptor, args...)
	if terr := translate(env, phase, cls.ClassName(), m, err); terr != nil {
		return Value{}, terr
	}
	if err := checkReturn(phase, cls.ClassName(), m, v); err != nil {
		return Value{}, err
	}
	return v, nil
}

// CallBool invokes a method returning boolean.
func CallBool(env Env, phase errors.Phase, obj Object, class string, m Method, args ...Value) (bool, error) {
	v, err := Call(env, phase, obj, class, m, args...)
	if err != nil {
		return false, err
	}
	return v.Bool()
}

// CallByte invokes a method returning byte.
func CallByte(env Env, phase errors.Phase, obj Object, class string, m Method, args ...Value) (int8, error) {
	v, err := Call(env, phase, obj, class, m, args...)
	if err != nil {
		return 0, err
	}
	return v.Byte()
}

// CallInt invokes a method returning int.
func CallInt(env Env, phase errors.Phase, obj Object, class string, m Method, args ...Value) (int32, error) {
	v, err := Call(env, phase, obj, class, m, args...)
	if err != nil {
		return 0, err
	}
	return v.Int()
}

// CallObject invokes a method returning a reference. The result may be nil.
func CallObject(env Env, phase errors.Phase, obj Object, class string, m Method, args ...Value) (Object, error) {
	v, err := Call(env, phase, obj, class, m, args...)
	if err != nil {
		return nil, err
	}
	return v.Object()
}

// CallString invokes a method returning java.lang.String and converts the
// result. A null string converts to "".
func CallString(env Env, phase errors.Phase, obj Object, class string, m Method, args ...Value) (string, error) {
	str, err := CallObject(env, phase, obj, class, m, args...)
	if err != nil || str == nil {
		return "", err
	}
	defer env.DeleteLocalRef(str)
	return GetString(env, phase, str)
}

// NewString creates a foreign string.
func NewString(env Env, phase errors.Phase, s string) (Object, error) {
	str, err := env.NewString(s)
	if terr := translate(env, phase, "java/lang/String", Method{}, err); terr != nil {
		return nil, terr
	}
	return str, nil
}

// GetString converts a foreign string to a Go string.
func GetString(env Env, phase errors.Phase, str Object) (string, error) {
	s, err := env.GetString(str)
	if terr := translate(env, phase, "java/lang/String", Method{}, err); terr != nil {
		return "", terr
	}
	return s, nil
}

// NewByteArray allocates a foreign byte[] of length n.
func NewByteArray(env Env, phase errors.Phase, n int) (Object, error) {
	arr, err := env.NewByteArray(n)
	if terr := translate(env, phase, "[B", Method{}, err); terr != nil {
		return nil, terr
	}
	return arr, nil
}

// GetByteArrayRegion copies len(dst) elements of arr, starting at start, into dst.
func GetByteArrayRegion(env Env, phase errors.Phase, arr Object, start int, dst []int8) error {
	err := env.GetByteArrayRegion(arr, start, dst)
	return translate(env, phase, "[B", Method{}, err)
}

// SetByteArrayRegion copies src into arr starting at start.
func SetByteArrayRegion(env Env, phase errors.Phase, arr Object, start int, src []int8) error {
	err := env.SetByteArrayRegion(arr, start, src)
	return translate(env, phase, "[B", Method{}, err)
}

// ArrayLength returns the length of a foreign array.
func ArrayLength(env Env, phase errors.Phase, arr Object) (int, error) {
	n, err := env.GetArrayLength(arr)
	if terr := translate(env, phase, "[Ljava/lang/Object;", Method{}, err); terr != nil {
		return 0, terr
	}
	return n, nil
}

// ArrayElement returns element i of a foreign object array. The result may
// be nil.
func ArrayElement(env Env, phase errors.Phase, arr Object, i int) (Object, error) {
	el, err := env.GetObjectArrayElement(arr, i)
	if terr := translate(env, phase, "[Ljava/lang/Object;", Method{}, err); terr != nil {
		return nil, terr
	}
	return el, nil
}

// CheckArgs verifies count and kinds of args against m's descriptor.
func CheckArgs(phase errors.Phase, m Method, args []Value) *errors.Error {
	params := m.Parsed().Params
	if len(args) != len(params) {
		return errors.New(phase, errors.KindBridgeCall).
			Method(m.Name, m.Descriptor).
			Detail("got %d arguments, want %d", len(args), len(params)).
			Build()
	}
	for i, p := range params {
		if !p.Accepts(args[i]) {
			return errors.ArgMismatch(phase, m.Name, m.Descriptor, i, p.Kind.String(), args[i].Kind().String())
		}
	}
	return nil
}

func checkReturn(phase errors.Phase, class string, m Method, v Value) error {
	want := m.Parsed().Return
	ok := v.Kind() == want.Kind
	if want.Kind.IsReference() {
		ok = v.Kind().IsReference()
	}
	if ok {
		return nil
	}
	return errors.New(phase, errors.KindBridgeCall).
		Class(class).
		Method(m.Name, m.Descriptor).
		Detail("returned %s, want %s", v.Kind(), want.Kind).
		Build()
}

// translate clears any pending exception and converts err into a bridge
// error. It returns nil when the call succeeded and nothing is pending.
func translate(env Env, phase errors.Phase, class string, m Method, err error) error {
	exc := CheckException(env)
	if err == nil && exc == nil {
		return nil
	}

	var cause error = err
	if exc != nil {
		cause = exc
	}

	var lookup *LookupError
	if errors.As(err, &lookup) {
		if lookup.Method == "" {
			return errors.ClassNotFound(phase, lookup.Class, cause)
		}
		return errors.MethodNotFound(phase, lookup.Class, lookup.Method, lookup.Descriptor, cause)
	}

	b := errors.New(phase, errors.KindBridgeCall).Class(class).Cause(cause)
	if m.Name != "" {
		b.Method(m.Name, m.Descriptor)
	}
	if err != nil && exc != nil {
		b.Detail("%v", err)
	}
	return b.Build()
}

// ExceptionCause returns the foreign exception carried by err, if any.
func ExceptionCause(err error) (*Exception, bool) {
	var exc *Exception
	if errors.As(err, &exc) {
		return exc, true
	}
	return nil, false
}
