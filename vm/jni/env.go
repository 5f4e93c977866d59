//go:build jni && cgo

package jni

/*
#include "shim.h"
*/
import "C"

import (
	"fmt"
	"unicode/utf16"
	"unsafe"

	"github.com/wippyai/tika-bridge/vm"
)

// Env wraps a JNIEnv pointer for one attached thread.
type Env struct {
	vm  *VM
	env *C.JNIEnv
}

var _ vm.Env = (*Env)(nil)

func (e *Env) pending() error {
	if C.tb_exception_check(e.env) != 0 {
		return vm.ErrPendingException
	}
	return nil
}

func (e *Env) FindClass(name string) (vm.Class, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	cls := C.tb_find_class(e.env, cname)
	if cls == 0 {
		return nil, &vm.LookupError{Class: name}
	}
	return &classRef{ref: &ref{obj: C.jobject(cls), kind: vm.RefLocal}, name: name}, nil
}

// methodID resolves a method. Static and constructor IDs are cached per
// class name; instance IDs are looked up on the receiver's runtime class.
func (e *Env) methodID(cls C.jclass, className, name, descriptor string, static bool) (C.jmethodID, error) {
	key := className + "\x00" + name + "\x00" + descriptor
	if static && className != "" {
		e.vm.mu.Lock()
		id, ok := e.vm.statics[key]
		e.vm.mu.Unlock()
		if ok {
			return id, nil
		}
	}

	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	csig := C.CString(descriptor)
	defer C.free(unsafe.Pointer(csig))

	var id C.jmethodID
	if static {
		id = C.tb_get_static_method(e.env, cls, cname, csig)
	} else {
		id = C.tb_get_method(e.env, cls, cname, csig)
	}
	if id == nil {
		return nil, &vm.LookupError{Class: className, Method: name, Descriptor: descriptor}
	}
	if static && className != "" {
		e.vm.mu.Lock()
		e.vm.statics[key] = id
		e.vm.mu.Unlock()
	}
	return id, nil
}

func (e *Env) jvalues(params []vm.Type, args []vm.Value) ([]C.jvalue, error) {
	if len(args) != len(params) {
		return nil, fmt.Errorf("jni: got %d arguments, want %d", len(args), len(params))
	}
	if len(args) == 0 {
		return nil, nil
	}
	out := make([]C.jvalue, len(args))
	for i, a := range args {
		p := unsafe.Pointer(&out[i])
		bits := a.Bits()
		switch a.Kind() {
		case vm.KindBoolean:
			*(*C.jboolean)(p) = C.jboolean(bits)
		case vm.KindByte:
			*(*C.jbyte)(p) = C.jbyte(int8(bits))
		case vm.KindChar:
			*(*C.jchar)(p) = C.jchar(uint16(bits))
		case vm.KindShort:
			*(*C.jshort)(p) = C.jshort(int16(bits))
		case vm.KindInt:
			*(*C.jint)(p) = C.jint(int32(bits))
		case vm.KindLong:
			*(*C.jlong)(p) = C.jlong(int64(bits))
		case vm.KindFloat:
			f, _ := a.Float()
			*(*C.jfloat)(p) = C.jfloat(f)
		case vm.KindDouble:
			d, _ := a.Double()
			*(*C.jdouble)(p) = C.jdouble(d)
		case vm.KindObject, vm.KindArray:
			obj, _ := a.Object()
			*(*C.jobject)(p) = unwrap(obj)
		default:
			return nil, fmt.Errorf("jni: argument %d has kind %s", i, a.Kind())
		}
	}
	return out, nil
}

func argPtr(args []C.jvalue) *C.jvalue {
	if len(args) == 0 {
		return nil
	}
	return &args[0]
}

func (e *Env) NewObject(cls vm.Class, descriptor string, args ...vm.Value) (vm.Object, error) {
	d, err := e.vm.descriptor(descriptor)
	if err != nil {
		return nil, err
	}
	jcls := C.jclass(unwrap(cls))
	id, err := e.methodID(jcls, cls.ClassName(), "<init>", descriptor, true)
	if err != nil {
		return nil, err
	}
	jargs, err := e.jvalues(d.Params, args)
	if err != nil {
		return nil, err
	}
	obj := C.tb_new_object(e.env, jcls, id, argPtr(jargs))
	if err := e.pending(); err != nil {
		return nil, err
	}
	return local(obj), nil
}

func (e *Env) CallMethod(obj vm.Object, name, descriptor string, args ...vm.Value) (vm.Value, error) {
	d, err := e.vm.descriptor(descriptor)
	if err != nil {
		return vm.Value{}, err
	}
	jobj := unwrap(obj)
	if jobj == 0 {
		return vm.Value{}, fmt.Errorf("jni: call %s on null", name)
	}
	cls := C.tb_get_object_class(e.env, jobj)
	defer C.tb_delete_local(e.env, C.jobject(cls))

	id, err := e.methodID(cls, "", name, descriptor, false)
	if err != nil {
		if lookup, ok := err.(*vm.LookupError); ok {
			lookup.Class = e.className(cls)
		}
		return vm.Value{}, err
	}
	jargs, err := e.jvalues(d.Params, args)
	if err != nil {
		return vm.Value{}, err
	}

	a := argPtr(jargs)
	var v vm.Value
	switch d.Return.Kind {
	case vm.KindVoid:
		C.tb_call_void(e.env, jobj, id, a)
		v = vm.Void
	case vm.KindBoolean:
		v = vm.Bool(C.tb_call_boolean(e.env, jobj, id, a) != 0)
	case vm.KindByte:
		v = vm.Byte(int8(C.tb_call_byte(e.env, jobj, id, a)))
	case vm.KindChar:
		v = vm.Char(uint16(C.tb_call_char(e.env, jobj, id, a)))
	case vm.KindShort:
		v = vm.Short(int16(C.tb_call_short(e.env, jobj, id, a)))
	case vm.KindInt:
		v = vm.Int(int32(C.tb_call_int(e.env, jobj, id, a)))
	case vm.KindLong:
		v = vm.Long(int64(C.tb_call_long(e.env, jobj, id, a)))
	case vm.KindFloat:
		v = vm.Float(float32(C.tb_call_float(e.env, jobj, id, a)))
	case vm.KindDouble:
		v = vm.Double(float64(C.tb_call_double(e.env, jobj, id, a)))
	default:
		v = vm.Ref(local(C.tb_call_object(e.env, jobj, id, a)))
	}
	if err := e.pending(); err != nil {
		return vm.Value{}, err
	}
	return v, nil
}

func (e *Env) CallStaticMethod(cls vm.Class, name, descriptor string, args ...vm.Value) (vm.Value, error) {
	d, err := e.vm.descriptor(descriptor)
	if err != nil {
		return vm.Value{}, err
	}
	jcls := C.jclass(unwrap(cls))
	id, err := e.methodID(jcls, cls.ClassName(), name, descriptor, true)
	if err != nil {
		return vm.Value{}, err
	}
	jargs, err := e.jvalues(d.Params, args)
	if err != nil {
		return vm.Value{}, err
	}

	a := argPtr(jargs)
	var v vm.Value
	switch d.Return.Kind {
	case vm.KindVoid:
		C.tb_call_static_void(e.env, jcls, id, a)
		v = vm.Void
	case vm.KindBoolean:
		v = vm.Bool(C.tb_call_static_boolean(e.env, jcls, id, a) != 0)
	case vm.KindByte:
		v = vm.Byte(int8(C.tb_call_static_byte(e.env, jcls, id, a)))
	case vm.KindChar:
		v = vm.Char(uint16(C.tb_call_static_char(e.env, jcls, id, a)))
	case vm.KindShort:
		v = vm.Short(int16(C.tb_call_static_short(e.env, jcls, id, a)))
	case vm.KindInt:
		v = vm.Int(int32(C.tb_call_static_int(e.env, jcls, id, a)))
	case vm.KindLong:
		v = vm.Long(int64(C.tb_call_static_long(e.env, jcls, id, a)))
	case vm.KindFloat:
		v = vm.Float(float32(C.tb_call_static_float(e.env, jcls, id, a)))
	case vm.KindDouble:
		v = vm.Double(float64(C.tb_call_static_double(e.env, jcls, id, a)))
	default:
		v = vm.Ref(local(C.tb_call_static_object(e.env, jcls, id, a)))
	}
	if err := e.pending(); err != nil {
		return vm.Value{}, err
	}
	return v, nil
}

var getName = vm.NewMethod("getName", "()Ljava/lang/String;")

// className names cls for a failed lookup. The pending lookup exception is
// held aside while Class.getName runs and rethrown afterwards.
func (e *Env) className(cls C.jclass) string {
	thrown := C.tb_exception_occurred(e.env)
	C.tb_exception_clear(e.env)
	defer func() {
		if thrown != 0 {
			C.tb_throw(e.env, thrown)
			C.tb_delete_local(e.env, C.jobject(thrown))
		}
	}()

	v, err := e.CallMethod(&ref{obj: C.jobject(cls), kind: vm.RefLocal}, getName.Name, getName.Descriptor)
	if err != nil {
		C.tb_exception_clear(e.env)
		return "?"
	}
	str, _ := v.Object()
	if str == nil {
		return "?"
	}
	defer e.DeleteLocalRef(str)
	name, err := e.GetString(str)
	if err != nil {
		C.tb_exception_clear(e.env)
		return "?"
	}
	return name
}

// NewString converts through UTF-16 so supplementary characters survive;
// NewStringUTF expects modified UTF-8.
func (e *Env) NewString(s string) (vm.Object, error) {
	units := utf16.Encode([]rune(s))
	var p *C.jchar
	if len(units) > 0 {
		p = (*C.jchar)(unsafe.Pointer(&units[0]))
	}
	str := C.tb_new_string(e.env, p, C.jsize(len(units)))
	if err := e.pending(); err != nil {
		return nil, err
	}
	return local(C.jobject(str)), nil
}

func (e *Env) GetString(str vm.Object) (string, error) {
	js := C.jstring(unwrap(str))
	if js == 0 {
		return "", fmt.Errorf("jni: GetString on null")
	}
	n := C.tb_string_length(e.env, js)
	if n == 0 {
		return "", e.pending()
	}
	units := make([]uint16, int(n))
	C.tb_string_region(e.env, js, 0, n, (*C.jchar)(unsafe.Pointer(&units[0])))
	if err := e.pending(); err != nil {
		return "", err
	}
	return string(utf16.Decode(units)), nil
}

func (e *Env) NewByteArray(length int) (vm.Object, error) {
	arr := C.tb_new_byte_array(e.env, C.jsize(length))
	if err := e.pending(); err != nil {
		return nil, err
	}
	return local(C.jobject(arr)), nil
}

func (e *Env) GetByteArrayRegion(arr vm.Object, start int, dst []int8) error {
	if len(dst) == 0 {
		return nil
	}
	C.tb_get_byte_region(e.env, C.jbyteArray(unwrap(arr)), C.jsize(start), C.jsize(len(dst)), (*C.jbyte)(unsafe.Pointer(&dst[0])))
	return e.pending()
}

func (e *Env) SetByteArrayRegion(arr vm.Object, start int, src []int8) error {
	if len(src) == 0 {
		return nil
	}
	C.tb_set_byte_region(e.env, C.jbyteArray(unwrap(arr)), C.jsize(start), C.jsize(len(src)), (*C.jbyte)(unsafe.Pointer(&src[0])))
	return e.pending()
}

func (e *Env) GetArrayLength(arr vm.Object) (int, error) {
	n := C.tb_array_length(e.env, C.jarray(unwrap(arr)))
	return int(n), e.pending()
}

func (e *Env) GetObjectArrayElement(arr vm.Object, index int) (vm.Object, error) {
	el := C.tb_array_element(e.env, C.jobjectArray(unwrap(arr)), C.jsize(index))
	if err := e.pending(); err != nil {
		return nil, err
	}
	return local(el), nil
}

func (e *Env) NewGlobalRef(obj vm.Object) (vm.Object, error) {
	if obj == nil {
		return nil, nil
	}
	g := C.tb_new_global(e.env, unwrap(obj))
	if g == 0 {
		return nil, fmt.Errorf("jni: NewGlobalRef failed")
	}
	r := &ref{obj: g, kind: vm.RefGlobal}
	if cls, ok := obj.(vm.Class); ok {
		return &classRef{ref: r, name: cls.ClassName()}, nil
	}
	return r, nil
}

func (e *Env) DeleteGlobalRef(obj vm.Object) {
	if obj == nil || obj.RefKind() != vm.RefGlobal {
		return
	}
	C.tb_delete_global(e.env, unwrap(obj))
}

func (e *Env) DeleteLocalRef(obj vm.Object) {
	if obj == nil || obj.RefKind() != vm.RefLocal {
		return
	}
	C.tb_delete_local(e.env, unwrap(obj))
}

func (e *Env) PushLocalFrame(capacity int) error {
	if rc := C.tb_push_frame(e.env, C.jint(capacity)); rc != 0 {
		return fmt.Errorf("jni: push local frame: %w", vm.ErrPendingException)
	}
	return nil
}

func (e *Env) PopLocalFrame() {
	C.tb_pop_frame(e.env)
}

func (e *Env) ExceptionCheck() bool {
	return C.tb_exception_check(e.env) != 0
}

func (e *Env) ExceptionOccurred() vm.Object {
	return local(C.jobject(C.tb_exception_occurred(e.env)))
}

func (e *Env) ExceptionClear() {
	C.tb_exception_clear(e.env)
}
