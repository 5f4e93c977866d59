package script

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/wippyai/tika-bridge/resource"
	"github.com/wippyai/tika-bridge/vm"
)

var errPendingCall = fmt.Errorf("script: call with exception pending: %w", vm.ErrPendingException)

// Env is the attached view of a script VM.
//
// Classes are looked up in the global classes registry. A class that declares
// $methods or $statics only accepts the signatures listed there; undeclared
// classes are duck-typed.
type Env struct {
	vm      *VM
	pending goja.Value
	depth   int
}

var _ vm.Env = (*Env)(nil)

func (e *Env) rt() *goja.Runtime { return e.vm.rt }

func (e *Env) newRef(owner resource.Owner, c cell) *ref {
	c.id = e.vm.nextID.Add(1)
	h := e.vm.refs.Insert(owner, &c)
	kind := vm.RefLocal
	if owner == resource.OwnerGlobal {
		kind = vm.RefGlobal
	}
	return &ref{handle: h, id: c.id, kind: kind}
}

func (e *Env) local(val goja.Value) *ref {
	return e.newRef(resource.Owner(e.depth), cell{val: val})
}

func (e *Env) resolve(o vm.Object) (*cell, error) {
	var r *ref
	switch t := o.(type) {
	case *ref:
		r = t
	case *classRef:
		r = t.ref
	default:
		return nil, fmt.Errorf("script: foreign object %T: %w", o, vm.ErrInvalidRef)
	}
	v, ok := e.vm.refs.Get(r.handle)
	if !ok {
		return nil, vm.ErrInvalidRef
	}
	c := v.(*cell)
	if c.id != r.id {
		return nil, vm.ErrInvalidRef
	}
	return c, nil
}

func (e *Env) throw(val goja.Value) error {
	e.pending = val
	return vm.ErrPendingException
}

// throwNew raises one of the prelude throwables by its global name.
func (e *Env) throwNew(ctor, msg string) error {
	rt := e.rt()
	var thrown goja.Value
	if c := rt.Get(ctor); c != nil {
		if obj, err := rt.New(c, rt.ToValue(msg)); err == nil {
			thrown = obj
		}
	}
	if thrown == nil {
		thrown = rt.NewGoError(errors.New(msg))
	}
	return e.throw(thrown)
}

func (e *Env) fromJSError(err error) error {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return e.throw(exc.Value())
	}
	return e.throw(e.rt().NewGoError(err))
}

func absent(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}

// declared reports whether ctor carries a signature table named list, and if
// so whether sig is in it.
func (e *Env) declared(ctor *goja.Object, list, sig string) (hasTable, found bool) {
	if ctor == nil {
		return false, false
	}
	tbl := ctor.Get(list)
	if absent(tbl) {
		return false, false
	}
	var sigs []string
	if err := e.rt().ExportTo(tbl, &sigs); err != nil {
		return true, false
	}
	for _, s := range sigs {
		if s == sig {
			return true, true
		}
	}
	return true, false
}

func (e *Env) className(ctor *goja.Object) string {
	if ctor == nil {
		return "java/lang/Object"
	}
	if n := ctor.Get("$name"); !absent(n) {
		return n.String()
	}
	if n := ctor.Get("name"); !absent(n) && n.String() != "" {
		return n.String()
	}
	return "java/lang/Object"
}

func (e *Env) lookupFailed(class, method, desc string) error {
	e.throwNew("NoSuchMethodError", class+"."+method+desc)
	return &vm.LookupError{Class: class, Method: method, Descriptor: desc}
}

func (e *Env) FindClass(name string) (vm.Class, error) {
	if e.pending != nil {
		return nil, errPendingCall
	}
	registry := e.rt().Get("classes")
	if absent(registry) {
		e.throwNew("NoClassDefFoundError", name)
		return nil, &vm.LookupError{Class: name}
	}
	cls := registry.ToObject(e.rt()).Get(name)
	if absent(cls) {
		e.throwNew("NoClassDefFoundError", name)
		return nil, &vm.LookupError{Class: name}
	}
	return &classRef{ref: e.local(cls), name: name}, nil
}

func (e *Env) constructor(cls vm.Class) (*goja.Object, error) {
	c, err := e.resolve(cls)
	if err != nil {
		return nil, err
	}
	ctor, ok := c.val.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("script: %s is not a class", cls.ClassName())
	}
	return ctor, nil
}

func (e *Env) NewObject(cls vm.Class, descriptor string, args ...vm.Value) (vm.Object, error) {
	if e.pending != nil {
		return nil, errPendingCall
	}
	ctor, err := e.constructor(cls)
	if err != nil {
		return nil, err
	}
	if hasTable, found := e.declared(ctor, "$methods", "<init>"+descriptor); hasTable && !found {
		return nil, e.lookupFailed(cls.ClassName(), "<init>", descriptor)
	}
	jsArgs, err := e.toJS(args)
	if err != nil {
		return nil, err
	}
	obj, err := e.rt().New(ctor, jsArgs...)
	if err != nil {
		return nil, e.fromJSError(err)
	}
	return e.local(obj), nil
}

func (e *Env) CallMethod(obj vm.Object, name, descriptor string, args ...vm.Value) (vm.Value, error) {
	if e.pending != nil {
		return vm.Value{}, errPendingCall
	}
	d, err := vm.ParseDescriptor(descriptor)
	if err != nil {
		return vm.Value{}, err
	}
	if obj == nil {
		return vm.Value{}, e.throwNew("NullPointerException", "receiver of "+name+descriptor)
	}
	c, err := e.resolve(obj)
	if err != nil {
		return vm.Value{}, err
	}
	if absent(c.val) {
		return vm.Value{}, e.throwNew("NullPointerException", "receiver of "+name+descriptor)
	}

	recv := c.val.ToObject(e.rt())
	var ctor *goja.Object
	if cv := recv.Get("constructor"); !absent(cv) {
		ctor, _ = cv.(*goja.Object)
	}
	class := e.className(ctor)
	if hasTable, found := e.declared(ctor, "$methods", name+descriptor); hasTable && !found {
		return vm.Value{}, e.lookupFailed(class, name, descriptor)
	}
	fn, ok := goja.AssertFunction(recv.Get(name))
	if !ok {
		return vm.Value{}, e.lookupFailed(class, name, descriptor)
	}
	return e.invoke(fn, recv, d, args)
}

func (e *Env) CallStaticMethod(cls vm.Class, name, descriptor string, args ...vm.Value) (vm.Value, error) {
	if e.pending != nil {
		return vm.Value{}, errPendingCall
	}
	d, err := vm.ParseDescriptor(descriptor)
	if err != nil {
		return vm.Value{}, err
	}
	ctor, err := e.constructor(cls)
	if err != nil {
		return vm.Value{}, err
	}
	if hasTable, found := e.declared(ctor, "$statics", name+descriptor); hasTable && !found {
		return vm.Value{}, e.lookupFailed(cls.ClassName(), name, descriptor)
	}
	fn, ok := goja.AssertFunction(ctor.Get(name))
	if !ok {
		return vm.Value{}, e.lookupFailed(cls.ClassName(), name, descriptor)
	}
	return e.invoke(fn, ctor, d, args)
}

func (e *Env) invoke(fn goja.Callable, this goja.Value, d *vm.Descriptor, args []vm.Value) (vm.Value, error) {
	jsArgs, err := e.toJS(args)
	if err != nil {
		return vm.Value{}, err
	}
	res, err := fn(this, jsArgs...)
	if err != nil {
		vm.Logger().Debug("script call threw", zap.String("descriptor", d.String()), zap.Error(err))
		return vm.Value{}, e.fromJSError(err)
	}
	return e.fromJS(res, d.Return), nil
}

func (e *Env) toJS(args []vm.Value) ([]goja.Value, error) {
	rt := e.rt()
	out := make([]goja.Value, len(args))
	for i, a := range args {
		switch a.Kind() {
		case vm.KindBoolean:
			b, _ := a.Bool()
			out[i] = rt.ToValue(b)
		case vm.KindByte:
			b, _ := a.Byte()
			out[i] = rt.ToValue(int64(b))
		case vm.KindChar:
			ch, _ := a.Char()
			out[i] = rt.ToValue(int64(ch))
		case vm.KindShort:
			s, _ := a.Short()
			out[i] = rt.ToValue(int64(s))
		case vm.KindInt:
			n, _ := a.Int()
			out[i] = rt.ToValue(int64(n))
		case vm.KindLong:
			n, _ := a.Long()
			out[i] = rt.ToValue(n)
		case vm.KindFloat:
			f, _ := a.Float()
			out[i] = rt.ToValue(float64(f))
		case vm.KindDouble:
			f, _ := a.Double()
			out[i] = rt.ToValue(f)
		case vm.KindObject, vm.KindArray:
			o, _ := a.Object()
			if o == nil {
				out[i] = goja.Null()
				continue
			}
			c, err := e.resolve(o)
			if err != nil {
				return nil, fmt.Errorf("script: argument %d: %w", i, err)
			}
			out[i] = c.val
		default:
			return nil, fmt.Errorf("script: argument %d: cannot pass %s", i, a.Kind())
		}
	}
	return out, nil
}

func (e *Env) fromJS(v goja.Value, t vm.Type) vm.Value {
	switch t.Kind {
	case vm.KindVoid:
		return vm.Void
	case vm.KindBoolean:
		return vm.Bool(v != nil && v.ToBoolean())
	}
	if t.Kind.IsReference() {
		if absent(v) {
			return vm.Ref(nil)
		}
		if t.Kind == vm.KindArray {
			if c, ok := e.byteArrayCell(v); ok {
				return vm.Ref(e.newRef(resource.Owner(e.depth), cell{val: v, bytes: c}))
			}
		}
		return vm.Ref(e.local(v))
	}

	var n int64
	var f float64
	if v != nil {
		n = v.ToInteger()
		f = v.ToFloat()
	}
	switch t.Kind {
	case vm.KindByte:
		return vm.Byte(int8(n))
	case vm.KindChar:
		return vm.Char(uint16(n))
	case vm.KindShort:
		return vm.Short(int16(n))
	case vm.KindInt:
		return vm.Int(int32(n))
	case vm.KindLong:
		return vm.Long(n)
	case vm.KindFloat:
		return vm.Float(float32(f))
	default:
		return vm.Double(f)
	}
}

// byteArrayCell finds the backing store when a script hands back an array
// the host created.
func (e *Env) byteArrayCell(v goja.Value) ([]byte, bool) {
	var found []byte
	e.vm.refs.Each(func(_ resource.Handle, _ resource.Owner, val any) bool {
		c := val.(*cell)
		if c.bytes != nil && c.val == v {
			found = c.bytes
			return false
		}
		return true
	})
	return found, found != nil
}

func (e *Env) NewString(s string) (vm.Object, error) {
	return e.local(e.rt().ToValue(s)), nil
}

func (e *Env) GetString(str vm.Object) (string, error) {
	c, err := e.resolve(str)
	if err != nil {
		return "", err
	}
	s, ok := c.val.Export().(string)
	if !ok {
		return "", fmt.Errorf("script: %s is not a string", c.val.ExportType())
	}
	return s, nil
}

func (e *Env) NewByteArray(length int) (vm.Object, error) {
	if e.pending != nil {
		return nil, errPendingCall
	}
	if length < 0 {
		return nil, e.throwNew("NegativeArraySizeException", strconv.Itoa(length))
	}
	rt := e.rt()
	buf := make([]byte, length)
	arr, err := rt.New(rt.Get("Int8Array"), rt.ToValue(rt.NewArrayBuffer(buf)))
	if err != nil {
		return nil, e.fromJSError(err)
	}
	return e.newRef(resource.Owner(e.depth), cell{val: arr, bytes: buf}), nil
}

func (e *Env) byteRegion(arr vm.Object, start, n int) ([]byte, error) {
	c, err := e.resolve(arr)
	if err != nil {
		return nil, err
	}
	if c.bytes == nil {
		return nil, errors.New("script: not a byte array")
	}
	if start < 0 || n < 0 || start+n > len(c.bytes) {
		return nil, e.throwNew("ArrayIndexOutOfBoundsException",
			fmt.Sprintf("region [%d, %d) of length %d", start, start+n, len(c.bytes)))
	}
	return c.bytes[start : start+n], nil
}

func (e *Env) GetByteArrayRegion(arr vm.Object, start int, dst []int8) error {
	region, err := e.byteRegion(arr, start, len(dst))
	if err != nil {
		return err
	}
	copy(vm.AsBytes(dst), region)
	return nil
}

func (e *Env) SetByteArrayRegion(arr vm.Object, start int, src []int8) error {
	region, err := e.byteRegion(arr, start, len(src))
	if err != nil {
		return err
	}
	copy(region, vm.AsBytes(src))
	return nil
}

func (e *Env) GetArrayLength(arr vm.Object) (int, error) {
	c, err := e.resolve(arr)
	if err != nil {
		return 0, err
	}
	if c.bytes != nil {
		return len(c.bytes), nil
	}
	if absent(c.val) {
		return 0, e.throwNew("NullPointerException", "array length")
	}
	return int(c.val.ToObject(e.rt()).Get("length").ToInteger()), nil
}

func (e *Env) GetObjectArrayElement(arr vm.Object, index int) (vm.Object, error) {
	n, err := e.GetArrayLength(arr)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= n {
		return nil, e.throwNew("ArrayIndexOutOfBoundsException",
			fmt.Sprintf("index %d out of bounds for length %d", index, n))
	}
	c, _ := e.resolve(arr)
	el := c.val.ToObject(e.rt()).Get(strconv.Itoa(index))
	if absent(el) {
		return nil, nil
	}
	return e.local(el), nil
}

func (e *Env) NewGlobalRef(obj vm.Object) (vm.Object, error) {
	c, err := e.resolve(obj)
	if err != nil {
		return nil, err
	}
	g := e.newRef(resource.OwnerGlobal, cell{val: c.val, bytes: c.bytes})
	if cls, ok := obj.(vm.Class); ok {
		return &classRef{ref: g, name: cls.ClassName()}, nil
	}
	return g, nil
}

func (e *Env) drop(obj vm.Object, kind vm.RefKind) {
	if obj == nil || obj.RefKind() != kind {
		return
	}
	if _, err := e.resolve(obj); err != nil {
		return
	}
	switch r := obj.(type) {
	case *ref:
		e.vm.refs.Remove(r.handle)
	case *classRef:
		e.vm.refs.Remove(r.handle)
	}
}

func (e *Env) DeleteGlobalRef(obj vm.Object) { e.drop(obj, vm.RefGlobal) }

func (e *Env) DeleteLocalRef(obj vm.Object) { e.drop(obj, vm.RefLocal) }

func (e *Env) PushLocalFrame(capacity int) error {
	if capacity < 0 {
		return fmt.Errorf("script: negative frame capacity %d", capacity)
	}
	e.depth++
	return nil
}

func (e *Env) PopLocalFrame() {
	if e.depth <= 1 {
		return
	}
	e.vm.refs.RemoveOwned(resource.Owner(e.depth))
	e.depth--
}

func (e *Env) ExceptionCheck() bool { return e.pending != nil }

func (e *Env) ExceptionOccurred() vm.Object {
	if e.pending == nil {
		return nil
	}
	return e.local(e.pending)
}

func (e *Env) ExceptionClear() { e.pending = nil }
