package projector

import (
	"fmt"

	"github.com/wippyai/tika-bridge/errors"
	"github.com/wippyai/tika-bridge/vm"
)

var (
	defaultCtor    = vm.Constructor("()V")
	toStringMethod = vm.NewMethod("toString", "()Ljava/lang/String;")
)

// param binds one host field to a foreign setter and getter. value returns a
// bool, int32 or string; load stores the getter's result back.
type param[C any] struct {
	set   vm.Method
	get   vm.Method
	value func(*C) any
	load  func(*C, any) error
}

// Table projects a host config struct onto a foreign config class by calling
// its setters in a fixed order.
type Table[C any] struct {
	Class  string
	params []param[C]
}

func newTable[C any](class string, params ...param[C]) *Table[C] {
	t := &Table[C]{Class: class, params: params}
	if err := t.validate(); err != nil {
		panic(err)
	}
	return t
}

// Setters returns the setter methods in call order.
func (t *Table[C]) Setters() []vm.Method {
	out := make([]vm.Method, len(t.params))
	for i, p := range t.params {
		out[i] = p.set
	}
	return out
}

// validate checks each setter takes exactly one argument of the kind its
// projection produces, and that getters return that kind.
func (t *Table[C]) validate() error {
	var zero C
	for _, p := range t.params {
		want := kindOf(p.value(&zero))
		params := p.set.Parsed().Params
		if len(params) != 1 || params[0].Kind != want {
			return fmt.Errorf("projector: %s.%s does not take a single %s", t.Class, p.set, want)
		}
		if p.set.Parsed().Return.Kind != vm.KindVoid {
			return fmt.Errorf("projector: %s.%s must return void", t.Class, p.set)
		}
		ret := p.get.Parsed().Return.Kind
		if ret != want && !(want.IsReference() && ret.IsReference()) {
			return fmt.Errorf("projector: %s.%s returns %s, want %s", t.Class, p.get, ret, want)
		}
	}
	return nil
}

func kindOf(v any) vm.Kind {
	switch v.(type) {
	case bool:
		return vm.KindBoolean
	case int32:
		return vm.KindInt
	case string:
		return vm.KindObject
	}
	return vm.KindVoid
}

// Project creates a fresh foreign config object from cfg. The result is a
// local reference owned by the caller's frame. On error nothing is returned;
// the partially configured object is reclaimed with the frame.
func (t *Table[C]) Project(env vm.Env, cfg *C) (vm.Object, error) {
	cls, err := vm.FindClass(env, errors.PhaseProject, t.Class)
	if err != nil {
		return nil, err
	}
	defer env.DeleteLocalRef(cls)

	obj, err := vm.NewObject(env, errors.PhaseProject, cls, defaultCtor)
	if err != nil {
		return nil, err
	}
	for _, p := range t.params {
		if err := t.apply(env, obj, p, cfg); err != nil {
			env.DeleteLocalRef(obj)
			return nil, err
		}
	}
	return obj, nil
}

func (t *Table[C]) apply(env vm.Env, obj vm.Object, p param[C], cfg *C) error {
	var arg vm.Value
	switch v := p.value(cfg).(type) {
	case bool:
		arg = vm.Bool(v)
	case int32:
		arg = vm.Int(v)
	case string:
		str, err := vm.NewString(env, errors.PhaseProject, v)
		if err != nil {
			return err
		}
		defer env.DeleteLocalRef(str)
		arg = vm.Ref(str)
	}
	_, err := vm.Call(env, errors.PhaseProject, obj, t.Class, p.set, arg)
	return err
}

// Read reconstructs a host config from a foreign config object through its
// getters.
func (t *Table[C]) Read(env vm.Env, obj vm.Object) (C, error) {
	var cfg C
	for _, p := range t.params {
		v, err := t.read(env, obj, p)
		if err != nil {
			return cfg, err
		}
		if err := p.load(&cfg, v); err != nil {
			return cfg, errors.New(errors.PhaseProject, errors.KindBridgeCall).
				Class(t.Class).
				Method(p.get.Name, p.get.Descriptor).
				Cause(err).
				Build()
		}
	}
	return cfg, nil
}

func (t *Table[C]) read(env vm.Env, obj vm.Object, p param[C]) (any, error) {
	ret := p.get.Parsed().Return
	switch ret.Kind {
	case vm.KindBoolean:
		return vm.CallBool(env, errors.PhaseProject, obj, t.Class, p.get)
	case vm.KindInt:
		return vm.CallInt(env, errors.PhaseProject, obj, t.Class, p.get)
	}
	if ret.Class == "java/lang/String" {
		return vm.CallString(env, errors.PhaseProject, obj, t.Class, p.get)
	}
	// Enum-valued getters are read through toString.
	enum, err := vm.CallObject(env, errors.PhaseProject, obj, t.Class, p.get)
	if err != nil || enum == nil {
		return "", err
	}
	defer env.DeleteLocalRef(enum)
	return vm.CallString(env, errors.PhaseProject, enum, ret.Class, toStringMethod)
}

func boolParam[C any](name, getter string, field func(*C) *bool) param[C] {
	return param[C]{
		set:   vm.NewMethod("set"+name, "(Z)V"),
		get:   vm.NewMethod(getter, "()Z"),
		value: func(c *C) any { return *field(c) },
		load: func(c *C, v any) error {
			*field(c) = v.(bool)
			return nil
		},
	}
}

func intParam[C any](name string, field func(*C) *int32) param[C] {
	return param[C]{
		set:   vm.NewMethod("set"+name, "(I)V"),
		get:   vm.NewMethod("get"+name, "()I"),
		value: func(c *C) any { return *field(c) },
		load: func(c *C, v any) error {
			*field(c) = v.(int32)
			return nil
		},
	}
}
