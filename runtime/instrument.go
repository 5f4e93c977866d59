package runtime

import (
	"github.com/wippyai/tika-bridge/vm"
)

// instrumentedEnv counts calls and attributes cleared exceptions to the last
// method invoked.
type instrumentedEnv struct {
	vm.Env
	metrics *Metrics
	last    string
}

func (r *Runtime) instrument(env vm.Env) vm.Env {
	if r.metrics == nil {
		return env
	}
	return &instrumentedEnv{Env: env, metrics: r.metrics}
}

func (e *instrumentedEnv) FindClass(name string) (vm.Class, error) {
	e.last = "FindClass"
	return e.Env.FindClass(name)
}

func (e *instrumentedEnv) NewObject(cls vm.Class, descriptor string, args ...vm.Value) (vm.Object, error) {
	e.last = "<init>"
	e.metrics.call(e.last)
	return e.Env.NewObject(cls, descriptor, args...)
}

func (e *instrumentedEnv) CallMethod(obj vm.Object, name, descriptor string, args ...vm.Value) (vm.Value, error) {
	e.last = name
	e.metrics.call(name)
	return e.Env.CallMethod(obj, name, descriptor, args...)
}

func (e *instrumentedEnv) CallStaticMethod(cls vm.Class, name, descriptor string, args ...vm.Value) (vm.Value, error) {
	e.last = name
	e.metrics.call(name)
	return e.Env.CallStaticMethod(cls, name, descriptor, args...)
}

func (e *instrumentedEnv) ExceptionOccurred() vm.Object {
	thrown := e.Env.ExceptionOccurred()
	if thrown != nil {
		e.metrics.exception(e.last)
	}
	return thrown
}
