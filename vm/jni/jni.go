//go:build jni && cgo

package jni

/*
#cgo LDFLAGS: -ljvm
#include "shim.h"
*/
import "C"

import (
	"fmt"
	goruntime "runtime"
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/tika-bridge/errors"
	"github.com/wippyai/tika-bridge/vm"
)

// Available reports whether this binary can start a JVM.
const Available = true

// VM is an embedded HotSpot JVM. A process can create at most one; Destroy
// is final.
type VM struct {
	jvm     *C.JavaVM
	mu      sync.Mutex
	statics map[string]C.jmethodID // class\x00name\x00descriptor
	descs   sync.Map               // descriptor -> *vm.Descriptor
	closed  bool
}

var _ vm.VM = (*VM)(nil)

var (
	openMu sync.Mutex
	opened bool
)

// Open creates the JVM and detaches the creating thread again, so every later
// use attaches through AttachCurrentThread and Destroy finds no stray
// non-daemon thread.
func Open(opts Options) (*VM, error) {
	openMu.Lock()
	defer openMu.Unlock()
	if opened {
		return nil, errors.New(errors.PhaseInit, errors.KindSetup).
			Detail("a JVM was already created in this process").
			Build()
	}

	args := opts.args()
	cargs := make([]*C.char, len(args))
	for i, a := range args {
		cargs[i] = C.CString(a)
	}
	defer func() {
		for _, p := range cargs {
			C.free(unsafe.Pointer(p))
		}
	}()

	var argv **C.char
	if len(cargs) > 0 {
		argv = (**C.char)(C.malloc(C.size_t(len(cargs)) * C.size_t(unsafe.Sizeof(cargs[0]))))
		defer C.free(unsafe.Pointer(argv))
		copy(unsafe.Slice(argv, len(cargs)), cargs)
	}

	// Create and detach must happen on the same OS thread.
	goruntime.LockOSThread()
	defer goruntime.UnlockOSThread()

	var (
		jvm *C.JavaVM
		env *C.JNIEnv
	)
	if rc := C.tb_create_vm(&jvm, &env, argv, C.int(len(cargs))); rc != C.JNI_OK {
		return nil, errors.New(errors.PhaseInit, errors.KindSetup).
			Detail("JNI_CreateJavaVM returned %d", int(rc)).
			Build()
	}
	opened = true
	if rc := C.tb_detach(jvm); rc != C.JNI_OK {
		vm.Logger().Warn("detach creating thread", zap.Int("rc", int(rc)))
	}
	vm.Logger().Info("jvm created")
	return &VM{jvm: jvm, statics: make(map[string]C.jmethodID)}, nil
}

func (v *VM) AttachCurrentThread() (vm.Env, bool, error) {
	v.mu.Lock()
	closed := v.closed
	v.mu.Unlock()
	if closed {
		return nil, false, fmt.Errorf("jni: vm destroyed")
	}

	var env *C.JNIEnv
	switch rc := C.tb_get_env(v.jvm, &env); rc {
	case C.JNI_OK:
		return &Env{vm: v, env: env}, false, nil
	case C.JNI_EDETACHED:
		if rc := C.tb_attach(v.jvm, &env); rc != C.JNI_OK {
			return nil, false, fmt.Errorf("jni: attach current thread: %d", int(rc))
		}
		return &Env{vm: v, env: env}, true, nil
	default:
		return nil, false, fmt.Errorf("jni: get env: %d", int(rc))
	}
}

func (v *VM) DetachCurrentThread() error {
	if rc := C.tb_detach(v.jvm); rc != C.JNI_OK {
		return fmt.Errorf("jni: detach current thread: %d", int(rc))
	}
	return nil
}

// Destroy unloads the JVM. It blocks until all other attached non-daemon
// threads have detached.
func (v *VM) Destroy() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	v.mu.Unlock()

	if rc := C.tb_destroy(v.jvm); rc != C.JNI_OK {
		return fmt.Errorf("jni: destroy: %d", int(rc))
	}
	return nil
}

func (v *VM) descriptor(s string) (*vm.Descriptor, error) {
	if d, ok := v.descs.Load(s); ok {
		return d.(*vm.Descriptor), nil
	}
	d, err := vm.ParseDescriptor(s)
	if err != nil {
		return nil, err
	}
	v.descs.Store(s, d)
	return d, nil
}

type ref struct {
	obj  C.jobject
	kind vm.RefKind
}

func (r *ref) RefKind() vm.RefKind { return r.kind }

type classRef struct {
	*ref
	name string
}

func (c *classRef) ClassName() string { return c.name }

func local(obj C.jobject) vm.Object {
	if obj == 0 {
		return nil
	}
	return &ref{obj: obj, kind: vm.RefLocal}
}

func unwrap(obj vm.Object) C.jobject {
	switch r := obj.(type) {
	case *ref:
		return r.obj
	case *classRef:
		return r.obj
	}
	return 0
}
