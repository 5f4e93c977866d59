package script

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/wippyai/tika-bridge/resource"
	"github.com/wippyai/tika-bridge/vm"
)

//go:embed prelude.js
var prelude string

// Source is a named script evaluated when the VM starts.
type Source struct {
	Name string
	Code string
}

// VM hosts a goja runtime behind the vm.VM contract. Only one thread may be
// attached at a time; AttachCurrentThread blocks until the previous holder
// detaches. Attaching twice from the same goroutine deadlocks.
type VM struct {
	rt         *goja.Runtime
	refs       *resource.Table
	env        *Env
	nextID     atomic.Uint64
	created    atomic.Uint64
	dropped    atomic.Uint64
	leaked     atomic.Uint64
	destroying atomic.Bool
	mu         sync.Mutex
	state      sync.Mutex
	closed     bool
}

var _ vm.VM = (*VM)(nil)

// Stats counts references. LeakedGlobals is the number of global references
// still alive when Destroy released them.
type Stats struct {
	LocalRefs     int
	GlobalRefs    int
	Created       uint64
	Dropped       uint64
	LeakedGlobals uint64
}

// New starts a runtime with the prelude and the given sources loaded.
func New(sources ...Source) (*VM, error) {
	rt := goja.New()
	if _, err := rt.RunScript("prelude.js", prelude); err != nil {
		return nil, fmt.Errorf("script: prelude: %w", err)
	}
	for _, src := range sources {
		if _, err := rt.RunScript(src.Name, src.Code); err != nil {
			return nil, fmt.Errorf("script: load %s: %w", src.Name, err)
		}
	}

	v := &VM{rt: rt, refs: resource.NewTable()}
	v.env = &Env{vm: v}
	v.refs.Subscribe(resource.ObserverFunc(v.observe))
	return v, nil
}

func (v *VM) observe(e resource.Event) {
	switch e.Type {
	case resource.EventCreated:
		v.created.Add(1)
	case resource.EventDropped:
		v.dropped.Add(1)
		if e.Owner == resource.OwnerGlobal && v.destroying.Load() {
			v.leaked.Add(1)
			vm.Logger().Warn("global reference alive at destroy", zap.Uint32("handle", uint32(e.Handle)))
		}
	}
}

func (v *VM) AttachCurrentThread() (vm.Env, bool, error) {
	v.mu.Lock()
	v.state.Lock()
	closed := v.closed
	v.state.Unlock()
	if closed {
		v.mu.Unlock()
		return nil, false, errors.New("script: runtime destroyed")
	}
	v.env.depth = 1
	return v.env, true, nil
}

func (v *VM) DetachCurrentThread() error {
	for d := v.env.depth; d > 0; d-- {
		v.refs.RemoveOwned(resource.Owner(d))
	}
	v.env.depth = 0
	v.env.pending = nil
	v.mu.Unlock()
	return nil
}

func (v *VM) Destroy() error {
	v.state.Lock()
	defer v.state.Unlock()
	if v.closed {
		return nil
	}
	v.closed = true
	v.destroying.Store(true)
	return v.refs.Close()
}

// Stats reports references. Safe to call while detached.
func (v *VM) Stats() Stats {
	global := v.refs.CountOwned(resource.OwnerGlobal)
	return Stats{
		LocalRefs:     v.refs.Len() - global,
		GlobalRefs:    global,
		Created:       v.created.Load(),
		Dropped:       v.dropped.Load(),
		LeakedGlobals: v.leaked.Load(),
	}
}

// Eval runs code against the runtime and exports the result. It attaches for
// the duration of the call and honors ctx cancellation.
func (v *VM) Eval(ctx context.Context, code string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, _, err := v.AttachCurrentThread(); err != nil {
		return nil, err
	}
	defer v.DetachCurrentThread()

	done := make(chan struct{})
	defer close(done)
	defer v.rt.ClearInterrupt()
	go func() {
		select {
		case <-ctx.Done():
			v.rt.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := v.rt.RunString(code)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if cause := interrupted.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, err
	}
	return val.Export(), nil
}

// cell is what a reference handle points at. id guards against handle reuse
// after a frame pop.
type cell struct {
	val   goja.Value
	bytes []byte // backing store for arrays created by NewByteArray
	id    uint64
}

// Drop releases the script value and any byte array backing store.
func (c *cell) Drop() {
	c.val = nil
	c.bytes = nil
}

type ref struct {
	handle resource.Handle
	id     uint64
	kind   vm.RefKind
}

func (r *ref) RefKind() vm.RefKind { return r.kind }

type classRef struct {
	*ref
	name string
}

func (c *classRef) ClassName() string { return c.name }
