package runtime

import (
	"context"
	goruntime "runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/tika-bridge/errors"
	"github.com/wippyai/tika-bridge/vm"
)

// LocalFrameCapacity is the local reference capacity requested for every
// WithEnv frame.
const LocalFrameCapacity = 64

// Runtime owns a foreign VM and scopes thread attachment to it.
type Runtime struct {
	vm      vm.VM
	metrics *Metrics
	logger  *zap.Logger
	closed  atomic.Bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime's logger. The package logger is used otherwise.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// WithMetrics enables call, exception and stream accounting.
func WithMetrics(m *Metrics) Option {
	return func(r *Runtime) { r.metrics = m }
}

// Opener creates the foreign VM for the process-wide runtime.
type Opener func() (vm.VM, error)

// New wraps v. Most callers want Init and Default instead; New exists for
// tests and for hosts embedding more than one runtime.
func New(v vm.VM, opts ...Option) (*Runtime, error) {
	if v == nil {
		return nil, errors.InvalidInput(errors.PhaseInit, "nil vm")
	}
	r := &Runtime{vm: v}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = Logger()
	}
	return r, nil
}

var (
	defaultMu   sync.Mutex
	defaultDone bool
	defaultRT   *Runtime
	defaultErr  error
)

// Init creates the process-wide runtime on first use. Every later call
// returns the first result, including a failure; open and opts are ignored
// once the runtime exists. A nil open before initialization returns a
// not_initialized error and leaves the runtime uninitialized.
func Init(open Opener, opts ...Option) (*Runtime, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultDone {
		return defaultRT, defaultErr
	}
	if open == nil {
		return nil, errors.NotInitialized(errors.PhaseInit, "runtime")
	}
	defaultDone = true

	v, err := open()
	if err != nil {
		defaultErr = errors.Wrap(errors.PhaseInit, errors.KindSetup, err, "start foreign runtime")
		Logger().Error("foreign runtime failed to start", zap.Error(err))
		return nil, defaultErr
	}
	defaultRT, defaultErr = New(v, opts...)
	if defaultErr == nil {
		defaultRT.logger.Info("foreign runtime started")
	}
	return defaultRT, defaultErr
}

// Default returns the process-wide runtime created by Init.
func Default() (*Runtime, error) {
	return Init(nil)
}

// Metrics returns the runtime's metrics, possibly nil.
func (r *Runtime) Metrics() *Metrics {
	return r.metrics
}

// Logger returns the runtime's logger.
func (r *Runtime) Logger() *zap.Logger {
	return r.logger
}

// WithEnv runs fn on an Env attached to the current OS thread, inside a fresh
// local frame. References created in fn are released when it returns; the Env
// must not be retained. Calls must not be nested.
func (r *Runtime) WithEnv(ctx context.Context, fn func(env vm.Env) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.closed.Load() {
		return errors.Closed(errors.PhaseAttach, "runtime")
	}

	goruntime.LockOSThread()
	defer goruntime.UnlockOSThread()

	env, attached, err := r.vm.AttachCurrentThread()
	if err != nil {
		return errors.Wrap(errors.PhaseAttach, errors.KindBridgeCall, err, "attach current thread")
	}
	if attached {
		defer func() {
			if err := r.vm.DetachCurrentThread(); err != nil {
				r.logger.Warn("detach current thread", zap.Error(err))
			}
		}()
	}

	if err := env.PushLocalFrame(LocalFrameCapacity); err != nil {
		return errors.Wrap(errors.PhaseAttach, errors.KindBridgeCall, err, "push local frame")
	}
	defer env.PopLocalFrame()

	return fn(r.instrument(env))
}

// Close destroys the foreign VM. Streams still open afterwards fail their
// reads with a closed error.
func (r *Runtime) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	return r.vm.Destroy()
}

// Closed reports whether Close was called.
func (r *Runtime) Closed() bool {
	return r.closed.Load()
}
