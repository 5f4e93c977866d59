//go:build !jni || !cgo

package jni

import (
	"github.com/wippyai/tika-bridge/errors"
	"github.com/wippyai/tika-bridge/vm"
)

// Available reports whether this binary can start a JVM.
const Available = false

// VM is unavailable in builds without the jni tag.
type VM struct{}

func (*VM) AttachCurrentThread() (vm.Env, bool, error) { return nil, false, errUnavailable() }
func (*VM) DetachCurrentThread() error                 { return nil }
func (*VM) Destroy() error                             { return nil }

// Open always fails; rebuild with -tags jni and a JDK to embed a JVM.
func Open(Options) (*VM, error) {
	return nil, errUnavailable()
}

func errUnavailable() error {
	return errors.New(errors.PhaseInit, errors.KindSetup).
		Detail("built without JNI support; rebuild with -tags jni").
		Build()
}
