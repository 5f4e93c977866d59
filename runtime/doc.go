// Package runtime owns the process-wide foreign runtime and scopes access to
// it.
//
// # Quick Start
//
//	rt, err := runtime.Init(func() (vm.VM, error) {
//	    return jni.Open(jni.Options{ClassPath: cp})
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = rt.WithEnv(ctx, func(env vm.Env) error {
//	    cls, err := vm.FindClass(env, errors.PhaseCall, "ai/yobix/TikaNativeMain")
//	    ...
//	})
//
// # Attachment
//
// WithEnv locks the calling goroutine to its OS thread, attaches the thread
// to the foreign runtime, and pushes a local reference frame. Everything
// created inside is released when the callback returns. Work that must
// outlive the callback promotes its reference with Env.NewGlobalRef and
// releases it later from another WithEnv scope, as the stream package does.
//
// # Singleton
//
// A process hosts at most one JVM, so Init creates the runtime once and
// Default returns it. Initialization failures are sticky.
package runtime
