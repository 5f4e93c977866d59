// Package vm is the host-side object model for a foreign managed runtime.
//
// A VM is attached per OS thread and yields an Env. Objects obtained from an
// Env are local references, valid until the enclosing local frame is popped;
// NewGlobalRef promotes one so it can outlive the frame. Foreign methods are
// named by a Method (name plus JNI descriptor) and take tagged Values.
//
// The Call helpers in this package run the exception translator after every
// foreign call: a pending exception is described, cleared, and returned as a
// structured error from the errors package, so the Env is always usable by
// the next caller.
//
// Backends live in subpackages: vm/jni binds a real JVM through cgo and
// vm/script emulates one on a goja JavaScript runtime.
package vm
