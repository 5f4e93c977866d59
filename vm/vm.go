package vm

import (
	"errors"
	"fmt"
)

// ErrPendingException is returned (possibly wrapped) by Env methods that left
// a foreign exception pending. The exception must be cleared with
// CheckException before the Env is used again.
var ErrPendingException = errors.New("vm: foreign exception pending")

// ErrInvalidRef is returned when a reference is used after its frame was
// popped or after it was deleted.
var ErrInvalidRef = errors.New("vm: invalid reference")

// Object is an opaque reference to a foreign object. A nil Object is the
// foreign null. Local references are valid until the enclosing frame is
// popped; global references until DeleteGlobalRef.
type Object interface {
	// RefKind reports whether the reference is local or global.
	RefKind() RefKind
}

// Class is a reference to a foreign class.
type Class interface {
	Object
	// ClassName returns the binary name used to find the class, e.g.
	// "org/apache/tika/parser/pdf/PDFParserConfig".
	ClassName() string
}

// RefKind distinguishes frame-scoped references from promoted ones.
type RefKind uint8

const (
	RefLocal RefKind = iota
	RefGlobal
)

func (k RefKind) String() string {
	if k == RefGlobal {
		return "global"
	}
	return "local"
}

// VM is a process-wide foreign runtime.
//
// AttachCurrentThread must be called with the calling goroutine locked to its
// OS thread; the returned Env is valid on that thread only. attached reports
// whether this call attached the thread (and the caller must detach it).
type VM interface {
	AttachCurrentThread() (env Env, attached bool, err error)
	DetachCurrentThread() error
	Destroy() error
}

// Env is a thread-affine view of the foreign runtime.
//
// Methods that run foreign code or look up classes and methods return an error
// wrapping ErrPendingException when they leave an exception pending. Lookup
// misses additionally return a *LookupError.
type Env interface {
	FindClass(name string) (Class, error)
	NewObject(cls Class, descriptor string, args ...Value) (Object, error)
	CallMethod(obj Object, name, descriptor string, args ...Value) (Value, error)
	CallStaticMethod(cls Class, name, descriptor string, args ...Value) (Value, error)

	NewString(s string) (Object, error)
	GetString(str Object) (string, error)

	NewByteArray(length int) (Object, error)
	GetByteArrayRegion(arr Object, start int, dst []int8) error
	SetByteArrayRegion(arr Object, start int, src []int8) error
	GetArrayLength(arr Object) (int, error)
	GetObjectArrayElement(arr Object, index int) (Object, error)

	NewGlobalRef(obj Object) (Object, error)
	DeleteGlobalRef(obj Object)
	DeleteLocalRef(obj Object)
	PushLocalFrame(capacity int) error
	PopLocalFrame()

	ExceptionCheck() bool
	ExceptionOccurred() Object
	ExceptionClear()
}

// LookupError reports a class or method that the foreign runtime could not
// resolve. Method is empty for class lookups.
type LookupError struct {
	Class      string
	Method     string
	Descriptor string
}

func (e *LookupError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("vm: class %s not found", e.Class)
	}
	return fmt.Sprintf("vm: method %s.%s%s not found", e.Class, e.Method, e.Descriptor)
}

// Unwrap reports the pending exception left by the failed lookup.
func (e *LookupError) Unwrap() error {
	return ErrPendingException
}
