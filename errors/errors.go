package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the bridge the error occurred
type Phase string

const (
	PhaseInit     Phase = "init"     // runtime creation
	PhaseAttach   Phase = "attach"   // thread attachment
	PhaseProject  Phase = "project"  // host config to foreign config
	PhaseCall     Phase = "call"     // foreign entry point invocation
	PhaseEnvelope Phase = "envelope" // result envelope unwrapping
	PhaseStream   Phase = "stream"   // streaming reads and teardown
	PhaseConfig   Phase = "config"   // host configuration loading
)

// Kind categorizes the error
type Kind string

const (
	// Content-level kinds reported by the foreign envelope.
	KindIO      Kind = "io"
	KindParse   Kind = "parse"
	KindUnknown Kind = "unknown"

	// Plumbing kinds.
	KindSetup          Kind = "setup"       // class or method lookup failed
	KindBridgeCall     Kind = "bridge_call" // unexpected foreign call failure
	KindNotInitialized Kind = "not_initialized"
	KindInvalidInput   Kind = "invalid_input"
	KindClosed         Kind = "closed"
)

// Envelope status codes with a named kind. Anything else maps to KindUnknown.
const (
	StatusIO    int8 = 1
	StatusParse int8 = 2
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Cause      error
	Phase      Phase
	Kind       Kind
	Class      string
	Method     string
	Descriptor string
	Detail     string
	Status     int8
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Class != "" || e.Method != "" {
		b.WriteString(" at ")
		b.WriteString(e.Class)
		if e.Method != "" {
			if e.Class != "" {
				b.WriteByte('.')
			}
			b.WriteString(e.Method)
			b.WriteString(e.Descriptor)
		}
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// Kind must match; Phase must match only when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is checks against the closed taxonomy.
var (
	ErrIO             = &Error{Kind: KindIO}
	ErrParse          = &Error{Kind: KindParse}
	ErrUnknown        = &Error{Kind: KindUnknown}
	ErrSetup          = &Error{Kind: KindSetup}
	ErrBridgeCall     = &Error{Kind: KindBridgeCall}
	ErrNotInitialized = &Error{Kind: KindNotInitialized}
	ErrInvalidInput   = &Error{Kind: KindInvalidInput}
	ErrClosed         = &Error{Kind: KindClosed}
)

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Class sets the foreign class name
func (b *Builder) Class(name string) *Builder {
	b.err.Class = name
	return b
}

// Method sets the foreign method name and descriptor
func (b *Builder) Method(name, descriptor string) *Builder {
	b.err.Method = name
	b.err.Descriptor = descriptor
	return b
}

// Status sets the envelope status code
func (b *Builder) Status(status int8) *Builder {
	b.err.Status = status
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// FromStatus maps an envelope status code reported by class to a
// content-level error. The foreign message is carried verbatim in Detail.
func FromStatus(class string, status int8, msg string) *Error {
	kind := KindUnknown
	switch status {
	case StatusIO:
		kind = KindIO
	case StatusParse:
		kind = KindParse
	}
	return New(PhaseEnvelope, kind).
		Class(class).
		Status(status).
		Detail(msg).
		Build()
}

// Message returns the verbatim foreign message for envelope errors, or the
// full error text otherwise.
func Message(err error) string {
	var e *Error
	if As(err, &e) && IsContent(e) {
		return e.Detail
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsContent reports whether err was reported by the foreign envelope
// (I/O, parse or unknown) rather than by bridge plumbing.
func IsContent(err error) bool {
	var e *Error
	if !As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindIO, KindParse, KindUnknown:
		return true
	}
	return false
}

// IsBridge reports whether err is a plumbing failure: a lookup failure or an
// unexpected foreign call failure.
func IsBridge(err error) bool {
	var e *Error
	if !As(err, &e) {
		return false
	}
	return e.Kind == KindSetup || e.Kind == KindBridgeCall
}

// ClassNotFound creates a setup error for a class missing from the foreign classpath
func ClassNotFound(phase Phase, class string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindSetup,
		Class:  class,
		Detail: "class not found",
		Cause:  cause,
	}
}

// MethodNotFound creates a setup error for a method missing from a foreign class
func MethodNotFound(phase Phase, class, method, descriptor string, cause error) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindSetup,
		Class:      class,
		Method:     method,
		Descriptor: descriptor,
		Detail:     "method not found",
		Cause:      cause,
	}
}

// ArgMismatch creates a bridge call error for an argument that does not match
// the method descriptor
func ArgMismatch(phase Phase, method, descriptor string, index int, want, got string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindBridgeCall,
		Method:     method,
		Descriptor: descriptor,
		Detail:     fmt.Sprintf("argument %d: want %s, got %s", index, want, got),
	}
}

// NotInitialized creates a not-initialized error
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Closed creates an error for use of a released resource
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
