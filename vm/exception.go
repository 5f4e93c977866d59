package vm

import (
	"go.uber.org/zap"
)

var toStringMethod = NewMethod("toString", "()Ljava/lang/String;")

// Exception is a foreign exception that was pending on an Env. It has already
// been cleared by the time callers see it.
type Exception struct {
	Description string
}

func (e *Exception) Error() string {
	return e.Description
}

// CheckException is the exception translator. When env has a pending
// exception it describes it for diagnostics, clears it so the Env stays
// usable, and returns it. It returns nil when nothing is pending.
//
// Callers decide whether the exception propagates; stream teardown ignores it.
func CheckException(env Env) *Exception {
	if !env.ExceptionCheck() {
		return nil
	}

	thrown := env.ExceptionOccurred()
	env.ExceptionClear()

	desc := describe(env, thrown)
	if thrown != nil {
		env.DeleteLocalRef(thrown)
	}

	Logger().Debug("foreign exception cleared", zap.String("exception", desc))
	return &Exception{Description: desc}
}

// describe renders a throwable via its toString method. Failures while
// describing are cleared and replaced with a generic description.
func describe(env Env, thrown Object) string {
	const fallback = "unknown foreign exception"
	if thrown == nil {
		return fallback
	}

	v, err := env.CallMethod(thrown, toStringMethod.Name, toStringMethod.Descriptor)
	if err != nil || env.ExceptionCheck() {
		env.ExceptionClear()
		return fallback
	}
	str, err := v.Object()
	if err != nil || str == nil {
		return fallback
	}
	s, err := env.GetString(str)
	env.DeleteLocalRef(str)
	if err != nil {
		env.ExceptionClear()
		return fallback
	}
	return s
}
