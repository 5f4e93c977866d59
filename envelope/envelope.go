package envelope

import (
	"github.com/wippyai/tika-bridge/errors"
	"github.com/wippyai/tika-bridge/runtime"
	"github.com/wippyai/tika-bridge/stream"
	"github.com/wippyai/tika-bridge/vm"
)

// Foreign result classes.
const (
	StringResultClass = "ai/yobix/StringResult"
	ReaderResultClass = "ai/yobix/ReaderResult"
	MetadataClass     = "org/apache/tika/metadata/Metadata"
)

var (
	isErrorMethod         = vm.NewMethod("isError", "()Z")
	getStatusMethod       = vm.NewMethod("getStatus", "()B")
	getErrorMessageMethod = vm.NewMethod("getErrorMessage", "()Ljava/lang/String;")
	getContentMethod      = vm.NewMethod("getContent", "()Ljava/lang/String;")
	getReaderMethod       = vm.NewMethod("getReader", "()L"+stream.ReaderClass+";")
	getMetadataMethod     = vm.NewMethod("getMetadata", "()L"+MetadataClass+";")
)

// check returns the envelope's own error, if it reports one. A reported
// failure maps its status to io, parse or unknown and keeps the foreign
// message verbatim.
func check(env vm.Env, class string, result vm.Object) error {
	if result == nil {
		return errors.New(errors.PhaseEnvelope, errors.KindBridgeCall).
			Class(class).
			Detail("entry point returned null").
			Build()
	}

	failed, err := vm.CallBool(env, errors.PhaseEnvelope, result, class, isErrorMethod)
	if err != nil {
		return err
	}
	if !failed {
		return nil
	}

	status, err := vm.CallByte(env, errors.PhaseEnvelope, result, class, getStatusMethod)
	if err != nil {
		return err
	}
	msg, err := vm.CallString(env, errors.PhaseEnvelope, result, class, getErrorMessageMethod)
	if err != nil {
		return err
	}
	return errors.FromStatus(class, status, msg)
}

// String unwraps a StringResult into its content.
func String(env vm.Env, result vm.Object) (string, error) {
	if err := check(env, StringResultClass, result); err != nil {
		return "", err
	}
	content, err := vm.CallObject(env, errors.PhaseEnvelope, result, StringResultClass, getContentMethod)
	if err != nil {
		return "", err
	}
	if content == nil {
		return "", errors.New(errors.PhaseEnvelope, errors.KindBridgeCall).
			Class(StringResultClass).
			Method(getContentMethod.Name, getContentMethod.Descriptor).
			Detail("successful result has null content").
			Build()
	}
	defer env.DeleteLocalRef(content)
	return vm.GetString(env, errors.PhaseEnvelope, content)
}

// Reader unwraps a ReaderResult into a Stream. The foreign reader is promoted
// to a global reference owned by the returned Stream.
func Reader(env vm.Env, rt *runtime.Runtime, result vm.Object) (*stream.Stream, error) {
	if err := check(env, ReaderResultClass, result); err != nil {
		return nil, err
	}
	local, err := vm.CallObject(env, errors.PhaseEnvelope, result, ReaderResultClass, getReaderMethod)
	if err != nil {
		return nil, err
	}
	if local == nil {
		return nil, errors.New(errors.PhaseEnvelope, errors.KindBridgeCall).
			Class(ReaderResultClass).
			Method(getReaderMethod.Name, getReaderMethod.Descriptor).
			Detail("successful result has null reader").
			Build()
	}
	defer env.DeleteLocalRef(local)

	global, err := env.NewGlobalRef(local)
	if err != nil || global == nil {
		vm.CheckException(env)
		return nil, errors.New(errors.PhaseEnvelope, errors.KindBridgeCall).
			Class(stream.ReaderClass).
			Detail("promote reader to global reference").
			Cause(err).
			Build()
	}

	s, err := stream.New(rt, global)
	if err != nil {
		env.DeleteGlobalRef(global)
		return nil, err
	}
	return s, nil
}
