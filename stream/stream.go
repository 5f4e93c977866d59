package stream

import (
	"context"
	"fmt"
	"io"
	goruntime "runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/tika-bridge/errors"
	"github.com/wippyai/tika-bridge/runtime"
	"github.com/wippyai/tika-bridge/vm"
)

// MaxChunk caps the foreign buffer allocated for a single Read.
const MaxChunk = 4 << 20

// ReaderClass is the foreign class of the readers handed to New.
const ReaderClass = "org/apache/commons/io/input/ReaderInputStream"

var (
	readMethod  = vm.NewMethod("read", "([BII)I")
	closeMethod = vm.NewMethod("close", "()V")
)

// Stream adapts a foreign byte reader to io.ReadCloser.
//
// Reads are serialized. Once the foreign reader reports end of stream it is
// not called again and every later Read returns (0, io.EOF). Close is
// idempotent and never fails: foreign errors during teardown are logged and
// dropped.
type Stream struct {
	rt     *runtime.Runtime
	reader vm.Object // global ref, owned
	mu     sync.Mutex
	eof    bool
	closed bool
}

var _ io.ReadCloser = (*Stream)(nil)

// New takes ownership of reader, which must be a global reference. The
// reference is released by Close, or by a finalizer if the stream is
// dropped without Close.
func New(rt *runtime.Runtime, reader vm.Object) (*Stream, error) {
	if reader == nil {
		return nil, errors.InvalidInput(errors.PhaseStream, "null reader")
	}
	if reader.RefKind() != vm.RefGlobal {
		return nil, errors.InvalidInput(errors.PhaseStream, "reader must be a global reference")
	}
	s := &Stream{rt: rt, reader: reader}
	rt.Metrics().StreamOpened()
	goruntime.SetFinalizer(s, (*Stream).finalize)
	return s, nil
}

// Read fills p from the foreign reader. At most MaxChunk bytes are read per
// call. An empty p returns (0, nil) without calling the foreign side.
func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, errors.Closed(errors.PhaseStream, "stream")
	}
	if s.eof {
		return 0, io.EOF
	}

	want := min(len(p), MaxChunk)
	var got int
	err := s.rt.WithEnv(context.Background(), func(env vm.Env) error {
		buf, err := vm.NewByteArray(env, errors.PhaseStream, want)
		if err != nil {
			return err
		}
		n, err := vm.CallInt(env, errors.PhaseStream, s.reader, ReaderClass, readMethod,
			vm.Ref(buf), vm.Int(0), vm.Int(int32(want)))
		if err != nil {
			return err
		}
		if n == -1 {
			s.eof = true
			return nil
		}
		// A blocking reader returns 0 only for an empty buffer.
		if n <= 0 || int(n) > want {
			return fmt.Errorf("read returned %d for a %d byte buffer", n, want)
		}
		if err := vm.GetByteArrayRegion(env, errors.PhaseStream, buf, 0, vm.AsInt8(p[:n])); err != nil {
			return err
		}
		got = int(n)
		return nil
	})
	if err != nil {
		return 0, readError(err)
	}
	if s.eof {
		return 0, io.EOF
	}
	s.rt.Metrics().StreamRead(got)
	return got, nil
}

func readError(err error) error {
	var berr *errors.Error
	if errors.As(err, &berr) && (berr.Kind == errors.KindClosed || berr.Kind == errors.KindIO) {
		return err
	}
	return errors.New(errors.PhaseStream, errors.KindIO).
		Class(ReaderClass).
		Method(readMethod.Name, readMethod.Descriptor).
		Cause(err).
		Build()
}

// Close releases the foreign reader. It is safe to call more than once and
// always returns nil.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	goruntime.SetFinalizer(s, nil)
	s.release()
	return nil
}

func (s *Stream) release() {
	log := s.rt.Logger()
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while closing foreign reader", zap.Any("panic", r))
		}
	}()
	defer s.rt.Metrics().StreamClosed()

	reader := s.reader
	s.reader = nil
	err := s.rt.WithEnv(context.Background(), func(env vm.Env) error {
		defer env.DeleteGlobalRef(reader)
		if _, err := vm.Call(env, errors.PhaseStream, reader, ReaderClass, closeMethod); err != nil {
			log.Debug("foreign reader close failed", zap.Error(err))
		}
		return nil
	})
	if err != nil {
		log.Debug("foreign reader not released", zap.Error(err))
	}
}

func (s *Stream) finalize() {
	s.rt.Logger().Warn("stream dropped without Close")
	_ = s.Close()
}

// EOF reports whether the foreign reader has signalled end of stream.
func (s *Stream) EOF() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eof
}
