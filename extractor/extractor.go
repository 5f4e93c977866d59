package extractor

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/tika-bridge/config"
	"github.com/wippyai/tika-bridge/envelope"
	"github.com/wippyai/tika-bridge/errors"
	"github.com/wippyai/tika-bridge/projector"
	"github.com/wippyai/tika-bridge/runtime"
	"github.com/wippyai/tika-bridge/stream"
	"github.com/wippyai/tika-bridge/vm"
)

// Result is a streaming extraction. Read the text through the embedded
// Stream and Close it when done.
type Result struct {
	*stream.Stream
	Metadata envelope.Metadata
}

// Extractor runs extractions against a runtime. It is immutable after New
// and safe for concurrent use.
type Extractor struct {
	rt          *runtime.Runtime
	logger      *zap.Logger
	maxLength   int
	encoding    config.CharSet
	concurrency int
	pdf         config.PdfParserConfig
	office      config.OfficeParserConfig
	ocr         config.TesseractOcrConfig
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxLength caps string extractions at n UTF-16 units. A negative n
// disables the cap.
func WithMaxLength(n int) Option {
	return func(e *Extractor) {
		switch {
		case n < 0:
			e.maxLength = -1
		case n > math.MaxInt32:
			e.maxLength = math.MaxInt32
		default:
			e.maxLength = n
		}
	}
}

// WithEncoding sets the byte encoding of streamed text.
func WithEncoding(cs config.CharSet) Option {
	return func(e *Extractor) { e.encoding = cs }
}

func WithPdfConfig(c config.PdfParserConfig) Option {
	return func(e *Extractor) { e.pdf = c }
}

func WithOfficeConfig(c config.OfficeParserConfig) Option {
	return func(e *Extractor) { e.office = c }
}

func WithOcrConfig(c config.TesseractOcrConfig) Option {
	return func(e *Extractor) { e.ocr = c }
}

// WithConcurrency bounds BatchToString when it is called without a limit.
func WithConcurrency(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithConfig applies every extractor and parser section of f.
func WithConfig(f *config.File) Option {
	return func(e *Extractor) {
		WithMaxLength(f.Extractor.MaxLength)(e)
		WithConcurrency(f.Extractor.Concurrency)(e)
		e.encoding = f.Extractor.Encoding
		e.pdf = f.PDF
		e.office = f.Office
		e.ocr = f.OCR
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// New returns an Extractor with defaults overridden by opts.
func New(rt *runtime.Runtime, opts ...Option) (*Extractor, error) {
	if rt == nil {
		return nil, errors.InvalidInput(errors.PhaseInit, "nil runtime")
	}
	e := &Extractor{
		rt:          rt,
		maxLength:   config.DefaultMaxLength,
		encoding:    config.UTF8,
		concurrency: 4,
		pdf:         config.DefaultPdfParserConfig(),
		office:      config.DefaultOfficeParserConfig(),
		ocr:         config.DefaultTesseractOcrConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = rt.Logger()
	}
	return e, nil
}

func (e *Extractor) MaxLength() int { return e.maxLength }
func (e *Extractor) Encoding() config.CharSet { return e.encoding }
func (e *Extractor) PdfConfig() config.PdfParserConfig { return e.pdf }
func (e *Extractor) OfficeConfig() config.OfficeParserConfig { return e.office }
func (e *Extractor) OcrConfig() config.TesseractOcrConfig { return e.ocr }

// ExtractFile streams the text of the file at path.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (*Result, error) {
	if path == "" {
		return nil, errors.InvalidInput(errors.PhaseCall, "empty path")
	}
	return e.extract(ctx, opFile, parseFile, stringSource(path))
}

// ExtractBytes streams the text of an in-memory document.
func (e *Extractor) ExtractBytes(ctx context.Context, data []byte) (*Result, error) {
	return e.extract(ctx, opBytes, parseBytes, bytesSource(data))
}

// ExtractURL streams the text of the document at url. The foreign side
// does the fetching.
func (e *Extractor) ExtractURL(ctx context.Context, url string) (*Result, error) {
	if url == "" {
		return nil, errors.InvalidInput(errors.PhaseCall, "empty url")
	}
	return e.extract(ctx, opURL, parseURL, stringSource(url))
}

// ExtractFileToString returns the text of the file at path, truncated to the
// configured max length.
func (e *Extractor) ExtractFileToString(ctx context.Context, path string) (string, envelope.Metadata, error) {
	if path == "" {
		return "", nil, errors.InvalidInput(errors.PhaseCall, "empty path")
	}
	return e.extractString(ctx, opFileString, parseFileToString, stringSource(path))
}

func (e *Extractor) ExtractBytesToString(ctx context.Context, data []byte) (string, envelope.Metadata, error) {
	return e.extractString(ctx, opBytesString, parseBytesToStr, bytesSource(data))
}

func (e *Extractor) ExtractURLToString(ctx context.Context, url string) (string, envelope.Metadata, error) {
	if url == "" {
		return "", nil, errors.InvalidInput(errors.PhaseCall, "empty url")
	}
	return e.extractString(ctx, opURLString, parseURLToString, stringSource(url))
}

// source builds the first entry point argument.
type source func(env vm.Env) (vm.Value, error)

func stringSource(s string) source {
	return func(env vm.Env) (vm.Value, error) {
		str, err := vm.NewString(env, errors.PhaseCall, s)
		if err != nil {
			return vm.Value{}, err
		}
		return vm.Ref(str), nil
	}
}

func bytesSource(data []byte) source {
	return func(env vm.Env) (vm.Value, error) {
		arr, err := vm.NewByteArray(env, errors.PhaseCall, len(data))
		if err != nil {
			return vm.Value{}, err
		}
		if len(data) > 0 {
			if err := vm.SetByteArrayRegion(env, errors.PhaseCall, arr, 0, vm.AsInt8(data)); err != nil {
				return vm.Value{}, err
			}
		}
		return vm.Ref(arr), nil
	}
}

func (e *Extractor) extract(ctx context.Context, op string, m vm.Method, src source) (*Result, error) {
	var res *Result
	err := e.run(ctx, op, func(env vm.Env, main vm.Class, cfgs projector.Configs) error {
		charset, err := vm.NewString(env, errors.PhaseCall, e.encoding.JavaName())
		if err != nil {
			return err
		}
		result, err := e.call(env, main, m, src, vm.Ref(charset), cfgs)
		if err != nil {
			return err
		}
		s, err := envelope.Reader(env, e.rt, result)
		if err != nil {
			return err
		}
		// The stream must outlive this frame; a metadata failure closes it
		// after the frame is gone.
		res = &Result{Stream: s}
		res.Metadata, err = envelope.ReadMetadata(env, envelope.ReaderResultClass, result)
		return err
	})
	if err != nil {
		if res != nil {
			_ = res.Close()
		}
		return nil, err
	}
	return res, nil
}

func (e *Extractor) extractString(ctx context.Context, op string, m vm.Method, src source) (string, envelope.Metadata, error) {
	var (
		text string
		md   envelope.Metadata
	)
	err := e.run(ctx, op, func(env vm.Env, main vm.Class, cfgs projector.Configs) error {
		result, err := e.call(env, main, m, src, vm.Int(int32(e.maxLength)), cfgs)
		if err != nil {
			return err
		}
		if text, err = envelope.String(env, result); err != nil {
			return err
		}
		md, err = envelope.ReadMetadata(env, envelope.StringResultClass, result)
		return err
	})
	if err != nil {
		return "", nil, err
	}
	return text, md, nil
}

func (e *Extractor) call(env vm.Env, main vm.Class, m vm.Method, src source, arg vm.Value, cfgs projector.Configs) (vm.Object, error) {
	first, err := src(env)
	if err != nil {
		return nil, err
	}
	args := append([]vm.Value{first, arg}, cfgs.Args()...)
	v, err := vm.CallStatic(env, errors.PhaseCall, main, m, args...)
	if err != nil {
		return nil, err
	}
	return v.Object()
}

// run projects the configs, resolves the entry class and hands both to fn,
// all inside one frame. It logs and counts the outcome.
func (e *Extractor) run(ctx context.Context, op string, fn func(env vm.Env, main vm.Class, cfgs projector.Configs) error) error {
	log := e.logger.With(
		zap.String("extraction_id", uuid.NewString()),
		zap.String("op", op),
	)
	start := time.Now()

	err := e.rt.WithEnv(ctx, func(env vm.Env) error {
		cfgs, err := projector.ProjectAll(env, &e.pdf, &e.office, &e.ocr)
		if err != nil {
			return err
		}
		main, err := vm.FindClass(env, errors.PhaseCall, EntryClass)
		if err != nil {
			return err
		}
		return fn(env, main, cfgs)
	})

	outcome := outcomeOf(err)
	e.rt.Metrics().Extraction(op, outcome)
	if err != nil {
		log.Debug("extraction failed",
			zap.String("outcome", outcome),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return err
	}
	log.Debug("extraction finished", zap.Duration("elapsed", time.Since(start)))
	return nil
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	var berr *errors.Error
	if errors.As(err, &berr) {
		return string(berr.Kind)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "error"
}
