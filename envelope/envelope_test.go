package envelope_test

import (
	"context"
	"io"
	"testing"

	"github.com/wippyai/tika-bridge/envelope"
	"github.com/wippyai/tika-bridge/errors"
	"github.com/wippyai/tika-bridge/internal/vmtest"
	"github.com/wippyai/tika-bridge/stream"
	"github.com/wippyai/tika-bridge/vm"
)

const configArgs = "Lorg/apache/tika/parser/pdf/PDFParserConfig;" +
	"Lorg/apache/tika/parser/microsoft/OfficeParserConfig;" +
	"Lorg/apache/tika/parser/ocr/TesseractOCRConfig;"

var (
	parseFileToString = vm.NewMethod("parseFileToString", "(Ljava/lang/String;I"+configArgs+")Lai/yobix/StringResult;")
	parseFile         = vm.NewMethod("parseFile", "(Ljava/lang/String;Ljava/lang/String;"+configArgs+")Lai/yobix/ReaderResult;")
)

// call invokes an entry point with null configs and hands the result to fn.
func call(t *testing.T, f *vmtest.Fixture, m vm.Method, path string, arg vm.Value, fn func(env vm.Env, result vm.Object) error) error {
	t.Helper()
	return f.Runtime.WithEnv(context.Background(), func(env vm.Env) error {
		cls, err := vm.FindClass(env, errors.PhaseCall, "ai/yobix/TikaNativeMain")
		if err != nil {
			return err
		}
		p, err := vm.NewString(env, errors.PhaseCall, path)
		if err != nil {
			return err
		}
		v, err := vm.CallStatic(env, errors.PhaseCall, cls, m, vm.Ref(p), arg, vm.Ref(nil), vm.Ref(nil), vm.Ref(nil))
		if err != nil {
			return err
		}
		result, err := v.Object()
		if err != nil {
			return err
		}
		return fn(env, result)
	})
}

func TestString(t *testing.T) {
	f := vmtest.New(t)
	f.AddFile("a.txt", vmtest.Document{Text: "hello world"})

	var got string
	err := call(t, f, parseFileToString, "a.txt", vm.Int(100), func(env vm.Env, result vm.Object) error {
		var err error
		got, err = envelope.String(env, result)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello world" {
		t.Errorf("String = %q", got)
	}
}

func TestString_Truncated(t *testing.T) {
	f := vmtest.New(t)
	f.AddFile("a.txt", vmtest.Document{Text: "hello world"})

	var got string
	err := call(t, f, parseFileToString, "a.txt", vm.Int(5), func(env vm.Env, result vm.Object) error {
		var err error
		got, err = envelope.String(env, result)
		return err
	})
	if err != nil || got != "hello" {
		t.Errorf("String = %q, %v", got, err)
	}
}

func TestString_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int8
		msg    string
		want   *errors.Error
	}{
		{"io", 1, "Could not read /tmp/x: Permission denied", errors.ErrIO},
		{"parse", 2, "Unable to parse: org.apache.pdfbox.pdmodel.PDDocument corrupt", errors.ErrParse},
		{"unknown", 99, "something odd  \n", errors.ErrUnknown},
		{"negative", -3, "negative status", errors.ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := vmtest.New(t)
			f.AddFile("bad", vmtest.Document{Status: tt.status, Message: tt.msg})

			err := call(t, f, parseFileToString, "bad", vm.Int(100), func(env vm.Env, result vm.Object) error {
				_, err := envelope.String(env, result)
				return err
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want.Kind)
			}
			if got := errors.Message(err); got != tt.msg {
				t.Errorf("Message = %q, want %q", got, tt.msg)
			}
			var berr *errors.Error
			errors.As(err, &berr)
			if berr.Status != tt.status {
				t.Errorf("Status = %d, want %d", berr.Status, tt.status)
			}
			if !errors.IsContent(err) {
				t.Error("status errors are content errors")
			}
		})
	}
}

func TestString_MissingMethodIsBridgeError(t *testing.T) {
	f := vmtest.New(t)
	f.AddFile("a.txt", vmtest.Document{Text: "x"})
	if _, err := f.VM.Eval(context.Background(), `
		var m = classes["ai/yobix/StringResult"].$methods;
		m.splice(m.indexOf("getStatus()B"), 1);
		documents["bad"] = {status: 2, message: "x"};`); err != nil {
		t.Fatal(err)
	}

	err := call(t, f, parseFileToString, "bad", vm.Int(10), func(env vm.Env, result vm.Object) error {
		_, err := envelope.String(env, result)
		return err
	})
	if !errors.IsBridge(err) || errors.IsContent(err) {
		t.Fatalf("err = %v, want a bridge error", err)
	}
	if !errors.Is(err, errors.ErrSetup) {
		t.Errorf("err = %v, want setup", err)
	}
}

func TestString_NullResult(t *testing.T) {
	f := vmtest.New(t)
	err := f.Runtime.WithEnv(context.Background(), func(env vm.Env) error {
		_, err := envelope.String(env, nil)
		return err
	})
	if !errors.Is(err, errors.ErrBridgeCall) {
		t.Errorf("err = %v, want bridge_call", err)
	}
}

func TestReader(t *testing.T) {
	f := vmtest.New(t)
	f.AddFile("a.txt", vmtest.Document{Text: "streamed text"})

	var s *stream.Stream
	err := f.Runtime.WithEnv(context.Background(), func(env vm.Env) error {
		cls, err := vm.FindClass(env, errors.PhaseCall, "ai/yobix/TikaNativeMain")
		if err != nil {
			return err
		}
		p, _ := vm.NewString(env, errors.PhaseCall, "a.txt")
		cs, _ := vm.NewString(env, errors.PhaseCall, "UTF-8")
		v, err := vm.CallStatic(env, errors.PhaseCall, cls, parseFile, vm.Ref(p), vm.Ref(cs), vm.Ref(nil), vm.Ref(nil), vm.Ref(nil))
		if err != nil {
			return err
		}
		result, _ := v.Object()
		s, err = envelope.Reader(env, f.Runtime, result)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if st := f.VM.Stats(); st.GlobalRefs != 1 || st.LocalRefs != 0 {
		t.Errorf("refs after unwrap = %+v, want one global", st)
	}
	got, err := io.ReadAll(s)
	if err != nil || string(got) != "streamed text" {
		t.Errorf("ReadAll = %q, %v", got, err)
	}
}

func TestReader_Failure(t *testing.T) {
	f := vmtest.New(t)
	err := f.Runtime.WithEnv(context.Background(), func(env vm.Env) error {
		cls, err := vm.FindClass(env, errors.PhaseCall, "ai/yobix/TikaNativeMain")
		if err != nil {
			return err
		}
		p, _ := vm.NewString(env, errors.PhaseCall, "/missing.pdf")
		cs, _ := vm.NewString(env, errors.PhaseCall, "UTF-8")
		v, err := vm.CallStatic(env, errors.PhaseCall, cls, parseFile, vm.Ref(p), vm.Ref(cs), vm.Ref(nil), vm.Ref(nil), vm.Ref(nil))
		if err != nil {
			return err
		}
		result, _ := v.Object()
		_, err = envelope.Reader(env, f.Runtime, result)
		return err
	})
	if !errors.Is(err, errors.ErrIO) {
		t.Fatalf("err = %v, want io", err)
	}
	if errors.Message(err) != "Could not open file: /missing.pdf" {
		t.Errorf("Message = %q", errors.Message(err))
	}
	if st := f.VM.Stats(); st.GlobalRefs != 0 {
		t.Errorf("global refs = %d after failed unwrap", st.GlobalRefs)
	}
}

func TestReadMetadata(t *testing.T) {
	f := vmtest.New(t)
	f.AddFile("a.pdf", vmtest.Document{
		Text: "x",
		Metadata: map[string][]string{
			"Content-Type": {"application/pdf"},
			"dc:creator":   {"Ada", "Grace"},
			"xmp:empty":    {},
		},
	})

	var md envelope.Metadata
	err := call(t, f, parseFileToString, "a.pdf", vm.Int(10), func(env vm.Env, result vm.Object) error {
		if _, err := envelope.String(env, result); err != nil {
			return err
		}
		var err error
		md, err = envelope.ReadMetadata(env, envelope.StringResultClass, result)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if md.Get("Content-Type") != "application/pdf" {
		t.Errorf("Content-Type = %q", md.Get("Content-Type"))
	}
	if got := md["dc:creator"]; len(got) != 2 || got[1] != "Grace" {
		t.Errorf("dc:creator = %q", got)
	}
	if got, ok := md["xmp:empty"]; !ok || len(got) != 0 {
		t.Errorf("xmp:empty = %q, %v", got, ok)
	}
	names := md.Names()
	if len(names) != 3 || names[0] != "Content-Type" {
		t.Errorf("Names = %q", names)
	}
	if md.Get("missing") != "" {
		t.Error("Get of absent key should be empty")
	}
}

func TestReadMetadata_NullMetadata(t *testing.T) {
	f := vmtest.New(t)
	f.AddFile("bad", vmtest.Document{Status: 2, Message: "broken"})

	err := call(t, f, parseFileToString, "bad", vm.Int(10), func(env vm.Env, result vm.Object) error {
		md, err := envelope.ReadMetadata(env, envelope.StringResultClass, result)
		if err != nil {
			return err
		}
		if len(md) != 0 {
			t.Errorf("metadata = %v, want empty", md)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
