// Package vmtest provides a script-hosted stand-in for the Tika runtime.
package vmtest

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/wippyai/tika-bridge/errors"
	"github.com/wippyai/tika-bridge/runtime"
	"github.com/wippyai/tika-bridge/vm"
	"github.com/wippyai/tika-bridge/vm/script"
)

//go:embed tika.js
var tikaJS string

// Source is the emulated Tika library.
var Source = script.Source{Name: "tika.js", Code: tikaJS}

// TextMagic prefixes byte input the emulated parser accepts; anything else
// fails with a parse error.
const TextMagic = "%TXT\n"

// Document is a registered input. A non-zero Status makes every parse of it
// fail with that status and Message.
type Document struct {
	Text        string              `json:"text,omitempty"`
	Metadata    map[string][]string `json:"metadata,omitempty"`
	Status      int8                `json:"status,omitempty"`
	Message     string              `json:"message,omitempty"`
	MaxPerRead  int                 `json:"maxPerRead,omitempty"`
	FailAfter   *int                `json:"failAfter,omitempty"`
	StallAfter  *int                `json:"stallAfter,omitempty"`
	CloseThrows bool                `json:"closeThrows,omitempty"`
}

// Call is one recorded entry point invocation.
type Call struct {
	Op        string         `json:"op"`
	Charset   string         `json:"charset"`
	MaxLength int            `json:"maxLength"`
	PDF       map[string]any `json:"pdf"`
	Office    map[string]any `json:"office"`
	OCR       map[string]any `json:"ocr"`
}

// Fixture is a script VM with the emulated library loaded, wrapped in a
// runtime.
type Fixture struct {
	t       testing.TB
	VM      *script.VM
	Runtime *runtime.Runtime
}

// New starts a fixture and closes it when the test ends.
func New(t testing.TB, opts ...runtime.Option) *Fixture {
	t.Helper()
	v, err := script.New(Source)
	if err != nil {
		t.Fatalf("vmtest: %v", err)
	}
	opts = append([]runtime.Option{runtime.WithLogger(zaptest.NewLogger(t))}, opts...)
	rt, err := runtime.New(v, opts...)
	if err != nil {
		t.Fatalf("vmtest: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	return &Fixture{t: t, VM: v, Runtime: rt}
}

// Text encodes text as byte input the emulated parser accepts.
func Text(text string) []byte {
	return []byte(TextMagic + text)
}

// FailAfter returns a pointer for Document.FailAfter.
func FailAfter(n int) *int {
	return &n
}

// StallAfter returns a pointer for Document.StallAfter. From that offset on,
// the foreign reader returns 0 without making progress.
func StallAfter(n int) *int {
	return &n
}

func (f *Fixture) eval(code string) any {
	f.t.Helper()
	v, err := f.VM.Eval(context.Background(), code)
	if err != nil {
		f.t.Fatalf("vmtest: eval %q: %v", code, err)
	}
	return v
}

func (f *Fixture) register(table, key string, doc Document) {
	f.t.Helper()
	k, err := json.Marshal(key)
	if err != nil {
		f.t.Fatal(err)
	}
	d, err := json.Marshal(doc)
	if err != nil {
		f.t.Fatal(err)
	}
	f.eval(fmt.Sprintf("%s[%s] = %s;", table, k, d))
}

// AddFile registers doc under a file path.
func (f *Fixture) AddFile(path string, doc Document) {
	f.t.Helper()
	f.register("documents", path, doc)
}

// AddURL registers doc under a URL.
func (f *Fixture) AddURL(url string, doc Document) {
	f.t.Helper()
	f.register("urls", url, doc)
}

// Reads returns how many times any foreign reader's read was called.
func (f *Fixture) Reads() int {
	f.t.Helper()
	return toInt(f.eval("readerStats.reads"))
}

// Closes returns how many times any foreign reader's close was called.
func (f *Fixture) Closes() int {
	f.t.Helper()
	return toInt(f.eval("readerStats.closes"))
}

// Received returns the entry point calls seen so far.
func (f *Fixture) Received() []Call {
	f.t.Helper()
	raw, ok := f.eval("JSON.stringify(received)").(string)
	if !ok {
		f.t.Fatal("vmtest: received is not serializable")
	}
	var calls []Call
	if err := json.Unmarshal([]byte(raw), &calls); err != nil {
		f.t.Fatalf("vmtest: %v", err)
	}
	return calls
}

// OpenReader returns a global reference to a reader over a registered file,
// encoded as charset. The caller owns the reference.
func (f *Fixture) OpenReader(path, charset string) vm.Object {
	f.t.Helper()
	open := vm.NewMethod("open", "(Ljava/lang/String;Ljava/lang/String;)Lorg/apache/commons/io/input/ReaderInputStream;")
	var global vm.Object
	err := f.Runtime.WithEnv(context.Background(), func(env vm.Env) error {
		cls, err := vm.FindClass(env, errors.PhaseCall, "test/Readers")
		if err != nil {
			return err
		}
		p, err := vm.NewString(env, errors.PhaseCall, path)
		if err != nil {
			return err
		}
		cs, err := vm.NewString(env, errors.PhaseCall, charset)
		if err != nil {
			return err
		}
		v, err := vm.CallStatic(env, errors.PhaseCall, cls, open, vm.Ref(p), vm.Ref(cs))
		if err != nil {
			return err
		}
		local, err := v.Object()
		if err != nil {
			return err
		}
		global, err = env.NewGlobalRef(local)
		return err
	})
	if err != nil {
		f.t.Fatalf("vmtest: open reader %s: %v", path, err)
	}
	return global
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case float64:
		return int(n)
	case int:
		return n
	}
	return -1
}
