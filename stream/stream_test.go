package stream_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	bridgeerrors "github.com/wippyai/tika-bridge/errors"
	"github.com/wippyai/tika-bridge/internal/vmtest"
	"github.com/wippyai/tika-bridge/runtime"
	"github.com/wippyai/tika-bridge/stream"
)

const sample = "The quick brown fox jumps over the lazy dog.\nÜber naïve café ñ 日本語 😀\n"

func open(t *testing.T, f *vmtest.Fixture, path string) *stream.Stream {
	t.Helper()
	s, err := stream.New(f.Runtime, f.OpenReader(path, "UTF-8"))
	if err != nil {
		t.Fatalf("stream.New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStream_ReadAll(t *testing.T) {
	f := vmtest.New(t)
	f.AddFile("doc.txt", vmtest.Document{Text: sample})

	got, err := io.ReadAll(open(t, f, "doc.txt"))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != sample {
		t.Errorf("ReadAll = %q, want %q", got, sample)
	}
}

func TestStream_SmallBuffers(t *testing.T) {
	tests := []struct {
		name       string
		bufSize    int
		maxPerRead int
	}{
		{"one byte", 1, 0},
		{"three bytes", 3, 0},
		{"short foreign reads", 64, 5},
		{"buffer larger than text", 4096, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := vmtest.New(t)
			f.AddFile("doc.txt", vmtest.Document{Text: sample, MaxPerRead: tt.maxPerRead})
			s := open(t, f, "doc.txt")

			var out bytes.Buffer
			buf := make([]byte, tt.bufSize)
			for {
				n, err := s.Read(buf)
				out.Write(buf[:n])
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("Read: %v", err)
				}
			}
			if out.String() != sample {
				t.Errorf("concatenated reads = %q, want %q", out.String(), sample)
			}
		})
	}
}

func TestStream_EndOfStreamIsSticky(t *testing.T) {
	f := vmtest.New(t)
	f.AddFile("doc.txt", vmtest.Document{Text: "abc"})
	s := open(t, f, "doc.txt")

	if _, err := io.ReadAll(s); err != nil {
		t.Fatal(err)
	}
	if !s.EOF() {
		t.Fatal("EOF() = false after ReadAll")
	}
	reads := f.Reads()

	buf := make([]byte, 16)
	for i := 0; i < 3; i++ {
		n, err := s.Read(buf)
		if n != 0 || err != io.EOF {
			t.Errorf("Read after EOF = %d, %v; want 0, EOF", n, err)
		}
	}
	if got := f.Reads(); got != reads {
		t.Errorf("foreign reads after EOF = %d, want %d", got, reads)
	}
}

func TestStream_EmptyBuffer(t *testing.T) {
	f := vmtest.New(t)
	f.AddFile("doc.txt", vmtest.Document{Text: "abc"})
	s := open(t, f, "doc.txt")

	n, err := s.Read(nil)
	if n != 0 || err != nil {
		t.Errorf("Read(nil) = %d, %v; want 0, nil", n, err)
	}
	if f.Reads() != 0 {
		t.Error("empty read reached the foreign reader")
	}
}

func TestStream_ForeignReadFailure(t *testing.T) {
	f := vmtest.New(t)
	f.AddFile("doc.txt", vmtest.Document{Text: sample, FailAfter: vmtest.FailAfter(10)})
	s := open(t, f, "doc.txt")

	got, err := io.ReadAll(s)
	if !bridgeerrors.Is(err, bridgeerrors.ErrIO) {
		t.Fatalf("err = %v, want io kind", err)
	}
	if string(got) != sample[:10] {
		t.Errorf("bytes before failure = %q", got)
	}
	if !strings.Contains(err.Error(), "java.io.IOException") {
		t.Errorf("err = %q, should describe the foreign exception", err)
	}
	if st := f.VM.Stats(); st.LocalRefs != 0 {
		t.Errorf("local refs leaked: %+v", st)
	}
}

func TestStream_ZeroLengthForeignRead(t *testing.T) {
	f := vmtest.New(t)
	f.AddFile("doc.txt", vmtest.Document{Text: sample, StallAfter: vmtest.StallAfter(5)})
	s := open(t, f, "doc.txt")

	got, err := io.ReadAll(s)
	if !bridgeerrors.Is(err, bridgeerrors.ErrIO) {
		t.Fatalf("err = %v, want io kind", err)
	}
	if string(got) != sample[:5] {
		t.Errorf("bytes before stall = %q", got)
	}
	if !strings.Contains(err.Error(), "read returned 0") {
		t.Errorf("err = %q, should report the empty read", err)
	}
	if s.EOF() {
		t.Error("empty read treated as end of stream")
	}
}

func TestStream_Close(t *testing.T) {
	f := vmtest.New(t)
	f.AddFile("doc.txt", vmtest.Document{Text: sample})
	s := open(t, f, "doc.txt")

	if st := f.VM.Stats(); st.GlobalRefs != 1 {
		t.Fatalf("global refs = %d, want 1", st.GlobalRefs)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if got := f.Closes(); got != 1 {
		t.Errorf("foreign close calls = %d, want 1", got)
	}
	if st := f.VM.Stats(); st.GlobalRefs != 0 || st.LocalRefs != 0 {
		t.Errorf("refs after Close = %+v", st)
	}

	_, err := s.Read(make([]byte, 4))
	if !bridgeerrors.Is(err, bridgeerrors.ErrClosed) {
		t.Errorf("Read after Close = %v, want closed", err)
	}
}

func TestStream_CloseMidReadWhenForeignCloseThrows(t *testing.T) {
	f := vmtest.New(t)
	f.AddFile("doc.txt", vmtest.Document{Text: sample, CloseThrows: true})
	s := open(t, f, "doc.txt")

	if _, err := s.Read(make([]byte, 4)); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close = %v, want nil", err)
	}
	if got := f.Closes(); got != 1 {
		t.Errorf("foreign close calls = %d, want 1", got)
	}
	if st := f.VM.Stats(); st.GlobalRefs != 0 {
		t.Errorf("global ref not released: %+v", st)
	}
}

func TestStream_CloseAfterRuntimeClosed(t *testing.T) {
	f := vmtest.New(t)
	f.AddFile("doc.txt", vmtest.Document{Text: sample})
	s := open(t, f, "doc.txt")

	if err := f.Runtime.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Read(make([]byte, 4)); !bridgeerrors.Is(err, bridgeerrors.ErrClosed) {
		t.Errorf("Read on closed runtime = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close on closed runtime = %v", err)
	}
}

func TestStream_Charsets(t *testing.T) {
	tests := []struct {
		charset string
		text    string
		want    []byte
	}{
		{"UTF-8", "é", []byte{0xc3, 0xa9}},
		{"US-ASCII", "aé", []byte{'a', '?'}},
		{"UTF-16BE", "A", []byte{0x00, 0x41}},
	}
	for _, tt := range tests {
		t.Run(tt.charset, func(t *testing.T) {
			f := vmtest.New(t)
			f.AddFile("doc.txt", vmtest.Document{Text: tt.text})
			s, err := stream.New(f.Runtime, f.OpenReader("doc.txt", tt.charset))
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()
			got, err := io.ReadAll(s)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("bytes = % x, want % x", got, tt.want)
			}
		})
	}
}

func TestStream_New_RejectsLocalRefs(t *testing.T) {
	f := vmtest.New(t)
	if _, err := stream.New(f.Runtime, nil); !bridgeerrors.Is(err, &bridgeerrors.Error{Kind: bridgeerrors.KindInvalidInput}) {
		t.Errorf("New(nil) = %v", err)
	}
}

func TestStream_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := vmtest.New(t, runtime.WithMetrics(runtime.NewMetrics(reg)))
	f.AddFile("doc.txt", vmtest.Document{Text: "hello"})
	s := open(t, f, "doc.txt")

	if _, err := io.ReadAll(s); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	if n, err := testutil.GatherAndCount(reg, "tika_bridge_stream_bytes_total"); err != nil || n != 1 {
		t.Errorf("stream bytes series = %d, %v", n, err)
	}
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range mfs {
		switch mf.GetName() {
		case "tika_bridge_stream_bytes_total":
			if v := mf.GetMetric()[0].GetCounter().GetValue(); v != 5 {
				t.Errorf("stream bytes = %v, want 5", v)
			}
		case "tika_bridge_open_streams":
			if v := mf.GetMetric()[0].GetGauge().GetValue(); v != 0 {
				t.Errorf("open streams = %v, want 0", v)
			}
		}
	}
}
