// Package tikabridge embeds Apache Tika in a Go process and exposes text and
// metadata extraction over JNI.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	tikabridge/          Root package (documentation only)
//	├── extractor/       Host-facing API: file, bytes and URL extraction
//	├── runtime/         Process-wide runtime handle, thread attachment, frames
//	├── vm/              Backend contract, descriptors, exception translation
//	│   ├── jni/         HotSpot backend over cgo (build tag jni)
//	│   └── script/      In-process script backend used for tests
//	├── projector/       Host parser configs to foreign config objects
//	├── envelope/        Result envelope unwrapping and metadata
//	├── stream/          io.ReadCloser over a foreign reader
//	├── resource/        Reference table shared by the script backend
//	├── config/          YAML and environment configuration
//	├── errors/          Structured error types for debugging
//	└── cmd/extract/     Command line tool
//
// # Quick Start
//
// Create the runtime once per process, then extract:
//
//	rt, err := runtime.Init(jni.Opener(jni.Options{ClassPath: "tika-native.jar"}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	ex, err := extractor.New(rt)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	text, md, err := ex.ExtractFileToString(ctx, "report.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(md.Get("Content-Type"), len(text))
//
// # Streaming
//
// ExtractFile, ExtractBytes and ExtractURL return a Result whose Stream reads
// the extracted text in the configured encoding. Reads copy through a
// temporary foreign byte array, at most stream.MaxChunk bytes per call. Close
// releases the foreign reader; a finalizer releases streams that were never
// closed and logs a warning.
//
// # Errors
//
// Every error is an *errors.Error carrying a Phase and a Kind. Content
// failures reported by Tika (KindIO, KindParse, KindUnknown) keep the foreign
// message verbatim; use errors.Message to get it. Bridge failures (KindSetup,
// KindBridgeCall) point at a classpath or version mismatch.
//
//	if errors.Is(err, errors.ErrParse) {
//	    log.Printf("unparseable: %s", errors.Message(err))
//	}
//
// # Thread Safety
//
// Runtime and Extractor are safe for concurrent use. Each call attaches the
// calling OS thread for its duration. A Stream serializes its own reads.
//
// # Build Tags
//
//	jni   embed HotSpot through cgo (needs a JDK)
//	ocr   check Tesseract languages locally through gosseract
package tikabridge
