// Package errors provides structured error types for the tika bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Kind set is closed:
//
//	io, parse, unknown  content errors reported by the foreign result envelope
//	setup               class or method lookup failed (packaging defect)
//	bridge_call         unexpected foreign call failure, e.g. an exception in a setter
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseProject, errors.KindSetup).
//		Class("org/apache/tika/parser/pdf/PDFParserConfig").
//		Method("setOcrStrategy", "(Ljava/lang/String;)V").
//		Detail("method not found").
//		Build()
//
// Envelope status codes map through FromStatus:
//
//	err := errors.FromStatus(class, 2, "Unable to parse document") // KindParse
//
// All errors implement the standard error interface and support errors.Is/As:
//
//	if errors.Is(err, errors.ErrParse) { ... }
package errors
