// Package config defines the host-side parser configuration and how it is
// loaded.
//
// The three parser structs mirror the foreign PDFParserConfig,
// OfficeParserConfig and TesseractOCRConfig classes; package projector turns
// them into foreign objects. Values come from Default*, a YAML File, and the
// TIKA_BRIDGE_* environment variables, in that order of precedence from
// lowest to highest.
//
// Build with -tags ocr to validate OCR languages against the local Tesseract
// installation.
package config
