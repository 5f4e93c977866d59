package config

import (
	"fmt"
)

// PdfOcrStrategy selects how the PDF parser combines text extraction with OCR.
type PdfOcrStrategy uint8

const (
	// OcrAuto runs OCR only on pages without extractable text.
	OcrAuto PdfOcrStrategy = iota
	// OcrNone never runs OCR.
	OcrNone
	// OcrOnly ignores embedded text and runs OCR on every page.
	OcrOnly
	// OcrAndTextExtraction runs OCR and also extracts embedded text.
	OcrAndTextExtraction
)

var strategyNames = [...]string{
	OcrAuto:              "AUTO",
	OcrNone:              "NO_OCR",
	OcrOnly:              "OCR_ONLY",
	OcrAndTextExtraction: "OCR_AND_TEXT_EXTRACTION",
}

// String returns the foreign enum constant name.
func (s PdfOcrStrategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("PdfOcrStrategy(%d)", s)
}

// ParsePdfOcrStrategy parses a foreign enum constant name.
func ParsePdfOcrStrategy(name string) (PdfOcrStrategy, error) {
	for i, n := range strategyNames {
		if n == name {
			return PdfOcrStrategy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown pdf ocr strategy %q", name)
}

func (s PdfOcrStrategy) MarshalText() ([]byte, error) {
	if int(s) >= len(strategyNames) {
		return nil, fmt.Errorf("invalid pdf ocr strategy %d", s)
	}
	return []byte(s.String()), nil
}

func (s *PdfOcrStrategy) UnmarshalText(b []byte) error {
	v, err := ParsePdfOcrStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// CharSet is the encoding of bytes produced by streaming extraction.
type CharSet uint8

const (
	UTF8 CharSet = iota
	USASCII
	UTF16BE
)

var charsetNames = [...]struct{ name, foreign string }{
	UTF8:    {"UTF_8", "UTF-8"},
	USASCII: {"US_ASCII", "US-ASCII"},
	UTF16BE: {"UTF_16BE", "UTF-16BE"},
}

func (c CharSet) String() string {
	if int(c) < len(charsetNames) {
		return charsetNames[c].name
	}
	return fmt.Sprintf("CharSet(%d)", c)
}

// JavaName returns the charset name the foreign runtime understands.
func (c CharSet) JavaName() string {
	if int(c) < len(charsetNames) {
		return charsetNames[c].foreign
	}
	return charsetNames[UTF8].foreign
}

// ParseCharSet accepts either the host spelling (UTF_8) or the foreign one
// (UTF-8).
func ParseCharSet(name string) (CharSet, error) {
	for i, n := range charsetNames {
		if n.name == name || n.foreign == name {
			return CharSet(i), nil
		}
	}
	return 0, fmt.Errorf("unknown charset %q", name)
}

func (c CharSet) MarshalText() ([]byte, error) {
	if int(c) >= len(charsetNames) {
		return nil, fmt.Errorf("invalid charset %d", c)
	}
	return []byte(c.String()), nil
}

func (c *CharSet) UnmarshalText(b []byte) error {
	v, err := ParseCharSet(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
