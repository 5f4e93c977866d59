package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	pdf := DefaultPdfParserConfig()
	if pdf.OcrStrategy != OcrAuto || pdf.ExtractInlineImages || !pdf.ExtractUniqueInlineImagesOnly ||
		pdf.ExtractMarkedContent || pdf.ExtractAnnotationText {
		t.Errorf("pdf defaults = %+v", pdf)
	}

	office := DefaultOfficeParserConfig()
	want := OfficeParserConfig{
		IncludeShapeBasedContent:  true,
		IncludeHeadersAndFooters:  true,
		IncludeSlideNotes:         true,
		IncludeSlideMasterContent: true,
		ConcatenatePhoneticRuns:   true,
	}
	if office != want {
		t.Errorf("office defaults = %+v, want %+v", office, want)
	}

	ocr := DefaultTesseractOcrConfig()
	if ocr.Density != 300 || ocr.Depth != 4 || ocr.TimeoutSeconds != 130 ||
		ocr.EnableImagePreprocessing || ocr.ApplyRotation || ocr.Language != "eng" {
		t.Errorf("ocr defaults = %+v", ocr)
	}

	f := Default()
	if f.Extractor.MaxLength != DefaultMaxLength || f.Extractor.Encoding != UTF8 {
		t.Errorf("extractor defaults = %+v", f.Extractor)
	}
	if err := f.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestPdfOcrStrategy_Text(t *testing.T) {
	tests := []struct {
		s    PdfOcrStrategy
		name string
	}{
		{OcrNone, "NO_OCR"},
		{OcrOnly, "OCR_ONLY"},
		{OcrAndTextExtraction, "OCR_AND_TEXT_EXTRACTION"},
		{OcrAuto, "AUTO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.s.MarshalText()
			if err != nil || string(b) != tt.name {
				t.Fatalf("MarshalText = %q, %v", b, err)
			}
			var got PdfOcrStrategy
			if err := got.UnmarshalText([]byte(tt.name)); err != nil || got != tt.s {
				t.Errorf("UnmarshalText(%q) = %v, %v", tt.name, got, err)
			}
		})
	}

	var s PdfOcrStrategy
	if err := s.UnmarshalText([]byte("auto")); err == nil {
		t.Error("strategy names are case sensitive")
	}
	if _, err := PdfOcrStrategy(9).MarshalText(); err == nil {
		t.Error("out of range strategy should not marshal")
	}
}

func TestCharSet(t *testing.T) {
	tests := []struct {
		in   string
		want CharSet
		java string
	}{
		{"UTF_8", UTF8, "UTF-8"},
		{"UTF-8", UTF8, "UTF-8"},
		{"US_ASCII", USASCII, "US-ASCII"},
		{"UTF_16BE", UTF16BE, "UTF-16BE"},
	}
	for _, tt := range tests {
		got, err := ParseCharSet(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseCharSet(%q) = %v, %v", tt.in, got, err)
		}
		if got.JavaName() != tt.java {
			t.Errorf("JavaName() = %q, want %q", got.JavaName(), tt.java)
		}
	}
	if _, err := ParseCharSet("LATIN1"); err == nil {
		t.Error("unknown charset should fail")
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
extractor:
  max_length: 500
  encoding: UTF_16BE
pdf:
  ocr_strategy: OCR_AND_TEXT_EXTRACTION
  extract_annotation_text: true
office:
  include_slide_notes: false
ocr:
  language: eng+deu
  density: 600
`)
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Extractor.MaxLength != 500 || f.Extractor.Encoding != UTF16BE {
		t.Errorf("extractor = %+v", f.Extractor)
	}
	if f.Extractor.Concurrency != 4 {
		t.Errorf("absent key lost its default: concurrency = %d", f.Extractor.Concurrency)
	}
	if f.PDF.OcrStrategy != OcrAndTextExtraction || !f.PDF.ExtractAnnotationText || !f.PDF.ExtractUniqueInlineImagesOnly {
		t.Errorf("pdf = %+v", f.PDF)
	}
	if f.Office.IncludeSlideNotes || !f.Office.IncludeHeadersAndFooters {
		t.Errorf("office = %+v", f.Office)
	}
	if f.OCR.Language != "eng+deu" || f.OCR.Density != 600 || f.OCR.Depth != 4 {
		t.Errorf("ocr = %+v", f.OCR)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown strategy", "pdf:\n  ocr_strategy: SOMETIMES\n", "SOMETIMES"},
		{"unknown key", "pdf:\n  ocr: true\n", "ocr"},
		{"density range", "ocr:\n  density: 10\n", "density"},
		{"negative length", "extractor:\n  max_length: -1\n", "max_length"},
		{"empty language", "ocr:\n  language: \"\"\n", "language"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, should mention %q", err, tt.want)
			}
		})
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	f := Default()
	f.PDF.OcrStrategy = OcrNone
	f.Extractor.Encoding = USASCII
	f.Runtime.JVMOptions = []string{"-Xmx512m"}

	data, err := f.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "NO_OCR") || !strings.Contains(string(data), "US_ASCII") {
		t.Errorf("marshaled config uses numeric enums:\n%s", data)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.PDF != f.PDF || back.Extractor != f.Extractor || back.Runtime.JVMOptions[0] != "-Xmx512m" {
		t.Errorf("round trip = %+v", back)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	if err := os.WriteFile(path, []byte("ocr:\n  depth: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.OCR.Depth != 8 {
		t.Errorf("depth = %d, want 8", f.OCR.Depth)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of missing file should fail")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvClassPath, "/opt/tika/tika.jar")
	t.Setenv(EnvJVMOpts, "-Xmx1g  -Djava.awt.headless=true")
	t.Setenv(EnvMaxLength, "2048")

	f := Default()
	if err := f.ApplyEnv(); err != nil {
		t.Fatal(err)
	}
	if f.Runtime.ClassPath != "/opt/tika/tika.jar" {
		t.Errorf("class path = %q", f.Runtime.ClassPath)
	}
	if len(f.Runtime.JVMOptions) != 2 || f.Runtime.JVMOptions[1] != "-Djava.awt.headless=true" {
		t.Errorf("jvm options = %q", f.Runtime.JVMOptions)
	}
	if f.Extractor.MaxLength != 2048 {
		t.Errorf("max length = %d", f.Extractor.MaxLength)
	}

	t.Setenv(EnvMaxLength, "lots")
	if err := Default().ApplyEnv(); err == nil {
		t.Error("invalid max length should fail")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(EnvClassPath+"=/from/dotenv.jar\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvClassPath, "")
	os.Unsetenv(EnvClassPath)

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv(EnvClassPath); got != "/from/dotenv.jar" {
		t.Errorf("%s = %q after LoadDotEnv", EnvClassPath, got)
	}

	t.Setenv(EnvClassPath, "/from/env.jar")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv(EnvClassPath); got != "/from/env.jar" {
		t.Errorf(".env overrode the environment: %q", got)
	}
}

func TestLoadDotEnv_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.env")
	if err := os.WriteFile(bad, []byte("KEY='unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		file string
	}{
		{"missing", filepath.Join(dir, "nope.env")},
		{"unparseable", bad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := LoadDotEnv(tt.file)
			if err == nil || !strings.Contains(err.Error(), tt.file) {
				t.Errorf("LoadDotEnv(%s) err = %v", tt.name, err)
			}
		})
	}

	// No implicit .env in the working directory is fine.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := LoadDotEnv(); err != nil {
		t.Errorf("LoadDotEnv() without .env = %v", err)
	}
}
