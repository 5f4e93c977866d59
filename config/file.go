package config

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// DefaultMaxLength is the default cap, in UTF-16 units, on string extraction.
const DefaultMaxLength = 100000

// ExtractorConfig holds settings applied to every extraction.
type ExtractorConfig struct {
	MaxLength   int     `json:"max_length"`
	Encoding    CharSet `json:"encoding"`
	Concurrency int     `json:"concurrency"`
}

// RuntimeConfig holds JVM startup settings.
type RuntimeConfig struct {
	ClassPath  string   `json:"class_path"`
	JVMOptions []string `json:"jvm_options"`
}

// File is the on-disk configuration.
type File struct {
	Extractor ExtractorConfig    `json:"extractor"`
	Runtime   RuntimeConfig      `json:"runtime"`
	PDF       PdfParserConfig    `json:"pdf"`
	Office    OfficeParserConfig `json:"office"`
	OCR       TesseractOcrConfig `json:"ocr"`
}

// Default returns a File with every section at its default.
func Default() *File {
	return &File{
		Extractor: ExtractorConfig{
			MaxLength:   DefaultMaxLength,
			Encoding:    UTF8,
			Concurrency: 4,
		},
		PDF:    DefaultPdfParserConfig(),
		Office: DefaultOfficeParserConfig(),
		OCR:    DefaultTesseractOcrConfig(),
	}
}

// Parse decodes YAML over the defaults. Keys absent from data keep their
// default values.
func Parse(data []byte) (*File, error) {
	f := Default()
	if err := yaml.UnmarshalStrict(data, f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Load reads and parses a YAML file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Marshal renders f as YAML.
func (f *File) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}

// Validate checks values the foreign side would otherwise reject at parse
// time.
func (f *File) Validate() error {
	if f.Extractor.MaxLength < 0 {
		return fmt.Errorf("extractor.max_length must not be negative, got %d", f.Extractor.MaxLength)
	}
	if f.Extractor.Concurrency < 1 {
		return fmt.Errorf("extractor.concurrency must be at least 1, got %d", f.Extractor.Concurrency)
	}
	if f.OCR.Density < 150 || f.OCR.Density > 1200 {
		return fmt.Errorf("ocr.density must be in [150, 1200], got %d", f.OCR.Density)
	}
	if f.OCR.Depth <= 0 {
		return fmt.Errorf("ocr.depth must be positive, got %d", f.OCR.Depth)
	}
	if f.OCR.TimeoutSeconds < 0 {
		return fmt.Errorf("ocr.timeout_seconds must not be negative, got %d", f.OCR.TimeoutSeconds)
	}
	if f.OCR.Language == "" {
		return fmt.Errorf("ocr.language must not be empty")
	}
	return nil
}
