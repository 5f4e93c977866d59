package config

// PdfParserConfig controls the foreign PDF parser.
type PdfParserConfig struct {
	OcrStrategy                   PdfOcrStrategy `json:"ocr_strategy"`
	ExtractInlineImages           bool           `json:"extract_inline_images"`
	ExtractUniqueInlineImagesOnly bool           `json:"extract_unique_inline_images_only"`
	ExtractMarkedContent          bool           `json:"extract_marked_content"`
	ExtractAnnotationText         bool           `json:"extract_annotation_text"`
}

// DefaultPdfParserConfig returns the PDF defaults.
func DefaultPdfParserConfig() PdfParserConfig {
	return PdfParserConfig{
		OcrStrategy:                   OcrAuto,
		ExtractUniqueInlineImagesOnly: true,
	}
}

// OfficeParserConfig controls the foreign Microsoft Office parsers.
type OfficeParserConfig struct {
	ExtractMacros                 bool `json:"extract_macros"`
	IncludeDeletedContent         bool `json:"include_deleted_content"`
	IncludeMoveFromContent        bool `json:"include_move_from_content"`
	IncludeShapeBasedContent      bool `json:"include_shape_based_content"`
	IncludeHeadersAndFooters      bool `json:"include_headers_and_footers"`
	IncludeMissingRows            bool `json:"include_missing_rows"`
	IncludeSlideNotes             bool `json:"include_slide_notes"`
	IncludeSlideMasterContent     bool `json:"include_slide_master_content"`
	ConcatenatePhoneticRuns       bool `json:"concatenate_phonetic_runs"`
	ExtractAllAlternativesFromMSG bool `json:"extract_all_alternatives_from_msg"`
}

// DefaultOfficeParserConfig returns the Office defaults.
func DefaultOfficeParserConfig() OfficeParserConfig {
	return OfficeParserConfig{
		IncludeShapeBasedContent:  true,
		IncludeHeadersAndFooters:  true,
		IncludeSlideNotes:         true,
		IncludeSlideMasterContent: true,
		ConcatenatePhoneticRuns:   true,
	}
}

// TesseractOcrConfig controls the foreign Tesseract OCR parser.
type TesseractOcrConfig struct {
	Density                  int32  `json:"density"`
	Depth                    int32  `json:"depth"`
	TimeoutSeconds           int32  `json:"timeout_seconds"`
	EnableImagePreprocessing bool   `json:"enable_image_preprocessing"`
	ApplyRotation            bool   `json:"apply_rotation"`
	Language                 string `json:"language"`
}

// DefaultTesseractOcrConfig returns the OCR defaults.
func DefaultTesseractOcrConfig() TesseractOcrConfig {
	return TesseractOcrConfig{
		Density:        300,
		Depth:          4,
		TimeoutSeconds: 130,
		Language:       "eng",
	}
}
