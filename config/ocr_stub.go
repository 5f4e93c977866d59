//go:build !ocr

package config

// CheckLanguages is a no-op without the ocr build tag.
func (c TesseractOcrConfig) CheckLanguages() error {
	return nil
}
