//go:build ocr

package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// CheckLanguages verifies that every language in c.Language ("eng+deu") has
// trained data installed for the local Tesseract. The foreign parser shells
// out to the same installation.
func (c TesseractOcrConfig) CheckLanguages() error {
	available, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return fmt.Errorf("list tesseract languages: %w", err)
	}
	for _, lang := range strings.Split(c.Language, "+") {
		if !slices.Contains(available, lang) {
			return fmt.Errorf("tesseract language %q not installed", lang)
		}
	}
	return nil
}
