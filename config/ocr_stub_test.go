//go:build !ocr

package config

import "testing"

func TestCheckLanguages_Stub(t *testing.T) {
	c := DefaultTesseractOcrConfig()
	c.Language = "xyz+abc"
	if err := c.CheckLanguages(); err != nil {
		t.Errorf("stub CheckLanguages = %v, want nil", err)
	}
}
