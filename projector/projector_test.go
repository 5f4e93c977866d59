package projector_test

import (
	"context"
	"strings"
	"testing"

	"github.com/wippyai/tika-bridge/config"
	"github.com/wippyai/tika-bridge/errors"
	"github.com/wippyai/tika-bridge/internal/vmtest"
	"github.com/wippyai/tika-bridge/projector"
	"github.com/wippyai/tika-bridge/vm"
)

func withEnv(t *testing.T, f *vmtest.Fixture, fn func(env vm.Env) error) error {
	t.Helper()
	return f.Runtime.WithEnv(context.Background(), fn)
}

func TestPDF_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.PdfParserConfig
	}{
		{"defaults", config.DefaultPdfParserConfig()},
		{"all set", config.PdfParserConfig{
			OcrStrategy:                   config.OcrAndTextExtraction,
			ExtractInlineImages:           true,
			ExtractUniqueInlineImagesOnly: false,
			ExtractMarkedContent:          true,
			ExtractAnnotationText:         true,
		}},
		{"no ocr", config.PdfParserConfig{OcrStrategy: config.OcrNone}},
		{"ocr only", config.PdfParserConfig{OcrStrategy: config.OcrOnly, ExtractUniqueInlineImagesOnly: true}},
	}

	f := vmtest.New(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got config.PdfParserConfig
			err := withEnv(t, f, func(env vm.Env) error {
				obj, err := projector.PDF.Project(env, &tt.cfg)
				if err != nil {
					return err
				}
				got, err = projector.PDF.Read(env, obj)
				return err
			})
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.cfg {
				t.Errorf("round trip = %+v, want %+v", got, tt.cfg)
			}
		})
	}
}

func TestOffice_RoundTrip(t *testing.T) {
	f := vmtest.New(t)
	cfgs := []config.OfficeParserConfig{
		config.DefaultOfficeParserConfig(),
		{},
		{
			ExtractMacros:                 true,
			IncludeDeletedContent:         true,
			IncludeMoveFromContent:        true,
			IncludeMissingRows:            true,
			ExtractAllAlternativesFromMSG: true,
		},
	}
	for i, cfg := range cfgs {
		var got config.OfficeParserConfig
		err := withEnv(t, f, func(env vm.Env) error {
			obj, err := projector.Office.Project(env, &cfg)
			if err != nil {
				return err
			}
			got, err = projector.Office.Read(env, obj)
			return err
		})
		if err != nil {
			t.Fatalf("config %d: %v", i, err)
		}
		if got != cfg {
			t.Errorf("config %d round trip = %+v, want %+v", i, got, cfg)
		}
	}
}

func TestOCR_RoundTrip(t *testing.T) {
	f := vmtest.New(t)
	cfg := config.TesseractOcrConfig{
		Density:                  450,
		Depth:                    8,
		TimeoutSeconds:           30,
		EnableImagePreprocessing: true,
		ApplyRotation:            true,
		Language:                 "eng+deu",
	}
	var got config.TesseractOcrConfig
	err := withEnv(t, f, func(env vm.Env) error {
		obj, err := projector.OCR.Project(env, &cfg)
		if err != nil {
			return err
		}
		got, err = projector.OCR.Read(env, obj)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestProject_ForeignRejectsValue(t *testing.T) {
	f := vmtest.New(t)

	tests := []struct {
		name   string
		run    func(env vm.Env) (vm.Object, error)
		detail string
	}{
		{
			name: "unknown strategy",
			run: func(env vm.Env) (vm.Object, error) {
				cfg := config.PdfParserConfig{OcrStrategy: config.PdfOcrStrategy(42)}
				return projector.PDF.Project(env, &cfg)
			},
			detail: "IllegalArgumentException",
		},
		{
			name: "density out of range",
			run: func(env vm.Env) (vm.Object, error) {
				cfg := config.DefaultTesseractOcrConfig()
				cfg.Density = 5
				return projector.OCR.Project(env, &cfg)
			},
			detail: "Invalid density",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var obj vm.Object
			err := withEnv(t, f, func(env vm.Env) error {
				var err error
				obj, err = tt.run(env)
				if env.ExceptionCheck() {
					t.Error("exception left pending")
				}
				return err
			})
			if !errors.Is(err, errors.ErrBridgeCall) {
				t.Fatalf("err = %v, want bridge_call", err)
			}
			if obj != nil {
				t.Error("partial config object returned")
			}
			if !strings.Contains(err.Error(), tt.detail) {
				t.Errorf("err = %q, want %q", err, tt.detail)
			}
		})
	}
}

func TestProject_MissingClass(t *testing.T) {
	f := vmtest.New(t)
	if _, err := f.VM.Eval(context.Background(), `delete classes["org/apache/tika/parser/ocr/TesseractOCRConfig"];`); err != nil {
		t.Fatal(err)
	}

	err := withEnv(t, f, func(env vm.Env) error {
		cfg := config.DefaultTesseractOcrConfig()
		_, err := projector.OCR.Project(env, &cfg)
		return err
	})
	var berr *errors.Error
	if !errors.As(err, &berr) || berr.Kind != errors.KindSetup || berr.Phase != errors.PhaseProject {
		t.Fatalf("err = %v, want setup error in project phase", err)
	}
	if berr.Class != projector.OCRClass {
		t.Errorf("Class = %q", berr.Class)
	}
}

func TestProject_MissingSetter(t *testing.T) {
	f := vmtest.New(t)
	_, err := f.VM.Eval(context.Background(), `
		var m = classes["org/apache/tika/parser/microsoft/OfficeParserConfig"].$methods;
		m.splice(m.indexOf("setIncludeMissingRows(Z)V"), 1);`)
	if err != nil {
		t.Fatal(err)
	}

	err = withEnv(t, f, func(env vm.Env) error {
		cfg := config.DefaultOfficeParserConfig()
		_, err := projector.Office.Project(env, &cfg)
		return err
	})
	var berr *errors.Error
	if !errors.As(err, &berr) || berr.Kind != errors.KindSetup {
		t.Fatalf("err = %v, want setup", err)
	}
	if berr.Method != "setIncludeMissingRows" {
		t.Errorf("Method = %q", berr.Method)
	}
}

func TestProjectAll_ReleasesLocals(t *testing.T) {
	f := vmtest.New(t)
	pdf := config.DefaultPdfParserConfig()
	office := config.DefaultOfficeParserConfig()
	ocr := config.DefaultTesseractOcrConfig()

	err := withEnv(t, f, func(env vm.Env) error {
		cfgs, err := projector.ProjectAll(env, &pdf, &office, &ocr)
		if err != nil {
			return err
		}
		if len(cfgs.Args()) != 3 {
			t.Errorf("Args = %d, want 3", len(cfgs.Args()))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if st := f.VM.Stats(); st.LocalRefs != 0 {
		t.Errorf("local refs after frame = %d", st.LocalRefs)
	}
}

func TestSetterOrder(t *testing.T) {
	tests := []struct {
		name string
		got  []vm.Method
		want []string
	}{
		{"pdf", projector.PDF.Setters(), []string{
			"setExtractInlineImages(Z)V",
			"setExtractUniqueInlineImagesOnly(Z)V",
			"setExtractMarkedContent(Z)V",
			"setExtractAnnotationText(Z)V",
			"setOcrStrategy(Ljava/lang/String;)V",
		}},
		{"office", projector.Office.Setters(), []string{
			"setExtractMacros(Z)V",
			"setIncludeDeletedContent(Z)V",
			"setIncludeMoveFromContent(Z)V",
			"setIncludeShapeBasedContent(Z)V",
			"setIncludeHeadersAndFooters(Z)V",
			"setIncludeMissingRows(Z)V",
			"setIncludeSlideNotes(Z)V",
			"setIncludeSlideMasterContent(Z)V",
			"setConcatenatePhoneticRuns(Z)V",
			"setExtractAllAlternativesFromMSG(Z)V",
		}},
		{"ocr", projector.OCR.Setters(), []string{
			"setDensity(I)V",
			"setDepth(I)V",
			"setTimeoutSeconds(I)V",
			"setEnableImagePreprocessing(Z)V",
			"setApplyRotation(Z)V",
			"setLanguage(Ljava/lang/String;)V",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.got) != len(tt.want) {
				t.Fatalf("setters = %d, want %d", len(tt.got), len(tt.want))
			}
			for i, m := range tt.got {
				if m.String() != tt.want[i] {
					t.Errorf("setter %d = %s, want %s", i, m, tt.want[i])
				}
			}
		})
	}
}
