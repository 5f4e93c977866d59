package projector

import (
	"github.com/wippyai/tika-bridge/config"
	"github.com/wippyai/tika-bridge/vm"
)

// Foreign config classes.
const (
	PDFClass    = "org/apache/tika/parser/pdf/PDFParserConfig"
	OfficeClass = "org/apache/tika/parser/microsoft/OfficeParserConfig"
	OCRClass    = "org/apache/tika/parser/ocr/TesseractOCRConfig"
)

type (
	pdfCfg    = config.PdfParserConfig
	officeCfg = config.OfficeParserConfig
	ocrCfg    = config.TesseractOcrConfig
)

// PDF projects config.PdfParserConfig. The OCR strategy is passed by its
// enum constant name.
var PDF = newTable(PDFClass,
	boolParam("ExtractInlineImages", "isExtractInlineImages",
		func(c *pdfCfg) *bool { return &c.ExtractInlineImages }),
	boolParam("ExtractUniqueInlineImagesOnly", "isExtractUniqueInlineImagesOnly",
		func(c *pdfCfg) *bool { return &c.ExtractUniqueInlineImagesOnly }),
	boolParam("ExtractMarkedContent", "isExtractMarkedContent",
		func(c *pdfCfg) *bool { return &c.ExtractMarkedContent }),
	boolParam("ExtractAnnotationText", "isExtractAnnotationText",
		func(c *pdfCfg) *bool { return &c.ExtractAnnotationText }),
	param[pdfCfg]{
		set:   vm.NewMethod("setOcrStrategy", "(Ljava/lang/String;)V"),
		get:   vm.NewMethod("getOcrStrategy", "()Lorg/apache/tika/parser/pdf/PDFParserConfig$OCR_STRATEGY;"),
		value: func(c *pdfCfg) any { return c.OcrStrategy.String() },
		load: func(c *pdfCfg, v any) error {
			s, err := config.ParsePdfOcrStrategy(v.(string))
			c.OcrStrategy = s
			return err
		},
	},
)

// Office projects config.OfficeParserConfig.
var Office = newTable(OfficeClass,
	boolParam("ExtractMacros", "getExtractMacros",
		func(c *officeCfg) *bool { return &c.ExtractMacros }),
	boolParam("IncludeDeletedContent", "isIncludeDeletedContent",
		func(c *officeCfg) *bool { return &c.IncludeDeletedContent }),
	boolParam("IncludeMoveFromContent", "isIncludeMoveFromContent",
		func(c *officeCfg) *bool { return &c.IncludeMoveFromContent }),
	boolParam("IncludeShapeBasedContent", "isIncludeShapeBasedContent",
		func(c *officeCfg) *bool { return &c.IncludeShapeBasedContent }),
	boolParam("IncludeHeadersAndFooters", "isIncludeHeadersAndFooters",
		func(c *officeCfg) *bool { return &c.IncludeHeadersAndFooters }),
	boolParam("IncludeMissingRows", "isIncludeMissingRows",
		func(c *officeCfg) *bool { return &c.IncludeMissingRows }),
	boolParam("IncludeSlideNotes", "isIncludeSlideNotes",
		func(c *officeCfg) *bool { return &c.IncludeSlideNotes }),
	boolParam("IncludeSlideMasterContent", "isIncludeSlideMasterContent",
		func(c *officeCfg) *bool { return &c.IncludeSlideMasterContent }),
	boolParam("ConcatenatePhoneticRuns", "isConcatenatePhoneticRuns",
		func(c *officeCfg) *bool { return &c.ConcatenatePhoneticRuns }),
	boolParam("ExtractAllAlternativesFromMSG", "isExtractAllAlternativesFromMSG",
		func(c *officeCfg) *bool { return &c.ExtractAllAlternativesFromMSG }),
)

// OCR projects config.TesseractOcrConfig.
var OCR = newTable(OCRClass,
	intParam("Density", func(c *ocrCfg) *int32 { return &c.Density }),
	intParam("Depth", func(c *ocrCfg) *int32 { return &c.Depth }),
	intParam("TimeoutSeconds", func(c *ocrCfg) *int32 { return &c.TimeoutSeconds }),
	boolParam("EnableImagePreprocessing", "isEnableImagePreprocessing",
		func(c *ocrCfg) *bool { return &c.EnableImagePreprocessing }),
	boolParam("ApplyRotation", "isApplyRotation",
		func(c *ocrCfg) *bool { return &c.ApplyRotation }),
	param[ocrCfg]{
		set:   vm.NewMethod("setLanguage", "(Ljava/lang/String;)V"),
		get:   vm.NewMethod("getLanguage", "()Ljava/lang/String;"),
		value: func(c *ocrCfg) any { return c.Language },
		load: func(c *ocrCfg, v any) error {
			c.Language = v.(string)
			return nil
		},
	},
)

// Configs holds the three projected objects passed to every entry point.
type Configs struct {
	PDF    vm.Object
	Office vm.Object
	OCR    vm.Object
}

// Args returns the configs as call arguments, in entry point order.
func (c Configs) Args() []vm.Value {
	return []vm.Value{vm.Ref(c.PDF), vm.Ref(c.Office), vm.Ref(c.OCR)}
}

// ProjectAll projects all three configs. Any failure aborts the whole set.
func ProjectAll(env vm.Env, pdf *config.PdfParserConfig, office *config.OfficeParserConfig, ocr *config.TesseractOcrConfig) (Configs, error) {
	var out Configs
	var err error
	if out.PDF, err = PDF.Project(env, pdf); err != nil {
		return Configs{}, err
	}
	if out.Office, err = Office.Project(env, office); err != nil {
		return Configs{}, err
	}
	if out.OCR, err = OCR.Project(env, ocr); err != nil {
		return Configs{}, err
	}
	return out, nil
}
