package extractor

import (
	"github.com/wippyai/tika-bridge/projector"
	"github.com/wippyai/tika-bridge/vm"
)

// EntryClass hosts the static parse entry points.
const EntryClass = "ai/yobix/TikaNativeMain"

const (
	readerResult = "Lai/yobix/ReaderResult;"
	stringResult = "Lai/yobix/StringResult;"
	configArgs   = "L" + projector.PDFClass + ";L" + projector.OfficeClass + ";L" + projector.OCRClass + ";"
)

// Every entry point takes its source, then either a charset name (streaming)
// or a max length (string), then the three parser configs.
var (
	parseFile         = vm.NewMethod("parseFile", "(Ljava/lang/String;Ljava/lang/String;"+configArgs+")"+readerResult)
	parseFileToString = vm.NewMethod("parseFileToString", "(Ljava/lang/String;I"+configArgs+")"+stringResult)
	parseBytes        = vm.NewMethod("parseBytes", "([BLjava/lang/String;"+configArgs+")"+readerResult)
	parseBytesToStr   = vm.NewMethod("parseBytesToString", "([BI"+configArgs+")"+stringResult)
	parseURL          = vm.NewMethod("parseUrl", "(Ljava/lang/String;Ljava/lang/String;"+configArgs+")"+readerResult)
	parseURLToString  = vm.NewMethod("parseUrlToString", "(Ljava/lang/String;I"+configArgs+")"+stringResult)
)

// op names used in logs and the extractions metric.
const (
	opFile        = "file"
	opFileString  = "file_string"
	opBytes       = "bytes"
	opBytesString = "bytes_string"
	opURL         = "url"
	opURLString   = "url_string"
)
