package workbook

import (
	"strings"

	"workbook-loader/internal/common"
	"workbook-loader/internal/match"
	"workbook-loader/internal/schema"
)

var (
	metadataIndicators = []string{
		"filename",
		"originalfilename",
		"dccreator",
		"dctype",
		"accaption",
		"acdigitizationdate",
		"acsubtype",
		"dcformat",
		"dcrights",
		"orientation",
	}

	materialSampleIndicators = []string{
		"materialsamplename",
		"identifier",
		"collection",
		"collectingevent",
		"preparationtype",
		"storageunit",
		"organism",
		"barcode",
		"preservationtype",
	}
)

// DetectEntityType guesses which entity a sheet describes. Template original
// columns are checked first; otherwise headers are scored against indicator
// lists. Anything undecided is a material sample.
func DetectEntityType(wb Workbook, sheet int) string {
	s, ok := wb[sheet]
	if !ok || s == nil {
		return schema.MaterialSample
	}

	if len(s.OriginalColumns) > 0 {
		originals := common.Map(s.OriginalColumns, match.PlainString)

		if anyContains(originals, "originalfilename", "filename") {
			return schema.Metadata
		}

		if anyContains(originals, "materialsamplename", "collection") {
			return schema.MaterialSample
		}
	}

	columns := ColumnHeaders(wb, sheet)
	if len(columns) == 0 {
		return schema.MaterialSample
	}

	var metadataScore, sampleScore int

	for _, c := range columns {
		header := match.PlainString(c.Name())

		if containsAny(header, metadataIndicators) {
			metadataScore++
		}

		if containsAny(header, materialSampleIndicators) {
			sampleScore++
		}
	}

	if metadataScore > sampleScore {
		return schema.Metadata
	}

	return schema.MaterialSample
}

func anyContains(headers []string, needles ...string) bool {
	for _, h := range headers {
		if containsAny(h, needles) {
			return true
		}
	}

	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}

	return false
}
