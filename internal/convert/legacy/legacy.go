// Package legacy keeps the number conversion used by older field converters,
// which report unparseable input as NaN instead of absent.
package legacy

import (
	"math"
	"strings"

	"workbook-loader/internal/convert"
)

// LegacyNumber returns NaN for text that is not a number and 0 for blank text.
func LegacyNumber(raw string) float64 {
	if strings.TrimSpace(raw) == "" {
		return 0
	}

	f, ok := convert.Number(raw)
	if !ok {
		return math.NaN()
	}

	return f
}
