package convert

import (
	"math"
	"regexp"
	"slices"
	"strings"
	"time"
)

var booleanWords = []string{"yes", "no", "true", "false", "0", "1"}

// Boolean is false for "false", "no" and "0" in any case, false for "", and
// true for everything else.
func Boolean(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "false", "no", "0":
		return false
	}

	return raw != ""
}

// IsBoolean reports whether raw is one of yes, no, true, false, 0 or 1.
func IsBoolean(raw string) bool {
	return raw != "" && slices.Contains(booleanWords, strings.ToLower(raw))
}

// StringArray splits a comma list. Wrapping quotes are removed from each item.
func StringArray(raw string) []string {
	parts := splitUnquoted(raw, ',')
	out := make([]string, len(parts))

	for i, p := range parts {
		out[i] = strings.TrimSpace(trimQuotes(p))
	}

	return out
}

// NumberArray keeps the list items that are numbers.
func NumberArray(raw string) []float64 {
	out := []float64{}

	for _, p := range splitUnquoted(raw, ',') {
		if f, ok := Number(p); ok {
			out = append(out, f)
		}
	}

	return out
}

// BooleanArray converts every non-blank list item with Boolean.
func BooleanArray(raw string) []bool {
	out := []bool{}

	for _, p := range splitUnquoted(raw, ',') {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		out = append(out, Boolean(p))
	}

	return out
}

// Map parses "key: value" pairs separated by commas. Values that contain a
// comma or a colon must be double quoted. Pairs with an empty key or value
// are dropped. Values become bool, float64 or string, in that order of
// preference.
func Map(raw string) map[string]any {
	out := map[string]any{}

	for _, item := range splitUnquoted(raw, ',') {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		k, v, found := cutUnquoted(item, ':')
		if !found {
			continue
		}

		key, val := cleanMapPart(k), cleanMapPart(v)
		if key == "" || val == "" {
			continue
		}

		out[key] = inferValue(val)
	}

	return out
}

func cleanMapPart(s string) string {
	return strings.TrimSpace(strings.Replace(trimQuotes(s), `"`, "", 1))
}

func inferValue(s string) any {
	if IsBoolean(s) {
		return Boolean(s)
	}

	if f, ok := Number(s); ok {
		return f
	}

	return s
}

// excelEpoch is day zero of the spreadsheet serial date system.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// maxSerialDays bounds the serial so the day count fits an int.
const maxSerialDays = 3_000_000

// Date turns an Excel serial day number into YYYY-MM-DD and passes any other
// non-blank text through trimmed.
func Date(raw string) (string, bool) {
	if n, ok := Number(raw); ok {
		if math.IsInf(n, 0) || math.Abs(n) > maxSerialDays {
			return "", false
		}

		days := math.Floor(n)
		d := excelEpoch.AddDate(0, 0, int(days)).Add(time.Duration((n - days) * float64(24*time.Hour)))
		if d.Year() < 0 || d.Year() > 9999 {
			return "", false
		}

		return d.Format(time.DateOnly), true
	}

	return String(raw)
}

// String trims raw; blank is absent.
func String(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	return s, s != ""
}

// Vocabulary upper-cases raw and replaces its first space with an underscore.
func Vocabulary(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}

	return strings.Replace(strings.ToUpper(raw), " ", "_", 1), true
}

// StringCoordinate upper-cases raw, e.g. a well row "a" becomes "A".
func StringCoordinate(raw string) (string, bool) {
	return String(strings.ToUpper(raw))
}

var mapPattern = regexp.MustCompile(
	`^[a-zA-Z_0-9]+\s*:\s*(?:(?:"(?:\\"|[^"])*"|“(?:\\"|[^“”])*”|[^,"\n]+))` +
		`(?:,\s*[a-zA-Z_0-9]+\s*:\s*(?:(?:"(?:\\"|[^"])*"|“(?:\\"|[^“”])*”|[^,"\n]+)))*$`)

// IsMap reports whether raw is a well-formed managed attribute list.
func IsMap(raw string) bool {
	return raw != "" && mapPattern.MatchString(raw)
}

// IsNumberArray reports whether at least one comma separated item is a number.
func IsNumberArray(raw string) bool {
	if raw == "" {
		return false
	}

	return slices.ContainsFunc(strings.Split(raw, ","), IsNumber)
}

// IsBooleanArray reports whether every comma separated item is a boolean word.
func IsBooleanArray(raw string) bool {
	for _, p := range strings.Split(raw, ",") {
		if !IsBoolean(strings.TrimSpace(p)) {
			return false
		}
	}

	return true
}
