package convert

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var decimalLiteral = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// Number parses raw with the grammar of JavaScript's unary plus. Blank input
// is absent.
func Number(raw string) (float64, bool) {
	s := strings.TrimFunc(raw, isJSSpace)
	if s == "" {
		return 0, false
	}

	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			return parseRadix(s[2:], 16)
		case 'o', 'O':
			return parseRadix(s[2:], 8)
		case 'b', 'B':
			return parseRadix(s[2:], 2)
		}
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	if !decimalLiteral.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}

	return f, true
}

// parseRadix accepts arbitrarily long digit strings; values beyond 2^53 lose
// precision the same way a float64 would.
func parseRadix(digits string, base int) (float64, bool) {
	if digits == "" {
		return 0, false
	}

	var v float64

	for _, r := range digits {
		d, ok := digitValue(r)
		if !ok || d >= base {
			return 0, false
		}

		v = v*float64(base) + float64(d)
	}

	return v, true
}

func digitValue(r rune) (int, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), true
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10, true
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10, true
	default:
		return 0, false
	}
}

func isJSSpace(r rune) bool {
	return unicode.Is(unicode.Zs, r) || strings.ContainsRune("\t\n\v\f\r\u2028\u2029\ufeff", r)
}

// IsNumber reports whether raw converts to a number.
func IsNumber(raw string) bool {
	_, ok := Number(raw)
	return ok
}

// FormatNumber renders f the way it would be typed into a cell: no exponent
// and no trailing zeros.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
