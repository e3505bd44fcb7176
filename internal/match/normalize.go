package match

import (
	"strings"
	"unicode"
)

// PlainString reduces a header or label to the form used for exact label
// matching: whitespace, '-' and '_' removed, then lower-cased.
// Dots and other punctuation are kept.
func PlainString(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			continue
		}

		b.WriteRune(r)
	}

	return strings.ToLower(b.String())
}

// NormalizeHeader normalizes free text for fuzzy matching: words are split on
// case changes and punctuation, then joined lower-case without separators.
// "Collector's Number" and "collectorsNumber" both give "collectorsnumber".
func NormalizeHeader(s string) string {
	return strings.ToLower(strings.Join(Words(s), ""))
}

// StartCase renders an identifier as space separated capitalized words:
//   - "dwcCountryCode" -> "Dwc Country Code"
//   - "dwcVerbatimSRS" -> "Dwc Verbatim SRS"
//   - "well_row" -> "Well Row"
func StartCase(s string) string {
	words := Words(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}

	return strings.Join(words, " ")
}

// Words splits s into words at separators, lower-to-upper transitions, the
// end of an acronym and letter/digit boundaries.
// Examples:
//   - "materialSampleName" -> ["material", "Sample", "Name"]
//   - "XMLParser" -> ["XML", "Parser"]
//   - "collector's number" -> ["collector", "s", "number"]
//   - "area51Code" -> ["area", "51", "Code"]
func Words(s string) []string {
	if s == "" {
		return nil
	}

	var (
		words   []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}

		if i > 0 && !isSeparator(runes[i-1]) && startsWord(runes, i) {
			flush()
		}

		current.WriteRune(r)
	}

	flush()

	return words
}

// isSeparator reports whether r is neither a letter nor a digit.
func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// startsWord reports whether a new word begins at position i.
func startsWord(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]

	if unicode.IsDigit(r) != unicode.IsDigit(prev) {
		return true
	}

	// "orderID" splits before 'I'
	if unicode.IsUpper(r) && unicode.IsLower(prev) {
		return true
	}

	// "XMLParser" splits before 'P'
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

	return unicode.IsUpper(r) && unicode.IsUpper(prev) && hasNextLower
}
