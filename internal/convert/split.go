package convert

import "strings"

// splitUnquoted splits s on every sep that has an even number of double
// quotes after it, so separators inside "..." are kept.
func splitUnquoted(s string, sep byte) []string {
	remaining := strings.Count(s, `"`)

	var (
		parts []string
		start int
	)

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			remaining--
		case sep:
			if remaining%2 == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}

	return append(parts, s[start:])
}

// cutUnquoted splits s around the first sep outside double quotes.
func cutUnquoted(s string, sep byte) (before, after string, found bool) {
	parts := splitUnquoted(s, sep)
	if len(parts) < 2 {
		return s, "", false
	}

	return parts[0], s[len(parts[0])+1:], true
}

// trimQuotes strips every leading and trailing double quote.
func trimQuotes(s string) string {
	return strings.Trim(s, `"`)
}
