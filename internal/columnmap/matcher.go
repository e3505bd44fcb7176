package columnmap

import (
	"strings"

	"workbook-loader/internal/match"
	"workbook-loader/internal/workbook"
)

// MatchColumnToField finds the field a column maps to by rule. The template
// original column name wins over the header text. It returns the first
// matching option in the given order.
func MatchColumnToField(col workbook.Column, options []Option, entityType string) (string, bool, error) {
	synonyms, err := Synonyms(entityType)
	if err != nil {
		return "", false, err
	}

	path, ok := matchOption(normalizeColumn(col, synonyms), options, synonyms)

	return path, ok, nil
}

func normalizeColumn(col workbook.Column, synonyms map[string]string) string {
	return lookup(synonyms, strings.ToLower(strings.TrimSpace(col.Name())))
}

func matchOption(header string, options []Option, synonyms map[string]string) (string, bool) {
	lowerHeader := strings.ToLower(header)

	idx := strings.LastIndex(header, ".")
	if idx >= 0 {
		prefix := strings.ToLower(lookup(synonyms, header[:idx+1]))
		suffix := match.PlainString(header[idx+1:])

		for _, o := range options {
			value := strings.ToLower(o.Value)
			if !strings.HasPrefix(value, prefix) {
				continue
			}

			if value == lowerHeader || match.PlainString(o.Label) == suffix {
				return o.Value, true
			}
		}

		return "", false
	}

	plain := match.PlainString(header)

	sameLabel := 0
	for _, o := range options {
		if match.PlainString(o.Label) == plain {
			sameLabel++
		}
	}

	for _, o := range options {
		if strings.ToLower(o.Value) == lowerHeader {
			return o.Value, true
		}

		if match.PlainString(o.Label) != plain {
			continue
		}

		if !strings.Contains(o.Value, ".") || sameLabel < 2 {
			return o.Value, true
		}
	}

	return "", false
}
