package workbook

import (
	"strings"

	"github.com/hashicorp/go-set/v2"
)

// Column describes one spreadsheet column. Original and Alias come from the
// template properties sheet; an empty string means the template did not
// provide one.
type Column struct {
	Header   string `json:"columnHeader"`
	Original string `json:"originalColumn,omitempty"`
	Alias    string `json:"columnAlias,omitempty"`
}

// Name returns the template's original column name when there is one, else
// the header text.
func (c Column) Name() string {
	if c.Original != "" {
		return c.Original
	}

	return c.Header
}

// ColumnHeaders returns the columns of a sheet. The first row with content is
// the header row. The result is as wide as the widest of the header row and
// the template properties, or nil when there are no columns.
func ColumnHeaders(wb Workbook, sheet int) []Column {
	s, ok := wb[sheet]
	if !ok || s == nil {
		return nil
	}

	var header []string
	if rows := s.dataRows(); len(rows) > 0 {
		header = rows[0].Content
	}

	width := max(len(header), len(s.OriginalColumns), len(s.ColumnAliases))
	if width == 0 {
		return nil
	}

	columns := make([]Column, width)
	for i := range columns {
		columns[i] = Column{
			Header:   at(header, i),
			Original: at(s.OriginalColumns, i),
			Alias:    at(s.ColumnAliases, i),
		}
	}

	return columns
}

func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}

	return ""
}

// ValidateTemplateIntegrity reports whether the headers of a generated
// template still line up with its hidden properties. Workbooks without
// properties are always valid.
func ValidateTemplateIntegrity(columns []Column) bool {
	var originals, aliases, headers []string

	for _, c := range columns {
		if c.Original != "" {
			originals = append(originals, c.Original)
		}

		if c.Alias != "" {
			aliases = append(aliases, c.Alias)
		}

		if c.Header != "" {
			headers = append(headers, c.Header)
		}
	}

	if len(originals) == 0 && len(aliases) == 0 {
		return true
	}

	if len(originals) != len(headers) || len(aliases) != len(headers) {
		return false
	}

	for i, h := range headers {
		if h != originals[i] && h != aliases[i] {
			return false
		}
	}

	return true
}

// TrimSpace trims every cell of every sheet in place.
func TrimSpace(wb Workbook) Workbook {
	for _, s := range wb {
		for _, r := range s.Rows {
			for i, v := range r.Content {
				r.Content[i] = strings.TrimSpace(v)
			}
		}
	}

	return wb
}

// RemoveEmptyColumns drops, in place, every column whose header is blank.
// Sheets with only a header row are left alone.
func RemoveEmptyColumns(wb Workbook) Workbook {
	for _, s := range wb {
		rows := s.dataRows()
		if len(rows) <= 1 {
			continue
		}

		header := rows[0].Content

		empty := set.New[int](len(header))
		for i, h := range header {
			header[i] = strings.TrimSpace(h)
			if header[i] == "" {
				empty.Insert(i)
			}
		}

		if empty.Empty() {
			continue
		}

		for i := range s.Rows {
			s.Rows[i].Content = dropColumns(s.Rows[i].Content, empty)
		}
	}

	return wb
}

func dropColumns(content []string, drop *set.Set[int]) []string {
	out := content[:0]

	for i, v := range content {
		if !drop.Contains(i) {
			out = append(out, v)
		}
	}

	return out
}

// UniqueValues counts, per column, how often each trimmed non-empty value
// appears below the header row.
type UniqueValues map[string]map[string]int

// ColumnUsage maps a sheet index to its unique value counts.
type ColumnUsage map[int]UniqueValues

// ColumnKey is the key a column name is stored under in UniqueValues.
func ColumnKey(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

// Count returns the number of distinct values of a column.
func (u UniqueValues) Count(column string) int {
	return len(u[ColumnKey(column)])
}

// CountUniqueValues computes UniqueValues for every sheet. Column names come
// from the template original columns when present, else the header row.
func CountUniqueValues(wb Workbook) ColumnUsage {
	out := ColumnUsage{}

	for idx, s := range wb {
		rows := s.dataRows()

		names := s.OriginalColumns
		if len(names) == 0 && len(rows) > 0 {
			names = rows[0].Content
		}

		sheetValues := UniqueValues{}

		for col, name := range names {
			counts := map[string]int{}

			for _, r := range rows[min(1, len(rows)):] {
				v := strings.TrimSpace(at(r.Content, col))
				if v != "" {
					counts[v]++
				}
			}

			sheetValues[ColumnKey(name)] = counts
		}

		out[idx] = sheetValues
	}

	return out
}
