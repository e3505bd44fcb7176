package workbook

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
)

// Row is one spreadsheet row. RowNumber is zero based.
type Row struct {
	RowNumber int      `json:"rowNumber"`
	Content   []string `json:"content"`
}

// Sheet is one worksheet.
type Sheet struct {
	SheetName       string   `json:"sheetName"`
	Rows            []Row    `json:"rows"`
	OriginalColumns []string `json:"originalColumns,omitempty"`
	ColumnAliases   []string `json:"columnAliases,omitempty"`
}

// Workbook maps a sheet index to its sheet.
type Workbook map[int]*Sheet

// Sheet returns the sheet at index.
func (wb Workbook) Sheet(index int) (*Sheet, error) {
	s, ok := wb[index]
	if !ok || s == nil {
		return nil, fmt.Errorf("sheet %d: %w", index, ErrNoSheet)
	}

	return s, nil
}

// Indexes returns the sheet indexes in order.
func (wb Workbook) Indexes() []int {
	return slices.Sorted(maps.Keys(wb))
}

// dataRows returns the rows that have content, header row first.
func (s *Sheet) dataRows() []Row {
	var out []Row

	for _, r := range s.Rows {
		if len(r.Content) > 0 {
			out = append(out, r)
		}
	}

	return out
}

// Decode reads the JSON document produced by the backend's workbook
// conversion endpoint: {"0": {"sheetName": ..., "rows": [...]}, ...}.
func Decode(r io.Reader) (Workbook, error) {
	var wb Workbook

	err := json.NewDecoder(r).Decode(&wb)
	if err != nil {
		return nil, fmt.Errorf("failed to decode workbook JSON: %w", err)
	}

	return wb, nil
}
