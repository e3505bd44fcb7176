package workbook

import (
	"strings"

	"workbook-loader/internal/convert"
)

// RowNumberKey holds the spreadsheet row number in rows returned by
// DataFromWorkbook when row numbers are requested.
const RowNumberKey = "rowNumber"

// Managed attribute element types.
const (
	ElementBool     = "BOOL"
	ElementInteger  = "INTEGER"
	ElementDecimal  = "DECIMAL"
	ElementDate     = "DATE"
	ElementPicklist = "PICKLIST"
	ElementString   = "STRING"
)

// TargetKey selects one key inside a map valued field. When
// VocabularyElementType is set the key is a managed attribute and the cell is
// converted to that element type.
type TargetKey struct {
	Key                   string `json:"key"`
	VocabularyElementType string `json:"vocabularyElementType,omitempty"`
}

// IsManagedAttribute reports whether the key names a managed attribute.
func (k *TargetKey) IsManagedAttribute() bool {
	return k != nil && k.VocabularyElementType != ""
}

// FieldMap says where the column at the same position goes.
type FieldMap struct {
	ColumnHeader string     `json:"columnHeader"`
	TargetField  string     `json:"targetField,omitempty"`
	Skipped      bool       `json:"skipped,omitempty"`
	TargetKey    *TargetKey `json:"targetKey,omitempty"`
}

// DataFromWorkbook turns the rows below the header into field maps keyed by
// target field. fieldMaps is positional: fieldMaps[i] describes column i.
func DataFromWorkbook(wb Workbook, sheet int, fieldMaps []FieldMap, withRowNumber bool) ([]map[string]any, error) {
	s, err := wb.Sheet(sheet)
	if err != nil {
		return nil, err
	}

	rows := s.dataRows()
	if len(rows) <= 1 {
		return nil, nil
	}

	data := make([]map[string]any, 0, len(rows)-1)

	for _, row := range rows[1:] {
		rowData := map[string]any{}

		for i, fm := range fieldMaps {
			if fm.Skipped || fm.TargetField == "" {
				continue
			}

			cell := at(row.Content, i)

			switch {
			case fm.TargetKey.IsManagedAttribute():
				v, ok := managedValue(fm.TargetKey.VocabularyElementType, cell)
				if !ok {
					continue
				}

				submap(rowData, fm.TargetField)[fm.TargetKey.Key] = v
			case fm.TargetKey != nil:
				submap(rowData, fm.TargetField)[fm.TargetKey.Key] = cell
			default:
				rowData[fm.TargetField] = cell
			}
		}

		if withRowNumber {
			rowData[RowNumberKey] = row.RowNumber
		}

		data = append(data, rowData)
	}

	return data, nil
}

func submap(row map[string]any, key string) map[string]any {
	if m, ok := row[key].(map[string]any); ok {
		return m
	}

	m := map[string]any{}
	row[key] = m

	return m
}

// managedValue converts a cell for a managed attribute. Blank cells are
// absent for every element type.
func managedValue(elementType, cell string) (any, bool) {
	if strings.TrimSpace(cell) == "" {
		return nil, false
	}

	switch elementType {
	case ElementBool:
		return convert.Boolean(cell), true
	case ElementInteger, ElementDecimal:
		return convert.Number(cell)
	case ElementDate:
		return convert.Date(cell)
	case ElementPicklist, ElementString:
		return convert.String(cell)
	default:
		return nil, false
	}
}
