package workbook

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/xuri/excelize/v2"
)

const (
	propertiesSuffix = "_properties"
	propertiesSheet  = "properties"
)

// ReadFile loads an .xlsx file. Property sheets are folded into the data
// sheet they describe; every other sheet becomes a Sheet, numbered in tab
// order starting at zero.
func ReadFile(path string) (Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	return load(f)
}

// Read is ReadFile for an already open stream.
func Read(r io.Reader) (Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return load(f)
}

func load(f *excelize.File) (Workbook, error) {
	var (
		dataNames []string
		propNames = map[string]string{}
	)

	for _, name := range f.GetSheetList() {
		switch {
		case strings.EqualFold(name, propertiesSheet):
			propNames[""] = name
		case strings.HasSuffix(name, propertiesSuffix):
			propNames[strings.TrimSuffix(name, propertiesSuffix)] = name
		default:
			dataNames = append(dataNames, name)
		}
	}

	if len(dataNames) == 0 {
		return nil, ErrNoDataSheet
	}

	wb := Workbook{}

	var savedErrs *multierror.Error

	for i, name := range dataNames {
		sheet, err := loadSheet(f, name)
		if err != nil {
			savedErrs = multierror.Append(savedErrs, err)
			continue
		}

		props, ok := propNames[name]
		if !ok && len(dataNames) == 1 {
			props, ok = propNames[""]
		}

		if ok {
			if err := loadProperties(f, props, sheet); err != nil {
				savedErrs = multierror.Append(savedErrs, err)
			}
		}

		wb[i] = sheet
	}

	return wb, savedErrs.ErrorOrNil()
}

// loadSheet streams the rows of a worksheet. Cells are read as raw values so
// date cells keep their serial number.
func loadSheet(f *excelize.File, name string) (*Sheet, error) {
	rows, err := f.Rows(name)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", name, err)
	}
	defer rows.Close()

	sheet := &Sheet{SheetName: name}

	for rowNumber := 0; rows.Next(); rowNumber++ {
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("sheet %q row %d: %w", name, rowNumber+1, err)
		}

		if isBlank(cols) {
			continue
		}

		sheet.Rows = append(sheet.Rows, Row{RowNumber: rowNumber, Content: cols})
	}

	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("sheet %q: %w", name, err)
	}

	return sheet, nil
}

func loadProperties(f *excelize.File, name string, sheet *Sheet) error {
	rows, err := f.GetRows(name)
	if err != nil {
		return fmt.Errorf("properties sheet %q: %w", name, err)
	}

	if len(rows) > 0 {
		sheet.OriginalColumns = rows[0]
	}

	if len(rows) > 1 {
		sheet.ColumnAliases = rows[1]
	}

	return nil
}

func isBlank(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}

// WriteFile saves wb as an .xlsx file. Sheets with original columns or
// aliases get a hidden properties sheet so the file can be read back as a
// template.
func WriteFile(wb Workbook, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"

	for n, idx := range wb.Indexes() {
		s := wb[idx]

		name := s.SheetName
		if name == "" {
			name = fmt.Sprintf("Sheet%d", idx+1)
		}

		if n == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}

		for _, r := range s.Rows {
			if err := writeRow(f, name, r.RowNumber+1, r.Content); err != nil {
				return err
			}
		}

		if len(s.OriginalColumns) == 0 && len(s.ColumnAliases) == 0 {
			continue
		}

		props := name + propertiesSuffix
		if _, err := f.NewSheet(props); err != nil {
			return err
		}

		if err := writeRow(f, props, 1, s.OriginalColumns); err != nil {
			return err
		}

		if err := writeRow(f, props, 2, s.ColumnAliases); err != nil {
			return err
		}

		if err := f.SetSheetVisible(props, false); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook %s: %w", path, err)
	}

	return nil
}

func writeRow(f *excelize.File, sheet string, row int, content []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	values := make([]any, len(content))
	for i, c := range content {
		values[i] = c
	}

	return f.SetSheetRow(sheet, cell, &values)
}
