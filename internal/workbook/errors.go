package workbook

import "errors"

var (
	// ErrNoSheet is returned when a sheet index is not in the workbook.
	ErrNoSheet = errors.New("no such sheet")
	// ErrNoDataSheet is returned when a file has only property sheets.
	ErrNoDataSheet = errors.New("workbook has no data sheet")
)
