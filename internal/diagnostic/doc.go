// Package diagnostic provides structured validation errors and warnings for
// workbook uploads.
//
// Key capabilities:
//   - Per-cell data format errors with sheet, row and column
//   - Column mapping problems (duplicate targets, unmapped columns)
//   - Schema consistency errors
//   - Folding every error into a single multierror for callers that only
//     want an error value
package diagnostic
