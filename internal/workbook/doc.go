// Package workbook holds parsed spreadsheet data and the helpers that prepare
// it for column mapping.
//
// A Workbook is keyed by sheet index. It is read from an .xlsx file with
// ReadFile, or decoded from the JSON returned by the backend conversion
// endpoint with Decode. Template-generated files carry a hidden
// "<sheet>_properties" sheet whose first row lists the original column paths
// and whose second row lists the display aliases.
//
// Key functions:
//   - ColumnHeaders / ValidateTemplateIntegrity: header row and template checks
//   - TrimSpace / RemoveEmptyColumns: clean-up before mapping
//   - CountUniqueValues: per-column value counts
//   - DetectEntityType: material-sample or metadata
//   - DataFromWorkbook: rows as field-keyed maps, ready for the builder
package workbook
