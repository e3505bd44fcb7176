// Package columnmap decides which schema field each spreadsheet column feeds.
//
// Matching is rule based: a per-entity synonym table first, then exact value
// or label comparison against the field options generated from a flattened
// schema. Fuzzy ranking from the match package is only offered as a
// suggestion for columns the rules leave unmapped.
//
// The resulting ColumnMap is keyed by column header. Besides the field path
// each Entry carries a value mapping from cell values to existing backend
// records, which the linker consults before searching or creating.
//
// Key functions:
//   - FieldOptions: the selectable fields of an entity
//   - MatchColumnToField / Suggest: header to field path
//   - Build: the column map of a sheet
//   - ValidateFieldMaps / ValidateData: checks before conversion
package columnmap
