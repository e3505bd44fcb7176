// Package convert turns raw spreadsheet cell text into typed attribute values.
//
// Every converter is total: malformed input yields an absent result (the
// second return value is false) or is filtered out of an array, never an
// error or a panic.
//
// Key functions:
//   - Number: JavaScript-style numeric literals, including 0x/0o/0b and Infinity.
//   - Boolean: "false", "no" and "0" are false, any other text is true.
//   - StringArray, NumberArray, BooleanArray: comma lists, commas inside
//     double quotes do not split.
//   - Map: "key: value, key2: \"a, b\"" managed attribute lists.
//   - Date: Excel serial days or pass-through date text.
//   - Value: dispatches on a schema.Field.
//
// The Is* predicates are used by workbook validation before conversion.
package convert
