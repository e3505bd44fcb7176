// Package match provides text normalization, Levenshtein distance calculation
// and candidate ranking for matching spreadsheet column headers to fields.
//
// Key functions:
//   - PlainString: strips whitespace, '-' and '_' and lower-cases
//   - StartCase: renders a field name as a display label
//   - Levenshtein: computes edit distance between strings
//   - Rank: ranks field targets against a column header
package match
