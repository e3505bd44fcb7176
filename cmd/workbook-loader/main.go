// Package main provides the CLI entrypoint for workbook-loader.
//
// workbook-loader turns collection spreadsheets into backend records:
//   - Reads .xlsx workbooks and their template properties
//   - Maps columns to entity fields by rule, with fuzzy suggestions
//   - Validates cell values against the schema and backend vocabularies
//   - Saves the rows in resumable, chunked sessions
package main

import "workbook-loader/cmd/workbook-loader/cmd"

func main() {
	cmd.Execute()
}
