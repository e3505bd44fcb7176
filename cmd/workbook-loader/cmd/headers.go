package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"workbook-loader/internal/workbook"
)

// headersCmd represents the headers command
var headersCmd = &cobra.Command{
	Use:   "headers",
	Short: "Lists the column headers of a spreadsheet.",
	Long: `The headers command prints the columns of a sheet together with the original
column names and aliases of the template it was created from, and reports
whether the template columns are intact.`,
	RunE: cliCmdHeaders,
}

func init() {
	rootCmd.AddCommand(headersCmd)
	addInputFlags(headersCmd)
}

func cliCmdHeaders(cmd *cobra.Command, _ []string) error {
	wb, err := readWorkbook(cmd)
	if err != nil {
		return err
	}

	sheet, err := cmd.Flags().GetInt("sheet")
	if err != nil {
		return err
	}

	wb = workbook.RemoveEmptyColumns(workbook.TrimSpace(wb))

	if _, err := wb.Sheet(sheet); err != nil {
		return err
	}

	columns := workbook.ColumnHeaders(wb, sheet)

	table := newTable(cmd.OutOrStdout(), "#", "Header", "Original", "Alias")
	for i, col := range columns {
		table.Append([]string{strconv.Itoa(i + 1), col.Header, col.Original, col.Alias})
	}

	table.Render()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Entity type:", workbook.DetectEntityType(wb, sheet))

	if workbook.ValidateTemplateIntegrity(columns) {
		fmt.Fprintln(out, "Template integrity: intact")
	} else {
		fmt.Fprintln(out, "Template integrity: columns were added, removed or renamed")
	}

	return nil
}
