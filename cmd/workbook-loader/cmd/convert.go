package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"workbook-loader/internal/pipeline"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Validates a spreadsheet and prints the resources it would create.",
	Long: `The convert command validates every cell of the sheet and prints the draft
resources as JSON. Nothing is saved. Validation errors are printed and the
command exits non zero.`,
	RunE: cliCmdConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	addInputFlags(convertCmd)
	convertCmd.Flags().Bool("lookups", false, "Check vocabulary and managed attribute values against the backend")
	convertCmd.Flags().Bool("skip-unmapped", false, "Ignore columns that map to no field")
}

func cliCmdConvert(cmd *cobra.Command, _ []string) error {
	lookups, err := cmd.Flags().GetBool("lookups")
	if err != nil {
		return err
	}

	var catalog pipeline.Catalog
	if lookups {
		catalog = newClient()
	}

	r, err := convertWorkbook(cmd, catalog, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return enc.Encode(r.Drafts)
}
