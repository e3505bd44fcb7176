package cmd

import (
	"github.com/spf13/cobra"

	"workbook-loader/internal/session"
)

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Validates a spreadsheet and saves its rows to the backend.",
	Long: `The upload command validates the sheet against the schema and the backend
vocabularies, builds one resource per row and saves them in chunks. The
session is kept in the configured store: an interrupted or paused upload is
continued with the resume command.`,
	RunE: cliCmdUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	addInputFlags(uploadCmd)
	uploadCmd.Flags().Bool("skip-unmapped", false, "Ignore columns that map to no field")
	uploadCmd.Flags().Bool("append-data", false, "Update existing records that share a row's name")
}

func cliCmdUpload(cmd *cobra.Command, _ []string) error {
	appendData, err := cmd.Flags().GetBool("append-data")
	if err != nil {
		return err
	}

	client := newClient()

	r, err := convertWorkbook(cmd, client, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	c, err := newController(cmd, client, session.WithAppendData(appendData))
	if err != nil {
		return err
	}

	typ, apiBaseURL := r.Target()

	return report(cmd, c, c.Start(cmd.Context(), r.Drafts, cfg.Group, typ, apiBaseURL, r.ColumnMap))
}
