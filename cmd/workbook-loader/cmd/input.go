package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"workbook-loader/internal/api"
	"workbook-loader/internal/diagnostic"
	"workbook-loader/internal/pipeline"
	"workbook-loader/internal/schema"
	"workbook-loader/internal/workbook"
)

func addInputFlags(c *cobra.Command) {
	c.Flags().StringP("file", "f", "", "Path to the excel spreadsheet")
	c.Flags().IntP("sheet", "s", 0, "Index of the sheet to read, zero based")
	c.Flags().Bool("remote", false, "Read the spreadsheet through the backend conversion endpoint")
	cobra.CheckErr(c.MarkFlagRequired("file"))
}

func newClient() *api.Client {
	return api.NewClient(cfg.API.URL,
		api.WithToken(cfg.API.Token),
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
	)
}

func loadSchema() (schema.Schema, error) {
	if cfg.Schema.File == "" {
		return schema.Default()
	}

	return schema.LoadFile(cfg.Schema.File)
}

func readWorkbook(cmd *cobra.Command) (workbook.Workbook, error) {
	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return nil, err
	}

	remote, err := cmd.Flags().GetBool("remote")
	if err != nil {
		return nil, err
	}

	if !remote {
		return workbook.ReadFile(file)
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return newClient().ConvertWorkbook(cmd.Context(), filepath.Base(file), f)
}

// mapWorkbook reads the input and maps its columns. catalog may be nil.
func mapWorkbook(cmd *cobra.Command, catalog pipeline.Catalog, skipUnmapped bool) (*pipeline.Result, error) {
	wb, err := readWorkbook(cmd)
	if err != nil {
		return nil, err
	}

	s, err := loadSchema()
	if err != nil {
		return nil, err
	}

	sheet, err := cmd.Flags().GetInt("sheet")
	if err != nil {
		return nil, err
	}

	return pipeline.Map(cmd.Context(), wb, pipeline.Options{
		Sheet:        sheet,
		Entity:       cfg.Entity,
		Group:        cfg.Group,
		Schema:       s,
		SkipUnmapped: skipUnmapped,
		Catalog:      catalog,
	})
}

// convertWorkbook maps, validates and builds. Diagnostics are printed to w.
func convertWorkbook(cmd *cobra.Command, catalog pipeline.Catalog, w io.Writer) (*pipeline.Result, error) {
	skipUnmapped, err := cmd.Flags().GetBool("skip-unmapped")
	if err != nil {
		return nil, err
	}

	r, err := mapWorkbook(cmd, catalog, skipUnmapped)
	if err != nil {
		return nil, err
	}

	err = r.Convert(cfg.Group)
	printDiagnostics(w, r.Diagnostics)

	if err != nil {
		return nil, pipeline.ErrInvalid
	}

	return r, nil
}

func printDiagnostics(w io.Writer, d *diagnostic.Diagnostics) {
	for _, e := range d.Errors {
		fmt.Fprintln(w, "error:", e)
	}

	for _, e := range d.Warnings {
		fmt.Fprintln(w, "warning:", e)
	}
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAutoWrapText(false)

	return table
}
