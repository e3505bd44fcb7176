package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"workbook-loader/internal/columnmap"
	"workbook-loader/internal/pipeline"
)

// mapCmd represents the map command
var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Shows how the columns of a spreadsheet map to entity fields.",
	Long: `The map command matches every column to a field of the entity and prints the
resulting column map. Unmapped columns get fuzzy suggestions. With --lookups
managed attributes are loaded from the backend first.`,
	RunE: cliCmdMap,
}

func init() {
	rootCmd.AddCommand(mapCmd)
	addInputFlags(mapCmd)
	mapCmd.Flags().Bool("lookups", false, "Load managed attributes from the backend")
	mapCmd.Flags().IntP("suggestions", "n", 3, "Number of suggestions per unmapped column")
}

func cliCmdMap(cmd *cobra.Command, _ []string) error {
	lookups, err := cmd.Flags().GetBool("lookups")
	if err != nil {
		return err
	}

	n, err := cmd.Flags().GetInt("suggestions")
	if err != nil {
		return err
	}

	var catalog pipeline.Catalog
	if lookups {
		catalog = newClient()
	}

	r, err := mapWorkbook(cmd, catalog, false)
	if err != nil {
		return err
	}

	options := r.Options.Flatten()

	table := newTable(cmd.OutOrStdout(), "Column", "Field Path", "Map Relationship", "Unique Values", "Suggestions")

	for _, col := range r.Columns {
		e, ok := r.ColumnMap[col.Header]
		if !ok {
			continue
		}

		var suggestions string
		if e.FieldPath == "" {
			for i, c := range columnmap.Suggest(col.Header, options, n) {
				if i > 0 {
					suggestions += ", "
				}

				suggestions += fmt.Sprintf("%s (%.2f)", c.Target.Value, c.Score)
			}
		}

		table.Append([]string{
			col.Header,
			e.FieldPath,
			strconv.FormatBool(e.MapRelationship),
			strconv.Itoa(e.NumOfUniqueValues),
			suggestions,
		})
	}

	table.Render()
	fmt.Fprintln(cmd.OutOrStdout(), "Entity type:", r.Entity)

	return nil
}
