package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"workbook-loader/internal/api"
	"workbook-loader/internal/handler"
	"workbook-loader/internal/resource"
	"workbook-loader/internal/session"
	"workbook-loader/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows the state of the current save session.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := newController(cmd, newClient())
		if err != nil {
			return err
		}

		printState(cmd.OutOrStdout(), c.State())

		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Continues a paused save session.",
	Long: `The resume command continues a paused session from its saved progress. When
the session paused to ask which existing record or parent a row refers to,
pass the chosen record id with --select-existing or --select-parent.`,
	RunE: cliCmdResume,
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancels the current save session.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := newController(cmd, newClient())
		if err != nil {
			return err
		}

		if err := c.Cancel(cmd.Context()); err != nil {
			return err
		}

		printState(cmd.OutOrStdout(), c.State())

		return nil
	},
}

var ackCmd = &cobra.Command{
	Use:     "ack",
	Aliases: []string{"acknowledge"},
	Short:   "Clears a finished or failed save session.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := newController(cmd, newClient())
		if err != nil {
			return err
		}

		return c.Acknowledge(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, resumeCmd, cancelCmd, ackCmd)
	resumeCmd.Flags().String("select-existing", "", "Id of the existing record the pending row updates")
	resumeCmd.Flags().String("select-parent", "", "Id of the parent record of the pending row")
}

func cliCmdResume(cmd *cobra.Command, _ []string) error {
	c, err := newController(cmd, newClient())
	if err != nil {
		return err
	}

	existing, err := cmd.Flags().GetString("select-existing")
	if err != nil {
		return err
	}

	parent, err := cmd.Flags().GetString("select-parent")
	if err != nil {
		return err
	}

	sel := c.State().Selection
	if sel == nil {
		sel = &handler.Selection{}
	}

	if existing != "" {
		d, ok := candidate(sel.ExistingCandidates, existing)
		if !ok {
			return fmt.Errorf("no existing record %q is pending", existing)
		}

		if err := c.SelectExisting(d); err != nil {
			return err
		}
	}

	if parent != "" {
		d, ok := candidate(sel.ParentCandidates, parent)
		if !ok {
			return fmt.Errorf("no parent record %q is pending", parent)
		}

		if err := c.SelectParent(d); err != nil {
			return err
		}
	}

	return report(cmd, c, c.Resume(cmd.Context()))
}

func newController(cmd *cobra.Command, backend api.Backend, opts ...session.Option) (*session.Controller, error) {
	st, err := store.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, err
	}

	opts = append([]session.Option{
		session.WithChunkSize(cfg.Save.ChunkSize),
		session.WithYield(cfg.Save.Yield),
		session.WithLogger(logger),
	}, opts...)

	c := session.New(st, backend, opts...)
	if err := c.Restore(cmd.Context()); err != nil {
		return nil, fmt.Errorf("failed to restore save session: %w", err)
	}

	return c, nil
}

func candidate(candidates []resource.Draft, id string) (resource.Draft, bool) {
	for _, d := range candidates {
		if d.ID() == id {
			return d, true
		}
	}

	return nil, false
}

// report prints the session state after a run. An interrupted run is
// paused, not failed, so it is reported without an error.
func report(cmd *cobra.Command, c *session.Controller, err error) error {
	printState(cmd.OutOrStdout(), c.State())

	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(cmd.OutOrStdout(), "Interrupted. Run resume to continue.")
		return nil
	}

	return err
}

func printState(w io.Writer, st session.State) {
	fmt.Fprintln(w, "Status:", st.Status)

	if st.Type != "" {
		fmt.Fprintln(w, "Type:", st.Type)
	}

	if st.Total > 0 {
		fmt.Fprintf(w, "Progress: %d/%d (%d%%)\n", st.Progress, st.Total, st.Percent())
	}

	if st.Error != "" {
		fmt.Fprintln(w, "Error:", st.Error)
	}

	sel := st.Selection
	if sel == nil {
		return
	}

	if sel.Updated > 0 {
		fmt.Fprintln(w, "Updated existing records:", sel.Updated)
	}

	if len(sel.ExistingCandidates) > 0 {
		fmt.Fprintln(w, "Several existing records match; resume with --select-existing <id>:")
		printCandidates(w, sel.ExistingCandidates)
	}

	if len(sel.ParentCandidates) > 0 {
		fmt.Fprintln(w, "Several parents match; resume with --select-parent <id>:")
		printCandidates(w, sel.ParentCandidates)
	}
}

func printCandidates(w io.Writer, candidates []resource.Draft) {
	table := newTable(w, "Id", "Type", "Name")

	for _, d := range candidates {
		name, _ := d["materialSampleName"].(string)
		table.Append([]string{d.ID(), d.Type(), name})
	}

	table.Render()
}
