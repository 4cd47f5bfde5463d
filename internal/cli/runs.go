package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/transfocator/pkg/report"
	"github.com/matzehuels/transfocator/pkg/store"
)

// runsCommand creates the runs command for the archive of saved runs.
func (c *CLI) runsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect archived runs (see calc --save)",
	}
	cmd.AddCommand(c.runsListCommand())
	cmd.AddCommand(c.runsShowCommand())
	cmd.AddCommand(c.runsDeleteCommand())
	return cmd
}

func (c *CLI) runsListCommand() *cobra.Command {
	var (
		limit  int
		format = outTable
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(format, outTable, outPlain, outJSON); err != nil {
				return err
			}
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.List(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if format == outJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			if len(runs) == 0 {
				printInfo(out, "No archived runs")
				return nil
			}
			renderGrid(out, runsGrid(runs), format)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultListLimit, "maximum number of runs")
	cmd.Flags().StringVarP(&format, "format", "f", format, "output format: table, plain, json")
	return cmd
}

func runsGrid(runs []*store.Run) grid {
	g := grid{headers: []string{"ID", "Name", "Created", "Energy, eV", "Conv.", "L2, m", "Trans., %"}}
	for _, r := range runs {
		l2, t := "-", "-"
		if r.Report != nil {
			l2 = report.FormatFloat(r.Report.L2, 'f', 4)
			t = report.FormatFloat(r.Report.T*100, 'f', 2)
		}
		g.rows = append(g.rows, []string{
			r.ID,
			r.Name,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%g", r.Energy),
			r.Convention,
			l2,
			t,
		})
	}
	return g
}

func (c *CLI) runsShowCommand() *cobra.Command {
	var (
		columns string
		format  = outTable
	)
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(format, outTable, outPlain, outJSON, outCSV); err != nil {
				return err
			}
			cols, err := columnsFromFlag(columns)
			if err != nil {
				return err
			}
			if err := store.ValidateID(args[0]); err != nil {
				return err
			}
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			run, err := st.Get(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if format == outTable {
				title := run.ID
				if run.Name != "" {
					title = run.Name + " " + StyleDim.Render(run.ID)
				}
				fmt.Fprintln(out, StyleTitle.Render(title))
			}
			return writeReport(out, run.Report, cols, format)
		},
	}
	cmd.Flags().StringVar(&columns, "columns", "", "comma-separated history columns, or \"all\"")
	cmd.Flags().StringVarP(&format, "format", "f", format, "output format: table, plain, json, csv")
	return cmd
}

func (c *CLI) runsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.ValidateID(args[0]); err != nil {
				return err
			}
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess(cmd.ErrOrStderr(), "Deleted run %s", args[0])
			return nil
		},
	}
}
