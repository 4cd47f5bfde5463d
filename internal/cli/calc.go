package cli

import (
	"bytes"
	"encoding/json"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/transfocator/pkg/beamline"
	"github.com/matzehuels/transfocator/pkg/report"
	"github.com/matzehuels/transfocator/pkg/store"
)

// calcOpts holds the flags of the calc command.
type calcOpts struct {
	calcFlags
	columns     string
	format      string
	output      string
	interactive bool
	save        string
}

// calcCommand creates the calc command, which propagates the beam through
// a beamline file and prints the lens history.
func (c *CLI) calcCommand() *cobra.Command {
	opts := calcOpts{format: outTable}

	cmd := &cobra.Command{
		Use:   "calc <beamline>",
		Short: "Propagate the beam through a beamline and print the lens history",
		Example: `  tfcalc calc beamline.toml
  tfcalc calc beamline.toml --energy 30900 --symmetry
  tfcalc calc beamline.toml --columns all -f csv -o history.csv
  tfcalc calc beamline.toml --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(opts.format, outTable, outPlain, outJSON, outCSV); err != nil {
				return err
			}
			return c.runCalc(cmd, args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.columns, "columns", "", "comma-separated history columns, or \"all\"")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: table, plain, json, csv")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse the lens history interactively")
	cmd.Flags().StringVar(&opts.save, "save", "", "archive the run under this name")

	return cmd
}

func (c *CLI) runCalc(cmd *cobra.Command, path string, opts *calcOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cols, err := columnsFromFlag(opts.columns)
	if err != nil {
		return err
	}
	bl, err := beamline.Load(path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	res, err := runner.Execute(ctx, c.options(bl, &opts.calcFlags))
	if err != nil {
		return err
	}
	prog.done("Computed lens history")

	if opts.save != "" {
		if err := c.archive(cmd, opts.save, bl, res.BeamlineHash, res.Report); err != nil {
			return err
		}
	}

	if opts.interactive {
		_, err := tea.NewProgram(NewHistoryModel(res.Report, cols), tea.WithAltScreen()).Run()
		return err
	}

	if opts.output == "" {
		out := cmd.OutOrStdout()
		if opts.format == outTable {
			printStats(out, res.Stats.TFCount, res.Stats.LensCount, res.CacheInfo.ReportHit)
		}
		return writeReport(out, res.Report, cols, opts.format)
	}

	var buf bytes.Buffer
	if err := writeReport(&buf, res.Report, cols, opts.format); err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
		return err
	}
	printSuccess(cmd.ErrOrStderr(), "Wrote %s report", opts.format)
	printFile(cmd.ErrOrStderr(), opts.output)
	return nil
}

// archive stores a finished run in the configured run store.
func (c *CLI) archive(cmd *cobra.Command, name string, bl *beamline.Beamline, hash string, rep *report.Report) error {
	ctx := cmd.Context()
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	blJSON, err := json.Marshal(bl.WithEnergy(rep.Energy))
	if err != nil {
		return err
	}
	run, err := store.NewRun(name, blJSON, hash, rep)
	if err != nil {
		return err
	}
	if err := st.Put(ctx, run); err != nil {
		return err
	}
	printSuccess(cmd.ErrOrStderr(), "Archived run %s", StyleNumber.Render(run.ID))
	return nil
}
