package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/transfocator/pkg/beamline"
	"github.com/matzehuels/transfocator/pkg/pipeline"
	"github.com/matzehuels/transfocator/pkg/report"
)

type scanOpts struct {
	calcFlags
	from, to, step float64
	concurrency    int
	format         string
	quiet          bool
}

// scanCommand creates the scan command, which repeats the calculation over
// a range of photon energies.
func (c *CLI) scanCommand() *cobra.Command {
	opts := scanOpts{format: outTable, concurrency: pipeline.DefaultSweepConcurrency}

	cmd := &cobra.Command{
		Use:     "scan <beamline>",
		Short:   "Sweep the photon energy and tabulate focus, transmission and gain",
		Example: `  tfcalc scan beamline.toml --from 10300 --to 30900 --step 2060`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(opts.format, outTable, outPlain, outJSON); err != nil {
				return err
			}
			return c.runScan(cmd, args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().Float64Var(&opts.from, "from", 0, "first energy in eV")
	cmd.Flags().Float64Var(&opts.to, "to", 0, "last energy in eV")
	cmd.Flags().Float64Var(&opts.step, "step", 0, "energy step in eV")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "j", opts.concurrency, "energies computed in parallel")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: table, plain, json")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "hide the progress spinner")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("step")

	return cmd
}

func (c *CLI) runScan(cmd *cobra.Command, path string, opts *scanOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	energies, err := pipeline.Energies(opts.from, opts.to, opts.step)
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

	var spinner *Spinner
	if !opts.quiet {
		spinner = newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Sweeping %d energies...", len(energies)))
		spinner.Start()
	}
	prog := newProgress(logger)
	points, err := runner.Sweep(ctx, c.options(bl, &opts.calcFlags), energies, opts.concurrency)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Swept %d energies", len(points)))

	out := cmd.OutOrStdout()
	if opts.format == outJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(points)
	}
	renderGrid(out, scanGrid(points), opts.format)
	return nil
}

// scanGrid tabulates the headline numbers of each sweep point.
func scanGrid(points []pipeline.SweepPoint) grid {
	g := grid{
		headers: []string{"Energy, eV", "L2, m", "Final pos, m", "Focus X, um", "Focus Y, um", "Trans., %", "Gain"},
	}
	for _, p := range points {
		r := p.Report
		g.rows = append(g.rows, []string{
			strconv.FormatFloat(p.Energy, 'f', 0, 64),
			report.FormatFloat(r.L2, 'f', 4),
			report.FormatFloat(r.FinalPosition, 'f', 4),
			report.FormatFloat(r.SizeX*1e6, 'f', 2),
			report.FormatFloat(r.SizeY*1e6, 'f', 2),
			report.FormatFloat(r.T*100, 'f', 2),
			report.FormatFloat(r.G, 'e', 3),
		})
	}
	return g
}
