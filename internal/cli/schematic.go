package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/transfocator/pkg/beamline"
	"github.com/matzehuels/transfocator/pkg/errors"
	"github.com/matzehuels/transfocator/pkg/pipeline"
)

// schematicCommand creates the schematic command, which draws the beamline
// as a Graphviz diagram.
func (c *CLI) schematicCommand() *cobra.Command {
	var (
		flags  calcFlags
		format = pipeline.FormatSVG
		output string
	)

	cmd := &cobra.Command{
		Use:   "schematic <beamline>",
		Short: "Draw the lens chain as DOT or SVG",
		Example: `  tfcalc schematic beamline.toml -o beamline.svg
  tfcalc schematic beamline.toml -f dot | dot -Tpng > beamline.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != pipeline.FormatDOT && format != pipeline.FormatSVG {
				return errors.New(errors.ErrCodeInvalidFormat, "invalid schematic format %q (must be svg or dot)", format)
			}
			ctx := cmd.Context()
			bl, err := beamline.Load(args[0])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := c.options(bl, &flags)
			res, err := runner.Execute(ctx, opts)
			if err != nil {
				return err
			}
			artifacts, err := runner.Render(ctx, res, opts, []string{format})
			if err != nil {
				return err
			}

			data := artifacts[format]
			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess(cmd.ErrOrStderr(), "Rendered %s schematic", format)
			printFile(cmd.ErrOrStderr(), output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", format, "output format: svg or dot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
