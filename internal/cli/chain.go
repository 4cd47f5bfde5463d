package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/transfocator/pkg/beamline"
	"github.com/matzehuels/transfocator/pkg/geometry"
	"github.com/matzehuels/transfocator/pkg/report"
)

// chainCommand creates the chain command, which prints the assembled lens
// layout without propagating the beam.
func (c *CLI) chainCommand() *cobra.Command {
	var (
		energy float64
		format = outTable
	)

	cmd := &cobra.Command{
		Use:   "chain <beamline>",
		Short: "Show where every active lens sits along the beam",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(format, outTable, outPlain, outJSON); err != nil {
				return err
			}
			ctx := cmd.Context()
			bl, err := beamline.Load(args[0])
			if err != nil {
				return err
			}
			if energy > 0 {
				bl = bl.WithEnergy(energy)
			}
			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			chain, err := runner.Assemble(ctx, bl, c.config().Geometry)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == outJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(chain)
			}
			renderGrid(out, chainGrid(chain), format)
			for _, s := range chain.Spans {
				printDetail(out, "%s (%s): %.4f to %.4f m, %d of %d slots active, %d housings",
					s.TF, s.Kind, s.Start, s.End, s.Active, s.Slots, max(len(s.Housings), 1))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&energy, "energy", 0, "photon energy in eV used to resolve optical constants")
	cmd.Flags().StringVarP(&format, "format", "f", format, "output format: table, plain, json")
	return cmd
}

func chainGrid(chain *geometry.Chain) grid {
	g := grid{
		headers:  []string{"#", "Block", "Slot", "Preset", "Material", "Pos, m", "Dist, m", "delta", "Atlen, mm"},
		sections: map[int]string{},
	}
	for i, u := range chain.Units {
		if u.FirstInTF {
			g.sections[i] = u.TF
		}
		g.rows = append(g.rows, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(u.Block),
			strconv.Itoa(u.Slot),
			u.Preset,
			u.Material,
			report.FormatFloat(u.Position, 'f', 4),
			report.FormatFloat(u.Distance, 'f', 4),
			fmt.Sprintf("%.3e", u.Constants.Delta),
			report.FormatFloat(u.Constants.AttenuationLength*1e3, 'f', 2),
		})
	}
	return g
}
