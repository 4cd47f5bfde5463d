package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/transfocator/pkg/beamline"
	"github.com/matzehuels/transfocator/pkg/errors"
	"github.com/matzehuels/transfocator/pkg/materials"
	"github.com/matzehuels/transfocator/pkg/optics"
)

// constantsCommand creates the constants command, which looks up the
// optical constants of a lens material.
func (c *CLI) constantsCommand() *cobra.Command {
	var (
		energy, density float64
		asJSON          bool
	)

	cmd := &cobra.Command{
		Use:     "constants <material>",
		Short:   "Look up delta, beta and attenuation length of a material",
		Example: `  tfcalc constants Be --energy 10300`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			material := args[0]
			if err := errors.ValidateMaterial(material); err != nil {
				return err
			}
			if err := errors.ValidatePositive("energy", energy); err != nil {
				return err
			}
			ctx := cmd.Context()

			provider, err := c.newProvider(nil)
			if err != nil {
				return err
			}
			if density <= 0 {
				if density, err = materials.DensityOf(ctx, provider, material); err != nil {
					return err
				}
			}
			consts, err := provider.Lookup(ctx, material, density, energy)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Material string  `json:"material"`
					Density  float64 `json:"density"`
					Energy   float64 `json:"energy"`
					materials.Constants
				}{material, density, energy, consts})
			}
			printKeyValue(out, "Material", material)
			printKeyValue(out, "Density", fmt.Sprintf("%g g/cm³", density))
			printKeyValue(out, "Energy", fmt.Sprintf("%g eV", energy))
			printKeyValue(out, "Wavelength", fmt.Sprintf("%.4e m", optics.Wavelength(energy)))
			printKeyValue(out, "delta", fmt.Sprintf("%.6e", consts.Delta))
			printKeyValue(out, "beta", fmt.Sprintf("%.6e", consts.Beta))
			printKeyValue(out, "Attenuation length", fmt.Sprintf("%.3f mm", consts.AttenuationLength*1e3))
			return nil
		},
	}

	cmd.Flags().Float64Var(&energy, "energy", 0, "photon energy in eV")
	cmd.Flags().Float64Var(&density, "density", 0, "density in g/cm³ (default: the material's reference density)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("energy")
	return cmd
}

// presetsCommand creates the presets command.
func (c *CLI) presetsCommand() *cobra.Command {
	format := outTable
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the lens presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(format, outTable, outPlain, outJSON); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			presets := beamline.Presets()
			if format == outJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(presets)
			}
			g := grid{headers: []string{"Preset", "R, um", "Aperture, um"}}
			for _, p := range presets {
				g.rows = append(g.rows, []string{p.Name, fmt.Sprintf("%.0f", p.R*1e6), fmt.Sprintf("%.0f", p.A*1e6)})
			}
			renderGrid(out, g, format)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", format, "output format: table, plain, json")
	return cmd
}
