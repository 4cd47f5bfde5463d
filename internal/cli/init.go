package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/transfocator/pkg/beamline"
)

const defaultBeamlineFile = "beamline.toml"

// initCommand creates the init command, which writes the reference
// beamline as a starting point.
func (c *CLI) initCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the reference two-transfocator beamline to a TOML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultBeamlineFile
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			var buf bytes.Buffer
			if err := beamline.WriteTOML(&buf, beamline.Default()); err != nil {
				return err
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return err
			}
			w := cmd.ErrOrStderr()
			printSuccess(w, "Wrote reference beamline")
			printFile(w, path)
			printInfo(w, "Next: tfcalc calc %s", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
