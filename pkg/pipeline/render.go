package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"math"

	"github.com/matzehuels/transfocator/pkg/beamline"
	"github.com/matzehuels/transfocator/pkg/errors"
	"github.com/matzehuels/transfocator/pkg/schematic"
)

// Render produces artifacts from a finished result, keyed by format:
// json is the report, toml the effective beamline, dot and svg the
// schematic. Schematics need the assembled chain; when the report came from
// the cache the chain is assembled again.
func (r *Runner) Render(ctx context.Context, res *Result, opts Options, formats []string) (map[string][]byte, error) {
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	bl := opts.EffectiveBeamline()

	artifacts := make(map[string][]byte, len(formats))
	var dot string
	for _, format := range formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatJSON:
			data, err = json.MarshalIndent(res.Report, "", "  ")
		case FormatTOML:
			var buf bytes.Buffer
			err = beamline.WriteTOML(&buf, bl)
			data = buf.Bytes()
		case FormatDOT, FormatSVG:
			if dot == "" {
				dot, err = r.schematicDOT(ctx, res, bl, opts)
				if err != nil {
					return nil, err
				}
			}
			if format == FormatDOT {
				data = []byte(dot)
			} else {
				data, err = schematic.RenderSVG(ctx, dot)
			}
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func (r *Runner) schematicDOT(ctx context.Context, res *Result, bl *beamline.Beamline, opts Options) (string, error) {
	chain := res.Chain
	if chain == nil {
		var err error
		if chain, err = r.Assemble(ctx, bl, opts.Settings); err != nil {
			return "", err
		}
	}
	var focus float64
	if res.Report != nil && res.Report.Focused() && !math.IsInf(res.Report.L2, 0) {
		focus = res.Report.L2
	}
	return schematic.ToDOT(chain, schematic.Options{Detailed: true, Focus: focus}), nil
}
