package geometry

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/transfocator/pkg/beamline"
	"github.com/matzehuels/transfocator/pkg/errors"
	"github.com/matzehuels/transfocator/pkg/materials"
)

// overlapTolerance allows transfocators to touch.
const overlapTolerance = 1e-9

// Assembler builds lens chains.
type Assembler struct {
	Settings Settings
	Provider materials.Provider
	Logger   *log.Logger
}

// NewAssembler creates an Assembler. Zero settings fields take defaults and
// a nil logger discards output.
func NewAssembler(provider materials.Provider, settings Settings, logger *log.Logger) *Assembler {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Assembler{
		Settings: settings.WithDefaults(),
		Provider: provider,
		Logger:   logger,
	}
}

type resolved struct {
	density   float64
	constants materials.Constants
}

// Assemble lays out bl and resolves the optical constants of every active
// lens at the source energy.
func (a *Assembler) Assemble(ctx context.Context, bl *beamline.Beamline) (*Chain, error) {
	if err := a.Settings.Validate(); err != nil {
		return nil, err
	}
	if a.Provider == nil {
		return nil, errors.New(errors.ErrCodeInternal, "no optical-constants provider configured")
	}

	s := a.Settings
	energy := bl.Source.Energy
	chain := &Chain{Energy: energy}
	lookups := map[string]resolved{}

	end, prevZ := 0.0, 0.0
	prevTF := "source"
	for _, tf := range bl.TFs {
		start := s.Start(tf)
		if start < end-overlapTolerance {
			return nil, errors.New(errors.ErrCodeInvalidGeometry,
				"%s starts at %.4f m, before %s ends at %.4f m", tf.TFName(), start, prevTF, end)
		}

		var (
			slots []placed
			span  Span
			err   error
			tfMat string
		)
		switch t := tf.(type) {
		case *beamline.VacuumTF:
			slots, span, err = layoutVacuum(t, start, s)
			tfMat = t.Material
		case *beamline.AirTF:
			slots, span = layoutAir(t, start, s)
			tfMat = t.Material
		}
		if err != nil {
			return nil, err
		}

		first := len(chain.Units)
		inTF := 0
		for _, p := range slots {
			if !p.lens.IsActive() {
				continue
			}
			presetName := p.lens.Preset
			if presetName == "" {
				presetName = beamline.DefaultPreset
			}
			preset, err := beamline.LookupPreset(presetName)
			if err != nil {
				return nil, err
			}

			material := firstNonEmpty(p.lens.Material, tfMat, bl.DefaultMaterial())
			r, ok := lookups[material]
			if !ok {
				r, err = a.resolve(ctx, material, energy)
				if err != nil {
					return nil, err
				}
				lookups[material] = r
			}

			inTF++
			chain.Units = append(chain.Units, LensUnit{
				Preset:    preset.Name,
				R:         preset.R,
				A:         preset.A,
				Pitch:     s.Pitch,
				Gap:       p.gap,
				Web:       s.Web,
				Material:  material,
				Density:   r.density,
				Constants: r.constants,
				Position:  p.z,
				Distance:  p.z - prevZ,
				TF:        tf.TFName(),
				Kind:      tf.Kind(),
				Block:     p.block,
				Slot:      p.slot,
				InTF:      inTF,
			})
			prevZ = p.z
		}
		markBoundaries(chain.Units[first:])

		span.Active = inTF
		chain.Spans = append(chain.Spans, span)
		a.Logger.Debug("laid out transfocator", "tf", tf.TFName(), "kind", tf.Kind(),
			"start", span.Start, "end", span.End, "slots", span.Slots, "active", inTF)

		end, prevTF = span.End, tf.TFName()
	}
	return chain, nil
}

func (a *Assembler) resolve(ctx context.Context, material string, energy float64) (resolved, error) {
	density, err := materials.DensityOf(ctx, a.Provider, material)
	if err != nil {
		return resolved{}, err
	}
	c, err := a.Provider.Lookup(ctx, material, density, energy)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeLookupFailed, err, "optical constants for %s at %g eV", material, energy)
		}
		return resolved{}, err
	}
	if err := c.Validate(); err != nil {
		return resolved{}, err
	}
	a.Logger.Debug("resolved optical constants", "material", material, "density", density,
		"energy", energy, "delta", c.Delta, "beta", c.Beta, "atlen", c.AttenuationLength)
	return resolved{density: density, constants: c}, nil
}

// markBoundaries sets the per-TF and per-housing flags on the units of
// one transfocator.
func markBoundaries(units []LensUnit) {
	n := len(units)
	if n == 0 {
		return
	}
	units[0].FirstInTF = true
	units[n-1].LastInTF = true
	for i := range units {
		if i == n-1 || units[i+1].Block != units[i].Block {
			units[i].LastInBlock = true
		}
	}
	pos := 0
	for i := range units {
		if i == 0 || units[i-1].Block != units[i].Block {
			pos = 0
		}
		pos++
		units[i].InBlock = pos
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
