package beamline

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"

	"github.com/matzehuels/transfocator/pkg/errors"
)

// Validate checks the whole beamline and reports every problem at once.
// A beamline without transfocators is valid; propagating it fails later
// with NO_RESULTS.
func (b *Beamline) Validate() error {
	var result *multierror.Error

	src := b.Source
	if err := errors.ValidatePositive("source energy", src.Energy); err != nil {
		result = multierror.Append(result, err)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{{"source sx", src.SX}, {"source sy", src.SY}, {"source wx", src.WX}, {"source wy", src.WY}} {
		if err := errors.ValidateNonNegative(f.name, f.v); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if src.Material != "" {
		if err := errors.ValidateMaterial(src.Material); err != nil {
			result = multierror.Append(result, err)
		}
	}

	names := map[string]bool{}
	for i, tf := range b.TFs {
		name := tf.TFName()
		label := fmt.Sprintf("tf[%d] %q", i, name)
		switch {
		case name == "":
			result = multierror.Append(result, errors.New(errors.ErrCodeInvalidBeamline, "tf[%d]: name is required", i))
		case names[name]:
			result = multierror.Append(result, errors.New(errors.ErrCodeInvalidBeamline, "%s: duplicate name", label))
		}
		names[name] = true

		pos, _ := tf.Placement()
		if math.IsNaN(pos) || math.IsInf(pos, 0) {
			result = multierror.Append(result, errors.New(errors.ErrCodeInvalidBeamline, "%s: position must be finite", label))
		}

		switch t := tf.(type) {
		case *VacuumTF:
			result = multierror.Append(result, validateVacuum(label, t)...)
		case *AirTF:
			result = multierror.Append(result, validateAir(label, t)...)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidBeamline, err, "invalid beamline")
	}
	return nil
}

func validateVacuum(label string, t *VacuumTF) []error {
	var errs []error
	if t.Material != "" {
		if err := errors.ValidateMaterial(t.Material); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", label, err))
		}
	}
	for gi, g := range t.Groups {
		gl := fmt.Sprintf("%s group %d", label, gi+1)
		switch {
		case g.N < 0:
			errs = append(errs, errors.New(errors.ErrCodeInvalidBeamline, "%s: n must not be negative", gl))
		case g.N == 0 && len(g.Lenses) == 0:
			errs = append(errs, errors.New(errors.ErrCodeInvalidBeamline, "%s: needs n or lenses", gl))
		case g.N > 0 && len(g.Lenses) > g.N:
			errs = append(errs, errors.New(errors.ErrCodeInvalidBeamline, "%s: %d lenses listed for n = %d", gl, len(g.Lenses), g.N))
		}
		for si, s := range g.Slots() {
			errs = append(errs, validateSlot(fmt.Sprintf("%s lens %d", gl, si+1), s)...)
		}
	}
	return errs
}

func validateAir(label string, t *AirTF) []error {
	var errs []error
	if t.Material != "" {
		if err := errors.ValidateMaterial(t.Material); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", label, err))
		}
	}
	for si, s := range t.Slots {
		errs = append(errs, validateSlot(fmt.Sprintf("%s lens %d", label, si+1), s)...)
	}
	return errs
}

func validateSlot(label string, s Slot) []error {
	var errs []error
	if s.Preset != "" {
		if _, err := LookupPreset(s.Preset); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", label, err))
		}
	}
	if s.Material != "" {
		if err := errors.ValidateMaterial(s.Material); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", label, err))
		}
	}
	return errs
}
