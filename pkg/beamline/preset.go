package beamline

import (
	"sort"

	"github.com/matzehuels/transfocator/pkg/errors"
)

// Preset is a named lens geometry.
type Preset struct {
	Name string  `json:"name"`
	R    float64 `json:"r"` // apex radius of curvature, m
	A    float64 `json:"a"` // physical aperture, m
}

var presets = map[string]Preset{
	"R50":  {Name: "R50", R: 50e-6, A: 440e-6},
	"R100": {Name: "R100", R: 100e-6, A: 600e-6},
	"R200": {Name: "R200", R: 200e-6, A: 800e-6},
	"R500": {Name: "R500", R: 500e-6, A: 1400e-6},
}

// DefaultPreset is used when a group or slot names none.
const DefaultPreset = "R500"

// LookupPreset returns the preset called name.
func LookupPreset(name string) (Preset, error) {
	if err := errors.ValidatePresetName(name); err != nil {
		return Preset{}, err
	}
	p, ok := presets[name]
	if !ok {
		return Preset{}, errors.New(errors.ErrCodeInvalidPreset, "unknown lens preset %q", name)
	}
	return p, nil
}

// Presets returns the catalog ordered by radius.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].R < out[j].R })
	return out
}
