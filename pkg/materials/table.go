package materials

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/transfocator/pkg/cache"
	"github.com/matzehuels/transfocator/pkg/errors"
)

// Point is one tabulated energy.
type Point struct {
	Energy float64 `toml:"energy" json:"energy"` // eV
	Constants
}

// Material is a tabulated material at its reference density.
type Material struct {
	Symbol  string  `toml:"symbol" json:"symbol"`
	Density float64 `toml:"density" json:"density"` // g/cm³
	Points  []Point `toml:"point" json:"points"`
}

// Table interpolates tabulated optical constants.
//
// Between two tabulated energies δ, β and the attenuation length are
// interpolated linearly in log-log space, which is exact for power laws and
// close for the smooth regions between absorption edges. δ and β scale
// linearly with density and the attenuation length inversely. Energies
// outside the tabulated range fail rather than extrapolate.
type Table struct {
	mu        sync.RWMutex
	materials map[string]Material
}

// NewTable builds a table from materials. Points are sorted by energy.
func NewTable(materials ...Material) (*Table, error) {
	t := &Table{materials: make(map[string]Material)}
	for _, m := range materials {
		if err := t.Add(m); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// beryllium at the two energies of the default beamline configuration.
var beryllium = Material{
	Symbol:  "Be",
	Density: 1.848,
	Points: []Point{
		{Energy: 10300, Constants: Constants{
			Delta:             3.2067436008938e-06,
			Beta:              7.0311452433564e-10,
			AttenuationLength: 8756.72906865e-6,
		}},
		{Energy: 30900, Constants: Constants{
			Delta:             3.5573889045265e-07,
			Beta:              5.9022238720663e-12,
			AttenuationLength: 30673.69471476385627e-6,
		}},
	},
}

// DefaultTable returns a table holding the built-in beryllium data.
func DefaultTable() *Table {
	t, _ := NewTable(beryllium)
	return t
}

// Add inserts or replaces a material.
func (t *Table) Add(m Material) error {
	if err := errors.ValidateMaterial(m.Symbol); err != nil {
		return err
	}
	if err := errors.ValidatePositive(m.Symbol+" density", m.Density); err != nil {
		return err
	}
	if len(m.Points) == 0 {
		return errors.New(errors.ErrCodeInvalidMaterial, "%s: no tabulated points", m.Symbol)
	}
	pts := append([]Point(nil), m.Points...)
	sort.Slice(pts, func(i, j int) bool { return pts[i].Energy < pts[j].Energy })
	for i, p := range pts {
		if err := p.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidMaterial, err, "%s at %g eV", m.Symbol, p.Energy)
		}
		if i > 0 && pts[i-1].Energy == p.Energy {
			return errors.New(errors.ErrCodeInvalidMaterial, "%s: duplicate energy %g eV", m.Symbol, p.Energy)
		}
	}
	m.Points = pts

	t.mu.Lock()
	defer t.mu.Unlock()
	t.materials[m.Symbol] = m
	return nil
}

// Fingerprint hashes the tabulated data, so tables holding the same
// materials and points share a fingerprint.
func (t *Table) Fingerprint() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, err := cache.HashJSON(t.materials)
	if err != nil {
		return fmt.Sprintf("table:%p", t)
	}
	return "table:" + h[:16]
}

// tableFile is the on-disk layout of a material table.
type tableFile struct {
	Material []Material `toml:"material"`
}

// LoadTableFile reads extra materials from a TOML file on top of the
// built-in data. Entries in the file replace built-in ones.
func LoadTableFile(path string) (*Table, error) {
	var f tableFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "material table %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidFormat, "material table %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	t := DefaultTable()
	for _, m := range f.Material {
		if err := t.Add(m); err != nil {
			return nil, fmt.Errorf("material table %s: %w", path, err)
		}
	}
	return t, nil
}

// Symbols lists the tabulated materials in sorted order.
func (t *Table) Symbols() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.materials))
	for s := range t.materials {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Range returns the tabulated energy range of material.
func (t *Table) Range(material string) (lo, hi float64, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.materials[material]
	if !ok {
		return 0, 0, false
	}
	return m.Points[0].Energy, m.Points[len(m.Points)-1].Energy, true
}

// Density returns the reference density of a tabulated material.
func (t *Table) Density(_ context.Context, material string) (float64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.materials[material]
	if !ok {
		return 0, errors.New(errors.ErrCodeLookupFailed, "material %q not tabulated", material)
	}
	return m.Density, nil
}

// Lookup interpolates the constants of material at energy, scaled to
// density. A density <= 0 selects the tabulated reference density.
func (t *Table) Lookup(ctx context.Context, material string, density, energy float64) (Constants, error) {
	if err := ctx.Err(); err != nil {
		return Constants{}, err
	}
	t.mu.RLock()
	m, ok := t.materials[material]
	t.mu.RUnlock()
	if !ok {
		return Constants{}, errors.New(errors.ErrCodeLookupFailed, "material %q not tabulated", material)
	}

	c, err := m.at(energy)
	if err != nil {
		return Constants{}, err
	}
	if density > 0 && density != m.Density {
		r := density / m.Density
		c.Delta *= r
		c.Beta *= r
		c.AttenuationLength /= r
	}
	return c, nil
}

func (m Material) at(energy float64) (Constants, error) {
	pts := m.Points
	lo, hi := pts[0].Energy, pts[len(pts)-1].Energy
	if energy < lo || energy > hi || math.IsNaN(energy) {
		return Constants{}, errors.New(errors.ErrCodeLookupFailed,
			"%s: energy %g eV outside tabulated range [%g, %g] eV", m.Symbol, energy, lo, hi)
	}

	i := sort.Search(len(pts), func(i int) bool { return pts[i].Energy >= energy })
	if pts[i].Energy == energy {
		return pts[i].Constants, nil
	}
	a, b := pts[i-1], pts[i]
	x := math.Log(energy/a.Energy) / math.Log(b.Energy/a.Energy)
	return Constants{
		Delta:             loglerp(a.Delta, b.Delta, x),
		Beta:              loglerp(a.Beta, b.Beta, x),
		AttenuationLength: loglerp(a.AttenuationLength, b.AttenuationLength, x),
	}, nil
}

// loglerp interpolates between a and b at fraction x in log space.
func loglerp(a, b, x float64) float64 {
	return math.Exp(math.Log(a) + x*(math.Log(b)-math.Log(a)))
}

var (
	_ Provider  = (*Table)(nil)
	_ Densities = (*Table)(nil)
)
