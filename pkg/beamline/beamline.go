package beamline

// Kind distinguishes the two transfocator variants.
type Kind string

const (
	KindVacuum Kind = "vacuum"
	KindAir    Kind = "air"
)

// TF is a transfocator: either a [*VacuumTF] or an [*AirTF].
type TF interface {
	// TFName is the transfocator's label, unique within a beamline.
	TFName() string
	// Kind reports the variant.
	Kind() Kind
	// Placement returns the axial position (m) and whether it refers to
	// the transfocator's centre.
	Placement() (position float64, center bool)

	sealed()
}

// Slot is one lens position. Inactive slots keep their place but hold no
// lens in the beam.
type Slot struct {
	Preset   string `toml:"preset,omitempty" json:"preset,omitempty"`
	Active   *bool  `toml:"active,omitempty" json:"active,omitempty"`
	Material string `toml:"material,omitempty" json:"material,omitempty"`
}

// IsActive reports whether the slot holds a lens. Unset means active.
func (s Slot) IsActive() bool {
	return s.Active == nil || *s.Active
}

// Group is one housing of a vacuum transfocator: N lenses of one preset,
// optionally refined per slot through Lenses.
type Group struct {
	N        int    `toml:"n" json:"n"`
	Preset   string `toml:"preset,omitempty" json:"preset,omitempty"`
	Active   *bool  `toml:"active,omitempty" json:"active,omitempty"`
	Material string `toml:"material,omitempty" json:"material,omitempty"`
	Lenses   []Slot `toml:"lenses,omitempty" json:"lenses,omitempty"`
}

// IsActive reports whether the group is in the beam. Unset means active.
func (g Group) IsActive() bool {
	return g.Active == nil || *g.Active
}

// Slots expands the group into its N slots. Slot fields left empty
// inherit the group's preset and material.
func (g Group) Slots() []Slot {
	n := g.N
	if n == 0 {
		n = len(g.Lenses)
	}
	out := make([]Slot, n)
	for i := range out {
		s := Slot{Preset: g.Preset, Material: g.Material}
		if i < len(g.Lenses) {
			o := g.Lenses[i]
			if o.Preset != "" {
				s.Preset = o.Preset
			}
			if o.Material != "" {
				s.Material = o.Material
			}
			s.Active = o.Active
		}
		out[i] = s
	}
	return out
}

// VacuumTF is a transfocator whose lens groups sit in fixed-length
// vacuum housings.
type VacuumTF struct {
	Name     string
	Position float64
	Center   bool
	Material string
	Groups   []Group
}

func (t *VacuumTF) TFName() string             { return t.Name }
func (t *VacuumTF) Kind() Kind                 { return KindVacuum }
func (t *VacuumTF) Placement() (float64, bool) { return t.Position, t.Center }
func (t *VacuumTF) sealed()                    {}

// ActiveGroups returns the groups that occupy housings, in order.
func (t *VacuumTF) ActiveGroups() []Group {
	out := make([]Group, 0, len(t.Groups))
	for _, g := range t.Groups {
		if g.IsActive() {
			out = append(out, g)
		}
	}
	return out
}

// AirTF is a continuous in-air lens array.
type AirTF struct {
	Name     string
	Position float64
	Center   bool
	Material string
	Slots    []Slot
}

func (t *AirTF) TFName() string             { return t.Name }
func (t *AirTF) Kind() Kind                 { return KindAir }
func (t *AirTF) Placement() (float64, bool) { return t.Position, t.Center }
func (t *AirTF) sealed()                    {}

// Beamline is a source followed by transfocators in beam order.
type Beamline struct {
	Source Source
	TFs    []TF
}

// Materials lists every material referenced, including the default.
func (b *Beamline) Materials() []string {
	seen := map[string]bool{}
	var out []string
	add := func(m string) {
		if m != "" && !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	add(b.DefaultMaterial())
	for _, tf := range b.TFs {
		switch t := tf.(type) {
		case *VacuumTF:
			add(t.Material)
			for _, g := range t.Groups {
				for _, s := range g.Slots() {
					add(s.Material)
				}
			}
		case *AirTF:
			add(t.Material)
			for _, s := range t.Slots {
				add(s.Material)
			}
		}
	}
	return out
}

// DefaultMaterial is the source's material or beryllium.
func (b *Beamline) DefaultMaterial() string {
	if b.Source.Material != "" {
		return b.Source.Material
	}
	return "Be"
}

// WithEnergy returns a shallow copy with the photon energy replaced.
func (b *Beamline) WithEnergy(energy float64) *Beamline {
	c := *b
	c.Source.Energy = energy
	return &c
}

func boolPtr(v bool) *bool { return &v }

// Default is the reference two-transfocator beamline: a vacuum TF1
// centred at 27.075 m holding a single R500 lens, and an air TF2 of three
// R50 lenses centred at 64 m.
func Default() *Beamline {
	return &Beamline{
		Source: DefaultSource(),
		TFs: []TF{
			&VacuumTF{
				Name:     "TF1",
				Position: 27.075,
				Center:   true,
				Groups:   []Group{{N: 1, Preset: "R500", Active: boolPtr(true)}},
			},
			&AirTF{
				Name:     "TF2",
				Position: 64,
				Center:   true,
				Slots: []Slot{
					{Preset: "R50"}, {Preset: "R50"}, {Preset: "R50"},
				},
			},
		},
	}
}
