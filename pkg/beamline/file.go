package beamline

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/transfocator/pkg/errors"
)

// File is the serialized form of a [Beamline].
type File struct {
	Source Source    `toml:"source" json:"source"`
	TF     []TFEntry `toml:"tf" json:"tf"`
}

// TFEntry is one [[tf]] table. Type selects which of the remaining fields
// apply: Groups for vacuum, Lenses or Count/Preset for air.
type TFEntry struct {
	Name     string  `toml:"name" json:"name"`
	Type     Kind    `toml:"type" json:"type"`
	Position float64 `toml:"position" json:"position"` // m
	Center   bool    `toml:"center,omitempty" json:"center,omitempty"`
	Material string  `toml:"material,omitempty" json:"material,omitempty"`

	Groups []Group `toml:"groups,omitempty" json:"groups,omitempty"`

	Lenses []Slot `toml:"lenses,omitempty" json:"lenses,omitempty"`
	Count  int    `toml:"count,omitempty" json:"count,omitempty"`
	Preset string `toml:"preset,omitempty" json:"preset,omitempty"`
}

// Beamline converts and validates.
func (f File) Beamline() (*Beamline, error) {
	b := &Beamline{Source: f.Source}
	for _, e := range f.TF {
		switch e.Type {
		case KindVacuum:
			b.TFs = append(b.TFs, &VacuumTF{
				Name:     e.Name,
				Position: e.Position,
				Center:   e.Center,
				Material: e.Material,
				Groups:   e.Groups,
			})
		case KindAir, "":
			slots := e.Lenses
			if len(slots) == 0 && e.Count > 0 {
				slots = make([]Slot, e.Count)
				for i := range slots {
					slots[i] = Slot{Preset: e.Preset}
				}
			} else if e.Preset != "" {
				for i := range slots {
					if slots[i].Preset == "" {
						slots[i].Preset = e.Preset
					}
				}
			}
			b.TFs = append(b.TFs, &AirTF{
				Name:     e.Name,
				Position: e.Position,
				Center:   e.Center,
				Material: e.Material,
				Slots:    slots,
			})
		default:
			return nil, errors.New(errors.ErrCodeInvalidBeamline, "tf %q: unknown type %q (want vacuum or air)", e.Name, e.Type)
		}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// File returns the serialized form.
func (b *Beamline) File() File {
	f := File{Source: b.Source}
	for _, tf := range b.TFs {
		switch t := tf.(type) {
		case *VacuumTF:
			f.TF = append(f.TF, TFEntry{
				Name:     t.Name,
				Type:     KindVacuum,
				Position: t.Position,
				Center:   t.Center,
				Material: t.Material,
				Groups:   t.Groups,
			})
		case *AirTF:
			f.TF = append(f.TF, TFEntry{
				Name:     t.Name,
				Type:     KindAir,
				Position: t.Position,
				Center:   t.Center,
				Material: t.Material,
				Lenses:   t.Slots,
			})
		}
	}
	return f
}

// MarshalJSON encodes the serialized form.
func (b *Beamline) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.File())
}

// UnmarshalJSON decodes and validates.
func (b *Beamline) UnmarshalJSON(data []byte) error {
	var f File
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "beamline JSON")
	}
	parsed, err := f.Beamline()
	if err != nil {
		return err
	}
	*b = *parsed
	return nil
}

// Format is a beamline file format.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatOf guesses the format from a file extension. Anything that is not
// .json is read as TOML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatTOML
}

// Load reads a beamline file.
func Load(path string) (*Beamline, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "beamline file %s does not exist", path)
	}
	if err != nil {
		return nil, err
	}
	return Parse(data, FormatOf(path))
}

// Parse decodes a beamline in the given format.
func Parse(data []byte, format Format) (*Beamline, error) {
	if format == FormatJSON {
		var b Beamline
		if err := json.Unmarshal(data, &b); err != nil {
			if errors.GetCode(err) == "" {
				err = errors.Wrap(errors.ErrCodeInvalidFormat, err, "beamline JSON")
			}
			return nil, err
		}
		return &b, nil
	}

	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "beamline TOML")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown keys in beamline: %s", strings.Join(keys, ", "))
	}
	return f.Beamline()
}

// WriteTOML encodes b as TOML.
func WriteTOML(w io.Writer, b *Beamline) error {
	return toml.NewEncoder(w).Encode(b.File())
}
