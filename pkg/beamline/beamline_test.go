package beamline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/transfocator/pkg/errors"
	"github.com/matzehuels/transfocator/pkg/optics"
)

const twoTF = `
[source]
energy = 10300
sx = 77.47
sy = 13.89
wx = 22.14
wy = 25.90

[[tf]]
name = "TF1"
type = "vacuum"
position = 27.075
center = true

  [[tf.groups]]
  n = 1
  preset = "R500"

  [[tf.groups]]
  n = 3
  preset = "R500"
  active = true
  lenses = [
    { preset = "R500" },
    { preset = "R100", active = false },
    { material = "Al" },
  ]

  [[tf.groups]]
  n = 2
  preset = "R200"
  active = false

[[tf]]
name = "TF2"
type = "air"
position = 64.0
center = true
count = 4
preset = "R50"
`

func TestParseTOML(t *testing.T) {
	b, err := Parse([]byte(twoTF), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, 10300.0, b.Source.Energy)
	require.Len(t, b.TFs, 2)

	tf1, ok := b.TFs[0].(*VacuumTF)
	require.True(t, ok, "TF1 should be a vacuum transfocator")
	assert.Equal(t, "TF1", tf1.TFName())
	assert.Equal(t, KindVacuum, tf1.Kind())
	assert.Len(t, tf1.Groups, 3)
	assert.Len(t, tf1.ActiveGroups(), 2)

	slots := tf1.Groups[1].Slots()
	require.Len(t, slots, 3)
	assert.Equal(t, "R500", slots[0].Preset)
	assert.Equal(t, "R100", slots[1].Preset)
	assert.False(t, slots[1].IsActive())
	assert.Equal(t, "R500", slots[2].Preset, "slot inherits group preset")
	assert.Equal(t, "Al", slots[2].Material)

	tf2, ok := b.TFs[1].(*AirTF)
	require.True(t, ok, "TF2 should be an air transfocator")
	pos, center := tf2.Placement()
	assert.Equal(t, 64.0, pos)
	assert.True(t, center)
	require.Len(t, tf2.Slots, 4)
	assert.Equal(t, "R50", tf2.Slots[3].Preset)

	assert.Equal(t, []string{"Be", "Al"}, b.Materials())
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("[source]\nenergy = 10300\nbrightness = 3\n"), FormatTOML)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "got %v", err)
}

func TestParseRejectsUnknownType(t *testing.T) {
	_, err := Parse([]byte("[source]\nenergy = 10300\n[[tf]]\nname = \"X\"\ntype = \"helium\"\n"), FormatTOML)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidBeamline))
}

func TestValidateCollectsAllProblems(t *testing.T) {
	b := &Beamline{
		Source: Source{Energy: -1, SX: -3},
		TFs: []TF{
			&VacuumTF{Name: "TF1", Groups: []Group{{N: 0}, {N: 2, Preset: "R42"}}},
			&AirTF{Name: "TF1", Slots: []Slot{{Material: "be"}}},
		},
	}

	err := b.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidBeamline))

	msg := err.Error()
	for _, want := range []string{"source energy", "source sx", "needs n or lenses", "R42", "duplicate name", `"be"`} {
		assert.Contains(t, msg, want)
	}
}

func TestValidateAcceptsEmptyBeamline(t *testing.T) {
	b := &Beamline{Source: DefaultSource()}
	assert.NoError(t, b.Validate())
}

func TestJSONRoundTrip(t *testing.T) {
	orig, err := Parse([]byte(twoTF), FormatTOML)
	require.NoError(t, err)

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	got, err := Parse(data, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, orig.File(), got.File())
}

func TestJSONRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`{"source":{"energy":10300},"extra":1}`), FormatJSON)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestWriteTOMLThenLoad(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTOML(&buf, Default()))

	path := filepath.Join(t.TempDir(), "default.toml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().File(), b.File())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatOf("a/b.JSON"))
	assert.Equal(t, FormatTOML, FormatOf("a/b.toml"))
	assert.Equal(t, FormatTOML, FormatOf("beamline"))
}

func TestLookupPreset(t *testing.T) {
	p, err := LookupPreset("R100")
	require.NoError(t, err)
	assert.Equal(t, 100e-6, p.R)
	assert.Equal(t, 600e-6, p.A)

	_, err = LookupPreset("R42")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPreset))

	names := make([]string, 0)
	for _, p := range Presets() {
		names = append(names, p.Name)
	}
	assert.Equal(t, "R50,R100,R200,R500", strings.Join(names, ","))
}

func TestSourceParams(t *testing.T) {
	s := Source{Energy: 10300, SX: 77.47, SY: 13.89, WX: 22.14, WY: 25.9}

	fwhm := s.Params(optics.FWHM)
	assert.InDelta(t, 77.47e-6, fwhm.SX, 1e-15)
	assert.InDelta(t, 25.9e-6, fwhm.WY, 1e-15)
	assert.InDelta(t, optics.Wavelength(10300), fwhm.Wavelength, 1e-20)

	sigma := s.Params(optics.Sigma)
	assert.InDelta(t, 77.47e-6/optics.FWHMPerSigma, sigma.SX, 1e-15)
}

func TestWithEnergy(t *testing.T) {
	b := Default()
	c := b.WithEnergy(30900)
	assert.Equal(t, 30900.0, c.Source.Energy)
	assert.Equal(t, 10300.0, b.Source.Energy)
}
