package geometry

import (
	"github.com/matzehuels/transfocator/pkg/errors"
)

// Settings are the mechanical constants of the lens mounts. All lengths
// are in metres.
type Settings struct {
	Pitch               float64 `json:"pitch" mapstructure:"pitch"`                                 // lens thickness along the beam
	Web                 float64 `json:"web" mapstructure:"web"`                                     // material on axis between apices
	VacuumGap           float64 `json:"vacuum_gap" mapstructure:"vacuum_gap"`                       // extra gap between lenses in vacuum
	AirGap              float64 `json:"air_gap" mapstructure:"air_gap"`                             // extra gap between lenses in air
	HousingLength       float64 `json:"housing_length" mapstructure:"housing_length"`               // length of one vacuum housing
	HousingGap          float64 `json:"housing_gap" mapstructure:"housing_gap"`                     // gap between consecutive housings
	MaxPerHousing       int     `json:"max_per_housing" mapstructure:"max_per_housing"`             // lens capacity of a housing
	VacuumNominalLength float64 `json:"vacuum_nominal_length" mapstructure:"vacuum_nominal_length"` // physical length of a vacuum TF
	AirNominalLength    float64 `json:"air_nominal_length" mapstructure:"air_nominal_length"`       // physical length of an air TF
}

// Default mount constants.
const (
	DefaultPitch               = 1e-3
	DefaultWeb                 = 30e-6
	DefaultVacuumGap           = 0.0
	DefaultAirGap              = 400e-6
	DefaultHousingLength       = 0.01
	DefaultHousingGap          = 1e-3
	DefaultMaxPerHousing       = 5
	DefaultVacuumNominalLength = 0.153
	DefaultAirNominalLength    = 0.1396
)

// DefaultSettings returns the standard mount constants.
func DefaultSettings() Settings {
	return Settings{
		Pitch:               DefaultPitch,
		Web:                 DefaultWeb,
		VacuumGap:           DefaultVacuumGap,
		AirGap:              DefaultAirGap,
		HousingLength:       DefaultHousingLength,
		HousingGap:          DefaultHousingGap,
		MaxPerHousing:       DefaultMaxPerHousing,
		VacuumNominalLength: DefaultVacuumNominalLength,
		AirNominalLength:    DefaultAirNominalLength,
	}
}

// WithDefaults fills zero fields from [DefaultSettings]. Zero gaps are
// legitimate, so only the sizes are filled.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.Pitch == 0 {
		s.Pitch = d.Pitch
	}
	if s.Web == 0 {
		s.Web = d.Web
	}
	if s.HousingLength == 0 {
		s.HousingLength = d.HousingLength
	}
	if s.MaxPerHousing == 0 {
		s.MaxPerHousing = d.MaxPerHousing
	}
	if s.VacuumNominalLength == 0 {
		s.VacuumNominalLength = d.VacuumNominalLength
	}
	if s.AirNominalLength == 0 {
		s.AirNominalLength = d.AirNominalLength
	}
	return s
}

// Validate rejects non-physical settings.
func (s Settings) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"pitch", s.Pitch},
		{"housing_length", s.HousingLength},
		{"vacuum_nominal_length", s.VacuumNominalLength},
		{"air_nominal_length", s.AirNominalLength},
	} {
		if err := errors.ValidatePositive(f.name, f.v); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"web", s.Web},
		{"vacuum_gap", s.VacuumGap},
		{"air_gap", s.AirGap},
		{"housing_gap", s.HousingGap},
	} {
		if err := errors.ValidateNonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	if s.MaxPerHousing <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_per_housing must be positive, got %d", s.MaxPerHousing)
	}
	return nil
}
