// Package pipeline runs a complete transfocator calculation.
//
// This package implements the assemble → propagate → report pipeline shared
// by the CLI and the API server. By centralizing this logic, every entry
// point applies the same defaults, caching and observability hooks.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Assemble: lay out the beamline's lenses and resolve optical constants
//  2. Propagate: fold the lens formulas over the chain
//  3. Report: aggregate the per-transfocator totals and the final focus
//
// Reports are cached by beamline content and run options, so repeating a
// calculation is free until the cache entry expires.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, provider, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Beamline:   bl,
//	    Convention: "fwhm",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Report.T)
//
// Run individual stages:
//
//	chain, err := runner.Assemble(ctx, bl, settings)
//	run, err := runner.Propagate(ctx, chain, bl.Source, optics.FWHM)
//
// Sweep the photon energy:
//
//	energies, err := pipeline.Energies(8000, 12000, 500)
//	points, err := runner.Sweep(ctx, opts, energies, 4)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/transfocator/pkg/beamline"
	"github.com/matzehuels/transfocator/pkg/cache"
	"github.com/matzehuels/transfocator/pkg/errors"
	"github.com/matzehuels/transfocator/pkg/geometry"
	"github.com/matzehuels/transfocator/pkg/optics"
	"github.com/matzehuels/transfocator/pkg/report"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultConvention is the width convention of reported sizes.
	DefaultConvention = "fwhm"

	// DefaultSweepConcurrency bounds parallel runs in an energy sweep.
	DefaultSweepConcurrency = 4

	// MaxSweepPoints caps the number of energies in one sweep.
	MaxSweepPoints = 1000
)

// Format constants for output artifacts.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported artifact formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatTOML: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one calculation.
// This struct supports JSON serialization for API requests.
type Options struct {
	Beamline   *beamline.Beamline `json:"beamline"`
	Convention string             `json:"convention,omitempty"`
	Energy     float64            `json:"energy,omitempty"` // overrides the source energy when > 0
	Symmetry   bool               `json:"symmetry,omitempty"`
	Refresh    bool               `json:"refresh,omitempty"`
	Settings   geometry.Settings  `json:"settings,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
	conv      optics.Convention
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Report is the aggregated calculation result.
	Report *report.Report

	// Chain is the assembled lens chain. It is nil when the report came
	// from the cache.
	Chain *geometry.Chain

	// BeamlineHash is the content hash of the effective beamline.
	BeamlineHash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the report came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TFCount       int
	LensCount     int
	AssembleTime  time.Duration
	PropagateTime time.Duration
	ReportTime    time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	ReportHit bool // Whether the report came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, toml, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Beamline == nil {
		return errors.New(errors.ErrCodeInvalidInput, "beamline is required")
	}
	if o.Convention == "" {
		o.Convention = DefaultConvention
	}
	conv, err := optics.ParseConvention(o.Convention)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConvention, err, "invalid convention")
	}
	o.conv = conv
	o.Convention = conv.String()

	if o.Energy != 0 {
		if err := errors.ValidatePositive("energy", o.Energy); err != nil {
			return err
		}
	}
	if o.Settings == (geometry.Settings{}) {
		o.Settings = geometry.DefaultSettings()
	}
	o.Settings = o.Settings.WithDefaults()
	if err := o.Settings.Validate(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ConventionValue returns the parsed width convention. It is only
// meaningful after ValidateAndSetDefaults.
func (o *Options) ConventionValue() optics.Convention {
	return o.conv
}

// EffectiveBeamline returns the beamline with the energy override applied.
func (o *Options) EffectiveBeamline() *beamline.Beamline {
	if o.Energy > 0 {
		return o.Beamline.WithEnergy(o.Energy)
	}
	return o.Beamline
}

// ReportKeyOpts returns cache key options for the report.
func (o *Options) ReportKeyOpts() cache.ReportKeyOpts {
	settings, _ := cache.HashJSON(o.Settings)
	return cache.ReportKeyOpts{
		Convention: o.Convention,
		Energy:     o.Energy,
		Symmetry:   o.Symmetry,
		Settings:   settings,
	}
}
