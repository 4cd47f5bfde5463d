// Package optics implements the paraxial and diffractive physics of a single
// compound refractive lens (CRL) and the rules for combining lenses.
//
// Every function is pure: inputs are plain float64 values in SI units (metres,
// radians, electronvolts) and nothing is cached or mutated. The few formulas
// whose result depends on how beam widths are expressed (FWHM or RMS sigma)
// hang off [Convention], so a run picks its width convention once and threads
// the value through every consumer.
//
// # Degenerate Cases
//
// Degenerate geometry is answered with mathematical infinity rather than an
// error, so a propagation run never aborts halfway through a chain:
//
//   - [ImageDistance] returns +Inf when the object sits at the focal point
//   - [EntranceSizeNextLens] returns +Inf when the previous image distance is 0
//   - [DepthOfField] returns a +Inf geometric term when the limiting aperture is 0,
//     and all zeros when the focal length is 0
//
// # Combination Rules
//
// Transmission combines by plain product ([TransmissionCombine]) while gain
// combines in quadrature ([GainCombine]). The asymmetry is deliberate and both
// the per-transfocator and system-wide totals use the same pair of rules.
package optics
