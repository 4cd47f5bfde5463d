// Package propagation folds the lens formulas of package optics over an
// assembled lens chain.
//
// A run starts from [Initial], built from the source, and applies
// [BeamState.Step] once per lens. Each step returns the lens's [LensResult]
// and a new [BeamState]; states are never modified in place, so a state can
// be kept, compared or resumed from freely.
//
// # Object Distance
//
// The first lens images the source directly: its object distance is its
// distance from the source. Every later lens images the previous lens's
// image point, so L1 = distance − L2_prev. L1 becomes negative when that
// image lies beyond the lens (a converging, virtual object) and is used as
// is.
//
// # Accumulators
//
// Transmission and gain are accumulated per transfocator. The running
// values reset on a lens flagged FirstInTF and are closed into TBlocks and
// GBlocks on a lens flagged LastInTF. Housing boundaries inside a vacuum
// transfocator do not reset anything.
package propagation
