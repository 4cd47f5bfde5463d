// Package geometry turns a [beamline.Beamline] into the ordered, positioned
// chain of active lenses that the propagation engine consumes.
//
// # Layout
//
// Transfocators are laid out in beam order. Each one starts at its
// configured position, or half its nominal length upstream of it when the
// position refers to its centre. A transfocator may not start before the
// previous one ends.
//
// Vacuum transfocators place each active group in its own housing of
// fixed length. The N lenses of a group are centred in the housing:
//
//	wall = (housing − N·p) / 2
//	z_i  = housing_start + wall + (i + 0.5)·p
//
// Consecutive housings are separated by a fixed gap. A group whose lenses
// do not fit is a configuration error.
//
// Air transfocators are a uniform array with slot pitch p + u starting at
// the transfocator's start.
//
// # Inactive Lenses
//
// Inactive slots keep their place in the layout but are not exported.
// Every exported [LensUnit] records its distance from the previous exported
// lens (or from the source for the first one), so skipping a slot widens
// the spacing instead of shifting later lenses.
package geometry
