// Package beamline describes what sits in the beam: the photon source and the
// transfocators (TF) downstream of it.
//
// A [Beamline] is the user-level description of an experiment. It is
// deliberately free of derived quantities: lens positions, distances and
// optical constants are computed later by the geometry assembler.
//
// # Transfocators
//
// A transfocator is one of two tagged variants implementing [TF]:
//
//   - [VacuumTF]: lenses mounted in fixed-length housings, one housing per
//     active [Group]
//   - [AirTF]: a continuous in-air array of [Slot] entries at constant pitch
//
// Both carry an axial position and a Center flag. With Center set the
// position refers to the middle of the transfocator's nominal length
// rather than its upstream edge.
//
// # Files
//
// Beamlines are read from TOML (the usual format) or JSON with [Load]:
//
//	[source]
//	energy = 10300
//	sx = 77.47
//
//	[[tf]]
//	name = "TF1"
//	type = "vacuum"
//	position = 27.075
//	center = true
//	  [[tf.groups]]
//	  n = 2
//	  preset = "R500"
//
// Unknown keys are rejected and [Beamline.Validate] reports every problem it
// finds, not just the first.
package beamline
