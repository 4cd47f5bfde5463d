package geometry

import (
	"github.com/matzehuels/transfocator/pkg/beamline"
	"github.com/matzehuels/transfocator/pkg/materials"
)

// LensUnit is one active lens, fully resolved and positioned.
//
// Indices are 1-based. Block is the housing number within a vacuum
// transfocator (always 1 for an air array). Slot is the physical slot in
// the housing or array; InBlock and InTF count exported lenses only.
type LensUnit struct {
	Preset    string              `json:"preset"`
	R         float64             `json:"r"`
	A         float64             `json:"a"`
	Pitch     float64             `json:"pitch"`
	Gap       float64             `json:"gap"`
	Web       float64             `json:"web"`
	Material  string              `json:"material"`
	Density   float64             `json:"density"`
	Constants materials.Constants `json:"constants"`

	Position float64 `json:"position"` // absolute, m
	Distance float64 `json:"distance"` // from the previous active lens, m

	TF      string        `json:"tf"`
	Kind    beamline.Kind `json:"kind"`
	Block   int           `json:"block"`
	Slot    int           `json:"slot"`
	InBlock int           `json:"in_block"`
	InTF    int           `json:"in_tf"`

	FirstInTF   bool `json:"first_in_tf"`
	LastInBlock bool `json:"last_in_block"`
	LastInTF    bool `json:"last_in_tf"`
}

// Span is the extent of one transfocator along the beam.
type Span struct {
	TF       string        `json:"tf"`
	Kind     beamline.Kind `json:"kind"`
	Start    float64       `json:"start"`
	End      float64       `json:"end"`
	Slots    int           `json:"slots"`
	Active   int           `json:"active"`
	Housings []Interval    `json:"housings,omitempty"`
}

// Interval is a closed range [Start, End] in metres.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Chain is the assembled lens chain.
type Chain struct {
	Energy float64    `json:"energy"`
	Units  []LensUnit `json:"units"`
	Spans  []Span     `json:"spans"`
}
