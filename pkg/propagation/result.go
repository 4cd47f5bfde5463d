package propagation

import "github.com/matzehuels/transfocator/pkg/optics"

// LensResult is everything computed at one lens. Sizes are in metres in
// the run's width convention.
type LensResult struct {
	Index    int     `json:"index"`
	Position float64 `json:"position"`
	Distance float64 `json:"distance"`

	L1 float64 `json:"L1"`
	L2 float64 `json:"L2"`
	F  float64 `json:"F"`

	SX   float64 `json:"sx"`
	SY   float64 `json:"sy"`
	SFPX float64 `json:"sfpx"`
	SFPY float64 `json:"sfpy"`
	ALX  float64 `json:"alx"`
	ALY  float64 `json:"aly"`
	SFX  float64 `json:"sfx"`
	SFY  float64 `json:"sfy"`

	T      float64 `json:"T"`
	TBlock float64 `json:"T_block"`
	M      float64 `json:"M"`
	MTotal float64 `json:"M_total"`
	G      float64 `json:"G"`
	GBlock float64 `json:"G_total"`

	Aeff       float64    `json:"aeff"`
	AeffSystem float64    `json:"aeff_system"`
	DiffLimit  float64    `json:"diff_limit"`
	DOFX       optics.DOF `json:"dof_x"`
	DOFY       optics.DOF `json:"dof_y"`

	Preset      string `json:"preset"`
	Material    string `json:"material"`
	TF          string `json:"tf_name"`
	Block       int    `json:"block_index"`
	InBlock     int    `json:"lens_index_in_block"`
	InTF        int    `json:"lens_index_in_tf"`
	FirstInTF   bool   `json:"is_first_in_tf"`
	LastInBlock bool   `json:"is_last_in_block"`
	LastInTF    bool   `json:"is_last_in_tf"`
}
