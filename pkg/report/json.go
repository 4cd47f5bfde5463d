package report

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/matzehuels/transfocator/pkg/errors"
	"github.com/matzehuels/transfocator/pkg/optics"
	"github.com/matzehuels/transfocator/pkg/propagation"
)

// Number is a float64 that survives JSON when it is not finite. An
// unfocused beam has L2 = +Inf, which encoding/json refuses; Number writes
// such values as the strings "Infinity", "-Infinity" and "NaN".
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	v := float64(n)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Infinity"`), nil
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (n *Number) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		switch s {
		case "Infinity", "Inf", "+Inf":
			*n = Number(math.Inf(1))
		case "-Infinity", "-Inf":
			*n = Number(math.Inf(-1))
		case "NaN":
			*n = Number(math.NaN())
		default:
			return errors.New(errors.ErrCodeInvalidFormat, "number %q is not Infinity, -Infinity or NaN", s)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Number(v)
	return nil
}

func numbers(xs []float64) []Number {
	out := make([]Number, len(xs))
	for i, x := range xs {
		out[i] = Number(x)
	}
	return out
}

func floats(xs []Number) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

type jsonDOF struct {
	Total       Number `json:"total"`
	Diffractive Number `json:"diffractive"`
	Geometric   Number `json:"geometric"`
}

func toJSONDOF(d optics.DOF) jsonDOF {
	return jsonDOF{Number(d.Total), Number(d.Diffractive), Number(d.Geometric)}
}

func (d jsonDOF) dof() optics.DOF {
	return optics.DOF{Total: float64(d.Total), Diffractive: float64(d.Diffractive), Geometric: float64(d.Geometric)}
}

type jsonLens struct {
	Index    int    `json:"index"`
	Position Number `json:"position"`
	Distance Number `json:"distance"`

	L1 Number `json:"L1"`
	L2 Number `json:"L2"`
	F  Number `json:"F"`

	SX   Number `json:"sx"`
	SY   Number `json:"sy"`
	SFPX Number `json:"sfpx"`
	SFPY Number `json:"sfpy"`
	ALX  Number `json:"alx"`
	ALY  Number `json:"aly"`
	SFX  Number `json:"sfx"`
	SFY  Number `json:"sfy"`

	T      Number `json:"T"`
	TBlock Number `json:"T_block"`
	M      Number `json:"M"`
	MTotal Number `json:"M_total"`
	G      Number `json:"G"`
	GBlock Number `json:"G_total"`

	Aeff       Number  `json:"aeff"`
	AeffSystem Number  `json:"aeff_system"`
	DiffLimit  Number  `json:"diff_limit"`
	DOFX       jsonDOF `json:"dof_x"`
	DOFY       jsonDOF `json:"dof_y"`

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

func toJSONLens(r propagation.LensResult) jsonLens {
	return jsonLens{
		Index: r.Index, Position: Number(r.Position), Distance: Number(r.Distance),
		L1: Number(r.L1), L2: Number(r.L2), F: Number(r.F),
		SX: Number(r.SX), SY: Number(r.SY), SFPX: Number(r.SFPX), SFPY: Number(r.SFPY),
		ALX: Number(r.ALX), ALY: Number(r.ALY), SFX: Number(r.SFX), SFY: Number(r.SFY),
		T: Number(r.T), TBlock: Number(r.TBlock), M: Number(r.M), MTotal: Number(r.MTotal),
		G: Number(r.G), GBlock: Number(r.GBlock),
		Aeff: Number(r.Aeff), AeffSystem: Number(r.AeffSystem), DiffLimit: Number(r.DiffLimit),
		DOFX: toJSONDOF(r.DOFX), DOFY: toJSONDOF(r.DOFY),
		Preset: r.Preset, Material: r.Material, TF: r.TF,
		Block: r.Block, InBlock: r.InBlock, InTF: r.InTF,
		FirstInTF: r.FirstInTF, LastInBlock: r.LastInBlock, LastInTF: r.LastInTF,
	}
}

func (j jsonLens) lens() propagation.LensResult {
	return propagation.LensResult{
		Index: j.Index, Position: float64(j.Position), Distance: float64(j.Distance),
		L1: float64(j.L1), L2: float64(j.L2), F: float64(j.F),
		SX: float64(j.SX), SY: float64(j.SY), SFPX: float64(j.SFPX), SFPY: float64(j.SFPY),
		ALX: float64(j.ALX), ALY: float64(j.ALY), SFX: float64(j.SFX), SFY: float64(j.SFY),
		T: float64(j.T), TBlock: float64(j.TBlock), M: float64(j.M), MTotal: float64(j.MTotal),
		G: float64(j.G), GBlock: float64(j.GBlock),
		Aeff: float64(j.Aeff), AeffSystem: float64(j.AeffSystem), DiffLimit: float64(j.DiffLimit),
		DOFX: j.DOFX.dof(), DOFY: j.DOFY.dof(),
		Preset: j.Preset, Material: j.Material, TF: j.TF,
		Block: j.Block, InBlock: j.InBlock, InTF: j.InTF,
		FirstInTF: j.FirstInTF, LastInBlock: j.LastInBlock, LastInTF: j.LastInTF,
	}
}

type jsonSymmetry struct {
	Found    bool   `json:"found"`
	Z        Number `json:"z"`
	Position Number `json:"position"`
	Size     Number `json:"size"`
	Residual Number `json:"residual"`
}

type jsonReport struct {
	Energy        Number            `json:"energy"`
	Wavelength    Number            `json:"wavelength"`
	Convention    optics.Convention `json:"convention"`
	FinalPosition Number            `json:"final_pos"`
	L2            Number            `json:"L2"`
	MTotal        Number            `json:"M_total"`
	T             Number            `json:"T"`
	G             Number            `json:"G"`
	SizeX         Number            `json:"size_x"`
	SizeY         Number            `json:"size_y"`
	TBlocks       []Number          `json:"T_blocks"`
	GBlocks       []Number          `json:"G_blocks"`
	DOFX          jsonDOF           `json:"dof_x"`
	DOFY          jsonDOF           `json:"dof_y"`
	Symmetry      *jsonSymmetry     `json:"symmetry,omitempty"`
	History       []jsonLens        `json:"full_history"`
	GeneratedAt   time.Time         `json:"generated_at"`
}

// MarshalJSON writes the report with the field names energy, final_pos,
// L2, M_total, T, G, size_x, size_y and full_history.
func (r Report) MarshalJSON() ([]byte, error) {
	j := jsonReport{
		Energy:        Number(r.Energy),
		Wavelength:    Number(r.Wavelength),
		Convention:    r.Convention,
		FinalPosition: Number(r.FinalPosition),
		L2:            Number(r.L2),
		MTotal:        Number(r.MTotal),
		T:             Number(r.T),
		G:             Number(r.G),
		SizeX:         Number(r.SizeX),
		SizeY:         Number(r.SizeY),
		TBlocks:       numbers(r.TBlocks),
		GBlocks:       numbers(r.GBlocks),
		DOFX:          toJSONDOF(r.DOFX),
		DOFY:          toJSONDOF(r.DOFY),
		History:       make([]jsonLens, len(r.History)),
		GeneratedAt:   r.GeneratedAt,
	}
	if s := r.Symmetry; s != nil {
		j.Symmetry = &jsonSymmetry{s.Found, Number(s.Z), Number(s.Position), Number(s.Size), Number(s.Residual)}
	}
	for i, l := range r.History {
		j.History[i] = toJSONLens(l)
	}
	return json.Marshal(j)
}

func (r *Report) UnmarshalJSON(data []byte) error {
	var j jsonReport
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*r = Report{
		Energy:        float64(j.Energy),
		Wavelength:    float64(j.Wavelength),
		Convention:    j.Convention,
		FinalPosition: float64(j.FinalPosition),
		L2:            float64(j.L2),
		MTotal:        float64(j.MTotal),
		T:             float64(j.T),
		G:             float64(j.G),
		SizeX:         float64(j.SizeX),
		SizeY:         float64(j.SizeY),
		TBlocks:       floats(j.TBlocks),
		GBlocks:       floats(j.GBlocks),
		DOFX:          j.DOFX.dof(),
		DOFY:          j.DOFY.dof(),
		History:       make([]propagation.LensResult, len(j.History)),
		GeneratedAt:   j.GeneratedAt,
	}
	if s := j.Symmetry; s != nil {
		r.Symmetry = &Symmetry{s.Found, float64(s.Z), float64(s.Position), float64(s.Size), float64(s.Residual)}
	}
	for i, l := range j.History {
		r.History[i] = l.lens()
	}
	return nil
}
