package propagation

import (
	"github.com/matzehuels/transfocator/pkg/errors"
	"github.com/matzehuels/transfocator/pkg/geometry"
	"github.com/matzehuels/transfocator/pkg/optics"
)

// Step propagates the beam through u, the index-th lens of the chain
// (1-based), and returns the lens result and the following state.
func (s BeamState) Step(u geometry.LensUnit, index int, conv optics.Convention, lambda float64) (LensResult, BeamState) {
	tBlock, gBlock := s.TBlock, s.GBlock
	if u.FirstInTF {
		tBlock, gBlock = 1, 0
	}

	delta, mu := u.Constants.Delta, u.Constants.Mu()

	first := s.atSource()
	l1 := u.Distance
	if !first {
		l1 = u.Distance - s.L2Prev
	}

	f := optics.FocalLength(u.R, delta, u.Pitch)
	l2 := optics.ImageDistance(f, l1)
	m := optics.Magnification(l1, l2)

	aeff := conv.EffectiveAperture(f, delta, mu)
	aeffSys := optics.CombinedEffectiveAperture(s.AeffPrev, aeff)

	var sfpx, sfpy float64
	if first {
		sfpx = optics.EntranceSizeFirstLens(l1, s.WX, s.SX)
		sfpy = optics.EntranceSizeFirstLens(l1, s.WY, s.SY)
	} else {
		sfpx = optics.EntranceSizeNextLens(s.L2Prev, s.AlxPrev, u.Distance)
		sfpy = optics.EntranceSizeNextLens(s.L2Prev, s.AlyPrev, u.Distance)
	}

	alx := optics.LimitingAperture(u.A, sfpx, aeff)
	aly := optics.LimitingAperture(u.A, sfpy, aeff)

	dl := optics.DiffractionLimit(l2, u.A, aeff, lambda)
	sfx := optics.FocusSize(m, s.SX, dl)
	sfy := optics.FocusSize(m, s.SY, dl)

	t := conv.Transmission(u.A, alx, aly, sfpx, sfpy, mu, u.Web)
	sbx := optics.StraightBeam(l1+l2, s.SX, s.WX)
	sby := optics.StraightBeam(l1+l2, s.SY, s.WY)
	g := optics.Gain(t, sbx, sby, sfx, sfy)

	tBlock = optics.TransmissionCombine(tBlock, t)
	gBlock = optics.GainCombine(gBlock, g)
	mTotal := s.MTotal * m

	res := LensResult{
		Index:       index,
		Position:    s.Z + u.Distance,
		Distance:    u.Distance,
		L1:          l1,
		L2:          l2,
		F:           f,
		SX:          s.SX,
		SY:          s.SY,
		SFPX:        sfpx,
		SFPY:        sfpy,
		ALX:         alx,
		ALY:         aly,
		SFX:         sfx,
		SFY:         sfy,
		T:           t,
		TBlock:      tBlock,
		M:           m,
		MTotal:      mTotal,
		G:           g,
		GBlock:      gBlock,
		Aeff:        aeff,
		AeffSystem:  aeffSys,
		DiffLimit:   dl,
		DOFX:        optics.DepthOfField(l2, sfx, alx, lambda, f, aeff),
		DOFY:        optics.DepthOfField(l2, sfy, aly, lambda, f, aeff),
		Preset:      u.Preset,
		Material:    u.Material,
		TF:          u.TF,
		Block:       u.Block,
		InBlock:     u.InBlock,
		InTF:        u.InTF,
		FirstInTF:   u.FirstInTF,
		LastInBlock: u.LastInBlock,
		LastInTF:    u.LastInTF,
	}

	next := BeamState{
		Z:        s.Z + u.Distance,
		WX:       s.WX - alx/f,
		WY:       s.WY - aly/f,
		SX:       sfx,
		SY:       sfy,
		MTotal:   mTotal,
		TBlock:   tBlock,
		GBlock:   gBlock,
		TTotal:   optics.TransmissionCombine(s.TTotal, t),
		GTotal:   optics.GainCombine(s.GTotal, g),
		TBlocks:  s.TBlocks,
		GBlocks:  s.GBlocks,
		L2Prev:   l2,
		AlxPrev:  alx,
		AlyPrev:  aly,
		AeffPrev: aeffSys,
	}
	if u.LastInTF {
		next.TBlocks = appendCopy(s.TBlocks, tBlock)
		next.GBlocks = appendCopy(s.GBlocks, gBlock)
	}
	return res, next
}

// Run is the outcome of propagating a whole chain.
type Run struct {
	Source     optics.SourceParams `json:"source"`
	Convention optics.Convention   `json:"convention"`
	Results    []LensResult        `json:"results"`
	Final      BeamState           `json:"final"`
}

// Engine propagates lens chains for one source and width convention.
type Engine struct {
	Source     optics.SourceParams
	Convention optics.Convention
}

// NewEngine creates an Engine.
func NewEngine(src optics.SourceParams, conv optics.Convention) *Engine {
	return &Engine{Source: src, Convention: conv}
}

// Run folds [BeamState.Step] over units. An empty chain is an error with
// code NO_RESULTS.
func (e *Engine) Run(units []geometry.LensUnit) (*Run, error) {
	if len(units) == 0 {
		return nil, errors.New(errors.ErrCodeNoResults, "no active lenses in the beam")
	}

	state := Initial(e.Source)
	results := make([]LensResult, 0, len(units))
	for i, u := range units {
		var res LensResult
		res, state = state.Step(u, i+1, e.Convention, e.Source.Wavelength)
		results = append(results, res)
	}
	return &Run{
		Source:     e.Source,
		Convention: e.Convention,
		Results:    results,
		Final:      state,
	}, nil
}
