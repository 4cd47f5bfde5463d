package geometry

import (
	"github.com/matzehuels/transfocator/pkg/beamline"
	"github.com/matzehuels/transfocator/pkg/errors"
)

// fitTolerance absorbs rounding in N·p against the housing length.
const fitTolerance = 1e-12

// placed is a laid-out slot before material resolution.
type placed struct {
	z     float64
	lens  beamline.Slot
	block int
	slot  int
	gap   float64
}

// Start returns the absolute upstream edge of tf.
func (s Settings) Start(tf beamline.TF) float64 {
	pos, center := tf.Placement()
	if center {
		return pos - s.NominalLength(tf.Kind())/2
	}
	return pos
}

// NominalLength is the physical length of a transfocator of kind k.
func (s Settings) NominalLength(k beamline.Kind) float64 {
	if k == beamline.KindAir {
		return s.AirNominalLength
	}
	return s.VacuumNominalLength
}

// layoutVacuum places every slot of every active group of t.
func layoutVacuum(t *beamline.VacuumTF, start float64, s Settings) ([]placed, Span, error) {
	span := Span{TF: t.Name, Kind: beamline.KindVacuum, Start: start, End: start + s.VacuumNominalLength}

	var out []placed
	for h, g := range t.ActiveGroups() {
		slots := g.Slots()
		n := len(slots)
		if n > s.MaxPerHousing {
			return nil, Span{}, errors.New(errors.ErrCodeInvalidGeometry,
				"%s housing %d: %d lenses exceed capacity of %d", t.Name, h+1, n, s.MaxPerHousing)
		}
		if float64(n)*s.Pitch > s.HousingLength+fitTolerance {
			return nil, Span{}, errors.New(errors.ErrCodeInvalidGeometry,
				"%s housing %d: %d lenses × %.4g m pitch exceed housing length %.4g m", t.Name, h+1, n, s.Pitch, s.HousingLength)
		}

		hs := start + float64(h)*(s.HousingLength+s.HousingGap)
		wall := (s.HousingLength - float64(n)*s.Pitch) / 2
		for i, slot := range slots {
			out = append(out, placed{
				z:     hs + wall + (float64(i)+0.5)*s.Pitch,
				lens:  slot,
				block: h + 1,
				slot:  i + 1,
				gap:   s.VacuumGap,
			})
		}
		he := hs + s.HousingLength
		span.Housings = append(span.Housings, Interval{Start: hs, End: he})
		span.End = max(span.End, he)
	}
	span.Slots = len(out)
	return out, span, nil
}

// layoutAir places the slots of t at pitch p + u from start.
func layoutAir(t *beamline.AirTF, start float64, s Settings) ([]placed, Span) {
	step := s.Pitch + s.AirGap
	span := Span{TF: t.Name, Kind: beamline.KindAir, Start: start, End: start + s.AirNominalLength, Slots: len(t.Slots)}

	out := make([]placed, len(t.Slots))
	for k, slot := range t.Slots {
		out[k] = placed{
			z:     start + float64(k)*step,
			lens:  slot,
			block: 1,
			slot:  k + 1,
			gap:   s.AirGap,
		}
	}
	// An array longer than the nominal mount still occupies the beamline
	// up to its last lens, and the overlap check must see that.
	if n := len(out); n > 0 {
		span.End = max(span.End, out[n-1].z+s.Pitch)
	}
	return out, span
}
