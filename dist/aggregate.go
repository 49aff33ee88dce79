package dist

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// AggregateMean combines per-node gradient sets into one set, weighting
// each node by its sample count. Commutative over node order.
func AggregateMean(sets [][]*mat.Dense, samples []int) ([]*mat.Dense, error) {
	if len(sets) == 0 {
		return nil, errors.New("no gradient sets to aggregate")
	}
	if len(sets) != len(samples) {
		return nil, errors.Errorf("got %d gradient sets but %d sample counts", len(sets), len(samples))
	}
	total := 0
	for _, s := range samples {
		total += s
	}
	if total <= 0 {
		return nil, errors.New("aggregate over zero samples")
	}

	out := make([]*mat.Dense, len(sets[0]))
	for si, set := range sets {
		if len(set) != len(out) {
			return nil, errors.Errorf("gradient set %d has %d matrices, expected %d", si, len(set), len(out))
		}
		frac := float64(samples[si]) / float64(total)
		for mi, g := range set {
			if out[mi] == nil {
				r, c := g.Dims()
				out[mi] = mat.NewDense(r, c, nil)
			} else if r, c := g.Dims(); !sameDims(out[mi], r, c) {
				return nil, errors.Errorf("gradient set %d matrix %d shape mismatch", si, mi)
			}
			var scaled mat.Dense
			scaled.Scale(frac, g)
			out[mi].Add(out[mi], &scaled)
		}
	}
	return out, nil
}

func sameDims(m *mat.Dense, r, c int) bool {
	mr, mc := m.Dims()
	return mr == r && mc == c
}
