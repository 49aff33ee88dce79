package nn

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

func (n *Network) weightPath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%d.wgt", n.id, i))
}

// SaveWeights writes one file per junction under dir, named
// "<id>-<junction>.wgt".
func (n *Network) SaveWeights(dir string) error {
	for i, w := range n.weights {
		f, err := os.Create(n.weightPath(dir, i))
		if err != nil {
			return errors.Wrapf(err, "creating weight file for junction %d", i)
		}
		_, err = w.MarshalBinaryTo(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return errors.Wrapf(err, "writing weights for junction %d", i)
		}
	}
	return nil
}

// LoadWeights restores a weight set saved by SaveWeights. Shapes must
// match the architecture.
func (n *Network) LoadWeights(dir string) error {
	for i := range n.weights {
		f, err := os.Open(n.weightPath(dir, i))
		if err != nil {
			return errors.Wrapf(err, "opening weight file for junction %d", i)
		}
		var w mat.Dense
		_, err = w.UnmarshalBinaryFrom(f)
		f.Close()
		if err != nil {
			return errors.Wrapf(err, "reading weights for junction %d", i)
		}
		wr, wc := n.weights[i].Dims()
		r, c := w.Dims()
		if r != wr || c != wc {
			return &ShapeError{What: fmt.Sprintf("junction %d weight file", i), Want: wr * wc, Got: r * c}
		}
		n.weights[i].Copy(&w)
	}
	return nil
}
