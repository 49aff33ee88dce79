package nn

import (
	"gonum.org/v1/gonum/mat"

	"gradnet/tensor"
)

// forward computes per-layer activations for a single sample. acts[0] is
// the raw input; acts[i] is layer i's output after its activator.
func (n *Network) forward(input []float64) ([][]float64, error) {
	layers := n.arch.Layers()
	if want := layers[0].Neurons(); len(input) != want {
		return nil, &ShapeError{What: "input", Want: want, Got: len(input)}
	}
	acts := make([][]float64, len(layers))
	acts[0] = input
	for i := 1; i < len(layers); i++ {
		eff := layers[i].effective()
		var sums []float64
		if eff.kind == KindConv {
			sums = convForward(n.weights[i-1], acts[i-1], eff)
		} else {
			sums = denseForward(n.weights[i-1], acts[i-1])
		}
		for j, s := range sums {
			sums[j] = eff.act.Activate(s)
		}
		acts[i] = sums
	}
	return acts, nil
}

func denseForward(w *mat.Dense, in []float64) []float64 {
	rows, _ := w.Dims()
	out := mat.NewVecDense(rows, nil)
	out.MulVec(w, mat.NewVecDense(len(in), in))
	return out.RawVector().Data
}

// convForward slides each filter over the zero-padded input volume.
// Filter f's kernel lives in row f of the bank, flattened
// channel-major then row-major.
func convForward(w *mat.Dense, in []float64, l Layer) []float64 {
	vol := tensor.Wrap(in, l.in.Depth, l.in.H, l.in.W)
	out := l.OutDims()
	res := tensor.New(out.Depth, out.H, out.W)
	for f := 0; f < l.filters; f++ {
		for oy := 0; oy < out.H; oy++ {
			for ox := 0; ox < out.W; ox++ {
				sum := 0.0
				for c := 0; c < l.in.Depth; c++ {
					for ky := 0; ky < l.fieldH; ky++ {
						iy := oy*l.stride + ky - l.padding
						if iy < 0 || iy >= l.in.H {
							continue
						}
						for kx := 0; kx < l.fieldW; kx++ {
							ix := ox*l.stride + kx - l.padding
							if ix < 0 || ix >= l.in.W {
								continue
							}
							wi := c*l.fieldH*l.fieldW + ky*l.fieldW + kx
							sum += w.At(f, wi) * vol.At(c, iy, ix)
						}
					}
				}
				res.Set(sum, f, oy, ox)
			}
		}
	}
	return res.Data
}
