package nn

import (
	"gonum.org/v1/gonum/mat"

	"gradnet/tensor"
)

// sampleLoss is the mean squared error of one sample.
func sampleLoss(out, target []float64) float64 {
	sum := 0.0
	for i, o := range out {
		d := o - target[i]
		sum += d * d
	}
	return sum / float64(len(out))
}

// backprop walks the junctions back from the output and returns one
// gradient matrix per junction, shaped like the weights. acts must come
// from forward on the same weights.
func (n *Network) backprop(acts [][]float64, target []float64) []*mat.Dense {
	layers := n.arch.Layers()
	grads := make([]*mat.Dense, len(n.weights))

	out := acts[len(acts)-1]
	scale := 2 / float64(len(out))
	delta := make([]float64, len(out))
	outAct := layers[len(layers)-1].effective().act
	for k, o := range out {
		delta[k] = scale * (o - target[k]) * outAct.Derivative(o)
	}

	for i := len(layers) - 1; i >= 1; i-- {
		eff := layers[i].effective()
		var prev []float64
		if eff.kind == KindConv {
			grads[i-1], prev = convBackward(n.weights[i-1], acts[i-1], delta, eff)
		} else {
			g := mat.NewDense(len(delta), len(acts[i-1]), nil)
			g.Outer(1, mat.NewVecDense(len(delta), delta), mat.NewVecDense(len(acts[i-1]), acts[i-1]))
			grads[i-1] = g
			if i > 1 {
				pv := mat.NewVecDense(len(acts[i-1]), nil)
				pv.MulVec(n.weights[i-1].T(), mat.NewVecDense(len(delta), delta))
				prev = pv.RawVector().Data
			}
		}
		if i > 1 {
			prevAct := layers[i-1].effective().act
			for j := range prev {
				prev[j] *= prevAct.Derivative(acts[i-1][j])
			}
			delta = prev
		}
	}
	return grads
}

// convBackward accumulates the filter-bank gradient and the delta for the
// layer below from the output-volume delta.
func convBackward(w *mat.Dense, in, delta []float64, l Layer) (*mat.Dense, []float64) {
	vol := tensor.Wrap(in, l.in.Depth, l.in.H, l.in.W)
	out := l.OutDims()
	dout := tensor.Wrap(delta, out.Depth, out.H, out.W)
	_, cols := w.Dims()
	grad := mat.NewDense(l.filters, cols, nil)
	dvol := tensor.New(l.in.Depth, l.in.H, l.in.W)
	for f := 0; f < l.filters; f++ {
		for oy := 0; oy < out.H; oy++ {
			for ox := 0; ox < out.W; ox++ {
				d := dout.At(f, oy, ox)
				if d == 0 {
					continue
				}
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
							grad.Set(f, wi, grad.At(f, wi)+d*vol.At(c, iy, ix))
							dvol.Set(dvol.At(c, iy, ix)+d*w.At(f, wi), c, iy, ix)
						}
					}
				}
			}
		}
	}
	return grad, dvol.Data
}
