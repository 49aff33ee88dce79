package nn

import "gonum.org/v1/gonum/mat"

// approxGradients estimates the batch gradient by central finite
// differences, perturbing every weight in turn. Cost grows with the weight
// count times the dataset size; meant for gradient verification, not
// production training.
func (n *Network) approxGradients(inputs, targets [][]float64) ([]*mat.Dense, float64, error) {
	eps := n.settings.Approximation.Epsilon
	if eps <= 0 {
		eps = 1e-5
	}
	base, err := n.batchLoss(inputs, targets)
	if err != nil {
		return nil, 0, err
	}
	grads := make([]*mat.Dense, len(n.weights))
	for i, w := range n.weights {
		r, c := w.Dims()
		g := mat.NewDense(r, c, nil)
		wd := w.RawMatrix().Data
		gd := g.RawMatrix().Data
		for j := range wd {
			orig := wd[j]
			wd[j] = orig + eps
			hi, err := n.batchLoss(inputs, targets)
			if err != nil {
				wd[j] = orig
				return nil, 0, err
			}
			wd[j] = orig - eps
			lo, err := n.batchLoss(inputs, targets)
			wd[j] = orig
			if err != nil {
				return nil, 0, err
			}
			gd[j] = (hi - lo) / (2 * eps)
		}
		grads[i] = g
	}
	return grads, base, nil
}

// batchLoss is the mean per-sample loss over the dataset.
func (n *Network) batchLoss(inputs, targets [][]float64) (float64, error) {
	total := 0.0
	for s, in := range inputs {
		acts, err := n.forward(in)
		if err != nil {
			return 0, err
		}
		total += sampleLoss(acts[len(acts)-1], targets[s])
	}
	return total / float64(len(inputs)), nil
}
