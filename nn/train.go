package nn

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Status is the terminal state of a training run.
type Status int

const (
	Converged Status = iota
	MaxIterationsReached
	Failed
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case MaxIterationsReached:
		return "max iterations reached"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Report summarizes a finished training run.
type Report struct {
	Status     Status
	Iterations int
	Error      float64
}

// Supervised trains on explicit input/target pairs until the loss drops
// under Settings.Precision or Settings.Iterations is exhausted.
type Supervised struct{}

func (Supervised) Train(net *Network, inputs, targets [][]float64) (Report, error) {
	if len(inputs) != len(targets) {
		return Report{Status: Failed}, &ShapeError{What: "targets", Want: len(inputs), Got: len(targets)}
	}
	warnFeedForward(net)
	return net.trainLoop(inputs, targets)
}

// Unsupervised trains the network to reproduce its own inputs, the
// autoencoder setup. Combine with a Focus layer to extract embeddings.
type Unsupervised struct{}

func (Unsupervised) Train(net *Network, inputs [][]float64) (Report, error) {
	warnFeedForward(net)
	return net.trainLoop(inputs, nil)
}

func warnFeedForward(net *Network) {
	if len(net.settings.Partitions) > 0 {
		net.settings.logf("partitions setting has no effect on feed-forward training, ignoring")
	}
}

func (n *Network) trainLoop(inputs, targets [][]float64) (Report, error) {
	s := &n.settings
	for iter := 1; ; iter++ {
		grads, loss, err := n.Gradients(inputs, targets)
		if err != nil {
			return Report{Status: Failed, Iterations: iter - 1}, err
		}
		if s.ErrorCurve != nil {
			fmt.Fprintf(s.ErrorCurve, "%d,%g\n", iter, loss)
		}
		s.debugf("iteration %d: loss %g", iter, loss)
		if loss <= s.Precision {
			return Report{Status: Converged, Iterations: iter, Error: loss}, nil
		}
		if iter >= s.Iterations {
			return Report{Status: MaxIterationsReached, Iterations: iter, Error: loss}, nil
		}
		n.applyUpdate(grads, s.LearningRate(iter), s.Regularization)
	}
}

// Gradients computes the averaged batch gradient and loss over the
// dataset, fanning samples out over Settings.Parallelism workers. A nil
// targets slice trains against the inputs themselves.
func (n *Network) Gradients(inputs, targets [][]float64) ([]*mat.Dense, float64, error) {
	if len(inputs) == 0 {
		return nil, 0, errors.New("empty training set")
	}
	if targets == nil {
		targets = inputs
	}
	layers := n.arch.Layers()
	outN := layers[len(layers)-1].Neurons()
	for s, tg := range targets {
		if len(tg) != outN {
			return nil, 0, &ShapeError{What: fmt.Sprintf("target %d", s), Want: outN, Got: len(tg)}
		}
	}
	if n.settings.Approximation != nil {
		return n.approxGradients(inputs, targets)
	}

	workers := n.settings.Parallelism
	if workers > len(inputs) {
		workers = len(inputs)
	}
	segs := ShardIndexes(len(inputs), workers)

	type partial struct {
		grads []*mat.Dense
		loss  float64
		err   error
	}
	results := make(chan partial, workers)
	for _, seg := range segs {
		go func(seg Segment) {
			var p partial
			for s := seg.Start; s < seg.End; s++ {
				acts, err := n.forward(inputs[s])
				if err != nil {
					p.err = err
					break
				}
				p.loss += sampleLoss(acts[len(acts)-1], targets[s])
				g := n.backprop(acts, targets[s])
				if p.grads == nil {
					p.grads = g
				} else {
					addInto(p.grads, g)
				}
			}
			results <- p
		}(seg)
	}

	var total []*mat.Dense
	loss := 0.0
	var firstErr error
	for range segs {
		p := <-results
		if p.err != nil {
			if firstErr == nil {
				firstErr = p.err
			}
			continue
		}
		loss += p.loss
		if total == nil {
			total = p.grads
		} else {
			addInto(total, p.grads)
		}
	}
	if firstErr != nil {
		return nil, 0, firstErr
	}
	inv := 1 / float64(len(inputs))
	scaleGrads(total, inv)
	return total, loss * inv, nil
}

func addInto(dst, src []*mat.Dense) {
	for i := range dst {
		dst[i].Add(dst[i], src[i])
	}
}

func scaleGrads(gs []*mat.Dense, f float64) {
	for _, g := range gs {
		g.Scale(f, g)
	}
}

// applyUpdate steps every weight against its gradient, adding the penalty
// term when regularization is configured.
func (n *Network) applyUpdate(grads []*mat.Dense, lr float64, pen Penalty) {
	for i, w := range n.weights {
		wd := w.RawMatrix().Data
		gd := grads[i].RawMatrix().Data
		if pen != nil {
			for j := range wd {
				wd[j] -= lr * (gd[j] + pen.Penalize(wd[j]))
			}
		} else {
			for j := range wd {
				wd[j] -= lr * gd[j]
			}
		}
	}
}
