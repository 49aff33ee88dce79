package nn

import "math"

// Penalty is a regularization term added to each weight's gradient before
// the update step, discouraging large weights.
type Penalty interface {
	TypeString() string
	Penalize(w float64) float64
}

type l1 float64

// L1 returns a lasso penalty; lambda is a small value > 0.
func L1(lambda float64) Penalty {
	p := l1(lambda)
	return &p
}

func (p *l1) TypeString() string { return "l1-lasso" }

func (p *l1) Penalize(w float64) float64 {
	return float64(*p) * math.Copysign(1, w)
}

type l2 float64

// L2 returns a ridge penalty; lambda is a small value > 0.
func L2(lambda float64) Penalty {
	p := l2(lambda)
	return &p
}

func (p *l2) TypeString() string { return "l2-ridge" }

func (p *l2) Penalize(w float64) float64 {
	return 2 * float64(*p) * w
}
