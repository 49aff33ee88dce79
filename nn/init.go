package nn

import (
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Initializer populates freshly allocated junction weights. fanIn and
// fanOut are the junction's column and row counts, for policies that scale
// by layer width.
type Initializer interface {
	TypeString() string
	Fill(ws []float64, fanIn, fanOut int)
}

// InitWeights produces one matrix per trainable junction of a validated
// architecture, populated per the policy. A nil policy defaults to
// Uniform(-0.5, 0.5).
func InitWeights(a *Arch, init Initializer) ([]*mat.Dense, error) {
	if init == nil {
		init = Uniform(-0.5, 0.5)
	}
	ws := make([]*mat.Dense, 0, a.junctions())
	for i := 1; i < len(a.layers); i++ {
		rows, cols := a.junctionDims(i)
		if rows <= 0 || cols <= 0 {
			return nil, &AllocError{Junction: i - 1, Rows: rows, Cols: cols}
		}
		data := make([]float64, rows*cols)
		init.Fill(data, cols, rows)
		ws = append(ws, mat.NewDense(rows, cols, data))
	}
	return ws, nil
}

func newSource() rand.Source {
	return rand.NewSource(uint64(time.Now().UnixNano()))
}

// UniformInit draws weights from a uniform distribution over [lo, hi).
type UniformInit struct {
	lo, hi float64
	src    rand.Source
}

// Uniform returns a uniform-range initializer.
func Uniform(lo, hi float64) *UniformInit {
	if lo > hi {
		lo, hi = hi, lo
	}
	return &UniformInit{lo: lo, hi: hi, src: newSource()}
}

// Seed makes the initializer deterministic: the same seed yields the same
// weights for the same architecture.
func (u *UniformInit) Seed(seed uint64) *UniformInit {
	u.src = rand.NewSource(seed)
	return u
}

func (u *UniformInit) TypeString() string { return "uniform" }

func (u *UniformInit) Fill(ws []float64, fanIn, fanOut int) {
	dist := distuv.Uniform{Min: u.lo, Max: u.hi, Src: u.src}
	for i := range ws {
		ws[i] = dist.Rand()
	}
}

// NormalInit draws weights from a zero-mean normal distribution.
type NormalInit struct {
	sigma float64
	src   rand.Source
}

// Normal returns a normal initializer with the given standard deviation.
func Normal(sigma float64) *NormalInit {
	return &NormalInit{sigma: sigma, src: newSource()}
}

func (n *NormalInit) Seed(seed uint64) *NormalInit {
	n.src = rand.NewSource(seed)
	return n
}

func (n *NormalInit) TypeString() string { return "normal" }

func (n *NormalInit) Fill(ws []float64, fanIn, fanOut int) {
	dist := distuv.Normal{Mu: 0, Sigma: n.sigma, Src: n.src}
	for i := range ws {
		ws[i] = dist.Rand()
	}
}

// XavierInit scales a normal draw by sqrt(2/(fanIn+fanOut)), keeping
// activation variance stable across layers of different widths.
type XavierInit struct {
	src rand.Source
}

func Xavier() *XavierInit { return &XavierInit{src: newSource()} }

func (x *XavierInit) Seed(seed uint64) *XavierInit {
	x.src = rand.NewSource(seed)
	return x
}

func (x *XavierInit) TypeString() string { return "xavier" }

func (x *XavierInit) Fill(ws []float64, fanIn, fanOut int) {
	dist := distuv.Normal{Mu: 0, Sigma: math.Sqrt(2 / float64(fanIn+fanOut)), Src: x.src}
	for i := range ws {
		ws[i] = dist.Rand()
	}
}

// FanInInit draws uniformly from ±1/sqrt(fanIn).
type FanInInit struct {
	src rand.Source
}

func FanIn() *FanInInit { return &FanInInit{src: newSource()} }

func (f *FanInInit) Seed(seed uint64) *FanInInit {
	f.src = rand.NewSource(seed)
	return f
}

func (f *FanInInit) TypeString() string { return "fan-in" }

func (f *FanInInit) Fill(ws []float64, fanIn, fanOut int) {
	bound := 1 / math.Sqrt(float64(fanIn))
	dist := distuv.Uniform{Min: -bound, Max: bound, Src: f.src}
	for i := range ws {
		ws[i] = dist.Rand()
	}
}

// ZeroInit leaves every weight at zero.
type ZeroInit struct{}

func Zero() ZeroInit { return ZeroInit{} }

func (ZeroInit) TypeString() string { return "zero" }

func (ZeroInit) Fill(ws []float64, fanIn, fanOut int) {
	for i := range ws {
		ws[i] = 0
	}
}
