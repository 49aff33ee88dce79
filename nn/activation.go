package nn

import (
	"fmt"
	"math"
)

// Activator is an elementwise nonlinearity paired with its derivative.
// Derivative takes the activation output rather than the weighted sum;
// every built-in activator can express its derivative that way, which saves
// keeping pre-activation sums around during backpropagation.
type Activator interface {
	Activate(sum float64) float64
	Derivative(out float64) float64
	fmt.Stringer
}

// ActivatorLookup maps activator names to implementations.
var ActivatorLookup = map[string]Activator{
	"sigmoid":  Sigmoid{},
	"tanh":     Tanh{},
	"relu":     ReLU{},
	"identity": Identity{},
}

type Sigmoid struct{}

func (Sigmoid) Activate(sum float64) float64 {
	return 1.0 / (1.0 + math.Exp(-sum))
}

func (Sigmoid) Derivative(out float64) float64 {
	return out * (1 - out)
}

func (Sigmoid) String() string { return "sigmoid" }

type Tanh struct{}

func (Tanh) Activate(sum float64) float64 {
	return math.Tanh(sum)
}

func (Tanh) Derivative(out float64) float64 {
	return 1 - out*out
}

func (Tanh) String() string { return "tanh" }

// ReLU is the leaky variant; the small negative slope keeps gradients
// alive for inactive units.
type ReLU struct{}

func (ReLU) Activate(sum float64) float64 {
	if sum < 0 {
		return 0.0001 * sum
	}
	return sum
}

func (ReLU) Derivative(out float64) float64 {
	if out < 0 {
		return 0.0001
	}
	return 1
}

func (ReLU) String() string { return "relu" }

// Identity passes sums through unchanged. Useful for linear output layers
// and for verifying convolution arithmetic.
type Identity struct{}

func (Identity) Activate(sum float64) float64   { return sum }
func (Identity) Derivative(out float64) float64 { return 1 }
func (Identity) String() string                 { return "identity" }
