package nn

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Network is a validated architecture bound to its weight matrices and
// settings. Construction goes through New; there is no way to obtain a
// Network whose layer sequence has not been validated.
type Network struct {
	id       string
	settings Settings
	arch     *Arch
	weights  []*mat.Dense
}

// New validates the layer sequence, allocates and initializes one weight
// matrix per junction, and binds the settings. A nil initializer uses
// Uniform(-0.5, 0.5).
func New(id string, layers []Layer, settings Settings, init Initializer) (*Network, error) {
	arch, err := Validate(layers)
	if err != nil {
		return nil, err
	}
	ws, err := InitWeights(arch, init)
	if err != nil {
		return nil, err
	}
	return &Network{
		id:       id,
		settings: settings.withDefaults(),
		arch:     arch,
		weights:  ws,
	}, nil
}

func (n *Network) ID() string { return n.id }

// Layers exposes the validated sequence; treat as read-only.
func (n *Network) Layers() []Layer { return n.arch.Layers() }

func (n *Network) Settings() Settings { return n.settings }

// Weights exposes the live junction matrices in layer order. Mutating them
// changes the network.
func (n *Network) Weights() []*mat.Dense { return n.weights }

// SetWeights copies a full replacement weight set into the network. The
// set must match the architecture junction for junction.
func (n *Network) SetWeights(ws []*mat.Dense) error {
	if len(ws) != len(n.weights) {
		return &ShapeError{What: "weight set", Want: len(n.weights), Got: len(ws)}
	}
	for i, w := range ws {
		wr, wc := n.weights[i].Dims()
		r, c := w.Dims()
		if r != wr || c != wc {
			return &ShapeError{What: fmt.Sprintf("junction %d weights", i), Want: wr * wc, Got: r * c}
		}
	}
	for i, w := range ws {
		n.weights[i].Copy(w)
	}
	return nil
}

// Evaluate runs a forward pass and returns the network's output: the final
// layer activation, or the focus layer activation when one is present.
func (n *Network) Evaluate(input []float64) ([]float64, error) {
	acts, err := n.forward(input)
	if err != nil {
		return nil, err
	}
	pick := len(acts) - 1
	if n.arch.focus >= 0 {
		pick = n.arch.focus
	}
	out := make([]float64, len(acts[pick]))
	copy(out, acts[pick])
	return out, nil
}

// String renders the network id, topology and every junction matrix.
func (n *Network) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "network %q\n", n.id)
	if n.settings.Renderer != nil {
		b.WriteString(n.settings.Renderer(n.arch.Layers()))
		b.WriteByte('\n')
	} else {
		for i, l := range n.arch.Layers() {
			fmt.Fprintf(&b, "  layer %d: %s\n", i, l)
		}
	}
	for i, w := range n.weights {
		fmt.Fprintf(&b, "  junction %d:\n    %v\n", i, mat.Formatted(w, mat.Prefix("    "), mat.Squeeze()))
	}
	return b.String()
}
