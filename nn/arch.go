package nn

import "fmt"

// Arch is a layer sequence that has passed structural validation. It is
// the token required to allocate weights or construct a network; no weight
// matrices ever exist for a sequence that has not produced one.
type Arch struct {
	layers []Layer
	focus  int // index of the Focus layer, or -1
}

// Validate checks an ordered layer sequence for structural soundness:
// exactly one Input at position 0, an Output at the last position, an
// activator on every intermediate layer, at most one interior Focus, and
// convolution volumes that match their predecessor's neuron count.
// Pure; no weights are touched.
func Validate(layers []Layer) (*Arch, error) {
	if len(layers) < 2 {
		return nil, &ArchError{Index: -1, Reason: "need at least an input and an output layer"}
	}
	focus := -1
	last := len(layers) - 1
	for i, l := range layers {
		switch l.kind {
		case KindInput:
			if i != 0 {
				return nil, &ArchError{Index: i, Reason: "input layer must be first"}
			}
		case KindOutput:
			if i != last {
				return nil, &ArchError{Index: i, Reason: "output layer must be last"}
			}
		case KindFocus:
			if focus >= 0 {
				return nil, &ArchError{Index: i, Reason: "only one focus layer is allowed"}
			}
			if i == 0 || i == last {
				return nil, &ArchError{Index: i, Reason: "focus layer must be interior"}
			}
			focus = i
		}
		if i == 0 && l.kind != KindInput {
			return nil, &ArchError{Index: 0, Reason: "sequence must start with an input layer"}
		}
		if i == last && l.kind != KindOutput {
			return nil, &ArchError{Index: i, Reason: "sequence must end with an output layer"}
		}

		eff := l.effective()
		if eff.neurons <= 0 {
			return nil, &ArchError{Index: i, Reason: "layer has no neurons"}
		}
		if i > 0 && eff.act == nil {
			return nil, &ArchError{Index: i, Reason: "layer is missing an activator"}
		}
		if eff.kind == KindConv {
			if vol := eff.in.Volume(); vol != layers[i-1].Neurons() {
				return nil, &ArchError{Index: i, Reason: fmt.Sprintf("convolution input volume %d does not match %d neurons of the previous layer", vol, layers[i-1].Neurons())}
			}
		}
	}
	return &Arch{layers: append([]Layer(nil), layers...), focus: focus}, nil
}

// Layers exposes the validated sequence; callers must treat it as
// read-only.
func (a *Arch) Layers() []Layer { return a.layers }

// junctions is the number of trainable weight matrices.
func (a *Arch) junctions() int { return len(a.layers) - 1 }

// junctionDims returns the weight matrix shape feeding layer i. Dense and
// output junctions are (neurons out, neurons in); a convolution junction
// is a filter bank with one row-major flattened kernel per row.
func (a *Arch) junctionDims(i int) (rows, cols int) {
	eff := a.layers[i].effective()
	if eff.kind == KindConv {
		return eff.filters, eff.in.Depth * eff.fieldH * eff.fieldW
	}
	return eff.neurons, a.layers[i-1].Neurons()
}
