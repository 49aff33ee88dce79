package nn

import "fmt"

// LayerKind discriminates the layer variants.
type LayerKind int

const (
	KindInput LayerKind = iota
	KindDense
	KindOutput
	KindConv
	KindFocus
)

func (k LayerKind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindDense:
		return "dense"
	case KindOutput:
		return "output"
	case KindConv:
		return "conv"
	case KindFocus:
		return "focus"
	}
	return "unknown"
}

// Dims describes a three-dimensional input volume, width x height x depth.
type Dims struct {
	W, H, Depth int
}

// Volume is the neuron count of the volume.
func (d Dims) Volume() int { return d.W * d.H * d.Depth }

// Layer is an immutable description of one network layer. Values are built
// through the constructor functions below and composed into an ordered
// sequence for Validate.
type Layer struct {
	kind    LayerKind
	neurons int
	act     Activator

	// convolution geometry
	in      Dims
	fieldW  int
	fieldH  int
	filters int
	stride  int
	padding int

	inner *Layer
}

// Input marks the start of a sequence; it carries only dimensionality.
func Input(neurons int) Layer {
	return Layer{kind: KindInput, neurons: neurons}
}

// Dense is a hidden fully-connected layer.
func Dense(neurons int, act Activator) Layer {
	return Layer{kind: KindDense, neurons: neurons, act: act}
}

// Output marks the end of a sequence.
func Output(neurons int, act Activator) Layer {
	return Layer{kind: KindOutput, neurons: neurons, act: act}
}

// Conv builds a convolution layer over the given input volume. The field,
// stride and padding must tile the padded volume exactly; infeasible
// geometry is rejected here, never at training time.
func Conv(in Dims, fieldW, fieldH, filters, stride, padding int, act Activator) (Layer, error) {
	if in.W <= 0 || in.H <= 0 || in.Depth <= 0 {
		return Layer{}, &ArchError{Index: -1, Reason: fmt.Sprintf("convolution input volume %dx%dx%d is not positive", in.W, in.H, in.Depth)}
	}
	if fieldW <= 0 || fieldH <= 0 || filters <= 0 || stride <= 0 || padding < 0 {
		return Layer{}, &ArchError{Index: -1, Reason: fmt.Sprintf("convolution parameters field=%dx%d filters=%d stride=%d padding=%d are not positive", fieldW, fieldH, filters, stride, padding)}
	}
	spanW := in.W + 2*padding - fieldW
	spanH := in.H + 2*padding - fieldH
	if spanW < 0 || spanH < 0 {
		return Layer{}, &ArchError{Index: -1, Reason: fmt.Sprintf("field %dx%d larger than padded input %dx%d", fieldW, fieldH, in.W+2*padding, in.H+2*padding)}
	}
	if spanW%stride != 0 || spanH%stride != 0 {
		return Layer{}, &ArchError{Index: -1, Reason: fmt.Sprintf("stride %d does not divide padded input %dx%d evenly under field %dx%d", stride, in.W+2*padding, in.H+2*padding, fieldW, fieldH)}
	}
	l := Layer{
		kind:    KindConv,
		act:     act,
		in:      in,
		fieldW:  fieldW,
		fieldH:  fieldH,
		filters: filters,
		stride:  stride,
		padding: padding,
	}
	l.neurons = l.OutDims().Volume()
	return l, nil
}

// Focus wraps an activated layer, marking its activation as the value
// Evaluate returns instead of the final output. Used for autoencoder-style
// embedding extraction.
func Focus(inner Layer) Layer {
	return Layer{kind: KindFocus, neurons: inner.neurons, act: inner.act, inner: &inner}
}

// Kind reports the layer variant.
func (l Layer) Kind() LayerKind { return l.kind }

// Neurons reports the layer's output dimensionality.
func (l Layer) Neurons() int { return l.neurons }

// Activator returns the layer's nonlinearity, nil for Input.
func (l Layer) Activator() Activator { return l.act }

// OutDims derives the output volume of a convolution layer from the
// standard convolution arithmetic. Zero for other kinds.
func (l Layer) OutDims() Dims {
	if l.kind != KindConv {
		return Dims{}
	}
	return Dims{
		W:     (l.in.W-l.fieldW+2*l.padding)/l.stride + 1,
		H:     (l.in.H-l.fieldH+2*l.padding)/l.stride + 1,
		Depth: l.filters,
	}
}

// effective unwraps Focus markers so forward/backward code sees the
// wrapped layer.
func (l Layer) effective() Layer {
	if l.kind == KindFocus {
		return *l.inner
	}
	return l
}

func (l Layer) String() string {
	switch l.kind {
	case KindConv:
		out := l.OutDims()
		return fmt.Sprintf("conv(%dx%dx%d -> %dx%dx%d, field %dx%d, stride %d, pad %d, %s)",
			l.in.W, l.in.H, l.in.Depth, out.W, out.H, out.Depth, l.fieldW, l.fieldH, l.stride, l.padding, l.act)
	case KindFocus:
		return fmt.Sprintf("focus(%s)", l.inner)
	}
	if l.act != nil {
		return fmt.Sprintf("%s(%d, %s)", l.kind, l.neurons, l.act)
	}
	return fmt.Sprintf("%s(%d)", l.kind, l.neurons)
}
