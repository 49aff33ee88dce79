package nn

import (
	"io"
	"log"

	"gradnet/dist"
)

// Approximation switches gradient computation to a central finite
// difference with the given epsilon. Epsilon <= 0 falls back to 1e-5.
// Slow; intended for verifying analytic gradients on small networks.
type Approximation struct {
	Epsilon float64
}

// Settings carries everything about a network that is not architecture or
// weights. The zero value is usable; withDefaults fills the gaps.
type Settings struct {
	// Verbose enables debug-level log lines.
	Verbose bool

	// LearningRate maps an iteration number to a step size. See
	// ConstantRate and StepRate. Defaults to ConstantRate(0.01).
	LearningRate func(iter int) float64

	// Precision is the loss threshold under which training is converged.
	Precision float64

	// Iterations caps the number of training rounds. Defaults to 1000.
	Iterations int

	// Parallelism bounds concurrent gradient workers. Defaults to 1.
	Parallelism int

	// Coordinator is this process's own address for distributed runs.
	Coordinator dist.Node

	// Transport tunes wire chunking for distributed runs.
	Transport dist.Transport

	// ErrorCurve, when set, receives one "iteration,loss" CSV line per
	// training round.
	ErrorCurve io.Writer

	// Regularization, when set, is added to every gradient.
	Regularization Penalty

	// Approximation, when set, replaces backpropagation.
	Approximation *Approximation

	// Partitions are dataset split points for sharded training. Ignored
	// with a warning by the feed-forward strategies.
	Partitions []int

	// Specifics holds strategy-specific knobs keyed by name.
	Specifics map[string]interface{}

	// Renderer, when set, overrides the default topology line in String.
	Renderer func(layers []Layer) string

	// Log receives progress lines; defaults to the standard logger.
	Log *log.Logger
}

func (s Settings) withDefaults() Settings {
	if s.LearningRate == nil {
		s.LearningRate = ConstantRate(0.01)
	}
	if s.Iterations <= 0 {
		s.Iterations = 1000
	}
	if s.Parallelism <= 0 {
		s.Parallelism = 1
	}
	s.Transport = s.Transport.WithDefaults()
	if s.Log == nil {
		s.Log = log.Default()
	}
	return s
}

func (s *Settings) logf(format string, args ...interface{}) {
	s.Log.Printf(format, args...)
}

func (s *Settings) debugf(format string, args ...interface{}) {
	if s.Verbose {
		s.Log.Printf(format, args...)
	}
}
