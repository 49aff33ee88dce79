// Package utils holds run configuration shared by the command-line
// entrypoints.
package utils

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"gradnet/nn"
)

// Config is the common knob set of the training commands.
type Config struct {
	Architecture []int
	Activator    string
	Iterations   int
	LearningRate float64
	Precision    float64
}

// ParseArchitecture reads a whitespace-separated list of layer sizes,
// e.g. "2 8 1".
func ParseArchitecture(archStr string) ([]int, error) {
	fields := strings.Fields(archStr)
	if len(fields) < 2 {
		return nil, errors.Errorf("architecture %q needs at least two layers", archStr)
	}
	sizes := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing layer size %q", f)
		}
		sizes[i] = n
	}
	return sizes, nil
}

// ParseBoundaries reads a comma-separated list of dataset split points,
// e.g. "50,100,150". An empty string is no boundaries.
func ParseBoundaries(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	boundaries := make([]int, len(parts))
	for i, p := range parts {
		b, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.Wrapf(err, "parsing partition boundary %q", p)
		}
		boundaries[i] = b
	}
	return boundaries, nil
}

// ValidateConfig rejects out-of-range settings before any allocation.
func ValidateConfig(c *Config) error {
	for i, n := range c.Architecture {
		if n <= 0 {
			return errors.Errorf("layer %d size %d must be positive", i, n)
		}
	}
	if _, ok := nn.ActivatorLookup[c.Activator]; !ok {
		return errors.Errorf("unknown activator %q", c.Activator)
	}
	if c.Iterations <= 0 {
		return errors.Errorf("iterations %d must be positive", c.Iterations)
	}
	if c.LearningRate <= 0 {
		return errors.Errorf("learning rate %g must be positive", c.LearningRate)
	}
	if c.Precision < 0 {
		return errors.Errorf("precision %g must not be negative", c.Precision)
	}
	return nil
}

// BuildLayers turns a size list into an input/dense/output sequence with
// one activator throughout.
func BuildLayers(sizes []int, act nn.Activator) []nn.Layer {
	layers := make([]nn.Layer, len(sizes))
	layers[0] = nn.Input(sizes[0])
	for i := 1; i < len(sizes)-1; i++ {
		layers[i] = nn.Dense(sizes[i], act)
	}
	layers[len(sizes)-1] = nn.Output(sizes[len(sizes)-1], act)
	return layers
}
