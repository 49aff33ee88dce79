package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradnet/nn"
)

func TestParseArchitecture(t *testing.T) {
	sizes, err := ParseArchitecture("2 8 1")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 8, 1}, sizes)

	_, err = ParseArchitecture("2")
	assert.Error(t, err)
	_, err = ParseArchitecture("2 x 1")
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	good := Config{
		Architecture: []int{2, 4, 1},
		Activator:    "sigmoid",
		Iterations:   100,
		LearningRate: 0.5,
		Precision:    1e-3,
	}
	require.NoError(t, ValidateConfig(&good))

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero layer", func(c *Config) { c.Architecture = []int{2, 0, 1} }},
		{"unknown activator", func(c *Config) { c.Activator = "softmax" }},
		{"zero iterations", func(c *Config) { c.Iterations = 0 }},
		{"negative rate", func(c *Config) { c.LearningRate = -1 }},
		{"negative precision", func(c *Config) { c.Precision = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := good
			tt.mutate(&c)
			assert.Error(t, ValidateConfig(&c))
		})
	}
}

func TestParseBoundaries(t *testing.T) {
	bs, err := ParseBoundaries("50,100, 150")
	require.NoError(t, err)
	assert.Equal(t, []int{50, 100, 150}, bs)

	bs, err = ParseBoundaries("")
	require.NoError(t, err)
	assert.Nil(t, bs)

	_, err = ParseBoundaries("50,x")
	assert.Error(t, err)
}

func TestBuildLayers(t *testing.T) {
	layers := BuildLayers([]int{2, 4, 1}, nn.Tanh{})
	require.Len(t, layers, 3)
	assert.Equal(t, nn.KindInput, layers[0].Kind())
	assert.Equal(t, nn.KindDense, layers[1].Kind())
	assert.Equal(t, nn.KindOutput, layers[2].Kind())

	_, err := nn.Validate(layers)
	assert.NoError(t, err)
}

func TestSyntheticXORDeterministic(t *testing.T) {
	in1, tg1 := SyntheticXOR(50, 7)
	in2, tg2 := SyntheticXOR(50, 7)
	assert.Equal(t, in1, in2)
	assert.Equal(t, tg1, tg2)

	in3, _ := SyntheticXOR(50, 8)
	assert.NotEqual(t, in1, in3)

	for i, in := range in1 {
		require.Len(t, in, 2)
		require.Len(t, tg1[i], 1)
		label := tg1[i][0]
		assert.True(t, label == 0 || label == 1)
	}
}
