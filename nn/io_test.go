package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSaveLoadWeights(t *testing.T) {
	dir := t.TempDir()
	layers := []Layer{Input(2), Dense(3, Tanh{}), Output(1, Sigmoid{})}

	src, err := New("net", layers, Settings{}, Uniform(-1, 1).Seed(4))
	require.NoError(t, err)
	require.NoError(t, src.SaveWeights(dir))

	dst, err := New("net", layers, Settings{}, Zero())
	require.NoError(t, err)
	require.NoError(t, dst.LoadWeights(dir))

	for i := range src.Weights() {
		assert.True(t, mat.Equal(src.Weights()[i], dst.Weights()[i]), "junction %d differs", i)
	}
}

func TestLoadWeightsShapeMismatch(t *testing.T) {
	dir := t.TempDir()
	src, err := New("net", []Layer{Input(2), Output(1, Sigmoid{})}, Settings{}, nil)
	require.NoError(t, err)
	require.NoError(t, src.SaveWeights(dir))

	dst, err := New("net", []Layer{Input(3), Output(1, Sigmoid{})}, Settings{}, nil)
	require.NoError(t, err)
	err = dst.LoadWeights(dir)
	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
}

func TestLoadWeightsMissingFile(t *testing.T) {
	net, err := New("net", []Layer{Input(2), Output(1, Sigmoid{})}, Settings{}, nil)
	require.NoError(t, err)
	assert.Error(t, net.LoadWeights(t.TempDir()))
}
