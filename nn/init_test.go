package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func mustValidate(t *testing.T, layers ...Layer) *Arch {
	t.Helper()
	arch, err := Validate(layers)
	require.NoError(t, err)
	return arch
}

func TestInitWeightsShapes(t *testing.T) {
	arch := mustValidate(t, Input(2), Dense(3, Sigmoid{}), Output(1, Sigmoid{}))
	ws, err := InitWeights(arch, nil)
	require.NoError(t, err)
	require.Len(t, ws, 2)

	r, c := ws[0].Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	r, c = ws[1].Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, 3, c)
}

func TestSeedDeterminism(t *testing.T) {
	arch := mustValidate(t, Input(4), Dense(5, Tanh{}), Output(2, Sigmoid{}))

	a, err := InitWeights(arch, Uniform(-1, 1).Seed(11))
	require.NoError(t, err)
	b, err := InitWeights(arch, Uniform(-1, 1).Seed(11))
	require.NoError(t, err)
	c, err := InitWeights(arch, Uniform(-1, 1).Seed(12))
	require.NoError(t, err)

	for i := range a {
		assert.True(t, mat.Equal(a[i], b[i]), "junction %d differs under equal seeds", i)
	}
	assert.False(t, mat.Equal(a[0], c[0]), "different seeds produced equal weights")
}

func TestUniformRange(t *testing.T) {
	arch := mustValidate(t, Input(10), Output(10, Sigmoid{}))
	ws, err := InitWeights(arch, Uniform(-0.25, 0.25).Seed(3))
	require.NoError(t, err)
	for _, v := range ws[0].RawMatrix().Data {
		assert.GreaterOrEqual(t, v, -0.25)
		assert.Less(t, v, 0.25)
	}
}

func TestZeroInit(t *testing.T) {
	arch := mustValidate(t, Input(3), Output(2, Sigmoid{}))
	ws, err := InitWeights(arch, Zero())
	require.NoError(t, err)
	for _, v := range ws[0].RawMatrix().Data {
		assert.Zero(t, v)
	}
}

func TestInitWeightsAllocError(t *testing.T) {
	arch := &Arch{layers: []Layer{Input(0), Output(1, Sigmoid{})}, focus: -1}
	_, err := InitWeights(arch, Zero())
	var allocErr *AllocError
	require.ErrorAs(t, err, &allocErr)
	assert.Equal(t, 0, allocErr.Junction)
}

func TestInitializerNames(t *testing.T) {
	assert.Equal(t, "uniform", Uniform(0, 1).TypeString())
	assert.Equal(t, "normal", Normal(1).TypeString())
	assert.Equal(t, "xavier", Xavier().TypeString())
	assert.Equal(t, "fan-in", FanIn().TypeString())
	assert.Equal(t, "zero", Zero().TypeString())
}
