package dist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestAggregateMeanWeighted(t *testing.T) {
	a := []*mat.Dense{mat.NewDense(1, 2, []float64{1, 10})}
	b := []*mat.Dense{mat.NewDense(1, 2, []float64{5, 2})}

	got, err := AggregateMean([][]*mat.Dense{a, b}, []int{1, 3})
	require.NoError(t, err)
	// 0.25*a + 0.75*b
	assert.InDelta(t, 4, got[0].At(0, 0), 1e-12)
	assert.InDelta(t, 4, got[0].At(0, 1), 1e-12)
}

func TestAggregateMeanCommutative(t *testing.T) {
	a := []*mat.Dense{mat.NewDense(2, 2, []float64{1, 2, 3, 4})}
	b := []*mat.Dense{mat.NewDense(2, 2, []float64{-4, 0, 1, 2})}
	c := []*mat.Dense{mat.NewDense(2, 2, []float64{0.5, 0.5, 0.5, 0.5})}

	x, err := AggregateMean([][]*mat.Dense{a, b, c}, []int{2, 3, 5})
	require.NoError(t, err)
	y, err := AggregateMean([][]*mat.Dense{c, a, b}, []int{5, 2, 3})
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(x[0], y[0], 1e-12))
}

func TestAggregateMeanErrors(t *testing.T) {
	a := []*mat.Dense{mat.NewDense(1, 2, nil)}
	_, err := AggregateMean(nil, nil)
	assert.Error(t, err)

	_, err = AggregateMean([][]*mat.Dense{a}, []int{1, 2})
	assert.Error(t, err)

	_, err = AggregateMean([][]*mat.Dense{a}, []int{0})
	assert.Error(t, err)

	bad := []*mat.Dense{mat.NewDense(2, 2, nil)}
	_, err = AggregateMean([][]*mat.Dense{a, bad}, []int{1, 1})
	assert.Error(t, err)
}
