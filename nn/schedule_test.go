package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstantRate(t *testing.T) {
	r := ConstantRate(0.3)
	assert.Equal(t, 0.3, r(1))
	assert.Equal(t, 0.3, r(100000))
}

func TestStepSchedule(t *testing.T) {
	s := StepRate(1.0).Add(100, 0.5).Add(1000, 0.1)
	assert.Equal(t, 1.0, s.Rate(1))
	assert.Equal(t, 1.0, s.Rate(99))
	assert.Equal(t, 0.5, s.Rate(100))
	assert.Equal(t, 0.5, s.Rate(999))
	assert.Equal(t, 0.1, s.Rate(1000))
	assert.Equal(t, 0.1, s.Rate(50000))
}

func TestPenalties(t *testing.T) {
	assert.InDelta(t, 0.1, L1(0.1).Penalize(3), 1e-12)
	assert.InDelta(t, -0.1, L1(0.1).Penalize(-3), 1e-12)
	assert.InDelta(t, 0.6, L2(0.1).Penalize(3), 1e-12)
	assert.InDelta(t, -0.6, L2(0.1).Penalize(-3), 1e-12)
	assert.Equal(t, "l1-lasso", L1(0.1).TypeString())
	assert.Equal(t, "l2-ridge", L2(0.1).TypeString())
}
