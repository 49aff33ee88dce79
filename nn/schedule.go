package nn

// ConstantRate returns a learning-rate schedule fixed at v.
func ConstantRate(v float64) func(int) float64 {
	return func(int) float64 { return v }
}

type rateStep struct {
	Iter int
	Val  float64
}

// StepSchedule is a piecewise-constant learning-rate schedule: the rate
// set by the latest step whose iteration has been reached applies.
type StepSchedule struct {
	steps []rateStep
}

// StepRate starts a schedule at base from iteration 0.
func StepRate(base float64) *StepSchedule {
	return &StepSchedule{steps: []rateStep{{0, base}}}
}

// Add appends a step taking effect at the given iteration, returning the
// same schedule for chaining. Steps must be added in iteration order.
func (s *StepSchedule) Add(iter int, val float64) *StepSchedule {
	s.steps = append(s.steps, rateStep{iter, val})
	return s
}

// Rate is the schedule function; assign it to Settings.LearningRate.
func (s *StepSchedule) Rate(iter int) float64 {
	for i := 1; i < len(s.steps); i++ {
		if s.steps[i].Iter > iter {
			return s.steps[i-1].Val
		}
	}
	return s.steps[len(s.steps)-1].Val
}
