package utils

import "golang.org/x/exp/rand"

// SyntheticXOR generates a noisy XOR dataset: inputs near the four corners
// of the unit square, targets 0 or 1. Deterministic for a given seed, so
// every process in a cluster can carve consistent shards from it.
func SyntheticXOR(samples int, seed uint64) (inputs, targets [][]float64) {
	rng := rand.New(rand.NewSource(seed))
	inputs = make([][]float64, samples)
	targets = make([][]float64, samples)
	for i := range inputs {
		a := float64(rng.Intn(2))
		b := float64(rng.Intn(2))
		noise := func() float64 { return (rng.Float64() - 0.5) * 0.1 }
		inputs[i] = []float64{a + noise(), b + noise()}
		if a != b {
			targets[i] = []float64{1}
		} else {
			targets[i] = []float64{0}
		}
	}
	return inputs, targets
}
