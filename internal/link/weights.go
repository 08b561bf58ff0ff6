package link

import (
	"math"
	"math/rand/v2"
)

// WeightBudget is the sum every weight vector is normalised to
const WeightBudget = math.MaxUint32 / 2

// ExpWeights draws n independent exponential weights normalised to WeightBudget.
// The heavy tail yields a few hub nodes and many low-degree ones.
func ExpWeights(rng *rand.Rand, n int) []uint32 {
	if n <= 0 {
		return []uint32{}
	}

	samples := make([]float64, n)
	var sum float64
	for i := range samples {
		samples[i] = rng.ExpFloat64()
		sum += samples[i]
	}

	weights := make([]uint32, n)
	if sum == 0 {
		for i := range weights {
			weights[i] = uint32(WeightBudget / n)
		}
		return weights
	}

	for i, sample := range samples {
		weights[i] = uint32(math.Floor(sample / sum * WeightBudget))
	}
	return weights
}
