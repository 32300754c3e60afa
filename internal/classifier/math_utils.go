package classifier

import "math"

// argmax returns the first index holding the largest value.
func argmax(a []float64) int {
	best := 0
	for i := 1; i < len(a); i++ {
		if a[i] > a[best] {
			best = i
		}
	}
	return best
}

func logSumExp(a []float64) float64 {
	m := a[argmax(a)]
	if math.IsInf(m, -1) {
		return m
	}
	var sum float64
	for _, x := range a {
		sum += math.Exp(x - m)
	}
	return m + math.Log(sum)
}
