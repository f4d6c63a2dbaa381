package calculator

import (
	"errors"
	"math"
)

// ErrInvalidPeriod is returned for non-positive window lengths.
var ErrInvalidPeriod = errors.New("period must be positive")

// RollingMean returns the trailing mean of values at every index.
// The window is left-truncated at the start of the series, so the first
// period-1 points average over whatever history exists instead of being
// undefined.
func RollingMean(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	out := make([]float64, len(values))
	for i := range values {
		start := i - period + 1
		if start < 0 {
			start = 0
		}
		sum := 0.0
		for j := start; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(i-start+1)
	}
	return out, nil
}

// Diff returns values[i] - values[i-1]. The first element is NaN.
func Diff(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = values[i] - values[i-1]
	}
	return out
}
