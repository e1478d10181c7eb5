// Package trend classifies the direction of an ordered series with a
// least-squares linear fit over its positions.
package trend

import "gonum.org/v1/gonum/stat"

// Direction is the classified movement of a series.
type Direction string

const (
	DirectionIncreasing       Direction = "increasing"
	DirectionDecreasing       Direction = "decreasing"
	DirectionStable           Direction = "stable"
	DirectionInsufficientData Direction = "insufficient_data"
)

// slopeThreshold separates stable from moving series. A fixed absolute
// threshold: series in small units will read stable more often than they
// should, large-unit series the opposite.
const slopeThreshold = 0.1

// Slope returns the least-squares slope of values against their positions
// 0..n-1. The second return is false when the series is too short to fit.
func Slope(values []float64) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}

	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}

	_, slope := stat.LinearRegression(xs, values, nil, false)
	return slope, true
}

// Classify fits a trend line to the series and buckets its slope. Fewer
// than two points cannot define a direction.
func Classify(values []float64) Direction {
	slope, ok := Slope(values)
	if !ok {
		return DirectionInsufficientData
	}

	switch {
	case slope > slopeThreshold:
		return DirectionIncreasing
	case slope < -slopeThreshold:
		return DirectionDecreasing
	default:
		return DirectionStable
	}
}
