package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Direction
	}{
		{"rising prices", []float64{10, 20, 30, 40}, DirectionIncreasing},
		{"falling prices", []float64{40, 30, 20, 10}, DirectionDecreasing},
		{"flat series", []float64{300, 300, 300, 300}, DirectionStable},
		{"noise within threshold", []float64{300, 300.05, 300.1, 300.2}, DirectionStable},
		{"single point", []float64{300}, DirectionInsufficientData},
		{"empty series", nil, DirectionInsufficientData},
		{"two points is enough", []float64{100, 200}, DirectionIncreasing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.values))
		})
	}
}

func TestSlope(t *testing.T) {
	slope, ok := Slope([]float64{0, 2, 4, 6})
	assert.True(t, ok)
	assert.InDelta(t, 2.0, slope, 1e-9)

	_, ok = Slope([]float64{5})
	assert.False(t, ok)
}
