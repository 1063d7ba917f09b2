package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeDifference(t *testing.T) {
	tests := []struct {
		name string
		diff DifferenceMap
		want DifferenceStats
	}{
		{"empty", DifferenceMap{}, DifferenceStats{}},
		{"single pixel", DifferenceMap{Grid: Grid{Width: 1, Height: 1, Pix: []uint8{7}}}, DifferenceStats{Mean: 7, Max: 7}},
		{
			"two rows",
			DifferenceMap{Grid: Grid{Width: 2, Height: 2, Pix: []uint8{2, 4, 4, 6}}},
			// Sample standard deviation of {2, 4, 4, 6}.
			DifferenceStats{Mean: 4, StdDev: 1.632993161855452, Max: 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SummarizeDifference(tt.diff)
			assert.InDelta(t, tt.want.Mean, got.Mean, 1e-9)
			assert.InDelta(t, tt.want.StdDev, got.StdDev, 1e-9)
			assert.Equal(t, tt.want.Max, got.Max)
		})
	}
}

func TestResultSummary(t *testing.T) {
	engine := newTestEngine(t, DefaultParameters(), DefaultOptions())
	a := constantFrame(t, 3, 3, 0)
	b := newTestFrame(t, 3, 3, 0, 0, 0, 0, 255, 0, 0, 0, 0)

	result, err := engine.Detect(a, b, DefaultIterations)
	require.NoError(t, err)

	s := result.Summary()
	assert.Equal(t, 3, s.Width)
	assert.Equal(t, 3, s.Height)
	assert.Equal(t, uint8(255), s.Difference.Max)
	assert.InDelta(t, 255.0/9, s.Difference.Mean, 1e-9)
	assert.InDelta(t, 1.0/9, s.Fixed, 1e-12)
	assert.InDelta(t, 1.0/9, s.Order4, 1e-12)
	assert.InDelta(t, 1.0/9, s.Order8, 1e-12)
}
