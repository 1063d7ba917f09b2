package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-mrf/motion"
)

func constant(t *testing.T, width, height int, v uint8) motion.Frame {
	t.Helper()
	pix := make([]uint8, width*height)
	for i := range pix {
		pix[i] = v
	}
	f, err := motion.NewFrame(width, height, pix)
	require.NoError(t, err)
	return f
}

func TestFitTo(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"downscale", 2, 2},
		{"upscale", 8, 6},
		{"change aspect", 3, 5},
	}

	src := constant(t, 4, 4, 100)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := FitTo(src, tt.width, tt.height)
			require.NoError(t, err)
			assert.Equal(t, tt.width, f.Width)
			assert.Equal(t, tt.height, f.Height)
			for _, v := range f.Pix {
				assert.Equal(t, uint8(100), v)
			}
		})
	}

	t.Run("same size is a no-op", func(t *testing.T) {
		f, err := FitTo(src, 4, 4)
		require.NoError(t, err)
		assert.Equal(t, src, f)
	})
}

func TestFitToMakesFramesComparable(t *testing.T) {
	engine, err := motion.NewThresholdEngine(motion.DefaultParameters(), motion.DefaultOptions())
	require.NoError(t, err)

	a := constant(t, 4, 4, 50)
	b := constant(t, 8, 8, 50)
	_, err = engine.AbsDifference(a, b)
	require.ErrorIs(t, err, motion.ErrDimensionMismatch)

	fitted, err := FitTo(b, a.Width, a.Height)
	require.NoError(t, err)
	diff, err := engine.AbsDifference(a, fitted)
	require.NoError(t, err)
	for _, v := range diff.Pix {
		assert.Zero(t, v)
	}
}

func TestScale(t *testing.T) {
	src := constant(t, 10, 6, 7)

	half, err := Scale(src, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 5, half.Width)
	assert.Equal(t, 3, half.Height)

	tiny, err := Scale(src, 0.01)
	require.NoError(t, err)
	assert.Equal(t, 1, tiny.Width)
	assert.Equal(t, 1, tiny.Height)

	same, err := Scale(src, 1)
	require.NoError(t, err)
	assert.Equal(t, src, same)
}
