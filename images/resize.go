package images

import (
	"github.com/nfnt/resize"

	"github.com/nvr-ai/go-mrf/motion"
)

// FitTo resamples a frame to exactly width×height using bilinear
// interpolation. A frame that already has that size is returned unchanged.
//
// The core refuses frame pairs of different sizes; callers that know both
// frames show the same scene at different resolutions use FitTo first.
func FitTo(f motion.Frame, width, height int) (motion.Frame, error) {
	if f.Width == width && f.Height == height {
		return f, nil
	}
	out := resize.Resize(uint(width), uint(height), GridToGray(f.Grid), resize.Bilinear)
	return FrameFromImage(out)
}

// Scale resamples a frame by factor, keeping at least one pixel per side.
func Scale(f motion.Frame, factor float64) (motion.Frame, error) {
	if factor == 1 || factor <= 0 {
		return f, nil
	}
	width := max(int(float64(f.Width)*factor+0.5), 1)
	height := max(int(float64(f.Height)*factor+0.5), 1)
	return FitTo(f, width, height)
}
