package motion

import "github.com/pkg/errors"

var (
	// ErrDimensionMismatch is returned when the two input frames differ in width or height.
	ErrDimensionMismatch = errors.New("motion: frame dimensions do not match")
	// ErrInvalidFrame is returned when a pixel buffer does not describe a width×height grid.
	ErrInvalidFrame = errors.New("motion: invalid frame")
	// ErrInvalidParameters is returned when the engine parameters cannot produce a threshold.
	ErrInvalidParameters = errors.New("motion: invalid parameters")
)

// checkDimensions fails fast before any computation begins.
func checkDimensions(a, b Frame) error {
	if a.SameSize(b.Grid) {
		return nil
	}
	return errors.Wrapf(ErrDimensionMismatch, "frame A is %dx%d, frame B is %dx%d",
		a.Width, a.Height, b.Width, b.Height)
}
