package motion

import (
	"image"

	"github.com/pkg/errors"
)

const (
	// Static is the mask value of a pixel classified as not moving.
	Static uint8 = 0
	// Moving is the mask value of a pixel classified as moving.
	Moving uint8 = 255
)

// Grid is a width×height plane of 8-bit samples stored row-major.
//
// Grid values handed out by this package must be treated as read-only. The
// engine never writes to a Grid it did not allocate itself.
type Grid struct {
	// Width is the number of columns.
	Width int `json:"width" yaml:"width"`
	// Height is the number of rows.
	Height int `json:"height" yaml:"height"`
	// Pix holds Width*Height samples, row after row.
	Pix []uint8 `json:"-" yaml:"-"`
}

func newGrid(width, height int) Grid {
	return Grid{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// At returns the sample at the given row and column.
func (g Grid) At(row, col int) uint8 {
	return g.Pix[row*g.Width+col]
}

func (g Grid) set(row, col int, v uint8) {
	g.Pix[row*g.Width+col] = v
}

// In reports whether (row, col) lies inside the grid.
func (g Grid) In(row, col int) bool {
	return row >= 0 && row < g.Height && col >= 0 && col < g.Width
}

// SameSize reports whether both grids have identical width and height.
func (g Grid) SameSize(o Grid) bool {
	return g.Width == o.Width && g.Height == o.Height
}

// Bounds returns the grid extent as an image rectangle anchored at the origin.
func (g Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width, g.Height)
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	pix := make([]uint8, len(g.Pix))
	copy(pix, g.Pix)
	return Grid{Width: g.Width, Height: g.Height, Pix: pix}
}

// Frame is one 8-bit single-channel video frame.
type Frame struct {
	Grid
}

// NewFrame builds a Frame from a row-major pixel buffer. The buffer is copied
// so later writes by the caller do not leak into the frame.
//
// Arguments:
//   - width: Number of columns, must be positive.
//   - height: Number of rows, must be positive.
//   - pix: Exactly width*height samples.
//
// Returns:
//   - Frame: The frame.
//   - error: ErrInvalidFrame if the dimensions and buffer disagree.
func NewFrame(width, height int, pix []uint8) (Frame, error) {
	if err := validateBuffer(width, height, pix); err != nil {
		return Frame{}, err
	}
	g := newGrid(width, height)
	copy(g.Pix, pix)
	return Frame{Grid: g}, nil
}

// DifferenceMap holds |B−A| for every pixel of a frame pair. It is the
// evidence signal of every classifier and is never modified once built.
type DifferenceMap struct {
	Grid
}

// Mask is a binary classification: every cell is either Static or Moving.
type Mask struct {
	Grid
}

// NewMask builds a Mask from a row-major buffer holding only Static and
// Moving values.
func NewMask(width, height int, pix []uint8) (Mask, error) {
	if err := validateBuffer(width, height, pix); err != nil {
		return Mask{}, err
	}
	for i, v := range pix {
		if v != Static && v != Moving {
			return Mask{}, errors.Wrapf(ErrInvalidFrame, "mask value %d at offset %d is not binary", v, i)
		}
	}
	g := newGrid(width, height)
	copy(g.Pix, pix)
	return Mask{Grid: g}, nil
}

// Moving reports whether the pixel at (row, col) is classified as moving.
func (m Mask) Moving(row, col int) bool {
	return m.At(row, col) == Moving
}

// CountMoving returns the number of moving pixels.
func (m Mask) CountMoving() int {
	n := 0
	for _, v := range m.Pix {
		if v == Moving {
			n++
		}
	}
	return n
}

// MovingRatio returns the fraction of moving pixels in [0, 1].
func (m Mask) MovingRatio() float64 {
	if len(m.Pix) == 0 {
		return 0
	}
	return float64(m.CountMoving()) / float64(len(m.Pix))
}

func validateBuffer(width, height int, pix []uint8) error {
	if width <= 0 || height <= 0 {
		return errors.Wrapf(ErrInvalidFrame, "dimensions %dx%d must be positive", width, height)
	}
	if len(pix) != width*height {
		return errors.Wrapf(ErrInvalidFrame, "buffer holds %d samples, %dx%d needs %d",
			len(pix), width, height, width*height)
	}
	return nil
}
