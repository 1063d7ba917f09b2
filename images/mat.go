package images

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-mrf/motion"
)

// FrameFromMat copies an OpenCV matrix into a grayscale frame.
//
// Arguments:
//   - mat: An 8-bit matrix with 1, 3 (BGR) or 4 (BGRA) channels.
//
// Returns:
//   - motion.Frame: The grayscale frame.
//   - error: An error if the matrix is empty or not 8-bit.
func FrameFromMat(mat gocv.Mat) (motion.Frame, error) {
	if mat.Empty() {
		return motion.Frame{}, errors.New("images: empty mat")
	}

	gray := mat
	switch mat.Channels() {
	case 1:
	case 3, 4:
		code := gocv.ColorBGRToGray
		if mat.Channels() == 4 {
			code = gocv.ColorBGRAToGray
		}
		gray = gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(mat, &gray, code)
	default:
		return motion.Frame{}, errors.Errorf("images: unsupported channel count %d", mat.Channels())
	}
	if gray.Type() != gocv.MatTypeCV8UC1 {
		return motion.Frame{}, errors.Errorf("images: unsupported mat type %v", gray.Type())
	}

	if !gray.IsContinuous() {
		continuous := gray.Clone()
		defer continuous.Close()
		gray = continuous
	}
	return motion.NewFrame(gray.Cols(), gray.Rows(), gray.ToBytes())
}

// GridToMat copies a frame, difference map or mask into a new CV_8UC1 matrix.
// The caller owns the returned Mat and must Close it.
func GridToMat(g motion.Grid) (gocv.Mat, error) {
	view, err := gocv.NewMatFromBytes(g.Height, g.Width, gocv.MatTypeCV8UC1, g.Pix)
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "images: wrap grid")
	}
	defer view.Close()
	// view borrows g.Pix; the clone owns its own buffer.
	return view.Clone(), nil
}
