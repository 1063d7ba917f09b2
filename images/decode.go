package images

import (
	"bytes"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-mrf/motion"
)

// ErrUnsupportedFormat is returned when the encoded bytes are in no format Decode handles.
var ErrUnsupportedFormat = errors.New("images: unsupported image format")

// Decode decodes an encoded image into a grayscale frame.
//
// JPEG and PNG use the standard library decoders, WebP uses chai2010/webp,
// and TIFF and BMP go through OpenCV. Colour images are reduced to luma.
//
// Arguments:
//   - data: The encoded image bytes.
//
// Returns:
//   - motion.Frame: The grayscale frame.
//   - error: ErrUnsupportedFormat, or the decoder error.
func Decode(data []byte) (motion.Frame, error) {
	format := DetectFormat(data)
	switch format {
	case FormatJPEG, FormatPNG, FormatWebP:
		img, err := decodeStd(format, data)
		if err != nil {
			return motion.Frame{}, errors.Wrapf(err, "decode %s", format)
		}
		return FrameFromImage(img)
	case FormatTIFF, FormatBMP:
		mat, err := gocv.IMDecode(data, gocv.IMReadGrayScale)
		if err != nil {
			return motion.Frame{}, errors.Wrapf(err, "decode %s", format)
		}
		defer mat.Close()
		return FrameFromMat(mat)
	}
	return motion.Frame{}, ErrUnsupportedFormat
}

// DecodeImage decodes an Image and checks its declared dimensions, if any.
// A size mismatch wraps motion.ErrDimensionMismatch.
func DecodeImage(img Image) (motion.Frame, error) {
	f, err := Decode(img.Data)
	if err != nil {
		return motion.Frame{}, err
	}
	if img.Width > 0 && img.Height > 0 && (f.Width != img.Width || f.Height != img.Height) {
		return motion.Frame{}, errors.Wrapf(motion.ErrDimensionMismatch, "declared %dx%d, decoded %dx%d",
			img.Width, img.Height, f.Width, f.Height)
	}
	return f, nil
}

func decodeStd(format ImageFormat, data []byte) (image.Image, error) {
	r := bytes.NewReader(data)
	switch format {
	case FormatJPEG:
		return jpeg.Decode(r)
	case FormatPNG:
		return png.Decode(r)
	case FormatWebP:
		return webp.Decode(r)
	}
	return nil, ErrUnsupportedFormat
}

// FrameFromImage converts any image.Image into a grayscale frame. Non-gray
// images are converted with color.GrayModel.
func FrameFromImage(img image.Image) (motion.Frame, error) {
	gray, ok := img.(*image.Gray)
	if !ok {
		b := img.Bounds()
		gray = image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	}
	return FrameFromGray(gray)
}

// FrameFromGray copies an *image.Gray into a frame, honouring its stride and bounds.
func FrameFromGray(gray *image.Gray) (motion.Frame, error) {
	b := gray.Bounds()
	width, height := b.Dx(), b.Dy()
	pix := make([]uint8, 0, width*height)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		start := gray.PixOffset(b.Min.X, y)
		pix = append(pix, gray.Pix[start:start+width]...)
	}
	return motion.NewFrame(width, height, pix)
}

// GridToGray copies a frame, difference map or mask into an *image.Gray.
func GridToGray(g motion.Grid) *image.Gray {
	gray := image.NewGray(g.Bounds())
	copy(gray.Pix, g.Pix)
	return gray
}

// EncodePNG encodes a grid as a grayscale PNG.
func EncodePNG(g motion.Grid) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, GridToGray(g)); err != nil {
		return nil, errors.Wrap(err, "encode png")
	}
	return buf.Bytes(), nil
}

// DecodeMask decodes a PNG written by EncodePNG back into a mask.
func DecodeMask(data []byte) (motion.Mask, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return motion.Mask{}, errors.Wrap(err, "decode mask png")
	}
	f, err := FrameFromImage(img)
	if err != nil {
		return motion.Mask{}, err
	}
	return motion.NewMask(f.Width, f.Height, f.Pix)
}
