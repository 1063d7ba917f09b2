// Package images - Encoded image definitions and format detection for frame inputs.
package images

import "bytes"

// Image represents an encoded image with a format, data, width, and height.
type Image struct {
	// The format of the image.
	Format ImageFormat `json:"format" yaml:"format"`
	// The data of the image.
	Data []byte `json:"data" yaml:"data"`
	// The width of the image.
	Width int `json:"width" yaml:"width"`
	// The height of the image.
	Height int `json:"height" yaml:"height"`
}

// ImageFormat represents supported image formats
type ImageFormat string

// ImageFormat constants
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
	// FormatTIFF is the TIFF image format.
	FormatTIFF ImageFormat = "tiff"
	// FormatBMP is the BMP image format.
	FormatBMP ImageFormat = "bmp"
	// FormatUnknown is returned when the magic bytes match no supported format.
	FormatUnknown ImageFormat = ""
)

// DetectFormat sniffs the magic bytes at the start of data.
func DetectFormat(data []byte) ImageFormat {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return FormatJPEG
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return FormatPNG
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return FormatWebP
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return FormatTIFF
	case bytes.HasPrefix(data, []byte("BM")):
		return FormatBMP
	}
	return FormatUnknown
}

// FormatFromExtension maps a file extension (with dot) to an ImageFormat.
func FormatFromExtension(ext string) ImageFormat {
	switch ext {
	case ".jpg", ".jpeg", ".JPG", ".JPEG":
		return FormatJPEG
	case ".png", ".PNG":
		return FormatPNG
	case ".webp", ".WEBP":
		return FormatWebP
	case ".tif", ".tiff", ".TIF", ".TIFF":
		return FormatTIFF
	case ".bmp", ".BMP":
		return FormatBMP
	}
	return FormatUnknown
}
