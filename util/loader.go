package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-mrf/images"
	"github.com/nvr-ai/go-mrf/motion"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
	// Frame is the frame number of the image file.
	Frame int
	// Width and Height are the expected frame size. Zero skips the check.
	Width  int
	Height int
}

// Image returns the file as an encoded image, its format taken from the
// extension.
func (f ImageFile) Image() images.Image {
	return images.Image{
		Format: images.FormatFromExtension(filepath.Ext(f.Path)),
		Data:   f.Data,
		Width:  f.Width,
		Height: f.Height,
	}
}

// Decode decodes the file contents into a grayscale frame, checking the
// expected size when one is set.
func (f ImageFile) Decode() (motion.Frame, error) {
	frame, err := images.DecodeImage(f.Image())
	if err != nil {
		return motion.Frame{}, errors.Wrapf(err, "decode %s", f.Path)
	}
	return frame, nil
}

// Pair is two consecutive frames of a sequence.
type Pair struct {
	// Previous is the frame at time t_k.
	Previous ImageFile
	// Next is the frame at time t_k+1.
	Next ImageFile
}

// LoadDirectoryImageFiles reads all image files from a directory.
//
// The frame number is the trailing run of digits in the file name, so
// "frame-12.png", "missa_12.tif" and "0012.jpg" are all frame 12. Files
// are returned in frame order.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: Slice of ImageFile, each containing the raw bytes of an image file.
// - error: Error if loading fails or a file name carries no frame number.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var imageFiles []ImageFile
	for _, file := range entries {
		if file.IsDir() {
			continue
		}

		ext := filepath.Ext(file.Name())
		if images.FormatFromExtension(ext) == images.FormatUnknown {
			continue
		}

		frame, err := frameNumber(strings.TrimSuffix(file.Name(), ext))
		if err != nil {
			return nil, err
		}
		imgPath := filepath.Join(dir, file.Name())
		data, readErr := os.ReadFile(imgPath)
		if readErr != nil {
			return nil, readErr
		}
		imageFiles = append(imageFiles, ImageFile{
			Path:  imgPath,
			Data:  data,
			Frame: frame,
		})
	}

	sort.SliceStable(imageFiles, func(i, j int) bool {
		return imageFiles[i].Frame < imageFiles[j].Frame
	})

	return imageFiles, nil
}

// LoadImageFile reads a single image file. Its frame number is parsed when
// present and 0 otherwise.
func LoadImageFile(path string) (ImageFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImageFile{}, err
	}
	name := filepath.Base(path)
	frame, _ := frameNumber(strings.TrimSuffix(name, filepath.Ext(name)))
	return ImageFile{Path: path, Data: data, Frame: frame}, nil
}

// Pairs returns the consecutive (t_k, t_k+1) pairs of an ordered sequence.
func Pairs(files []ImageFile) []Pair {
	if len(files) < 2 {
		return nil
	}
	pairs := make([]Pair, 0, len(files)-1)
	for i := 1; i < len(files); i++ {
		pairs = append(pairs, Pair{Previous: files[i-1], Next: files[i]})
	}
	return pairs
}

func frameNumber(stem string) (int, error) {
	end := len(stem)
	start := end
	for start > 0 && stem[start-1] >= '0' && stem[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, errors.Errorf("no frame number in %q", stem)
	}
	return strconv.Atoi(stem[start:end])
}
