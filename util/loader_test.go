package util

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-mrf/images"
	"github.com/nvr-ai/go-mrf/motion"
)

func writePNG(t *testing.T, path string, v uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 4, 3))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestLoadDirectoryImages(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "frame-10.png"), 10)
	writePNG(t, filepath.Join(dir, "frame-2.png"), 2)
	writePNG(t, filepath.Join(dir, "frame-1.png"), 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	files, err := LoadDirectoryImageFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, []int{1, 2, 10}, []int{files[0].Frame, files[1].Frame, files[2].Frame})
	for _, img := range files {
		assert.Greater(t, len(img.Data), 0)
	}

	frame, err := files[2].Decode()
	require.NoError(t, err)
	assert.Equal(t, 4, frame.Width)
	assert.Equal(t, uint8(10), frame.At(0, 0))
}

func TestLoadDirectoryImagesRequiresFrameNumbers(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "background.png"), 0)

	_, err := LoadDirectoryImageFiles(dir)
	assert.Error(t, err)

	_, err = LoadDirectoryImageFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestLoadImageFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missa_50.png")
	writePNG(t, path, 50)

	f, err := LoadImageFile(path)
	require.NoError(t, err)
	assert.Equal(t, 50, f.Frame)
	assert.Equal(t, path, f.Path)

	_, err = LoadImageFile(filepath.Join(dir, "nope.png"))
	assert.Error(t, err)
}

func TestImageFileDecodeChecksSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame_3.png")
	writePNG(t, path, 30)
	f, err := LoadImageFile(path)
	require.NoError(t, err)

	img := f.Image()
	assert.Equal(t, images.FormatPNG, img.Format)
	assert.Zero(t, img.Width)

	tests := []struct {
		name          string
		width, height int
		wantErr       bool
	}{
		{"no expected size", 0, 0, false},
		{"matching size", 4, 3, false},
		{"different size", 3, 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := f
			f.Width, f.Height = tt.width, tt.height
			frame, err := f.Decode()
			if tt.wantErr {
				assert.ErrorIs(t, err, motion.ErrDimensionMismatch)
				assert.Contains(t, err.Error(), path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 4, frame.Width)
			assert.Equal(t, 3, frame.Height)
		})
	}
}

func TestPairs(t *testing.T) {
	files := []ImageFile{{Frame: 1}, {Frame: 2}, {Frame: 3}}
	pairs := Pairs(files)
	require.Len(t, pairs, 2)
	assert.Equal(t, 1, pairs[0].Previous.Frame)
	assert.Equal(t, 2, pairs[0].Next.Frame)
	assert.Equal(t, 2, pairs[1].Previous.Frame)
	assert.Equal(t, 3, pairs[1].Next.Frame)

	assert.Nil(t, Pairs(files[:1]))
	assert.Nil(t, Pairs(nil))
}

func TestFrameNumber(t *testing.T) {
	tests := []struct {
		stem    string
		want    int
		wantErr bool
	}{
		{"frame-12", 12, false},
		{"missa_1", 1, false},
		{"0007", 7, false},
		{"cam2_frame", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.stem, func(t *testing.T) {
			got, err := frameNumber(tt.stem)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
