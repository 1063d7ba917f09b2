package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-mrf/motion"
)

func TestGridMatRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := motion.Grid{Width: 4, Height: 2, Pix: []uint8{0, 10, 20, 30, 40, 50, 60, 70}}
	mat, err := GridToMat(g)
	require.NoError(t, err)
	defer mat.Close()

	assert.Equal(t, 2, mat.Rows())
	assert.Equal(t, 4, mat.Cols())
	assert.Equal(t, uint8(50), mat.GetUCharAt(1, 1))
	want := ComputeChecksum(g)
	assert.Equal(t, want, ComputeMatChecksum(mat))

	// The matrix owns its data.
	g.Pix[0] = 99
	assert.Equal(t, uint8(0), mat.GetUCharAt(0, 0))
	assert.Equal(t, want, ComputeMatChecksum(mat))
	assert.NotEqual(t, want, ComputeChecksum(g))

	f, err := FrameFromMat(mat)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 10, 20, 30, 40, 50, 60, 70}, f.Pix)
	assert.Equal(t, want, ComputeChecksum(f.Grid))
}

func TestFrameFromMatColour(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mat := gocv.NewMatWithSize(3, 5, gocv.MatTypeCV8UC3)
	defer mat.Close()
	mat.SetTo(gocv.NewScalar(90, 90, 90, 0))

	f, err := FrameFromMat(mat)
	require.NoError(t, err)
	assert.Equal(t, 5, f.Width)
	assert.Equal(t, 3, f.Height)
	for _, v := range f.Pix {
		assert.Equal(t, uint8(90), v)
	}
	assert.NotEqual(t, ComputeChecksum(f.Grid), ComputeMatChecksum(mat),
		"channel count is part of the digest")
}

func TestFrameFromMatEmpty(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mat := gocv.NewMat()
	defer mat.Close()
	_, err := FrameFromMat(mat)
	assert.Error(t, err)
	assert.Equal(t, "empty", ComputeMatChecksum(mat))
}

func TestComputeChecksum(t *testing.T) {
	a := motion.Grid{Width: 2, Height: 3, Pix: []uint8{1, 2, 3, 4, 5, 6}}
	b := motion.Grid{Width: 3, Height: 2, Pix: []uint8{1, 2, 3, 4, 5, 6}}

	assert.Equal(t, ComputeChecksum(a), ComputeChecksum(a.Clone()))
	assert.NotEqual(t, ComputeChecksum(a), ComputeChecksum(b))
	assert.Equal(t, "empty", ComputeChecksum(motion.Grid{}))
	assert.Len(t, ComputeChecksum(a), 32)
}
