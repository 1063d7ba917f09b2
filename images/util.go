package images

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-mrf/motion"
)

// ComputeChecksum returns a hex MD5 digest of a grid, used to tell masks
// apart in logs. The dimensions are part of the digest, so a 2x3 and a 3x2
// grid with the same samples differ. An empty grid gives "empty".
func ComputeChecksum(g motion.Grid) string {
	if len(g.Pix) == 0 {
		return "empty"
	}
	return digest(fmt.Sprintf("%dx%d:", g.Width, g.Height), g.Pix)
}

// ComputeMatChecksum is ComputeChecksum for a Mat. A single channel Mat
// digests like the grid it holds, so
//
//	ComputeMatChecksum(GridToMat(g)) == ComputeChecksum(g)
//
// Multi-channel Mats carry the channel count in the digest.
func ComputeMatChecksum(mat gocv.Mat) string {
	if mat.Empty() {
		return "empty"
	}
	prefix := fmt.Sprintf("%dx%d:", mat.Cols(), mat.Rows())
	if ch := mat.Channels(); ch != 1 {
		prefix = fmt.Sprintf("%dx%dx%d:", mat.Cols(), mat.Rows(), ch)
	}
	return digest(prefix, mat.ToBytes())
}

func digest(prefix string, data []byte) string {
	hash := md5.New()
	hash.Write([]byte(prefix))
	hash.Write(data)
	return hex.EncodeToString(hash.Sum(nil))
}
