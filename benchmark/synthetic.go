package benchmark

import (
	"math/rand/v2"

	"github.com/nvr-ai/go-mrf/motion"
)

// SyntheticPair generates two frames of a textured background with a bright
// square that moves diagonally by shift pixels between them. Both frames carry
// independent Gaussian noise of standard deviation sigma. The same seed always
// produces the same pair.
func SyntheticPair(width, height, shift int, sigma float64, seed uint64) (motion.Frame, motion.Frame, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	side := max(min(width, height)/4, 1)
	x0, y0 := width/3, height/3

	render := func(dx, dy int) []uint8 {
		pix := make([]uint8, width*height)
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				v := 40 + float64((row*3+col*5)%64)
				if col >= x0+dx && col < x0+dx+side && row >= y0+dy && row < y0+dy+side {
					v = 210
				}
				v += rng.NormFloat64() * sigma
				pix[row*width+col] = uint8(min(max(v+0.5, 0), 255))
			}
		}
		return pix
	}

	a, err := motion.NewFrame(width, height, render(0, 0))
	if err != nil {
		return motion.Frame{}, motion.Frame{}, err
	}
	b, err := motion.NewFrame(width, height, render(shift, shift))
	if err != nil {
		return motion.Frame{}, motion.Frame{}, err
	}
	return a, b, nil
}
