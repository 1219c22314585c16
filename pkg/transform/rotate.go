package transform

import (
	"github.com/menta2k/grayimage/pkg/raster"
)

// RotateCW90 rotates img clockwise by 90 degrees around its center, in place.
// A height x width image becomes width x height. Four rotations restore the
// original.
func RotateCW90(img *raster.Image) {
	h, w := img.Height(), img.Width()
	// (y, x) moves to (x, h-1-y) in an image h pixels wide.
	permute(img.Pix(), func(i int) int {
		y, x := i/w, i%w
		return x*h + (h - 1 - y)
	})
	img.Reshape(w, h)
}

// RotateCCW90 rotates img counter-clockwise by 90 degrees around its center,
// in place. A height x width image becomes width x height.
func RotateCCW90(img *raster.Image) {
	h, w := img.Height(), img.Width()
	// (y, x) moves to (w-1-x, y) in an image h pixels wide.
	permute(img.Pix(), func(i int) int {
		y, x := i/w, i%w
		return (w-1-x)*h + y
	})
	img.Reshape(w, h)
}

// permute moves pix[i] to pix[dest(i)] for every i using O(1) extra memory.
// Each cycle of the permutation is rotated once, starting from its smallest
// index; other starting points are recognized by walking the cycle and
// skipped.
func permute(pix []uint8, dest func(int) int) {
	for start := range pix {
		k := dest(start)
		for k > start {
			k = dest(k)
		}
		if k != start {
			continue
		}
		carry := pix[start]
		for k = dest(start); k != start; k = dest(k) {
			carry, pix[k] = pix[k], carry
		}
		pix[start] = carry
	}
}
