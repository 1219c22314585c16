// Package bilevel classifies grayscale images as binary and analyzes binary
// images with 4-connectivity flood fill.
//
// Background is black (0) and foreground is white (255). Pixels outside the
// image count as black, so a black region touching the border is connected to
// the outside world; an enclosed black region is a hole.
//
// Complexity:
//
//   - IsBinary, Threshold: O(H×W), Memory: O(1) / O(H×W) for the result.
//   - Background, FillHoles, Components, Holes: O(H×W), Memory: O(H×W).
package bilevel

import (
	"errors"

	"github.com/menta2k/grayimage/pkg/raster"
)

// ErrNotBinary indicates an operation that requires a binary image received
// an empty image or one with gray samples.
var ErrNotBinary = errors.New("bilevel: image is not binary")

// IsBinary reports whether every pixel is 0 or 255. The empty image is not
// binary.
func IsBinary(img *raster.Image) bool {
	if img.IsEmpty() {
		return false
	}
	for _, p := range img.Pix() {
		if p != raster.Black && p != raster.White {
			return false
		}
	}
	return true
}

// Threshold returns a new image where pixels strictly less than thr become
// black and all others white. thr=0 therefore whitens everything and
// thr=255 keeps only pixels that are exactly 255.
func Threshold(img *raster.Image, thr uint8) *raster.Image {
	if img.IsEmpty() {
		return raster.Empty()
	}
	out := raster.New(img.Height(), img.Width())
	dst := out.Pix()
	for i, p := range img.Pix() {
		if p < thr {
			dst[i] = raster.Black
		} else {
			dst[i] = raster.White
		}
	}
	return out
}

// Invert returns a new image with every sample v replaced by 255-v.
func Invert(img *raster.Image) *raster.Image {
	out := img.Clone()
	pix := out.Pix()
	for i := range pix {
		pix[i] = raster.White - pix[i]
	}
	return out
}
