package bilevel

import (
	"github.com/menta2k/grayimage/pkg/raster"
)

// neighborOffsets lists the 4-connected (dy, dx) moves: N, E, S, W.
var neighborOffsets = [4][2]int{{-1, 0}, {0, 1}, {1, 0}, {0, -1}}

// Background marks the black pixels that are connected to the image border.
// dst(y,x) = 255 iff src(y,x) = 0 and a 4-connected path of black pixels
// leads from (y,x) to the border; every other pixel is 0.
// Returns ErrNotBinary unless IsBinary(img).
func Background(img *raster.Image) (*raster.Image, error) {
	if !IsBinary(img) {
		return nil, ErrNotBinary
	}
	reach := borderReachable(img)
	out := raster.New(img.Height(), img.Width())
	dst := out.Pix()
	for i, ok := range reach {
		if ok {
			dst[i] = raster.White
		}
	}
	return out, nil
}

// FillHoles returns img with every hole (black component not touching the
// border) painted white. Border-connected black pixels stay black.
// Returns ErrNotBinary unless IsBinary(img).
func FillHoles(img *raster.Image) (*raster.Image, error) {
	if !IsBinary(img) {
		return nil, ErrNotBinary
	}
	reach := borderReachable(img)
	out := raster.New(img.Height(), img.Width())
	dst := out.Pix()
	for i, ok := range reach {
		if !ok {
			dst[i] = raster.White
		}
	}
	return out, nil
}

// Components returns every 4-connected component of pixels equal to value.
// Each component is a slice of flat row-major indices in BFS order;
// components are listed in the scan order of their first pixel.
// Returns ErrNotBinary unless IsBinary(img).
func Components(img *raster.Image, value uint8) ([][]int, error) {
	if !IsBinary(img) {
		return nil, ErrNotBinary
	}
	pix := img.Pix()
	seen := make([]bool, len(pix))
	var comps [][]int
	for i0, p := range pix {
		if p != value || seen[i0] {
			continue
		}
		seen[i0] = true
		comps = append(comps, flood(img, []int{i0}, value, seen))
	}
	return comps, nil
}

// Holes returns the black components that do not touch the image border.
// Returns ErrNotBinary unless IsBinary(img).
func Holes(img *raster.Image) ([][]int, error) {
	comps, err := Components(img, raster.Black)
	if err != nil {
		return nil, err
	}
	var holes [][]int
	for _, comp := range comps {
		if !touchesBorder(img, comp) {
			holes = append(holes, comp)
		}
	}
	return holes, nil
}

// borderReachable runs one multi-source flood fill seeded with every black
// border pixel and returns the visited bitmap.
func borderReachable(img *raster.Image) []bool {
	h, w := img.Height(), img.Width()
	pix := img.Pix()
	seen := make([]bool, len(pix))
	var seeds []int
	seed := func(y, x int) {
		i := img.Index(y, x)
		if pix[i] == raster.Black && !seen[i] {
			seen[i] = true
			seeds = append(seeds, i)
		}
	}
	for x := 0; x < w; x++ {
		seed(0, x)
		seed(h-1, x)
	}
	for y := 0; y < h; y++ {
		seed(y, 0)
		seed(y, w-1)
	}
	flood(img, seeds, raster.Black, seen)
	return seen
}

// flood expands queue through 4-connected pixels equal to value, marking them
// in seen. Queue entries must already be marked. It returns every visited
// index, seeds included, in BFS order.
func flood(img *raster.Image, queue []int, value uint8, seen []bool) []int {
	pix := img.Pix()
	for qi := 0; qi < len(queue); qi++ {
		uy, ux := img.Coordinate(queue[qi])
		for _, d := range neighborOffsets {
			vy, vx := uy+d[0], ux+d[1]
			if !img.InBounds(vy, vx) {
				continue
			}
			vi := img.Index(vy, vx)
			if seen[vi] || pix[vi] != value {
				continue
			}
			seen[vi] = true
			queue = append(queue, vi)
		}
	}
	return queue
}

func touchesBorder(img *raster.Image, comp []int) bool {
	h, w := img.Height(), img.Width()
	for _, i := range comp {
		y, x := img.Coordinate(i)
		if y == 0 || y == h-1 || x == 0 || x == w-1 {
			return true
		}
	}
	return false
}
