// Package transform implements pixel-exact geometric transforms on
// raster images: translation and 90 degree rotation.
//
// In-place variants use O(1) additional memory: they never allocate a second
// pixel buffer or a row/column sized temporary.
package transform

import (
	"github.com/menta2k/grayimage/pkg/raster"
)

// Order selects the direction in which an in-place pass visits flat indices.
type Order int

const (
	// Forward visits flat indices in ascending order.
	Forward Order = iota
	// Backward visits flat indices in descending order.
	Backward
)

func (o Order) String() string {
	if o == Backward {
		return "backward"
	}
	return "forward"
}

// Translate moves each point (y, x) of img to (y+dy, x+dx) in a new image of
// the same size. Pixels whose source lies outside img are black.
func Translate(img *raster.Image, dy, dx int) *raster.Image {
	if dy == 0 && dx == 0 {
		return img.Clone()
	}
	h, w := img.Height(), img.Width()
	if img.IsEmpty() {
		return raster.Empty()
	}
	out := raster.New(h, w)
	if exceedsExtent(h, w, dy, dx) {
		return out
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(y, x, img.Sample(y-dy, x-dx))
		}
	}
	return out
}

// TranslateInPlace applies the same transform as Translate directly to img.
//
// With offset = dy*width + dx the source of flat index d is d-offset. A
// negative offset reads ahead of the write cursor so indices are visited
// Forward; a positive offset reads behind it so they are visited Backward.
// Either way every source is read before it can be overwritten.
func TranslateInPlace(img *raster.Image, dy, dx int) {
	if dy == 0 && dx == 0 || img.IsEmpty() {
		return
	}
	h, w := img.Height(), img.Width()
	if exceedsExtent(h, w, dy, dx) {
		img.Fill(raster.Black)
		return
	}
	offset := dy*w + dx
	if offset == 0 {
		return
	}
	order := Forward
	if offset > 0 {
		order = Backward
	}
	shift(img, dy, dx, offset, order)
}

// shift performs the single in-place pass. A destination keeps a value only
// when its source sits at row y-dy and column x-dx inside the image; this
// rejects flat-index pulls that wrap into a neighboring row.
func shift(img *raster.Image, dy, dx, offset int, order Order) {
	pix := img.Pix()
	h, w := img.Height(), img.Width()
	n := len(pix)

	d, end, step := 0, n, 1
	if order == Backward {
		d, end, step = n-1, -1, -1
	}
	for ; d != end; d += step {
		y, x := d/w, d%w
		sy, sx := y-dy, x-dx
		if sy < 0 || sy >= h || sx < 0 || sx >= w {
			pix[d] = raster.Black
			continue
		}
		pix[d] = pix[d-offset]
	}
}

// exceedsExtent compares without negating dy or dx, which would overflow
// for math.MinInt.
func exceedsExtent(h, w, dy, dx int) bool {
	return dy <= -h || dy >= h || dx <= -w || dx >= w
}
