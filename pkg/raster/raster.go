// Package raster provides the grayscale pixel buffer shared by every
// transform in this module.
//
// An Image stores height*width 8-bit samples in row-major order. 0 is black,
// 255 is white and everything in between is a shade of gray. Coordinates are
// (y, x) with y growing downward and x growing rightward, so (0, 0) is the
// upper left corner. Pixels outside the image are treated as black; Sample
// is the single place that rule is implemented.
package raster

import (
	"fmt"
	"math"
	"strings"
)

// Symbols used by FromLiteral and String.
const (
	BlackSymbol = 'o'
	WhiteSymbol = 'x'
	GraySymbol  = '?'
)

// Pixel values with special meaning.
const (
	Black uint8 = 0
	White uint8 = 255
)

// Image is a grayscale raster. The zero value is the empty image.
type Image struct {
	height int
	width  int
	pix    []uint8
}

// Empty returns the empty image (0x0).
func Empty() *Image {
	return &Image{}
}

// New creates a height x width image filled with black pixels.
// It panics if either dimension is not positive.
func New(height, width int) *Image {
	mustDimensions(height, width)
	return &Image{
		height: height,
		width:  width,
		pix:    make([]uint8, height*width),
	}
}

// FromLiteral creates a binary image from a flat string of 'o' (black) and
// 'x' (white) symbols. It panics on a length mismatch or an unknown symbol.
func FromLiteral(height, width int, literal string) *Image {
	mustDimensions(height, width)
	if len(literal) != height*width {
		panic(fmt.Sprintf("raster: literal length %d does not match %dx%d", len(literal), height, width))
	}
	img := New(height, width)
	for i := 0; i < len(literal); i++ {
		switch literal[i] {
		case BlackSymbol:
			img.pix[i] = Black
		case WhiteSymbol:
			img.pix[i] = White
		default:
			panic(fmt.Sprintf("raster: unknown literal symbol %q at %d", literal[i], i))
		}
	}
	return img
}

// FromPix wraps a copy of pix as a height x width image.
func FromPix(height, width int, pix []uint8) *Image {
	mustDimensions(height, width)
	if len(pix) != height*width {
		panic(fmt.Sprintf("raster: pixel count %d does not match %dx%d", len(pix), height, width))
	}
	img := New(height, width)
	copy(img.pix, pix)
	return img
}

func mustDimensions(height, width int) {
	if !ValidDimensions(height, width) {
		panic(fmt.Sprintf("raster: invalid dimensions %dx%d", height, width))
	}
}

// ValidDimensions reports whether a height x width image can be allocated:
// both sides positive and their product representable as an int.
func ValidDimensions(height, width int) bool {
	return height > 0 && width > 0 && height <= math.MaxInt/width
}

// Height returns the number of rows.
func (m *Image) Height() int { return m.height }

// Width returns the number of columns.
func (m *Image) Width() int { return m.width }

// Len returns the number of pixels.
func (m *Image) Len() int { return len(m.pix) }

// IsEmpty reports whether the image has no pixels.
func (m *Image) IsEmpty() bool {
	return m.height == 0 || m.width == 0
}

// Pix exposes the row-major pixel slice. Callers that mutate it must keep
// its length unchanged.
func (m *Image) Pix() []uint8 { return m.pix }

// InBounds reports whether (y, x) lies inside the image.
func (m *Image) InBounds(y, x int) bool {
	return y >= 0 && y < m.height && x >= 0 && x < m.width
}

// Index maps (y, x) to its flat row-major index y*width + x.
func (m *Image) Index(y, x int) int {
	return y*m.width + x
}

// Coordinate converts a flat index back to (y, x).
func (m *Image) Coordinate(idx int) (y, x int) {
	return idx / m.width, idx % m.width
}

// At returns the pixel at (y, x). It panics when (y, x) is out of range;
// use Sample for reads that may fall outside the image.
func (m *Image) At(y, x int) uint8 {
	m.mustInBounds(y, x)
	return m.pix[m.Index(y, x)]
}

// Set stores v at (y, x). It panics when (y, x) is out of range.
func (m *Image) Set(y, x int, v uint8) {
	m.mustInBounds(y, x)
	m.pix[m.Index(y, x)] = v
}

// Sample returns the pixel at (y, x), or Black when (y, x) is outside the
// image. It never fails.
func (m *Image) Sample(y, x int) uint8 {
	if !m.InBounds(y, x) {
		return Black
	}
	return m.pix[m.Index(y, x)]
}

func (m *Image) mustInBounds(y, x int) {
	if !m.InBounds(y, x) {
		panic(fmt.Sprintf("raster: coordinate (%d,%d) out of range %dx%d", y, x, m.height, m.width))
	}
}

// Resize changes the dimensions. Content is lost and every pixel is black
// afterwards. It panics if either dimension is not positive.
func (m *Image) Resize(height, width int) {
	mustDimensions(height, width)
	m.height = height
	m.width = width
	m.pix = make([]uint8, height*width)
}

// Reshape swaps the dimensions without touching the pixel data. It is used by
// in-place operations that permute the buffer, such as rotation.
func (m *Image) Reshape(height, width int) {
	valid := height >= 0 && width >= 0
	if len(m.pix) > 0 {
		valid = ValidDimensions(height, width)
	}
	if !valid || height*width != len(m.pix) {
		panic(fmt.Sprintf("raster: cannot reshape %d pixels to %dx%d", len(m.pix), height, width))
	}
	m.height = height
	m.width = width
}

// Fill sets every pixel to v.
func (m *Image) Fill(v uint8) {
	for i := range m.pix {
		m.pix[i] = v
	}
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	c := &Image{height: m.height, width: m.width}
	if m.pix != nil {
		c.pix = make([]uint8, len(m.pix))
		copy(c.pix, m.pix)
	}
	return c
}

// Equal reports whether both images have the same dimensions and samples.
func (m *Image) Equal(other *Image) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.height != other.height || m.width != other.width {
		return false
	}
	for i := range m.pix {
		if m.pix[i] != other.pix[i] {
			return false
		}
	}
	return true
}

// String renders the image one row per line, showing 0 as 'o', 255 as 'x'
// and any other value as '?'. Useful when debugging binary algorithms.
func (m *Image) String() string {
	var sb strings.Builder
	sb.Grow(m.height * (m.width + 1))
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			switch m.pix[m.Index(y, x)] {
			case Black:
				sb.WriteByte(BlackSymbol)
			case White:
				sb.WriteByte(WhiteSymbol)
			default:
				sb.WriteByte(GraySymbol)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
