package transform

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/grayimage/pkg/raster"
)

const fixture = "xoxxoxxxx" // xox / xox / xxx

// createTestImage fills a height x width image with deterministic gray values.
func createTestImage(height, width int, seed int64) *raster.Image {
	rng := rand.New(rand.NewSource(seed))
	img := raster.New(height, width)
	pix := img.Pix()
	for i := range pix {
		// never 0, so a black pixel in the result always comes from outside
		pix[i] = uint8(1 + rng.Intn(255))
	}
	return img
}

func TestTranslateFixture(t *testing.T) {
	cases := []struct {
		dy, dx int
		want   string
	}{
		{0, 1, "oxooxooxx"},
		{1, 0, "oooxoxxox"},
		{1, 1, "ooooxooxo"},
		{0, -1, "oxooxoxxo"},
		{-1, -1, "oxoxxoooo"},
		{0, 10, "ooooooooo"},
		{10, 0, "ooooooooo"},
		{0, -2, "xooxooxoo"},
		{-2, 0, "xxxoooooo"},
		{-2, -2, "xoooooooo"},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("dy=%d,dx=%d", tc.dy, tc.dx), func(t *testing.T) {
			img := raster.FromLiteral(3, 3, fixture)
			want := raster.FromLiteral(3, 3, tc.want)

			got := Translate(img, tc.dy, tc.dx)
			assert.True(t, want.Equal(got), "Translate:\n%s\nwant:\n%s", got, want)
			assert.True(t, raster.FromLiteral(3, 3, fixture).Equal(img), "input was mutated")

			TranslateInPlace(img, tc.dy, tc.dx)
			assert.True(t, want.Equal(img), "TranslateInPlace:\n%s\nwant:\n%s", img, want)
		})
	}
}

func TestTranslateZeroShiftIsIdentity(t *testing.T) {
	img := createTestImage(4, 7, 1)
	got := Translate(img, 0, 0)
	assert.True(t, img.Equal(got))
	got.Set(0, 0, 0)
	assert.False(t, img.Equal(got), "zero shift must still return a copy")

	inPlace := img.Clone()
	TranslateInPlace(inPlace, 0, 0)
	assert.True(t, img.Equal(inPlace))
}

func TestTranslateBeyondExtentIsBlack(t *testing.T) {
	img := createTestImage(3, 5, 2)
	shifts := [][2]int{
		{3, 0}, {-3, 0}, {0, 5}, {0, -5}, {1, 7}, {-9, 1}, {100, -100},
		{math.MinInt, 0}, {0, math.MinInt}, {math.MinInt, math.MinInt},
		{math.MaxInt, 0}, {math.MaxInt, math.MinInt},
	}
	for _, s := range shifts {
		got := Translate(img, s[0], s[1])
		assert.True(t, raster.New(3, 5).Equal(got), "Translate(%d,%d)", s[0], s[1])

		c := img.Clone()
		TranslateInPlace(c, s[0], s[1])
		assert.True(t, raster.New(3, 5).Equal(c), "TranslateInPlace(%d,%d)", s[0], s[1])
	}
}

func TestTranslateExtremeShiftsAgree(t *testing.T) {
	extremes := []int{math.MinInt, math.MinInt + 1, -1, 0, 1, math.MaxInt}
	for _, size := range [][2]int{{4, 4}, {3, 3}, {2, 5}} {
		img := createTestImage(size[0], size[1], 11)
		for _, dy := range extremes {
			for _, dx := range extremes {
				want := Translate(img, dy, dx)
				got := img.Clone()
				TranslateInPlace(got, dy, dx)
				assert.True(t, want.Equal(got), "size %v shift (%d,%d)", size, dy, dx)
			}
		}
	}
}

func TestTranslateInPlaceMatchesCopy(t *testing.T) {
	sizes := [][2]int{{1, 1}, {1, 5}, {5, 1}, {3, 3}, {4, 7}, {7, 4}, {6, 6}}
	for _, sz := range sizes {
		h, w := sz[0], sz[1]
		img := createTestImage(h, w, int64(h*31+w))
		for dy := -h - 1; dy <= h+1; dy++ {
			for dx := -w - 1; dx <= w+1; dx++ {
				want := Translate(img, dy, dx)
				got := img.Clone()
				TranslateInPlace(got, dy, dx)
				require.True(t, want.Equal(got), "%dx%d dy=%d dx=%d\ngot:\n%v\nwant:\n%v", h, w, dy, dx, got.Pix(), want.Pix())
			}
		}
	}
}

func TestTranslateMatchesSampleDefinition(t *testing.T) {
	img := createTestImage(5, 6, 3)
	for _, s := range [][2]int{{2, -3}, {-1, 4}, {4, 5}, {-4, -5}} {
		got := Translate(img, s[0], s[1])
		for y := 0; y < 5; y++ {
			for x := 0; x < 6; x++ {
				assert.Equal(t, img.Sample(y-s[0], x-s[1]), got.At(y, x))
			}
		}
	}
}

func TestTranslateIsNotInvertible(t *testing.T) {
	img := raster.FromLiteral(3, 3, fixture)
	back := Translate(Translate(img, 1, 1), -1, -1)
	assert.False(t, img.Equal(back), "content shifted out must be lost")
}

func TestTranslateEmpty(t *testing.T) {
	img := raster.Empty()
	assert.True(t, img.Equal(Translate(img, 1, -1)))
	TranslateInPlace(img, 2, 2)
	assert.True(t, img.IsEmpty())
}

func TestOrderString(t *testing.T) {
	assert.Equal(t, "forward", Forward.String())
	assert.Equal(t, "backward", Backward.String())
}

func BenchmarkTranslate(b *testing.B) {
	img := createTestImage(1080, 1920, 4)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Translate(img, 13, -27)
	}
}

func BenchmarkTranslateInPlace(b *testing.B) {
	img := createTestImage(1080, 1920, 4)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		TranslateInPlace(img, 13, -27)
	}
}
