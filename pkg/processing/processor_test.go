package processing

import (
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/grayimage/pkg/bilevel"
	"github.com/menta2k/grayimage/pkg/pgm"
	"github.com/menta2k/grayimage/pkg/raster"
)

// createTestImage creates a gradient raster
func createTestImage(height, width int) *raster.Image {
	img := raster.New(height, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(y, x, uint8((x*255)/width))
		}
	}
	return img
}

func TestNewProcessor(t *testing.T) {
	p := NewProcessor()
	require.NotNil(t, p)
	assert.Equal(t, "pgm", p.Config().Format)
	assert.Equal(t, 0, p.Config().MaxDimension)
}

func TestToRasterFromColor(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 20, 13, 21))
	src.Set(10, 20, color.NRGBA{255, 255, 255, 255})
	src.Set(11, 20, color.NRGBA{0, 0, 0, 255})
	src.Set(12, 20, color.NRGBA{128, 128, 128, 255})

	img, err := NewProcessor().ToRaster(src)
	require.NoError(t, err)
	assert.Equal(t, 1, img.Height())
	assert.Equal(t, 3, img.Width())
	assert.Equal(t, []uint8{255, 0, 128}, img.Pix())
}

func TestToRasterShrinksLongSide(t *testing.T) {
	p := NewProcessorWithConfig(Config{MaxDimension: 50, Format: "png", Quality: 90})
	img, err := p.ToRaster(imaging.New(200, 100, color.White))
	require.NoError(t, err)
	assert.Equal(t, 50, img.Width())
	assert.Equal(t, 25, img.Height())
}

func TestToRasterEmpty(t *testing.T) {
	_, err := NewProcessor().ToRaster(image.NewGray(image.Rect(0, 0, 0, 3)))
	assert.Error(t, err)
}

func TestSaveAndLoadLossless(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor()
	img := createTestImage(6, 9)

	for _, ext := range []string{"pgm", "png", "bmp", "tiff"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "gradient."+ext)
			require.NoError(t, p.SaveRaster(img, path, ""))
			got, err := p.LoadRaster(path)
			require.NoError(t, err)
			assert.True(t, img.Equal(got), "round trip through %s", ext)
		})
	}
}

func TestSaveRasterFormatOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "picture.bin")
	img := createTestImage(2, 2)
	p := NewProcessor()
	require.NoError(t, p.SaveRaster(img, path, "pgm"))

	got, err := p.LoadRaster(path)
	require.NoError(t, err)
	assert.True(t, img.Equal(got))
}

func TestSaveRasterErrors(t *testing.T) {
	p := NewProcessor()
	dir := t.TempDir()
	assert.Error(t, p.SaveRaster(raster.Empty(), filepath.Join(dir, "a.pgm"), ""))
	assert.Error(t, p.SaveRaster(createTestImage(2, 2), filepath.Join(dir, "a.xyz"), ""))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "ok.bin")
	require.NoError(t, writeFile(path, func(w io.Writer) error {
		_, err := w.Write([]byte("data"))
		return err
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	encodeErr := errors.New("encode failed")
	err = writeFile(filepath.Join(dir, "fail.bin"), func(io.Writer) error { return encodeErr })
	assert.ErrorIs(t, err, encodeErr)

	// a close failure after a successful encode is reported
	err = writeFile(filepath.Join(dir, "closed.bin"), func(w io.Writer) error {
		return w.(*os.File).Close()
	})
	assert.ErrorIs(t, err, os.ErrClosed)

	assert.Error(t, writeFile(filepath.Join(dir, "missing", "x.bin"), func(io.Writer) error { return nil }))
}

func TestSaveRasterWebP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gradient.webp")
	p := NewProcessor()
	img := createTestImage(6, 9)
	require.NoError(t, p.SaveRaster(img, path, ""))
	got, err := p.LoadRaster(path)
	require.NoError(t, err)
	assert.Equal(t, img.Height(), got.Height())
	assert.Equal(t, img.Width(), got.Width())
}

func TestLoadImageKeepsDecoderError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep.pgm")
	require.NoError(t, os.WriteFile(path, []byte("P5\n1 1\n65535\n\x00\x00"), 0o644))

	p := NewProcessorWithConfig(Config{MaxDimension: 10, Format: "pgm", Quality: 90})
	_, err := p.LoadRaster(path)
	assert.ErrorIs(t, err, pgm.ErrUnsupportedMaxValue)

	_, err = p.LoadImage(path)
	assert.ErrorIs(t, err, pgm.ErrUnsupportedMaxValue)
}

func TestLoadRasterMissing(t *testing.T) {
	_, err := NewProcessor().LoadRaster(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestDither(t *testing.T) {
	img := createTestImage(16, 32)
	got := Dither(img)
	assert.True(t, bilevel.IsBinary(got))
	assert.Equal(t, img.Height(), got.Height())
	assert.Equal(t, img.Width(), got.Width())

	white := raster.New(4, 4)
	white.Fill(raster.White)
	assert.True(t, white.Equal(Dither(white)))

	black := raster.New(4, 4)
	assert.True(t, black.Equal(Dither(black)))

	assert.True(t, Dither(raster.Empty()).IsEmpty())
}

func TestOverlay(t *testing.T) {
	base := raster.FromLiteral(1, 2, "xo")
	mask := raster.FromLiteral(1, 2, "ox")
	red := color.NRGBA{255, 0, 0, 255}

	out, err := Overlay(base, mask, red)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, out.NRGBAAt(0, 0))
	assert.Equal(t, red, out.NRGBAAt(1, 0))

	_, err = Overlay(base, raster.New(2, 2), red)
	assert.Error(t, err)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "pgm", extension("a/b/pic.PGM"))
	assert.Equal(t, "", extension("dir.d/file"))
	assert.Equal(t, "", extension("noext"))
}
