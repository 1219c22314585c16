package pgm

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/grayimage/pkg/raster"
)

func TestEncodeHeader(t *testing.T) {
	img := raster.FromPix(2, 3, []uint8{0, 1, 2, 3, 4, 255})
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img))
	assert.Equal(t, "P5\n3 2\n255\n\x00\x01\x02\x03\x04\xff", buf.String())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	img := raster.FromPix(3, 4, []uint8{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 255})
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img))

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.True(t, img.Equal(got))
}

func TestDecodeHeaderVariants(t *testing.T) {
	// whitespace-separated tokens, comment lines, single separator byte that
	// happens to precede a pixel value of '\n' (10)
	data := "P5 # written by hand\n2\t1\r\n255 \x0a\x0b"
	got, err := Decode(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []uint8{10, 11}, got.Pix())
	assert.Equal(t, 1, got.Height())
	assert.Equal(t, 2, got.Width())
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
		err  error
	}{
		{"Empty", "", ErrBadMagic},
		{"AsciiPGM", "P2\n1 1\n255\n0", ErrBadMagic},
		{"ZeroWidth", "P5\n0 1\n255\n", ErrInvalidDimensions},
		{"NegativeHeight", "P5\n1 -2\n255\n", ErrInvalidDimensions},
		{"GarbageWidth", "P5\nabc 1\n255\n", ErrInvalidDimensions},
		{"AreaWrapsToZero", "P5\n4294967296 4294967296\n255\n", ErrInvalidDimensions},
		{"AreaOverflows", "P5\n3037000500 3037000500\n255\n", ErrInvalidDimensions},
		{"AreaAboveLimit", "P5\n65536 65536\n255\n", ErrInvalidDimensions},
		{"SixteenBit", "P5\n1 1\n65535\n\x00\x00", ErrUnsupportedMaxValue},
		{"SmallMax", "P5\n1 1\n15\n\x00", ErrUnsupportedMaxValue},
		{"NoSeparator", "P5\n1 1\n255", ErrShortData},
		{"ShortPixels", "P5\n2 2\n255\n\x00\x01\x02", ErrShortData},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			img, err := Decode(strings.NewReader(tc.data))
			assert.ErrorIs(t, err, tc.err)
			assert.Nil(t, img)
		})
	}
}

func TestEncodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Encode(&buf, raster.Empty()), ErrInvalidDimensions)
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pic1.pgm")
	img := raster.FromPix(3, 3, []uint8{10, 20, 30, 40, 50, 52, 53, 100, 254})

	require.NoError(t, Save(path, img))
	got, err := Load(path)
	require.NoError(t, err)
	assert.True(t, img.Equal(got))

	_, err = Load(filepath.Join(dir, "missing.pgm"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = Save(filepath.Join(dir, "no", "such", "dir.pgm"), img)
	assert.Error(t, err)
}

func TestLoadBadFileReportsSentinel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pgm")
	require.NoError(t, os.WriteFile(path, []byte("P6\n1 1\n255\n\x00\x00\x00"), 0o644))
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestImageDecodeRejectsOversizedHeader(t *testing.T) {
	_, _, err := image.Decode(strings.NewReader("P5\n3037000500 3037000500\n255\n"))
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = imaging.Decode(strings.NewReader("P5\n4294967296 4294967296\n255\n"))
	assert.Error(t, err)
}

func TestRegisteredWithImagePackage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, raster.FromPix(1, 2, []uint8{7, 200})))

	cfg, format, err := image.DecodeConfig(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "pgm", format)
	assert.Equal(t, 2, cfg.Width)
	assert.Equal(t, 1, cfg.Height)
	assert.Equal(t, color.GrayModel, cfg.ColorModel)

	m, err := imaging.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Bounds().Dx())
	r, _, _, _ := m.At(1, 0).RGBA()
	assert.Equal(t, uint32(200)*0x101, r)
}
