// Package pgm reads and writes binary PGM ("P5") files holding one 8-bit
// grayscale channel.
//
// Only magic "P5" with a maximum sample value of 255 is supported. The header
// is the magic token followed by width, height and max value as ASCII
// integers separated by whitespace, then exactly one separator byte and
// width*height raw samples in row-major order.
//
// Importing this package also registers the format with the standard image
// package, so image.Decode and imaging.Open can read .pgm files.
package pgm

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strconv"

	"github.com/menta2k/grayimage/pkg/raster"
)

// Magic is the only supported PGM magic token.
const Magic = "P5"

// MaxValue is the only supported maximum sample value.
const MaxValue = 255

// MaxPixels bounds width*height accepted from a header.
const MaxPixels = 1 << 30

// Sentinel errors for PGM decoding.
var (
	// ErrBadMagic indicates the file does not start with "P5".
	ErrBadMagic = errors.New("pgm: unrecognized magic")
	// ErrUnsupportedMaxValue indicates a max value other than 255.
	ErrUnsupportedMaxValue = errors.New("pgm: only max value 255 is supported")
	// ErrInvalidDimensions indicates a non-positive, unparsable or oversized
	// width/height.
	ErrInvalidDimensions = errors.New("pgm: invalid dimensions")
	// ErrShortData indicates the pixel data ended early.
	ErrShortData = errors.New("pgm: error reading pixel data")
)

func init() {
	image.RegisterFormat("pgm", Magic, decodeImage, decodeConfig)
}

// Decode reads a P5 image from r. On failure the returned image is nil.
func Decode(r io.Reader) (*raster.Image, error) {
	br := bufio.NewReader(r)
	width, height, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	img := raster.New(height, width)
	if _, err := io.ReadFull(br, img.Pix()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShortData, err)
	}
	return img, nil
}

// Encode writes img to w as "P5\n<width> <height>\n255\n" followed by the raw
// samples.
func Encode(w io.Writer, img *raster.Image) error {
	if img.IsEmpty() {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, img.Width(), img.Height())
	}
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s\n%d %d\n%d\n", Magic, img.Width(), img.Height(), MaxValue); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := bw.Write(img.Pix()); err != nil {
		return fmt.Errorf("failed to write pixel data: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write pixel data: %w", err)
	}
	return nil
}

// Load reads a P5 file from disk.
func Load(path string) (*raster.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for reading: %w", err)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return img, nil
}

// Save writes img to path as a P5 file.
func Save(path string, img *raster.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open file for writing: %w", err)
	}
	if err := Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// readHeader parses the magic token and the three header integers and
// consumes the single separator byte that precedes the pixel data.
func readHeader(br *bufio.Reader) (width, height int, err error) {
	magic, err := readToken(br)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrBadMagic, err)
	}
	if magic != Magic {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadMagic, magic)
	}
	if width, err = readInt(br); err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("%w: width %d", ErrInvalidDimensions, width)
	}
	if height, err = readInt(br); err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("%w: height %d", ErrInvalidDimensions, height)
	}
	if !raster.ValidDimensions(height, width) || height*width > MaxPixels {
		return 0, 0, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidDimensions, width, height, MaxPixels)
	}
	maxValue, err := readInt(br)
	if err != nil || maxValue != MaxValue {
		return 0, 0, fmt.Errorf("%w: got %d", ErrUnsupportedMaxValue, maxValue)
	}
	if _, err := br.ReadByte(); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrShortData, err)
	}
	return width, height, nil
}

func readInt(br *bufio.Reader) (int, error) {
	tok, err := readToken(br)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(tok)
}

// readToken skips whitespace and '#' comments, then returns the next run of
// non-whitespace bytes. The delimiter after the token is left unread.
func readToken(br *bufio.Reader) (string, error) {
	var tok []byte
	for {
		c, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && len(tok) > 0 {
				return string(tok), nil
			}
			return "", err
		}
		switch {
		case isSpace(c):
			if len(tok) > 0 {
				return string(tok), br.UnreadByte()
			}
		case c == '#' && len(tok) == 0:
			if _, err := br.ReadString('\n'); err != nil {
				return "", err
			}
		default:
			tok = append(tok, c)
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func decodeImage(r io.Reader) (image.Image, error) {
	img, err := Decode(r)
	if err != nil {
		return nil, err
	}
	g := image.NewGray(image.Rect(0, 0, img.Width(), img.Height()))
	copy(g.Pix, img.Pix())
	return g, nil
}

func decodeConfig(r io.Reader) (image.Config, error) {
	width, height, err := readHeader(bufio.NewReader(r))
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.GrayModel, Width: width, Height: height}, nil
}
