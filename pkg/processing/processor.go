package processing

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/makeworld-the-better-one/dither/v2"
	"go.uber.org/multierr"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/grayimage/pkg/pgm"
	"github.com/menta2k/grayimage/pkg/raster"
)

// Config holds settings for loading and saving images
type Config struct {
	// MaxDimension caps the long side of decoded images; 0 keeps the original size.
	MaxDimension int
	Format       string
	Quality      int
	Lossless     bool
}

// DefaultConfig returns the settings used by NewProcessor
func DefaultConfig() Config {
	return Config{
		MaxDimension: 0,
		Format:       "pgm",
		Quality:      90,
		Lossless:     true,
	}
}

// Processor converts between raster images and encoded image files
type Processor struct {
	config Config
}

// NewProcessor creates a new image processor with default configuration
func NewProcessor() *Processor {
	return &Processor{config: DefaultConfig()}
}

// NewProcessorWithConfig creates a new image processor with custom configuration
func NewProcessorWithConfig(config Config) *Processor {
	return &Processor{config: config}
}

// Config returns the processor configuration
func (p *Processor) Config() Config {
	return p.config
}

// LoadImage loads an image from a file path with WebP support
func (p *Processor) LoadImage(path string) (image.Image, error) {
	// Try imaging.Open (registered decoders, including pgm)
	img, openErr := imaging.Open(path)
	if openErr == nil {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	img, err = p.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, multierr.Combine(openErr, err))
	}
	return img, nil
}

// DecodeBytes decodes an image from byte data with WebP support
func (p *Processor) DecodeBytes(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// LoadRaster loads any supported image file as a grayscale raster.
// P5 files are read directly; everything else is decoded and converted.
func (p *Processor) LoadRaster(path string) (*raster.Image, error) {
	if strings.EqualFold(extension(path), "pgm") && p.config.MaxDimension == 0 {
		return pgm.Load(path)
	}
	img, err := p.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return p.ToRaster(img)
}

// ToRaster converts img to a grayscale raster, shrinking it first when its
// long side exceeds MaxDimension.
func (p *Processor) ToRaster(img image.Image) (*raster.Image, error) {
	if maxDim := p.config.MaxDimension; maxDim > 0 {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w > maxDim || h > maxDim {
			if w >= h {
				img = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
			}
		}
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", b.Dx(), b.Dy())
	}
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return grayToRaster(gray), nil
}

// FromRaster returns img as a standard library grayscale image.
func FromRaster(img *raster.Image) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, img.Width(), img.Height()))
	copy(g.Pix, img.Pix())
	return g
}

func grayToRaster(g *image.Gray) *raster.Image {
	b := g.Bounds()
	out := raster.New(b.Dy(), b.Dx())
	for y := 0; y < b.Dy(); y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+b.Dx()]
		copy(out.Pix()[y*b.Dx():], row)
	}
	return out
}

// Dither binarizes img with serpentine Floyd-Steinberg error diffusion.
// The result is always a binary image.
func Dither(img *raster.Image) *raster.Image {
	if img.IsEmpty() {
		return raster.Empty()
	}
	palette := []color.Color{color.Black, color.White}
	ditherer := dither.NewDitherer(palette)
	ditherer.Matrix = dither.FloydSteinberg
	ditherer.Serpentine = true
	paletted := ditherer.DitherPaletted(FromRaster(img))

	// map palette entries back to black or white by luminance
	var levels [2]uint8
	for i := range levels {
		if color.GrayModel.Convert(paletted.Palette[i]).(color.Gray).Y >= 128 {
			levels[i] = raster.White
		}
	}
	out := raster.New(img.Height(), img.Width())
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			out.Set(y, x, levels[paletted.ColorIndexAt(x, y)])
		}
	}
	return out
}

// SaveRaster saves img to path. format selects the encoder; an empty format
// is taken from the file extension and then from the configured default.
func (p *Processor) SaveRaster(img *raster.Image, path, format string) error {
	if img.IsEmpty() {
		return fmt.Errorf("cannot save empty image")
	}
	if format == "" {
		format = extension(path)
	}
	if format == "" {
		format = p.config.Format
	}
	switch strings.ToLower(format) {
	case "pgm":
		return pgm.Save(path, img)
	case "webp":
		opts := &webp.Options{Lossless: p.config.Lossless, Quality: float32(p.config.Quality)}
		return writeFile(path, func(w io.Writer) error {
			return webp.Encode(w, FromRaster(img), opts)
		})
	case "jpg", "jpeg":
		return imaging.Save(FromRaster(img), path, imaging.JPEGQuality(p.config.Quality))
	case "png", "gif", "bmp", "tif", "tiff":
		f, err := imaging.FormatFromExtension(format)
		if err != nil {
			return err
		}
		return writeFile(path, func(w io.Writer) error {
			return imaging.Encode(w, FromRaster(img), f)
		})
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// Overlay renders base as RGB and tints every pixel where mask is white with c.
// It is used to visualize holes or background regions on top of the source.
func Overlay(base, mask *raster.Image, c color.NRGBA) (*image.NRGBA, error) {
	if base.Height() != mask.Height() || base.Width() != mask.Width() {
		return nil, fmt.Errorf("overlay size mismatch: %dx%d vs %dx%d",
			base.Width(), base.Height(), mask.Width(), mask.Height())
	}
	nrgba := imaging.Clone(FromRaster(base))
	for i, m := range mask.Pix() {
		if m != raster.White {
			continue
		}
		j := i * 4
		nrgba.Pix[j+0] = c.R
		nrgba.Pix[j+1] = c.G
		nrgba.Pix[j+2] = c.B
		nrgba.Pix[j+3] = c.A
	}
	return nrgba, nil
}

// SaveImage saves an arbitrary image, used for overlays
func (p *Processor) SaveImage(img image.Image, path string) error {
	switch strings.ToLower(extension(path)) {
	case "webp":
		opts := &webp.Options{Lossless: p.config.Lossless, Quality: float32(p.config.Quality)}
		return writeFile(path, func(w io.Writer) error {
			return webp.Encode(w, img, opts)
		})
	case "jpg", "jpeg":
		return imaging.Save(img, path, imaging.JPEGQuality(p.config.Quality))
	default:
		return imaging.Save(img, path)
	}
}

// writeFile creates path and runs encode on it. The close error is returned
// when encode succeeded, since it may carry a failed flush.
func writeFile(path string, encode func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return encode(f)
}

func extension(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 || strings.ContainsAny(path[i:], `/\`) {
		return ""
	}
	return strings.ToLower(path[i+1:])
}
