// Package grayimage provides pixel-exact transforms for 8-bit grayscale images.
//
// The toolkit loads any supported image as a single-channel raster, runs a
// pipeline of operations over it and writes the result back out:
//
//	package main
//
//	import (
//		"log"
//
//		"github.com/menta2k/grayimage"
//		"github.com/menta2k/grayimage/pkg/types"
//	)
//
//	func main() {
//		tk := grayimage.New()
//
//		ops, err := types.ParseOperations("threshold=128;fill-holes;translate=0,4")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		out, err := tk.ProcessImageFile("scan.pgm", types.ProcessingOptions{OutputDir: "out"}, ops)
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("wrote %s", out)
//	}
//
// The package is a thin layer over its components:
//
//  1. Raster (pkg/raster): the row-major grayscale image model
//  2. Transform (pkg/transform): translation and quarter-turn rotation, by copy or in place
//  3. Bilevel (pkg/bilevel): thresholding, background and hole extraction on binary images
//  4. PGM (pkg/pgm): the binary P5 codec
//  5. Processing (pkg/processing): decoding, encoding and dithering through the image libraries
//  6. Analyzer (pkg/analyzer): pixel statistics and validation
package grayimage

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/menta2k/grayimage/internal/utils"
	"github.com/menta2k/grayimage/pkg/analyzer"
	"github.com/menta2k/grayimage/pkg/bilevel"
	"github.com/menta2k/grayimage/pkg/processing"
	"github.com/menta2k/grayimage/pkg/raster"
	"github.com/menta2k/grayimage/pkg/transform"
	"github.com/menta2k/grayimage/pkg/types"
)

// Version of the grayimage library
const Version = "1.0.0"

// OverlayColor tints the pixels a region operation changed.
var OverlayColor = color.NRGBA{R: 255, G: 0, B: 0, A: 255}

// Toolkit provides a high-level interface for loading, transforming and saving images
type Toolkit struct {
	analyzer  *analyzer.ImageAnalyzer
	processor *processing.Processor
	logger    *zap.Logger
}

// New creates a new Toolkit with default configuration and a no-op logger
func New() *Toolkit {
	return &Toolkit{
		analyzer:  analyzer.New(),
		processor: processing.NewProcessor(),
		logger:    zap.NewNop(),
	}
}

// NewWithConfig creates a new Toolkit with custom configuration. A nil
// logger discards all output.
func NewWithConfig(analyzerConfig analyzer.Config, processingConfig processing.Config, logger *zap.Logger) *Toolkit {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Toolkit{
		analyzer:  analyzer.NewWithConfig(analyzerConfig),
		processor: processing.NewProcessorWithConfig(processingConfig),
		logger:    logger,
	}
}

// AnalysisResult contains analysis results for an image
type AnalysisResult struct {
	Info      analyzer.ImageInfo `json:"info"`
	Histogram [256]int           `json:"histogram"`
}

// PipelineResult is the outcome of ApplyAll.
type PipelineResult struct {
	Image *raster.Image
	// Changed is white where the last fill-holes or background step altered
	// its input. It is nil when the pipeline had no such step, and it is not
	// transformed by geometric steps that follow.
	Changed *raster.Image
}

// LoadImage loads an image file as a grayscale raster
func (t *Toolkit) LoadImage(path string) (*raster.Image, error) {
	return t.processor.LoadRaster(path)
}

// LoadImageFromReader decodes an image from an io.Reader
func (t *Toolkit) LoadImageFromReader(reader io.Reader) (*raster.Image, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	img, err := t.processor.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return t.processor.ToRaster(img)
}

// SaveImage saves a raster, picking the encoder from the file extension
func (t *Toolkit) SaveImage(img *raster.Image, path string) error {
	return t.processor.SaveRaster(img, path, "")
}

// Apply runs a single operation. img is never modified.
func (t *Toolkit) Apply(img *raster.Image, op types.Operation) (*raster.Image, error) {
	res, err := t.ApplyAll(img, []types.Operation{op})
	if err != nil {
		return nil, err
	}
	return res.Image, nil
}

// ApplyAll runs ops in order over a private copy of img. Geometric steps
// work in place on that copy; the others allocate their result.
func (t *Toolkit) ApplyAll(img *raster.Image, ops []types.Operation) (PipelineResult, error) {
	work := img.Clone()
	var changed *raster.Image

	for i, op := range ops {
		var err error
		switch op.Kind {
		case types.Translate:
			transform.TranslateInPlace(work, op.DY, op.DX)
		case types.RotateCW:
			transform.RotateCW90(work)
		case types.RotateCCW:
			transform.RotateCCW90(work)
		case types.Threshold:
			work = bilevel.Threshold(work, op.Threshold)
		case types.Dither:
			work = processing.Dither(work)
		case types.Invert:
			work = bilevel.Invert(work)
		case types.FillHoles, types.Background:
			var out *raster.Image
			if op.Kind == types.FillHoles {
				out, err = bilevel.FillHoles(work)
			} else {
				out, err = bilevel.Background(work)
			}
			if err == nil {
				changed = diffMask(work, out)
				work = out
			}
		default:
			err = fmt.Errorf("%w: %q", types.ErrUnknownOperation, op.Kind)
		}
		if err != nil {
			return PipelineResult{}, fmt.Errorf("step %d (%s): %w", i+1, op, err)
		}
		t.logger.Debug("applied operation",
			zap.Int("step", i+1),
			zap.Stringer("op", op),
			zap.Int("width", work.Width()),
			zap.Int("height", work.Height()))
	}

	return PipelineResult{Image: work, Changed: changed}, nil
}

// diffMask is white where a and b differ. Both must share dimensions.
func diffMask(a, b *raster.Image) *raster.Image {
	mask := raster.Empty()
	if a.IsEmpty() {
		return mask
	}
	mask = raster.New(a.Height(), a.Width())
	bp := b.Pix()
	mp := mask.Pix()
	for i, p := range a.Pix() {
		if p != bp[i] {
			mp[i] = raster.White
		}
	}
	return mask
}

// AnalyzeImage validates img and reports its statistics
func (t *Toolkit) AnalyzeImage(img *raster.Image) (AnalysisResult, error) {
	if err := t.analyzer.ValidateImage(img); err != nil {
		return AnalysisResult{}, err
	}
	return AnalysisResult{
		Info:      t.analyzer.GetImageInfo(img),
		Histogram: t.analyzer.Histogram(img),
	}, nil
}

// GetImageInfo returns basic information about an image
func (t *Toolkit) GetImageInfo(img *raster.Image) analyzer.ImageInfo {
	return t.analyzer.GetImageInfo(img)
}

// ValidateImage checks if an image meets requirements
func (t *Toolkit) ValidateImage(img *raster.Image) error {
	return t.analyzer.ValidateImage(img)
}

// ProcessImageFile is a convenience function that loads an image, runs ops
// and saves the result. It returns the path written.
func (t *Toolkit) ProcessImageFile(inputPath string, opts types.ProcessingOptions, ops []types.Operation) (string, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}

	img, err := t.LoadImage(inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to load image: %w", err)
	}

	if err := t.ValidateImage(img); err != nil {
		return "", fmt.Errorf("image validation failed: %w", err)
	}

	res, err := t.ApplyAll(img, ops)
	if err != nil {
		return "", fmt.Errorf("processing failed: %w", err)
	}

	format := opts.Format
	if format == "" {
		format = t.processor.Config().Format
	}
	if err := utils.EnsureDir(opts.OutputDir); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := utils.GenerateOutputFilename(inputPath, opts.OutputDir, opts.Prefix, opts.Suffix, format)
	if err := t.processor.SaveRaster(res.Image, outputPath, ""); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", outputPath, err)
	}
	t.logger.Info("wrote image",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Int("operations", len(ops)))

	if opts.Overlay && res.Changed != nil && !res.Changed.IsEmpty() {
		if err := t.writeOverlay(inputPath, opts, res); err != nil {
			return outputPath, err
		}
	}

	return outputPath, nil
}

func (t *Toolkit) writeOverlay(inputPath string, opts types.ProcessingOptions, res PipelineResult) error {
	overlay, err := processing.Overlay(res.Image, res.Changed, OverlayColor)
	if err != nil {
		// a geometric step after the region step changed the dimensions
		t.logger.Warn("overlay skipped", zap.String("input", inputPath), zap.Error(err))
		return nil
	}
	path := utils.GenerateOutputFilename(inputPath, opts.OutputDir, opts.Prefix, opts.Suffix+"_overlay", "png")
	if err := t.processor.SaveImage(overlay, path); err != nil {
		return fmt.Errorf("failed to save overlay %s: %w", path, err)
	}
	t.logger.Info("wrote overlay", zap.String("output", path))
	return nil
}

// ProcessDirectory runs ProcessImageFile over every image below inputDir.
// Failures are logged and collected; the remaining files are still processed.
func (t *Toolkit) ProcessDirectory(inputDir string, opts types.ProcessingOptions, ops []types.Operation) ([]string, error) {
	files, err := utils.ListImageFiles(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", inputDir, err)
	}

	var outputs []string
	var errs error
	for _, file := range files {
		out, err := t.ProcessImageFile(file, opts, ops)
		if err != nil {
			t.logger.Error("processing failed", zap.String("input", file), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", filepath.Base(file), err))
			continue
		}
		outputs = append(outputs, out)
	}
	return outputs, errs
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
