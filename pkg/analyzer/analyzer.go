package analyzer

import (
	"fmt"

	"github.com/menta2k/grayimage/pkg/bilevel"
	"github.com/menta2k/grayimage/pkg/raster"
)

// ImageAnalyzer reports pixel statistics and validates raster images
type ImageAnalyzer struct {
	config Config
}

// Config holds configuration for the image analyzer
type Config struct {
	MinImageSize int
	// RequireBinary makes ValidateImage reject images with gray samples.
	RequireBinary bool
}

// New creates a new ImageAnalyzer with default configuration
func New() *ImageAnalyzer {
	return &ImageAnalyzer{
		config: Config{
			MinImageSize:  1,
			RequireBinary: false,
		},
	}
}

// NewWithConfig creates a new ImageAnalyzer with custom configuration
func NewWithConfig(config Config) *ImageAnalyzer {
	return &ImageAnalyzer{config: config}
}

// ImageInfo contains basic image metadata and pixel statistics
type ImageInfo struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	Area        int     `json:"area"`
	Binary      bool    `json:"binary"`
	BlackPixels int     `json:"black_pixels"`
	WhitePixels int     `json:"white_pixels"`
	GrayPixels  int     `json:"gray_pixels"`
	// Objects and Holes are only filled in for binary images.
	Objects int `json:"objects"`
	Holes   int `json:"holes"`
}

// GetImageInfo returns basic information about an image
func (a *ImageAnalyzer) GetImageInfo(img *raster.Image) ImageInfo {
	width, height := img.Width(), img.Height()
	info := ImageInfo{
		Width:  width,
		Height: height,
		Area:   width * height,
		Binary: bilevel.IsBinary(img),
	}
	if height > 0 {
		info.AspectRatio = float64(width) / float64(height)
	}
	for _, p := range img.Pix() {
		switch p {
		case raster.Black:
			info.BlackPixels++
		case raster.White:
			info.WhitePixels++
		default:
			info.GrayPixels++
		}
	}
	if info.Binary {
		// IsBinary held, so neither call can fail
		objects, _ := bilevel.Components(img, raster.White)
		holes, _ := bilevel.Holes(img)
		info.Objects = len(objects)
		info.Holes = len(holes)
	}
	return info
}

// Histogram counts how many pixels hold each of the 256 gray levels
func (a *ImageAnalyzer) Histogram(img *raster.Image) [256]int {
	var hist [256]int
	for _, p := range img.Pix() {
		hist[p]++
	}
	return hist
}

// ValidateImage checks if an image meets minimum requirements
func (a *ImageAnalyzer) ValidateImage(img *raster.Image) error {
	if img.IsEmpty() {
		return fmt.Errorf("image is empty")
	}
	if img.Width() < a.config.MinImageSize || img.Height() < a.config.MinImageSize {
		return fmt.Errorf("image too small: %dx%d (minimum: %d)",
			img.Width(), img.Height(), a.config.MinImageSize)
	}
	if a.config.RequireBinary && !bilevel.IsBinary(img) {
		return fmt.Errorf("image validation failed: %w", bilevel.ErrNotBinary)
	}
	return nil
}
