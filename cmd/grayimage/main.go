package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/menta2k/grayimage"
	"github.com/menta2k/grayimage/internal/config"
	"github.com/menta2k/grayimage/internal/logging"
	"github.com/menta2k/grayimage/internal/utils"
	"github.com/menta2k/grayimage/pkg/analyzer"
	"github.com/menta2k/grayimage/pkg/processing"
	"github.com/menta2k/grayimage/pkg/types"
)

func main() {
	var in, outDir, ops, ext, prefix, suffix string
	var configPath, saveConfig, mode string
	var quality, maxDim int
	var lossless, info, overlay, requireBinary bool

	flag.StringVar(&in, "in", "", "input image or directory (pgm/png/jpg/gif/bmp/tiff/webp)")
	flag.StringVar(&outDir, "out", "", "output directory (default from config: ./output)")
	flag.StringVar(&ops, "ops", "", `operations separated by ';', e.g. "threshold=128;fill-holes;translate=0,-2;rotate-cw"`)

	flag.StringVar(&ext, "ext", "", "output format: pgm|png|jpg|gif|bmp|tiff|webp (default from config: pgm)")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP output quality (1-100)")
	flag.BoolVar(&lossless, "lossless", true, "WebP output lossless mode")
	flag.StringVar(&prefix, "prefix", "", "output filename prefix")
	flag.StringVar(&suffix, "suffix", "", "output filename suffix")
	flag.IntVar(&maxDim, "maxdim", 0, "shrink inputs whose long side exceeds this (px), 0=original")
	flag.BoolVar(&requireBinary, "binary", false, "reject inputs that are not strictly black and white")

	flag.StringVar(&configPath, "config", "", "config file (json|yaml)")
	flag.StringVar(&saveConfig, "save-config", "", "write the effective configuration to this file and exit")
	flag.StringVar(&mode, "mode", "", "log mode: debug|release")

	flag.BoolVar(&info, "info", false, "print image statistics as JSON instead of processing")
	flag.BoolVar(&overlay, "overlay", false, "also write a PNG marking pixels changed by fill-holes/background")

	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}

	// explicitly set flags win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			cfg.Output.OutputDir = outDir
		case "ops":
			cfg.Processing.Operations = ops
		case "ext":
			cfg.Output.DefaultFormat = ext
		case "quality":
			cfg.Output.Quality = quality
		case "lossless":
			cfg.Output.Lossless = lossless
		case "prefix":
			cfg.Output.Prefix = prefix
		case "suffix":
			cfg.Output.Suffix = suffix
		case "maxdim":
			cfg.Processing.MaxDimension = maxDim
		case "binary":
			cfg.Analyzer.RequireBinary = requireBinary
		case "mode":
			cfg.Log.Mode = mode
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logging.Sync(logger)

	if saveConfig != "" {
		if err := cfg.SaveToFile(saveConfig); err != nil {
			logger.Fatal("save config failed", zap.Error(err))
		}
		logger.Info("wrote config", zap.String("path", saveConfig))
		return
	}

	if in == "" {
		log.Fatalf("usage: %s -in input.pgm|dir [-ops \"threshold=128;fill-holes\"] [-out outdir] [-ext pgm|png|webp] [-config cfg.yaml] [-info]", filepath.Base(os.Args[0]))
	}

	pipeline, err := types.ParseOperations(cfg.Processing.Operations)
	if err != nil {
		logger.Fatal("invalid operations", zap.String("ops", cfg.Processing.Operations), zap.Error(err))
	}

	tk := grayimage.NewWithConfig(
		analyzer.Config{
			MinImageSize:  cfg.Analyzer.MinImageSize,
			RequireBinary: cfg.Analyzer.RequireBinary,
		},
		processing.Config{
			MaxDimension: cfg.Processing.MaxDimension,
			Format:       cfg.Output.DefaultFormat,
			Quality:      cfg.Output.Quality,
			Lossless:     cfg.Output.Lossless,
		},
		logger,
	)

	if info {
		if err := printInfo(tk, in); err != nil {
			logger.Fatal("analysis failed", zap.String("input", in), zap.Error(err))
		}
		return
	}

	opts := types.ProcessingOptions{
		OutputDir: cfg.Output.OutputDir,
		Prefix:    cfg.Output.Prefix,
		Suffix:    cfg.Output.Suffix,
		Overlay:   overlay,
	}

	logger.Debug("starting",
		zap.String("input", in),
		zap.Stringers("operations", pipeline),
		zap.String("format", cfg.Output.DefaultFormat))

	if utils.DirExists(in) {
		outputs, err := tk.ProcessDirectory(in, opts, pipeline)
		logger.Info("batch finished", zap.Int("written", len(outputs)))
		if err != nil {
			logger.Fatal("batch had failures", zap.Error(err))
		}
		return
	}

	if _, err := tk.ProcessImageFile(in, opts, pipeline); err != nil {
		logger.Fatal("processing failed", zap.String("input", in), zap.Error(err))
	}
}

func printInfo(tk *grayimage.Toolkit, path string) error {
	img, err := tk.LoadImage(path)
	if err != nil {
		return err
	}
	res, err := tk.AnalyzeImage(img)
	if err != nil {
		return err
	}
	js, err := json.MarshalIndent(res.Info, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(js))
	return nil
}
