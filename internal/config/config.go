package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Analyzer   AnalyzerConfig   `mapstructure:"analyzer" json:"analyzer"`
	Processing ProcessingConfig `mapstructure:"processing" json:"processing"`
	Output     OutputConfig     `mapstructure:"output" json:"output"`
	Log        LogConfig        `mapstructure:"log" json:"log"`
}

// AnalyzerConfig holds configuration for image validation
type AnalyzerConfig struct {
	MinImageSize  int  `mapstructure:"min_image_size" json:"min_image_size"`
	RequireBinary bool `mapstructure:"require_binary" json:"require_binary"`
}

// ProcessingConfig holds configuration for decoding and the default pipeline
type ProcessingConfig struct {
	MaxDimension int `mapstructure:"max_dimension" json:"max_dimension"`
	// Operations is the default pipeline, e.g. "threshold=128;fill-holes".
	Operations string `mapstructure:"operations" json:"operations"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	DefaultFormat string `mapstructure:"default_format" json:"default_format"`
	Quality       int    `mapstructure:"quality" json:"quality"`
	Lossless      bool   `mapstructure:"lossless" json:"lossless"`
	OutputDir     string `mapstructure:"output_dir" json:"output_dir"`
	Prefix        string `mapstructure:"prefix" json:"prefix"`
	Suffix        string `mapstructure:"suffix" json:"suffix"`
}

// LogConfig holds logger settings
type LogConfig struct {
	// Mode is "debug" or "release".
	Mode string `mapstructure:"mode" json:"mode"`
}

var supportedFormats = []string{"pgm", "png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp"}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Analyzer: AnalyzerConfig{
			MinImageSize:  1,
			RequireBinary: false,
		},
		Processing: ProcessingConfig{
			MaxDimension: 0,
			Operations:   "",
		},
		Output: OutputConfig{
			DefaultFormat: "pgm",
			Quality:       90,
			Lossless:      true,
			OutputDir:     "./output",
			Prefix:        "",
			Suffix:        "_out",
		},
		Log: LogConfig{
			Mode: "debug",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("analyzer.min_image_size", d.Analyzer.MinImageSize)
	v.SetDefault("analyzer.require_binary", d.Analyzer.RequireBinary)

	v.SetDefault("processing.max_dimension", d.Processing.MaxDimension)
	v.SetDefault("processing.operations", d.Processing.Operations)

	v.SetDefault("output.default_format", d.Output.DefaultFormat)
	v.SetDefault("output.quality", d.Output.Quality)
	v.SetDefault("output.lossless", d.Output.Lossless)
	v.SetDefault("output.output_dir", d.Output.OutputDir)
	v.SetDefault("output.prefix", d.Output.Prefix)
	v.SetDefault("output.suffix", d.Output.Suffix)

	v.SetDefault("log.mode", d.Log.Mode)
}

// LoadFromFile loads configuration from a JSON or YAML file. Keys missing
// from the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	default:
		v.SetConfigType("json")
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Analyzer.MinImageSize < 1 {
		return fmt.Errorf("analyzer.min_image_size must be positive")
	}

	if c.Processing.MaxDimension < 0 {
		return fmt.Errorf("processing.max_dimension cannot be negative")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	if !isSupportedFormat(c.Output.DefaultFormat) {
		return fmt.Errorf("output.default_format %q is not supported", c.Output.DefaultFormat)
	}

	if c.Log.Mode != "debug" && c.Log.Mode != "release" {
		return fmt.Errorf("log.mode must be debug or release")
	}

	return nil
}

func isSupportedFormat(format string) bool {
	for _, f := range supportedFormats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "grayimage", "config.json")
}
