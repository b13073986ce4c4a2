// Package config loads the server's YAML configuration and turns it into
// detector options. The detector itself never reads configuration; the
// binary builds Options here and passes them explicitly.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/image-change-mcp/internal/detection"
	"github.com/ironsheep/image-change-mcp/internal/imaging"
)

// Environment variables consulted by Load and ApplyEnv.
const (
	EnvConfigPath = "IMAGE_CHANGE_CONFIG"
	EnvThreshold  = "IMAGE_CHANGE_THRESHOLD"
	EnvTopN       = "IMAGE_CHANGE_TOP_N"
	EnvMinArea    = "IMAGE_CHANGE_MIN_AREA"
)

// Config holds the application configuration
type Config struct {
	Detection DetectionConfig `yaml:"detection"`
	Output    OutputConfig    `yaml:"output"`
	OCR       OCRConfig       `yaml:"ocr"`
}

// DetectionConfig holds the default comparison parameters
type DetectionConfig struct {
	Threshold   float64 `yaml:"threshold"`
	TopN        int     `yaml:"top_n"`
	MinArea     int     `yaml:"min_area"`
	WindowSize  int     `yaml:"window_size"`
	K1          float64 `yaml:"k1"`
	K2          float64 `yaml:"k2"`
	BlurSigma   float64 `yaml:"blur_sigma"`
	AllowResize bool    `yaml:"allow_resize"`
	Workers     int     `yaml:"workers"`
}

// OutputConfig holds configuration for the diff image
type OutputConfig struct {
	Annotate    bool   `yaml:"annotate"`
	BoxColor    string `yaml:"box_color"`
	JPEGQuality int    `yaml:"jpeg_quality"`
}

// OCRConfig holds configuration for reading text in changed regions
type OCRConfig struct {
	Language string `yaml:"language"`
}

// Default returns a configuration with default values
func Default() *Config {
	d := detection.DefaultOptions()
	return &Config{
		Detection: DetectionConfig{
			Threshold:   d.Threshold,
			TopN:        d.TopN,
			MinArea:     d.MinArea,
			WindowSize:  d.WindowSize,
			K1:          d.K1,
			K2:          d.K2,
			BlurSigma:   d.BlurSigma,
			AllowResize: d.AllowResize,
			Workers:     d.Workers,
		},
		Output: OutputConfig{
			Annotate:    false,
			BoxColor:    "#00FFFF",
			JPEGQuality: d.JPEGQuality,
		},
		OCR: OCRConfig{
			Language: "eng",
		},
	}
}

// LoadFromFile loads configuration from a YAML file. Keys missing from the
// file keep their default values; unknown keys are an error.
func LoadFromFile(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	// An empty file decodes as io.EOF and leaves the defaults in place.
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load reads the file at path when it is non-empty, otherwise the file named
// by IMAGE_CHANGE_CONFIG when set, otherwise defaults. Environment overrides
// are applied and the result validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	cfg := Default()
	if path != "" {
		loaded, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides detection defaults from environment variables.
// getenv is os.Getenv in production and a map lookup in tests.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvThreshold); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvThreshold, err)
		}
		c.Detection.Threshold = f
	}
	if v := getenv(EnvTopN); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTopN, err)
		}
		c.Detection.TopN = n
	}
	if v := getenv(EnvMinArea); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMinArea, err)
		}
		c.Detection.MinArea = n
	}
	return nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := imaging.ParseHexColor(c.Output.BoxColor); err != nil {
		return fmt.Errorf("output.box_color: %w", err)
	}
	if c.OCR.Language == "" {
		return fmt.Errorf("ocr.language cannot be empty")
	}
	if _, err := c.DetectionOptions(); err != nil {
		return err
	}
	return nil
}

// DetectionOptions converts the configuration into detector options.
func (c *Config) DetectionOptions() (detection.Options, error) {
	box, err := imaging.ParseHexColor(c.Output.BoxColor)
	if err != nil {
		return detection.Options{}, fmt.Errorf("output.box_color: %w", err)
	}

	opts := detection.Options{
		Threshold:   c.Detection.Threshold,
		TopN:        c.Detection.TopN,
		MinArea:     c.Detection.MinArea,
		WindowSize:  c.Detection.WindowSize,
		K1:          c.Detection.K1,
		K2:          c.Detection.K2,
		BlurSigma:   c.Detection.BlurSigma,
		AllowResize: c.Detection.AllowResize,
		Annotate:    c.Output.Annotate,
		BoxColor:    box,
		Workers:     c.Detection.Workers,
		JPEGQuality: c.Output.JPEGQuality,
	}
	if err := opts.Validate(); err != nil {
		return detection.Options{}, err
	}
	return opts, nil
}
