// Package config provides configuration loading and management for tractfilter.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"tractfilter/pkg/extraction"
	"tractfilter/pkg/phantom"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores to use for fiber classification
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Extraction parameters
	Extraction struct {
		// Mode is "overlap" or "endpoints"
		Mode string `yaml:"mode"`

		// InputType is "scalar" for threshold maps or "label" for label maps
		InputType string `yaml:"inputType"`

		// Threshold is the exclusive lower bound for inside voxels in scalar maps
		Threshold float64 `yaml:"threshold"`

		// Labels lists the label values counted as inside in label maps
		Labels []int `yaml:"labels"`

		// OverlapFraction is the fraction of fiber points that must lie inside an ROI
		OverlapFraction float64 `yaml:"overlapFraction"`

		// BothEnds requires both fiber endpoints inside the ROI in endpoints mode
		BothEnds bool `yaml:"bothEnds"`

		// Interpolate enables trilinear sampling of the ROI images
		Interpolate bool `yaml:"interpolate"`

		// DontResampleFibers disables resampling before overlap classification
		DontResampleFibers bool `yaml:"dontResampleFibers"`
	} `yaml:"extraction"`

	// Output parameters
	Output struct {
		// NoPositives suppresses the positive bundles
		NoPositives bool `yaml:"noPositives"`

		// NoNegatives suppresses the negative bundle
		NoNegatives bool `yaml:"noNegatives"`

		// Verbose enables debug logging
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`

	// Phantom parameters for the synthetic demo input
	Phantom struct {
		NumFibers      int     `yaml:"numFibers"`
		PointsPerFiber int     `yaml:"pointsPerFiber"`
		GridSize       int     `yaml:"gridSize"`
		Spacing        float64 `yaml:"spacing"`
		Jitter         float64 `yaml:"jitter"`
		Seed           uint64  `yaml:"seed"`
	} `yaml:"phantom"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default

	defaults := extraction.DefaultParams()
	cfg.Extraction.Mode = defaults.Mode.String()
	cfg.Extraction.InputType = defaults.InputType.String()
	cfg.Extraction.Threshold = defaults.Threshold
	cfg.Extraction.Labels = defaults.Labels
	cfg.Extraction.OverlapFraction = defaults.OverlapFraction
	cfg.Extraction.BothEnds = defaults.BothEnds
	cfg.Extraction.Interpolate = defaults.Interpolate
	cfg.Extraction.DontResampleFibers = defaults.DontResampleFibers

	cfg.Output.Verbose = false

	ph := phantom.DefaultOptions()
	cfg.Phantom.NumFibers = ph.NumFibers
	cfg.Phantom.PointsPerFiber = ph.PointsPerFiber
	cfg.Phantom.GridSize = ph.GridSize
	cfg.Phantom.Spacing = ph.Spacing
	cfg.Phantom.Jitter = ph.Jitter
	cfg.Phantom.Seed = ph.Seed

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// ExtractionParams converts the configuration into validated extraction parameters
func (c *Config) ExtractionParams() (extraction.Params, error) {
	mode, err := extraction.ParseMode(c.Extraction.Mode)
	if err != nil {
		return extraction.Params{}, err
	}
	inputType, err := extraction.ParseInputType(c.Extraction.InputType)
	if err != nil {
		return extraction.Params{}, err
	}

	params := extraction.Params{
		Mode:               mode,
		InputType:          inputType,
		Threshold:          c.Extraction.Threshold,
		Labels:             append([]int(nil), c.Extraction.Labels...),
		OverlapFraction:    c.Extraction.OverlapFraction,
		BothEnds:           c.Extraction.BothEnds,
		Interpolate:        c.Extraction.Interpolate,
		DontResampleFibers: c.Extraction.DontResampleFibers,
		NoPositives:        c.Output.NoPositives,
		NoNegatives:        c.Output.NoNegatives,
		NumCores:           c.Processing.NumCores,
	}
	if err := params.Validate(); err != nil {
		return extraction.Params{}, err
	}
	return params, nil
}

// PhantomOptions converts the phantom section into generator options
func (c *Config) PhantomOptions() phantom.Options {
	return phantom.Options{
		NumFibers:      c.Phantom.NumFibers,
		PointsPerFiber: c.Phantom.PointsPerFiber,
		GridSize:       c.Phantom.GridSize,
		Spacing:        c.Phantom.Spacing,
		Jitter:         c.Phantom.Jitter,
		Seed:           c.Phantom.Seed,
	}
}
