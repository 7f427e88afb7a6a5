// Package config provides configuration loading and management for voxelgrid.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumWorkers specifies how many CPU cores to use for parallel sampling
		NumWorkers int `yaml:"numWorkers"`

		// Spacing is the target grid spacing for resampling, in world units
		// per voxel. One shared value or one value per spatial axis.
		Spacing []float64 `yaml:"spacing"`

		// Interpolation selects the sampling mode, "linear" or "nearest"
		Interpolation string `yaml:"interpolation"`

		// Padding selects the out-of-bounds policy, "zeros", "reflection"
		// or "border"
		Padding string `yaml:"padding"`
	} `yaml:"processing"`

	// Smoothing parameters
	Smoothing struct {
		// Sigma is the Gaussian standard deviation in world units. One
		// shared value or one value per spatial axis. Zero disables
		// smoothing.
		Sigma []float64 `yaml:"sigma"`

		// Truncate bounds the kernel at this many standard deviations
		Truncate float64 `yaml:"truncate"`
	} `yaml:"smoothing"`

	// Cropping parameters
	Cropping struct {
		// ToNonzero crops the output to the bounding box of its nonzero
		// voxels before saving
		ToNonzero bool `yaml:"toNonzero"`

		// Margin expands the crop boundary, in world units
		Margin []float64 `yaml:"margin"`
	} `yaml:"cropping"`

	// Output parameters
	Output struct {
		// DType is the element type of saved volumes: "float64", "float32",
		// "int32", "int16", "uint8" or "bool"
		DType string `yaml:"dtype"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.NumWorkers = runtime.NumCPU() // Use all available cores by default
	cfg.Processing.Spacing = []float64{1.0}
	cfg.Processing.Interpolation = "linear"
	cfg.Processing.Padding = "zeros"

	// Set default smoothing parameters
	cfg.Smoothing.Sigma = []float64{0.0}
	cfg.Smoothing.Truncate = 4.0

	// Set default cropping parameters
	cfg.Cropping.ToNonzero = false
	cfg.Cropping.Margin = []float64{0.0}

	// Set default output parameters
	cfg.Output.DType = "float32"
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write config file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
