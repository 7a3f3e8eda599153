// Package config provides configuration loading and management for
// coastlabel. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Segmentation parameters
	Segmentation struct {
		// NumSuperpixels is the target superpixel count for SLIC
		NumSuperpixels int `yaml:"numSuperpixels"`

		// Compactness trades color similarity against spatial proximity
		Compactness float64 `yaml:"compactness"`

		// Iterations is the number of SLIC assignment/update rounds
		Iterations int `yaml:"iterations"`

		// NumClasses is the number of class codes assigned by clustering
		NumClasses int `yaml:"numClasses"`
	} `yaml:"segmentation"`

	// Render parameters
	Render struct {
		// OverlayAlpha controls how strongly class colors tint the photo
		OverlayAlpha float64 `yaml:"overlayAlpha"`

		// MaxWidth and MaxHeight bound the working image size; larger
		// photos are scaled down before segmentation
		MaxWidth  int `yaml:"maxWidth"`
		MaxHeight int `yaml:"maxHeight"`
	} `yaml:"render"`

	// Output parameters
	Output struct {
		// SaveIntermediary determines whether to save intermediary
		// processing results
		SaveIntermediary bool `yaml:"saveIntermediary"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default segmentation parameters
	cfg.Segmentation.NumSuperpixels = 400
	cfg.Segmentation.Compactness = 25
	cfg.Segmentation.Iterations = 10
	cfg.Segmentation.NumClasses = 6

	// Set default render parameters
	cfg.Render.OverlayAlpha = 0.45
	cfg.Render.MaxWidth = 1600
	cfg.Render.MaxHeight = 1200

	// Set default output parameters
	cfg.Output.SaveIntermediary = false
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

	// Write to file
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
