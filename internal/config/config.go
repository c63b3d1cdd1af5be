// Package config provides YAML-based configuration for the server.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Predictor  PredictorConfig  `yaml:"predictor"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port                 int    `yaml:"port"`
	BindAddress          string `yaml:"bind_address"`
	EnableCORS           bool   `yaml:"enable_cors"`
	AllowOrigins         string `yaml:"allow_origins"`
	BodyLimit            string `yaml:"body_limit"`
	ReadTimeoutSeconds   int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds  int    `yaml:"write_timeout_seconds"`
	EnableRequestLogging bool   `yaml:"enable_request_logging"`
}

// StorageConfig contains file and record storage settings.
type StorageConfig struct {
	DataDirectory    string `yaml:"data_directory"`
	UploadsDirectory string `yaml:"uploads_directory"`
	DatabasePath     string `yaml:"database_path"`
}

// ExtractionConfig contains job lifecycle settings.
type ExtractionConfig struct {
	JobMaxAgeMinutes       int `yaml:"job_max_age_minutes"`
	CleanupIntervalMinutes int `yaml:"cleanup_interval_minutes"`
}

// PredictorConfig tunes the prediction engine.
type PredictorConfig struct {
	RecentWindowYears int `yaml:"recent_window_years"`
	MaxSuggestions    int `yaml:"max_suggestions"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:                 8090,
			BindAddress:          "0.0.0.0",
			EnableCORS:           true,
			AllowOrigins:         "*",
			BodyLimit:            "50M",
			ReadTimeoutSeconds:   30,
			WriteTimeoutSeconds:  30,
			EnableRequestLogging: true,
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			UploadsDirectory: "./data/uploads",
			DatabasePath:     "./data/records.duckdb",
		},
		Extraction: ExtractionConfig{
			JobMaxAgeMinutes:       30,
			CleanupIntervalMinutes: 10,
		},
		Predictor: PredictorConfig{
			RecentWindowYears: 2,
			MaxSuggestions:    5,
		},
	}
}

// LoadConfig reads a YAML config file, falling back to defaults when the
// file is absent. Values missing from the file keep their defaults.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// EnsureDirectories creates the configured data directories.
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadsDirectory,
		filepath.Dir(c.Storage.DatabasePath),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}
