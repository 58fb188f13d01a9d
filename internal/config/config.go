// Package config provides configuration loading and structs for the Docsight server.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug  bool         `yaml:"debug"`
	Server ServerConfig `yaml:"server"`
	Render RenderConfig `yaml:"render"`
	Vision VisionConfig `yaml:"vision"`
	Upload UploadConfig `yaml:"upload"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	MaxUploadMB           int64  `yaml:"max_upload_mb"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// MaxUploadBytes returns the request body cap in bytes.
func (s *ServerConfig) MaxUploadBytes() int64 {
	return s.MaxUploadMB << 20
}

// RequestTimeout returns the per-request timeout applied by the router.
func (s *ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// RenderConfig holds page rasterization settings.
type RenderConfig struct {
	DPI            int `yaml:"dpi"`
	Workers        int `yaml:"workers"`
	JPEGQuality    int `yaml:"jpeg_quality"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout returns the bound on a whole-document render fan-out.
func (r *RenderConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// VisionConfig holds model service settings. The API key is deliberately not
// here: it is a secret and comes from the environment.
type VisionConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	MaxTokens      int64  `yaml:"max_tokens"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the bound on one model service call.
func (v *VisionConfig) Timeout() time.Duration {
	return time.Duration(v.TimeoutSeconds) * time.Second
}

// UploadConfig holds the upload spool settings.
type UploadConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads and parses the config file at path and applies defaults.
// An empty path returns pure defaults, so the server runs without a config file.
// Returns an error if a given file cannot be read or parsed.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	ApplyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Render.DPI <= 0 {
		return fmt.Errorf("render.dpi must be a positive integer, got %d", cfg.Render.DPI)
	}
	if cfg.Render.JPEGQuality < 1 || cfg.Render.JPEGQuality > 100 {
		return fmt.Errorf("render.jpeg_quality must be in [1,100], got %d", cfg.Render.JPEGQuality)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid port, got %d", cfg.Server.Port)
	}
	return nil
}
