// Package config loads the gostego server configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration file.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Codec  CodecConfig  `yaml:"codec"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Address        string        `yaml:"address"`         // listen address, e.g. ":8080"
	MaxUploadMB    int64         `yaml:"max_upload_mb"`   // multipart request limit
	MaxPixels      int           `yaml:"max_pixels"`      // decoded image limit
	AllowedOrigins []string      `yaml:"allowed_origins"` // CORS; "*" allows any
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// CodecConfig holds embedding defaults.
type CodecConfig struct {
	// Compress zstd-compresses payloads unless the request says otherwise.
	Compress bool `yaml:"compress"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Address:        ":8080",
			MaxUploadMB:    32,
			MaxPixels:      64 << 20,
			AllowedOrigins: []string{"*"},
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
		},
	}
}

// Load reads path on top of Default. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	s := c.Server
	if s.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if s.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", s.MaxUploadMB)
	}
	if s.MaxPixels <= 0 {
		return fmt.Errorf("server.max_pixels must be positive, got %d", s.MaxPixels)
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}
	return nil
}

// MaxUploadBytes is MaxUploadMB in bytes.
func (s ServerConfig) MaxUploadBytes() int64 {
	return s.MaxUploadMB << 20
}
