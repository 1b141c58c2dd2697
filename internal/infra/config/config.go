// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Playback PlaybackConfig `yaml:"playback"`
	Session  SessionConfig  `yaml:"session"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Spotify  SpotifyConfig  `yaml:"spotify"`
	Admin    AdminConfig    `yaml:"admin"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr" default:":8080" validate:"required"`
}

// PlaybackConfig represents playback simulator configuration.
type PlaybackConfig struct {
	TickIntervalMs int     `yaml:"tick_interval_ms" default:"1000" validate:"gte=10,lte=60000"`
	InitialVolume  float64 `yaml:"initial_volume" default:"0.7" validate:"gte=0,lte=1"`
	EventBuffer    int     `yaml:"event_buffer" default:"64" validate:"gte=1"`
}

// SessionConfig represents visitor session configuration.
type SessionConfig struct {
	IdleTimeoutSec   int `yaml:"idle_timeout_sec" default:"1800" validate:"gte=0"`
	SweepIntervalSec int `yaml:"sweep_interval_sec" default:"60" validate:"gte=1"`
	MaxSessions      int `yaml:"max_sessions" default:"1000" validate:"gte=0"`
}

// CatalogConfig represents where the catalog is loaded from.
type CatalogConfig struct {
	Source SourceConfig `yaml:"source"`
}

// SourceConfig represents a catalog source and its type-specific settings.
type SourceConfig struct {
	Type     string         `yaml:"type" default:"static" validate:"oneof=static spotify"`
	Settings map[string]any `yaml:"settings"`
}

// SpotifyConfig represents Spotify API configuration.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Market       string `yaml:"market" validate:"omitempty,len=2" default:"US"`
}

// AdminConfig represents admin API configuration.
type AdminConfig struct {
	Token string `yaml:"token"` // Admin API is disabled when empty
}

// Default returns the configuration used when no file is given.
func Default() (*Config, error) {
	var cfg Config
	cfg.overrideFromEnv()
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}
	return &cfg, nil
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse parses YAML configuration, applies environment overrides and
// defaults, and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("BANDPLAYER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		c.Admin.Token = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if c.Catalog.Source.Type == "spotify" {
		if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
			return errors.New("spotify catalog source requires spotify.client_id and spotify.client_secret")
		}
	}

	return nil
}

// TickInterval returns the simulated-second interval.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Playback.TickIntervalMs) * time.Millisecond
}

// IdleTimeout returns the session idle timeout.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Session.IdleTimeoutSec) * time.Second
}

// SweepInterval returns the idle session sweep interval.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Session.SweepIntervalSec) * time.Second
}
