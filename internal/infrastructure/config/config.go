package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Disk      DiskConfig
	Shell     ShellConfig
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// DiskConfig holds the root volume settings. A Size of 0 is unlimited.
type DiskConfig struct {
	Image    string `envconfig:"VFS_IMAGE" default:"virtual_disk.bin"`
	Size     uint64 `envconfig:"VFS_DISK_SIZE" default:"10485760"`
	AutoLoad bool   `envconfig:"VFS_AUTOLOAD" default:"true"`
	AutoSave bool   `envconfig:"VFS_AUTOSAVE" default:"true"`
}

// ShellConfig holds interactive shell configuration.
type ShellConfig struct {
	Prompt         string `envconfig:"VFS_PROMPT" default:"vfs"`
	PluginManifest string `envconfig:"VFS_PLUGIN_MANIFEST"`
}

// ServerConfig holds the HTTP daemon settings.
type ServerConfig struct {
	Port        string   `envconfig:"PORT" default:"8000"`
	Host        string   `envconfig:"HOST" default:"0.0.0.0"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Address is the listen address.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds per-client rate limiting for the HTTP surface.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

var levels = []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault falls back to Default when the environment is unusable.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate reports settings that would only fail later, at first use.
func (c *Config) Validate() error {
	var errs []error
	if c.Disk.Image == "" {
		errs = append(errs, errors.New("VFS_IMAGE must not be empty"))
	}
	if m := c.Shell.PluginManifest; m != "" {
		switch strings.ToLower(filepath.Ext(m)) {
		case ".yaml", ".yml", ".toml":
		default:
			errs = append(errs, fmt.Errorf("VFS_PLUGIN_MANIFEST %q: want .yaml, .yml or .toml", m))
		}
	}
	if !slices.Contains(levels, strings.ToLower(c.Logging.Level)) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not a level", c.Logging.Level))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Disk: DiskConfig{
			Image:    "virtual_disk.bin",
			Size:     10 << 20,
			AutoLoad: true,
			AutoSave: true,
		},
		Shell: ShellConfig{
			Prompt: "vfs",
		},
		Server: ServerConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			CORSOrigins: []string{"*"},
		},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
