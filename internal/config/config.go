// Package config loads the YAML configuration of the visualiser service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBlockSize is the on-screen size of one cell in pixels.
const DefaultBlockSize = 16

// Config holds all service configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Grid   GridConfig   `yaml:"grid"`
	Search SearchConfig `yaml:"search"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	AllowedOrigin string `yaml:"allowed_origin"`
}

// GridConfig sizes the grid. Explicit Width/Height win; otherwise the grid
// covers the viewport at BlockSize pixels per cell.
type GridConfig struct {
	Width          int      `yaml:"width"`
	Height         int      `yaml:"height"`
	ViewportWidth  int      `yaml:"viewport_width"`
	ViewportHeight int      `yaml:"viewport_height"`
	BlockSize      int      `yaml:"block_size"`
	Layout         []string `yaml:"layout"`
}

// SearchConfig holds pacing and algorithm settings
type SearchConfig struct {
	StepDelay    time.Duration `yaml:"step_delay"`
	Turbo        bool          `yaml:"turbo"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Frontier     string        `yaml:"frontier"` // linear | heap
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, fills defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.AllowedOrigin == "" {
		c.Server.AllowedOrigin = "*"
	}
	if c.Grid.BlockSize == 0 {
		c.Grid.BlockSize = DefaultBlockSize
	}
	if c.Grid.Width == 0 && c.Grid.ViewportWidth == 0 {
		c.Grid.ViewportWidth = 1280
	}
	if c.Grid.Height == 0 && c.Grid.ViewportHeight == 0 {
		c.Grid.ViewportHeight = 720
	}
	if c.Search.StepDelay == 0 {
		c.Search.StepDelay = 20 * time.Millisecond
	}
	if c.Search.PollInterval == 0 {
		c.Search.PollInterval = 100 * time.Millisecond
	}
	if c.Search.Frontier == "" {
		c.Search.Frontier = "linear"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	c.Search.Frontier = strings.ToLower(c.Search.Frontier)
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Grid.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("grid.block_size must be positive, got %d", c.Grid.BlockSize))
	} else if w, h := c.Grid.Dimensions(); w <= 0 || h <= 0 {
		errs = append(errs, fmt.Errorf("grid resolves to %dx%d cells", w, h))
	}
	if c.Search.StepDelay < 0 {
		errs = append(errs, errors.New("search.step_delay must not be negative"))
	}
	if c.Search.PollInterval < 0 {
		errs = append(errs, errors.New("search.poll_interval must not be negative"))
	}
	switch c.Search.Frontier {
	case "linear", "heap":
	default:
		errs = append(errs, fmt.Errorf("search.frontier must be 'linear' or 'heap', got %q", c.Search.Frontier))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be 'debug', 'info', 'warn' or 'error', got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be 'text' or 'json', got %q", c.Log.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Dimensions returns the grid size in cells.
func (g GridConfig) Dimensions() (width, height int) {
	width, height = g.Width, g.Height
	if g.BlockSize <= 0 {
		return width, height
	}
	if width == 0 {
		width = g.ViewportWidth / g.BlockSize
	}
	if height == 0 {
		height = g.ViewportHeight / g.BlockSize
	}
	return width, height
}

// Addr is the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
