package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/blockview/decode"
	"github.com/lixenwraith/blockview/raster"
	"github.com/lixenwraith/blockview/terminal"
)

// envPrefix namespaces all environment overrides
const envPrefix = "BLOCKVIEW_"

// Config holds all configuration for the application
type Config struct {
	ColorMode  string `yaml:"color_mode"`
	Background string `yaml:"background"`
	Filter     string `yaml:"filter"`
	MaxPixels  int    `yaml:"max_pixels"`
	MaxBytes   int64  `yaml:"max_bytes"`
	HeaderRows int    `yaml:"header_rows"`
	Sound      bool   `yaml:"sound"`
	Debug      bool   `yaml:"debug"`
	LogLevel   string `yaml:"log_level"`
	LogDir     string `yaml:"log_dir"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		ColorMode:  "auto",
		Background: "#000000",
		Filter:     string(raster.FilterBilinear),
		MaxPixels:  decode.DefaultMaxPixels,
		MaxBytes:   decode.DefaultMaxBytes,
		HeaderRows: 4,
		LogLevel:   "info",
		LogDir:     "logs",
	}
}

// DefaultPath returns the per-user config file location
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "blockview", "config.yaml")
}

// Load builds configuration from defaults, an optional YAML file, a .env file and
// the environment, in increasing precedence.
// An explicit path must exist; with an empty path DefaultPath is used if present.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	// Load .env file if it exists (optional)
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ColorMode = getEnv("COLOR_MODE", c.ColorMode)
	c.Background = getEnv("BACKGROUND", c.Background)
	c.Filter = getEnv("FILTER", c.Filter)
	c.MaxPixels = getEnvAsInt("MAX_PIXELS", c.MaxPixels)
	c.MaxBytes = int64(getEnvAsInt("MAX_BYTES", int(c.MaxBytes)))
	c.HeaderRows = getEnvAsInt("HEADER_ROWS", c.HeaderRows)
	c.Sound = getEnvAsBool("SOUND", c.Sound)
	c.Debug = getEnvAsBool("DEBUG", c.Debug)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogDir = getEnv("LOG_DIR", c.LogDir)
}

// Validate checks every field that has a constrained domain
func (c *Config) Validate() error {
	var errs []error
	if _, err := terminal.ParseColorMode(c.ColorMode); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.BackgroundRGB(); err != nil {
		errs = append(errs, err)
	}
	if _, err := raster.ParseFilter(c.Filter); err != nil {
		errs = append(errs, err)
	}
	if c.MaxPixels <= 0 {
		errs = append(errs, fmt.Errorf("max_pixels must be positive, got %d", c.MaxPixels))
	}
	if c.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_bytes must be positive, got %d", c.MaxBytes))
	}
	if c.HeaderRows < 0 {
		errs = append(errs, fmt.Errorf("header_rows must not be negative, got %d", c.HeaderRows))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// BackgroundRGB parses Background as a hex color
func (c *Config) BackgroundRGB() (terminal.RGB, error) {
	col, err := colorful.Hex(strings.TrimSpace(c.Background))
	if err != nil {
		return terminal.RGBBlack, fmt.Errorf("background %q: %w", c.Background, err)
	}
	r, g, b := col.RGB255()
	return terminal.RGB{R: r, G: g, B: b}, nil
}

// Mode resolves ColorMode, detecting from the environment for "auto"
func (c *Config) Mode() terminal.ColorMode {
	mode, err := terminal.ParseColorMode(c.ColorMode)
	if err != nil {
		return terminal.DetectColorMode()
	}
	return mode
}

// FilterValue returns the parsed Filter, falling back to bilinear
func (c *Config) FilterValue() raster.Filter {
	f, err := raster.ParseFilter(c.Filter)
	if err != nil {
		return raster.FilterBilinear
	}
	return f
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(envPrefix + key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(envPrefix + key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
