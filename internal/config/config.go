// Package config loads gocalib settings from YAML and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/philipparndt/gocalib/pkg/store"
	"github.com/philipparndt/gocalib/pkg/tools"
	"github.com/philipparndt/gocalib/pkg/units"
	"gopkg.in/yaml.v3"
)

// Config holds the mat geometry, storage and UI settings
type Config struct {
	// Mat size in units
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Unit   string  `yaml:"unit"`

	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
	Window WindowConfig `yaml:"window"`
	Tool   string       `yaml:"tool"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type WindowConfig struct {
	Width      float32 `yaml:"width"`
	Height     float32 `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
}

// Flags are command line overrides. Zero values leave the file value in place.
type Flags struct {
	Width      float64
	Height     float64
	Unit       string
	Backend    string
	StorePath  string
	LogLevel   string
	LogFormat  string
	Fullscreen bool
	Tool       string
}

// DefaultDir is the store directory relative to the user's home
const DefaultDir = ".gocalib"

// Default returns the configuration for a 24 × 18 inch cutting mat
func Default() Config {
	return Config{
		Width:  24,
		Height: 18,
		Unit:   "in",
		Store: StoreConfig{
			Backend: "file",
			Path:    defaultStorePath(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 800,
		},
		Tool: "mirror",
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDir
	}
	return filepath.Join(home, DefaultDir)
}

// DefaultFile is the config file read when no path is given
func DefaultFile() string {
	return filepath.Join(defaultStorePath(), "config.yaml")
}

// Load reads a YAML config file on top of the defaults.
// A missing file at the default location is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve applies command line overrides and expands the store path
func (c *Config) Resolve(flags Flags) {
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Unit != "" {
		c.Unit = flags.Unit
	}
	if flags.Backend != "" {
		c.Store.Backend = flags.Backend
	}
	if flags.StorePath != "" {
		c.Store.Path = flags.StorePath
	}
	if flags.LogLevel != "" {
		c.Log.Level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		c.Log.Format = flags.LogFormat
	}
	if flags.Fullscreen {
		c.Window.Fullscreen = true
	}
	if flags.Tool != "" {
		c.Tool = flags.Tool
	}

	if strings.HasPrefix(c.Store.Path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			c.Store.Path = filepath.Join(home, c.Store.Path[2:])
		}
	}
}

// Density returns the points-per-unit of the configured unit
func (c Config) Density() (float64, error) {
	return units.Density(c.Unit)
}

// Validate checks that the configuration can be used
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("mat size must be positive, got %gx%g", c.Width, c.Height))
	}
	if _, err := c.Density(); err != nil {
		errs = append(errs, err)
	}
	if !contains(store.Backends, c.Store.Backend) {
		errs = append(errs, fmt.Errorf("unknown store backend %q (supported: %s)", c.Store.Backend, strings.Join(store.Backends, ", ")))
	}
	if c.Tool != "" && !contains(tools.Names(), c.Tool) {
		errs = append(errs, fmt.Errorf("%w: %q", tools.ErrUnknownTool, c.Tool))
	}
	return errors.Join(errs...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
