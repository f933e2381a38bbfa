package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	config   *Config
	envFiles []string
}

// NewLoader creates a loader that reads ".env" from the working directory
// when present.
func NewLoader() *Loader {
	return NewLoaderWithEnvFiles(".env")
}

// NewLoaderWithEnvFiles creates a loader reading the given dotenv files.
// Missing files are ignored. Variables already set in the process
// environment win over dotenv values.
func NewLoaderWithEnvFiles(files ...string) *Loader {
	return &Loader{
		config:   NewConfig(),
		envFiles: files,
	}
}

// Load applies, in order: defaults, dotenv files, environment variables.
// Flag overrides are applied by LoadWithOverrides.
func (l *Loader) Load() (*Config, error) {
	for _, file := range l.envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
	}

	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		overrides.Apply(config)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ConfigOverrides holds command line flag overrides. Nil fields leave the
// loaded value alone.
type ConfigOverrides struct {
	CacheDir      *string
	CacheFilename *string
	RemoteURL     *string
	TimeFormat    *string
	BarWidth      *int
	ServerAddr    *string
	Timeout       *time.Duration
	Verbose       *bool
	Debug         *bool
}

// Apply copies every set override into config
func (o *ConfigOverrides) Apply(config *Config) {
	if o.CacheDir != nil {
		config.Cache.Dir = *o.CacheDir
	}
	if o.CacheFilename != nil {
		config.Cache.Filename = *o.CacheFilename
	}
	if o.RemoteURL != nil {
		config.Remote.URL = *o.RemoteURL
	}
	if o.TimeFormat != nil {
		config.Time.DisplayFormat = *o.TimeFormat
	}
	if o.BarWidth != nil {
		config.Display.BarWidth = *o.BarWidth
	}
	if o.ServerAddr != nil {
		config.Server.Addr = *o.ServerAddr
	}
	if o.Timeout != nil {
		config.Application.Timeout = *o.Timeout
	}
	if o.Verbose != nil {
		config.Application.Verbose = *o.Verbose
	}
	if o.Debug != nil {
		config.Application.Debug = *o.Debug
	}
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseIntWithFallback parses an integer string with a fallback value
func ParseIntWithFallback(s string, fallback int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return fallback
}

// ParseBoolWithFallback parses a boolean string with a fallback value
func ParseBoolWithFallback(s string, fallback bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}

// ParseUint32WithFallback parses a uint32 string with a fallback value
func ParseUint32WithFallback(s string, base int, fallback uint32) uint32 {
	if u, err := strconv.ParseUint(s, base, 32); err == nil {
		return uint32(u)
	}
	return fallback
}
