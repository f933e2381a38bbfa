package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all configuration options for clockedin
type Config struct {
	Cache       CacheConfig
	Remote      RemoteConfig
	Auth        AuthConfig
	Time        TimeConfig
	Validation  ValidationConfig
	Display     DisplayConfig
	Sync        SyncConfig
	Server      ServerConfig
	Application ApplicationConfig
}

// CacheConfig locates the local cache database
type CacheConfig struct {
	Dir            string        `env:"CLOCKEDIN_CACHE_DIR"`
	Filename       string        `env:"CLOCKEDIN_CACHE_FILENAME"`
	QueryTimeout   time.Duration `env:"CLOCKEDIN_CACHE_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `env:"CLOCKEDIN_CACHE_WRITE_TIMEOUT"`
	DirPermissions uint32        `env:"CLOCKEDIN_CACHE_DIR_PERMISSIONS"`
}

// RemoteConfig describes the remote Postgres repository. An empty URL
// means the remote is not configured and the app stays local-only.
type RemoteConfig struct {
	URL          string        `env:"CLOCKEDIN_REMOTE_URL"`
	QueryTimeout time.Duration `env:"CLOCKEDIN_REMOTE_QUERY_TIMEOUT"`
	MaxOpenConns int           `env:"CLOCKEDIN_REMOTE_MAX_OPEN_CONNS"`
}

// AuthConfig holds the session token settings
type AuthConfig struct {
	JWTSecret      string `env:"CLOCKEDIN_JWT_SECRET"`
	KeyringService string `env:"CLOCKEDIN_KEYRING_SERVICE"`
}

// TimeConfig holds time formatting configuration
type TimeConfig struct {
	DisplayFormat string `env:"CLOCKEDIN_TIME_DISPLAY_FORMAT"`
}

// ValidationConfig holds the range checks applied to user input
type ValidationConfig struct {
	SubjectNameMinLength int     `env:"CLOCKEDIN_VALIDATION_SUBJECT_NAME_MIN"`
	SubjectNameMaxLength int     `env:"CLOCKEDIN_VALIDATION_SUBJECT_NAME_MAX"`
	MaxLogMinutes        int     `env:"CLOCKEDIN_VALIDATION_MAX_LOG_MINUTES"`
	MaxWeeklyGoal        float64 `env:"CLOCKEDIN_VALIDATION_MAX_WEEKLY_GOAL"`
}

// DisplayConfig holds terminal rendering options
type DisplayConfig struct {
	BarWidth int `env:"CLOCKEDIN_DISPLAY_BAR_WIDTH"`
}

// SyncConfig controls the local to remote hand-over on sign-in
type SyncConfig struct {
	MigrateOnSignIn bool `env:"CLOCKEDIN_SYNC_MIGRATE_ON_SIGN_IN"`
}

// ServerConfig holds the HTTP API settings
type ServerConfig struct {
	Addr         string `env:"CLOCKEDIN_SERVER_ADDR"`
	AllowOrigins string `env:"CLOCKEDIN_SERVER_ALLOW_ORIGINS"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `env:"CLOCKEDIN_APP_TIMEOUT"`
	Verbose bool          `env:"CLOCKEDIN_APP_VERBOSE"`
	Debug   bool          `env:"CLOCKEDIN_DEBUG"`
	LogDir  string        `env:"CLOCKEDIN_LOG_DIR"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	baseDir := filepath.Join(homeDir, ".clockedin")

	return &Config{
		Cache: CacheConfig{
			Dir:            baseDir,
			Filename:       "cache.db",
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0755,
		},
		Remote: RemoteConfig{
			QueryTimeout: 15 * time.Second,
			MaxOpenConns: 25,
		},
		Auth: AuthConfig{
			KeyringService: "clockedin",
		},
		Time: TimeConfig{
			DisplayFormat: "2006-01-02 15:04",
		},
		Validation: ValidationConfig{
			SubjectNameMinLength: 1,
			SubjectNameMaxLength: 100,
			MaxLogMinutes:        24 * 60,
			MaxWeeklyGoal:        168,
		},
		Display: DisplayConfig{
			BarWidth: 24,
		},
		Sync: SyncConfig{
			MigrateOnSignIn: true,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8787",
			AllowOrigins: "*",
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
			LogDir:  filepath.Join(baseDir, "logs"),
		},
	}
}

// GetCachePath returns the full path to the cache database file
func (c *Config) GetCachePath() string {
	return filepath.Join(c.Cache.Dir, c.Cache.Filename)
}

// RemoteEnabled reports whether a remote repository is configured
func (c *Config) RemoteEnabled() bool {
	return c.Remote.URL != ""
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Cache
	if dir := os.Getenv("CLOCKEDIN_CACHE_DIR"); dir != "" {
		c.Cache.Dir = dir
	}
	if filename := os.Getenv("CLOCKEDIN_CACHE_FILENAME"); filename != "" {
		c.Cache.Filename = filename
	}
	if v := os.Getenv("CLOCKEDIN_CACHE_QUERY_TIMEOUT"); v != "" {
		c.Cache.QueryTimeout = ParseDurationWithFallback(v, c.Cache.QueryTimeout)
	}
	if v := os.Getenv("CLOCKEDIN_CACHE_WRITE_TIMEOUT"); v != "" {
		c.Cache.WriteTimeout = ParseDurationWithFallback(v, c.Cache.WriteTimeout)
	}
	if v := os.Getenv("CLOCKEDIN_CACHE_DIR_PERMISSIONS"); v != "" {
		c.Cache.DirPermissions = ParseUint32WithFallback(v, 8, c.Cache.DirPermissions)
	}

	// Remote
	if url := os.Getenv("CLOCKEDIN_REMOTE_URL"); url != "" {
		c.Remote.URL = url
	}
	if v := os.Getenv("CLOCKEDIN_REMOTE_QUERY_TIMEOUT"); v != "" {
		c.Remote.QueryTimeout = ParseDurationWithFallback(v, c.Remote.QueryTimeout)
	}
	if v := os.Getenv("CLOCKEDIN_REMOTE_MAX_OPEN_CONNS"); v != "" {
		c.Remote.MaxOpenConns = ParseIntWithFallback(v, c.Remote.MaxOpenConns)
	}

	// Auth
	if secret := os.Getenv("CLOCKEDIN_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if service := os.Getenv("CLOCKEDIN_KEYRING_SERVICE"); service != "" {
		c.Auth.KeyringService = service
	}

	if format := os.Getenv("CLOCKEDIN_TIME_DISPLAY_FORMAT"); format != "" {
		c.Time.DisplayFormat = format
	}

	// Validation
	if v := os.Getenv("CLOCKEDIN_VALIDATION_SUBJECT_NAME_MIN"); v != "" {
		c.Validation.SubjectNameMinLength = ParseIntWithFallback(v, c.Validation.SubjectNameMinLength)
	}
	if v := os.Getenv("CLOCKEDIN_VALIDATION_SUBJECT_NAME_MAX"); v != "" {
		c.Validation.SubjectNameMaxLength = ParseIntWithFallback(v, c.Validation.SubjectNameMaxLength)
	}
	if v := os.Getenv("CLOCKEDIN_VALIDATION_MAX_LOG_MINUTES"); v != "" {
		c.Validation.MaxLogMinutes = ParseIntWithFallback(v, c.Validation.MaxLogMinutes)
	}
	if v := os.Getenv("CLOCKEDIN_VALIDATION_MAX_WEEKLY_GOAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Validation.MaxWeeklyGoal = f
		}
	}

	if v := os.Getenv("CLOCKEDIN_DISPLAY_BAR_WIDTH"); v != "" {
		c.Display.BarWidth = ParseIntWithFallback(v, c.Display.BarWidth)
	}

	if v := os.Getenv("CLOCKEDIN_SYNC_MIGRATE_ON_SIGN_IN"); v != "" {
		c.Sync.MigrateOnSignIn = ParseBoolWithFallback(v, c.Sync.MigrateOnSignIn)
	}

	// Server
	if addr := os.Getenv("CLOCKEDIN_SERVER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if origins := os.Getenv("CLOCKEDIN_SERVER_ALLOW_ORIGINS"); origins != "" {
		c.Server.AllowOrigins = origins
	}

	// Application
	if v := os.Getenv("CLOCKEDIN_APP_TIMEOUT"); v != "" {
		c.Application.Timeout = ParseDurationWithFallback(v, c.Application.Timeout)
	}
	if v := os.Getenv("CLOCKEDIN_APP_VERBOSE"); v != "" {
		c.Application.Verbose = ParseBoolWithFallback(v, c.Application.Verbose)
	}
	if v := os.Getenv("CLOCKEDIN_DEBUG"); v != "" {
		c.Application.Debug = ParseBoolWithFallback(v, true)
	}
	if dir := os.Getenv("CLOCKEDIN_LOG_DIR"); dir != "" {
		c.Application.LogDir = dir
	}

	return nil
}

// Validate validates the configuration and returns the first problem found
func (c *Config) Validate() error {
	if c.Cache.Dir == "" {
		return &ConfigError{Field: "cache.dir", Message: "cache directory cannot be empty"}
	}
	if c.Cache.Filename == "" {
		return &ConfigError{Field: "cache.filename", Message: "cache filename cannot be empty"}
	}
	if c.Cache.QueryTimeout <= 0 {
		return &ConfigError{Field: "cache.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Cache.WriteTimeout <= 0 {
		return &ConfigError{Field: "cache.write_timeout", Message: "write timeout must be positive"}
	}

	if c.Remote.QueryTimeout <= 0 {
		return &ConfigError{Field: "remote.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Remote.MaxOpenConns < 1 {
		return &ConfigError{Field: "remote.max_open_conns", Message: "max open connections must be at least 1"}
	}
	if c.RemoteEnabled() && c.Auth.JWTSecret == "" {
		return &ConfigError{Field: "auth.jwt_secret", Message: "a JWT secret is required when a remote URL is set"}
	}
	if c.Auth.KeyringService == "" {
		return &ConfigError{Field: "auth.keyring_service", Message: "keyring service name cannot be empty"}
	}

	if c.Time.DisplayFormat == "" {
		return &ConfigError{Field: "time.display_format", Message: "display format cannot be empty"}
	}

	if c.Validation.SubjectNameMinLength < 1 {
		return &ConfigError{Field: "validation.subject_name_min_length", Message: "subject name minimum length must be at least 1"}
	}
	if c.Validation.SubjectNameMaxLength < c.Validation.SubjectNameMinLength {
		return &ConfigError{Field: "validation.subject_name_max_length", Message: "subject name maximum length must be greater than minimum length"}
	}
	if c.Validation.MaxLogMinutes < 1 {
		return &ConfigError{Field: "validation.max_log_minutes", Message: "max log minutes must be positive"}
	}
	if c.Validation.MaxWeeklyGoal <= 0 {
		return &ConfigError{Field: "validation.max_weekly_goal", Message: "max weekly goal must be positive"}
	}

	if c.Display.BarWidth < 5 {
		return &ConfigError{Field: "display.bar_width", Message: "bar width must be at least 5"}
	}

	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "server address cannot be empty"}
	}

	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}
	if c.Application.LogDir == "" {
		return &ConfigError{Field: "application.log_dir", Message: "log directory cannot be empty"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
