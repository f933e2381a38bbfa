package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "cache.db", cfg.Cache.Filename)
	assert.Equal(t, 24*60, cfg.Validation.MaxLogMinutes)
	assert.Equal(t, 168.0, cfg.Validation.MaxWeeklyGoal)
	assert.True(t, cfg.Sync.MigrateOnSignIn)
	assert.False(t, cfg.RemoteEnabled())
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, filepath.Join(cfg.Cache.Dir, "cache.db"), cfg.GetCachePath())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CLOCKEDIN_CACHE_DIR", "/tmp/ci")
	t.Setenv("CLOCKEDIN_CACHE_QUERY_TIMEOUT", "3s")
	t.Setenv("CLOCKEDIN_CACHE_DIR_PERMISSIONS", "700")
	t.Setenv("CLOCKEDIN_REMOTE_URL", "postgres://u:p@localhost/clockedin")
	t.Setenv("CLOCKEDIN_JWT_SECRET", "secret")
	t.Setenv("CLOCKEDIN_VALIDATION_MAX_WEEKLY_GOAL", "80.5")
	t.Setenv("CLOCKEDIN_SYNC_MIGRATE_ON_SIGN_IN", "false")
	t.Setenv("CLOCKEDIN_DISPLAY_BAR_WIDTH", "not-a-number")
	t.Setenv("CLOCKEDIN_DEBUG", "1")

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromEnvironment())

	assert.Equal(t, "/tmp/ci", cfg.Cache.Dir)
	assert.Equal(t, 3*time.Second, cfg.Cache.QueryTimeout)
	assert.Equal(t, uint32(0700), cfg.Cache.DirPermissions)
	assert.True(t, cfg.RemoteEnabled())
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 80.5, cfg.Validation.MaxWeeklyGoal)
	assert.False(t, cfg.Sync.MigrateOnSignIn)
	assert.Equal(t, 24, cfg.Display.BarWidth, "invalid values keep the default")
	assert.True(t, cfg.Application.Debug)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty cache dir", func(c *Config) { c.Cache.Dir = "" }, "cache.dir"},
		{"zero write timeout", func(c *Config) { c.Cache.WriteTimeout = 0 }, "cache.write_timeout"},
		{"remote without secret", func(c *Config) { c.Remote.URL = "postgres://x" }, "auth.jwt_secret"},
		{"name bounds inverted", func(c *Config) { c.Validation.SubjectNameMaxLength = 0 }, "validation.subject_name_max_length"},
		{"max log minutes", func(c *Config) { c.Validation.MaxLogMinutes = 0 }, "validation.max_log_minutes"},
		{"bar width", func(c *Config) { c.Display.BarWidth = 2 }, "display.bar_width"},
		{"app timeout", func(c *Config) { c.Application.Timeout = -time.Second }, "application.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestLoaderReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CLOCKEDIN_TIME_DISPLAY_FORMAT=02/01 15:04\nCLOCKEDIN_SERVER_ADDR=:9000\n"), 0600))

	// Process environment wins over the dotenv file.
	t.Setenv("CLOCKEDIN_SERVER_ADDR", ":7000")
	t.Cleanup(func() { os.Unsetenv("CLOCKEDIN_TIME_DISPLAY_FORMAT") })

	cfg, err := NewLoaderWithEnvFiles(envFile, filepath.Join(dir, "missing.env")).Load()
	require.NoError(t, err)
	assert.Equal(t, "02/01 15:04", cfg.Time.DisplayFormat)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestLoadWithOverrides(t *testing.T) {
	dir := t.TempDir()
	width := 40
	verbose := true
	timeout := 5 * time.Second

	cfg, err := NewLoaderWithEnvFiles().LoadWithOverrides(&ConfigOverrides{
		CacheDir: &dir,
		BarWidth: &width,
		Verbose:  &verbose,
		Timeout:  &timeout,
	})
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Cache.Dir)
	assert.Equal(t, 40, cfg.Display.BarWidth)
	assert.True(t, cfg.Application.Verbose)
	assert.Equal(t, 5*time.Second, cfg.Application.Timeout)

	bad := 1
	_, err = NewLoaderWithEnvFiles().LoadWithOverrides(&ConfigOverrides{BarWidth: &bad})
	assert.Error(t, err)
}

func TestEnvironment(t *testing.T) {
	cfg := NewConfig()

	tests := []struct {
		value    string
		env      Environment
		expected string
	}{
		{"development", Development, "clockedin.db"},
		{"testing", Testing, ":memory:"},
		{"production", Production, cfg.GetCachePath()},
		{"", Production, cfg.GetCachePath()},
	}

	for _, tt := range tests {
		t.Run("env="+tt.value, func(t *testing.T) {
			t.Setenv("CLOCKEDIN_ENV", tt.value)
			env := GetEnvironment()
			assert.Equal(t, tt.env, env)
			assert.Equal(t, tt.expected, cfg.CachePathFor(env))
		})
	}
}

func TestParseWithFallback(t *testing.T) {
	assert.Equal(t, 2*time.Second, ParseDurationWithFallback("2s", time.Second))
	assert.Equal(t, time.Second, ParseDurationWithFallback("soon", time.Second))
	assert.Equal(t, 7, ParseIntWithFallback("7", 1))
	assert.Equal(t, 1, ParseIntWithFallback("x", 1))
	assert.True(t, ParseBoolWithFallback("true", false))
	assert.True(t, ParseBoolWithFallback("maybe", true))
	assert.Equal(t, uint32(0755), ParseUint32WithFallback("755", 8, 0))
	assert.Equal(t, uint32(1), ParseUint32WithFallback("9", 8, 1))
}
