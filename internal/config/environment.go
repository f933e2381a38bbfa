package config

import "os"

// Environment selects where the local cache lives
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// GetEnvironment reads CLOCKEDIN_ENV, defaulting to production
func GetEnvironment() Environment {
	switch Environment(os.Getenv("CLOCKEDIN_ENV")) {
	case Development:
		return Development
	case Testing:
		return Testing
	default:
		return Production
	}
}

// CachePathFor returns the cache database path for env. Development keeps
// the cache next to the working directory and testing keeps it in memory.
func (c *Config) CachePathFor(env Environment) string {
	switch env {
	case Development:
		return "clockedin.db"
	case Testing:
		return ":memory:"
	default:
		return c.GetCachePath()
	}
}
