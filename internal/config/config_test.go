package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CACHE_SIZE", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 32, cfg.CacheSize)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CACHE_SIZE", "64")
	t.Setenv("SMS_ENABLED", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 64, cfg.CacheSize)
	assert.True(t, cfg.SMSEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("SEED_DEFAULTS", "maybe")

	cfg := Load()

	assert.Equal(t, 1800, cfg.CacheTTL)
	assert.True(t, cfg.SeedDefaults)
}
