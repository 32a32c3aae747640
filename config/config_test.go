package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "gemini", cfg.Grader.Provider)
	assert.Equal(t, 30, cfg.Grader.RatePerMinute)
	assert.Equal(t, time.Second, cfg.Autosave.Debounce)
	assert.Equal(t, 5*time.Second, cfg.Autosave.PeriodicInterval)
	assert.Equal(t, 2*time.Second, cfg.Autosave.UnloadTimeout)
	assert.Equal(t, 5*time.Second, cfg.Autosave.ExpireRetry)
	assert.Empty(t, cfg.CatalogFile)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("GRADER_PROVIDER", "anthropic")
	t.Setenv("AUTOSAVE_DEBOUNCE", "250ms")
	t.Setenv("GRADER_RATE_PER_MINUTE", "0")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "anthropic", cfg.Grader.Provider)
	assert.Equal(t, 250*time.Millisecond, cfg.Autosave.Debounce)
	assert.Zero(t, cfg.Grader.RatePerMinute)
}
