package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	cfg := Load()
	assert.Equal(t, "5016", cfg.Port)
	assert.Equal(t, 6, cfg.MaxPlayers)
	assert.Equal(t, 2, cfg.MinPlayers)
	assert.Equal(t, 40*time.Second, cfg.DrawTime)
	assert.Equal(t, 2*time.Hour, cfg.RoomMaxAge)
	assert.Equal(t, 5*time.Minute, cfg.CleanupInterval)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_PLAYERS", "8")
	t.Setenv("DRAW_TIME", "90s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 8, cfg.MaxPlayers)
	assert.Equal(t, 90*time.Second, cfg.DrawTime)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("MAX_PLAYERS", "many")
	t.Setenv("DRAW_TIME", "soon")

	cfg := Load()
	assert.Equal(t, 6, cfg.MaxPlayers)
	assert.Equal(t, 40*time.Second, cfg.DrawTime)
}

func TestLoadGeneratesDevSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	t.Setenv("GIN_MODE", "debug")

	cfg := Load()
	assert.NotEmpty(t, cfg.SecretKey)
}
