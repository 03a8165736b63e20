package config_test

import (
	"testing"

	"coldroom/config"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATA_FILE", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg := config.Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "cold_room_data.json", cfg.DataFile)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DATA_FILE", "/tmp/cold.json")
	t.Setenv("JWT_KEY", "secret")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := config.Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/tmp/cold.json", cfg.DataFile)
	assert.Equal(t, "secret", cfg.JWTKey)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}
