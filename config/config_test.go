package config_test

import (
	"testing"

	"github.com/aiflashlang/flashlang-web/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, "http://localhost:8010/api", cfg.Backend.BaseURL)
	assert.Equal(t, 60, cfg.Backend.TimeoutSeconds)
	assert.Equal(t, 7*24*3600, cfg.Session.CookieMaxAge)
	assert.True(t, cfg.Session.CookieSecure)
	assert.Equal(t, 600, cfg.Cache.LanguagesTTLSeconds)
	assert.Equal(t, 8, cfg.Bulk.MaxConcurrent)
	assert.Equal(t, "flashlang-web", cfg.Observability.ServiceName)
	assert.False(t, cfg.Profiling.Enabled)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("BACKEND_BASE_URL", "https://api.example.com/api/")
	t.Setenv("BULK_MAX_CONCURRENT", "2")
	t.Setenv("COOKIE_SECURE", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Server.Port)
	// trailing slash is stripped so path joining stays uniform
	assert.Equal(t, "https://api.example.com/api", cfg.Backend.BaseURL)
	assert.Equal(t, 2, cfg.Bulk.MaxConcurrent)
	assert.False(t, cfg.Session.CookieSecure)
}

func TestLoad_ParsesAllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_CORS_ORIGINS", "https://a.example.com, https://b.example.com ,")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.Config
		expected bool
	}{
		{
			name: "development environment",
			cfg: &config.Config{
				Server: config.ServerConfig{AppEnv: "development"},
			},
			expected: true,
		},
		{
			name: "debug gin mode",
			cfg: &config.Config{
				Server: config.ServerConfig{GinMode: "debug"},
			},
			expected: true,
		},
		{
			name: "production environment",
			cfg: &config.Config{
				Server: config.ServerConfig{AppEnv: "production"},
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.IsDevelopment())
		})
	}
}
