package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Backend       BackendConfig
	Session       SessionConfig
	Cache         CacheConfig
	Bulk          BulkConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	AllowedOrigins []string
}

// BackendConfig points at the vocabulary API that does the real work:
// generation, audio synthesis and deck packaging.
type BackendConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

type SessionConfig struct {
	CookieDomain   string
	CookieSecure   bool
	CookieMaxAge   int // seconds; applied to access_token/refresh_token/username
	AvatarTTLHours int
}

type CacheConfig struct {
	LanguagesTTLSeconds int
}

type BulkConfig struct {
	MaxConcurrent int
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "3000")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "https://aiflashlang.com")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://aiflashlang.com,https://www.aiflashlang.com")
	v.SetDefault("BACKEND_BASE_URL", "http://localhost:8010/api")
	v.SetDefault("BACKEND_TIMEOUT_SECONDS", 60)
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("COOKIE_MAX_AGE_SECONDS", 7*24*3600)
	v.SetDefault("AVATAR_CACHE_TTL_HOURS", 24)
	v.SetDefault("LANGUAGES_CACHE_TTL", 600) // 10 minutes in seconds
	v.SetDefault("BULK_MAX_CONCURRENT", 8)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_SERVICE_NAME", "flashlang-web")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "aiflashlang")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("PROFILING_ENABLED", false)
	v.SetDefault("PROFILING_APP_NAME", "flashlang-web")
	v.SetDefault("PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines,mutex,block")
	v.SetDefault("PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	// Parse allowed CORS origins (comma-separated)
	allowedOrigins := []string{}
	originsStr := v.GetString("ALLOWED_CORS_ORIGINS")
	if originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			AllowedOrigins: allowedOrigins,
		},
		Backend: BackendConfig{
			BaseURL:        strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
			TimeoutSeconds: v.GetInt("BACKEND_TIMEOUT_SECONDS"),
		},
		Session: SessionConfig{
			CookieDomain:   v.GetString("COOKIE_DOMAIN"),
			CookieSecure:   v.GetBool("COOKIE_SECURE"),
			CookieMaxAge:   v.GetInt("COOKIE_MAX_AGE_SECONDS"),
			AvatarTTLHours: v.GetInt("AVATAR_CACHE_TTL_HOURS"),
		},
		Cache: CacheConfig{
			LanguagesTTLSeconds: v.GetInt("LANGUAGES_CACHE_TTL"),
		},
		Bulk: BulkConfig{
			MaxConcurrent: v.GetInt("BULK_MAX_CONCURRENT"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("PROFILING_ENABLED"),
			Endpoint:              v.GetString("PROFILING_ENDPOINT"),
			AppName:               v.GetString("PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("BACKEND_BASE_URL is required")
	}

	return cfg, nil
}

// IsDevelopment returns true when running in a development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}
