package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration. Non-secret knobs may come from an
// optional config.yaml; secrets come from the environment only.
// This is a simple way to make config accessible globally.
// A more advanced approach might use dependency injection.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Insights  InsightsConfig  `yaml:"insights"`

	// Secrets, environment-only. Never read from YAML.
	DatabaseURL  string `yaml:"-"`
	JWTSecret    string `yaml:"-"`
	GeminiAPIKey string `yaml:"-"`
	InitToken    string `yaml:"-"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	CORSOrigins string `yaml:"cors_origins"`
}

// AnalyticsConfig controls the pricing analytics defaults.
type AnalyticsConfig struct {
	DefaultWindowDays int `yaml:"default_window_days"`
}

// InsightsConfig controls the AI insights endpoint.
type InsightsConfig struct {
	Model             string  `yaml:"model"`
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
	Burst             int     `yaml:"burst"`
}

// AppConfig holds the application-wide configuration
var AppConfig Config

// Load reads the optional YAML file at path, applies environment overrides,
// and fills defaults. A missing file is fine: everything then comes from the
// environment and defaults. The result is also stored in AppConfig.
func Load(path string) (*Config, error) {
	// Load .env if present (missing file is not an error)
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("config.Load: parse %q: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	AppConfig = cfg
	return &cfg, nil
}

// applyEnvOverrides overwrites values with environment variables when set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Insights.Model = v
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.InitToken = os.Getenv("INIT_TOKEN")
}

// setDefaults ensures required knobs have sensible values.
func setDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":3000"
	}
	if cfg.Analytics.DefaultWindowDays <= 0 {
		cfg.Analytics.DefaultWindowDays = 90
	}
	if cfg.Insights.Model == "" {
		cfg.Insights.Model = "gemini-2.5-flash-lite"
	}
	if cfg.Insights.RequestsPerMinute <= 0 {
		cfg.Insights.RequestsPerMinute = 6
	}
	if cfg.Insights.Burst <= 0 {
		cfg.Insights.Burst = 2
	}
}
