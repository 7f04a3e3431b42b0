package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv        string        `envconfig:"APP_ENV" default:"dev"`
	Port          string        `envconfig:"PORT" default:"8080"`
	DBPath        string        `envconfig:"DB_PATH" default:"./quotes.db"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat     string        `envconfig:"LOG_FORMAT" default:"json"`
	AdminUsername string        `envconfig:"ADMIN_USERNAME"`
	AdminPassword string        `envconfig:"ADMIN_PASSWORD"`
	SessionSecret string        `envconfig:"SESSION_SECRET"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"24h"`
}

// Load reads environment variables and returns a populated Config.
func Load() (Config, error) {
	// Best-effort: production injects real environment variables.
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}

	if cfg.AdminUsername == "" {
		log.Warn().Msg("ADMIN_USERNAME is not set")
	}
	if cfg.AdminPassword == "" {
		log.Warn().Msg("ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		log.Warn().Msg("SESSION_SECRET is not set")
	}

	return cfg, nil
}

func (c Config) IsDev() bool {
	return strings.EqualFold(c.AppEnv, AppEnvDev)
}

func (c Config) IsProd() bool {
	return strings.EqualFold(c.AppEnv, AppEnvProd)
}
