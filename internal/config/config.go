// Package config loads service settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"assetdesk/internal/domain/auth"
	"assetdesk/internal/infrastructure/backend"
)

// Config holds every setting of the server and the CLI.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	Backend backend.Config

	DatabaseURL    string
	RedisURL       string
	DomainCacheTTL time.Duration

	JWTSecret string
	JWTIssuer string

	ExportMaxRows int
}

// Development reports whether the service runs in development mode.
func (c *Config) Development() bool {
	return c.AppEnv == "development"
}

// JWT returns the token settings.
func (c *Config) JWT() auth.JWTConfig {
	jwtCfg := auth.DefaultJWTConfig(c.JWTSecret)
	if c.JWTIssuer != "" {
		jwtCfg.Issuer = c.JWTIssuer
	}
	return jwtCfg
}

// Load reads the given .env files (".env" when none are named) and then the
// environment. Missing files are skipped; variables already set win.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, path := range envFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	defaults := backend.DefaultConfig("")
	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		Port:     getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Backend: backend.Config{
			BaseURL:         strings.TrimSpace(os.Getenv("BACKEND_BASE_URL")),
			Timeout:         getEnvDuration("BACKEND_TIMEOUT", defaults.Timeout),
			RateLimit:       getEnvFloat("BACKEND_RATE_LIMIT", defaults.RateLimit),
			RateBurst:       getEnvInt("BACKEND_RATE_BURST", defaults.RateBurst),
			BreakerFailures: uint32(max(getEnvInt("BACKEND_BREAKER_FAILURES", int(defaults.BreakerFailures)), 1)),
			BreakerTimeout:  getEnvDuration("BACKEND_BREAKER_TIMEOUT", defaults.BreakerTimeout),
		},

		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		DomainCacheTTL: getEnvDuration("DOMAIN_CACHE_TTL", 5*time.Minute),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTIssuer: os.Getenv("JWT_ISSUER"),

		ExportMaxRows: getEnvInt("EXPORT_MAX_ROWS", 50000),
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Backend.BaseURL == "" {
		errs = append(errs, errors.New("BACKEND_BASE_URL is required"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.JWTSecret) < 32 && !c.Development() {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 bytes outside development"))
	}
	if c.ExportMaxRows <= 0 {
		errs = append(errs, errors.New("EXPORT_MAX_ROWS must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%g", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
