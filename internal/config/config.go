package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration
	LogLevel    string
	LogFormat   string

	// Browser origins allowed to call the REST API cross-origin
	CORSAllowedOrigins []string

	// Per-IP rate limit for the unauthenticated auth endpoints
	AuthRateLimit float64
	AuthRateBurst int

	// Real-time subsystem knobs
	WSIdleTimeout    time.Duration
	WSMaxConnections int
}

// defaultCORSOrigins covers the local frontend dev servers.
var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:8080",
	"http://127.0.0.1:8080",
	"http://localhost:8000",
	"http://127.0.0.1:8000",
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters, got %d", len(cfg.JWTSecret))
	}

	var err error
	cfg.TokenTTL, err = getDuration("TOKEN_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.CORSAllowedOrigins = getList("CORS_ALLOWED_ORIGINS", defaultCORSOrigins)

	cfg.AuthRateLimit, err = getFloat("AUTH_RATE_LIMIT", 5)
	if err != nil {
		return nil, err
	}
	if cfg.AuthRateLimit <= 0 {
		return nil, fmt.Errorf("AUTH_RATE_LIMIT must be positive, got %v", cfg.AuthRateLimit)
	}

	cfg.AuthRateBurst, err = getInt("AUTH_RATE_BURST", 10)
	if err != nil {
		return nil, err
	}
	if cfg.AuthRateBurst < 1 {
		return nil, fmt.Errorf("AUTH_RATE_BURST must be at least 1, got %d", cfg.AuthRateBurst)
	}

	cfg.WSIdleTimeout, err = getDuration("WS_IDLE_TIMEOUT", 300*time.Second)
	if err != nil {
		return nil, err
	}
	if cfg.WSIdleTimeout < time.Second {
		return nil, fmt.Errorf("WS_IDLE_TIMEOUT must be at least 1s, got %v", cfg.WSIdleTimeout)
	}

	cfg.WSMaxConnections, err = getInt("WS_MAX_CONNECTIONS", 1000)
	if err != nil {
		return nil, err
	}
	if cfg.WSMaxConnections < 1 {
		return nil, fmt.Errorf("WS_MAX_CONNECTIONS must be positive, got %d", cfg.WSMaxConnections)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	return d, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}

func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
