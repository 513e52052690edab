// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings for the audit store.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// CRMConfig provides settings for the upstream CRM collaborator API.
type CRMConfig interface {
	GetCRMBaseURL() string
	GetCRMAPIKey() string
	GetCRMTimeout() time.Duration
}

// PhoneConfig provides the default region for parsing national phone numbers.
type PhoneConfig interface {
	GetPhoneRegion() string
}

// BoardConfig provides settings for the board reconciliation loop.
type BoardConfig interface {
	// GetSelfRefreshWindow is the bounded delay during which a board's own
	// write suppresses its reactive refresh.
	GetSelfRefreshWindow() time.Duration
	// GetSLATablePath points at an optional YAML override for the per-source
	// SLA window table. Empty means built-in defaults.
	GetSLATablePath() string
}

// SchedulerConfig provides settings for the asynq-based background worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetSLASweepInterval() time.Duration
}

// Config holds all application configuration loaded from the environment.
type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL string

	JWTAccessSecret string

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	CRMBaseURL string
	CRMAPIKey  string
	CRMTimeout time.Duration

	PhoneRegion string

	SelfRefreshWindow time.Duration
	SLATablePath      string

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int
	SLASweepInterval time.Duration
}

// Load reads configuration from the environment, with a .env file as a
// development convenience.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTAccessSecret: getEnv("JWT_ACCESS_SECRET", ""),

		CORSAllowAll:   corsAllowAll,
		CORSOrigins:    corsOrigins,
		CORSAllowCreds: strings.EqualFold(getEnv("CORS_ALLOW_CREDS", "true"), "true"),

		CRMBaseURL: getEnv("CRM_API_BASE_URL", ""),
		CRMAPIKey:  getEnv("CRM_API_KEY", ""),
		CRMTimeout: getDuration("CRM_API_TIMEOUT", 30*time.Second),

		PhoneRegion: getEnv("PHONE_DEFAULT_REGION", "NL"),

		SelfRefreshWindow: getDuration("BOARD_SELF_REFRESH_WINDOW", 2*time.Second),
		SLATablePath:      getEnv("BOARD_SLA_TABLE_PATH", ""),

		RedisURL:         getEnv("REDIS_URL", ""),
		RedisTLSInsecure: strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "board"),
		AsynqConcurrency: getInt("ASYNQ_CONCURRENCY", 10),
		SLASweepInterval: getDuration("SLA_SWEEP_INTERVAL", 15*time.Minute),
	}

	if cfg.CRMBaseURL == "" {
		return nil, fmt.Errorf("CRM_API_BASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" && !strings.EqualFold(cfg.Env, "development") {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required outside development")
	}

	return cfg, nil
}

// Interface implementations.

func (c *Config) GetDatabaseURL() string               { return c.DatabaseURL }
func (c *Config) GetJWTAccessSecret() string           { return c.JWTAccessSecret }
func (c *Config) GetHTTPAddr() string                  { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool                { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string             { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool              { return c.CORSAllowCreds }
func (c *Config) GetCRMBaseURL() string                { return c.CRMBaseURL }
func (c *Config) GetCRMAPIKey() string                 { return c.CRMAPIKey }
func (c *Config) GetCRMTimeout() time.Duration         { return c.CRMTimeout }
func (c *Config) GetPhoneRegion() string               { return c.PhoneRegion }
func (c *Config) GetSelfRefreshWindow() time.Duration  { return c.SelfRefreshWindow }
func (c *Config) GetSLATablePath() string              { return c.SLATablePath }
func (c *Config) GetRedisURL() string                  { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool            { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string            { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int             { return c.AsynqConcurrency }
func (c *Config) GetSLASweepInterval() time.Duration   { return c.SLASweepInterval }

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
