// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	AllowedOrigins []string
	Store          StoreConfig
	Scoring        ScoringConfig
	Mail           MailConfig
	Timeout        TimeoutConfig
	Retry          RetryConfig
}

// StoreConfig selects the result store backend and its expiry.
type StoreConfig struct {
	Backend       string // "memory", "sqlite" or "redis"
	DBPath        string
	RedisURL      string
	TTL           time.Duration
	SweepInterval time.Duration
}

// ScoringConfig points at the scale profile. Zero thresholds keep the profile's values.
type ScoringConfig struct {
	ProfilePath string
	LowMax      int
	ModerateMax int
}

// MailConfig controls outbound report emails.
type MailConfig struct {
	ResendAPIKey string
	From         string
	Subject      string
}

// TimeoutConfig holds per-operation deadlines.
type TimeoutConfig struct {
	HealthCheck time.Duration
	Delivery    time.Duration
}

// RetryConfig controls retries of SQLite conflicts.
type RetryConfig struct {
	DatabaseMaxRetries     int
	DatabaseRetryBaseDelay time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		Store: StoreConfig{
			Backend:       strings.ToLower(getEnv("RESULT_STORE", "memory")),
			DBPath:        getEnv("DB_PATH", "./data/results.db"),
			RedisURL:      getEnv("REDIS_URL", ""),
			TTL:           getEnvDuration("RESULT_TTL", 24*time.Hour),
			SweepInterval: getEnvDuration("SWEEP_INTERVAL", time.Hour),
		},
		Scoring: ScoringConfig{
			ProfilePath: getEnv("SCORE_PROFILE_PATH", ""),
			LowMax:      getEnvInt("SCORE_LOW_MAX", 0),
			ModerateMax: getEnvInt("SCORE_MODERATE_MAX", 0),
		},
		Mail: MailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("MAIL_FROM", "Autoavaliação Comportamental <noreply@yourdomain.com>"),
			Subject:      getEnv("MAIL_SUBJECT", "Seu Relatório de Autoavaliação Comportamental Infantil - PDF"),
		},
		Timeout: TimeoutConfig{
			HealthCheck: getEnvDuration("HEALTH_CHECK_TIMEOUT", 5*time.Second),
			Delivery:    getEnvDuration("DELIVERY_TIMEOUT", 30*time.Second),
		},
		Retry: RetryConfig{
			DatabaseMaxRetries:     getEnvInt("DB_MAX_RETRIES", 3),
			DatabaseRetryBaseDelay: getEnvDuration("DB_RETRY_BASE_DELAY", 50*time.Millisecond),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.Store.Backend {
	case "memory":
	case "sqlite":
		if c.Store.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty when RESULT_STORE=sqlite")
		}
	case "redis":
		if c.Store.RedisURL == "" {
			return fmt.Errorf("REDIS_URL cannot be empty when RESULT_STORE=redis")
		}
	default:
		return fmt.Errorf("RESULT_STORE must be memory, sqlite or redis, got %q", c.Store.Backend)
	}
	if c.Store.TTL <= 0 {
		return fmt.Errorf("RESULT_TTL must be > 0")
	}
	if c.Store.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be > 0")
	}
	if c.Scoring.LowMax < 0 || c.Scoring.ModerateMax < 0 {
		return fmt.Errorf("SCORE_LOW_MAX and SCORE_MODERATE_MAX must be >= 0")
	}
	if c.Mail.From == "" {
		return fmt.Errorf("MAIL_FROM cannot be empty")
	}
	if c.Retry.DatabaseMaxRetries <= 0 {
		return fmt.Errorf("DB_MAX_RETRIES must be > 0")
	}
	return nil
}

// MailEnabled reports whether a mail provider is configured.
func (c *Config) MailEnabled() bool {
	return c.Mail.ResendAPIKey != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
