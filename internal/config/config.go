package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the migration tool.
type Config struct {
	SuperOps  SuperOpsConfig
	Syncro    SyncroConfig
	Migration MigrationConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
}

// SuperOpsConfig holds source platform (GraphQL) connection values.
type SuperOpsConfig struct {
	APIKey         string
	BaseURL        string
	Subdomain      string
	ClientPageSize int
	TicketPageSize int
}

// SyncroConfig holds destination platform (REST) connection values.
type SyncroConfig struct {
	APIKey  string
	BaseURL string
}

// MigrationConfig controls orchestrator behavior.
type MigrationConfig struct {
	// CutoffDate is the earliest creation date eligible for migration,
	// in YYYY-MM-DD form. Tickets strictly older are never created.
	CutoffDate string
	// MatchStrategy selects the reconciliation strategy: "display-id"
	// (default) or "subject-date".
	MatchStrategy string
	// Interactive enables a confirmation pause after ticket creation and
	// after comment replay. Off in unattended runs.
	Interactive bool
	// RateLimitMillis is the fixed delay applied before every outbound
	// API call, source and destination alike.
	RateLimitMillis int
}

// PostgresConfig holds optional journal DB connection values. An empty
// DSN disables the journal entirely.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds optional customer-id cache connection values. An
// empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTLHours int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		SuperOps: SuperOpsConfig{
			APIKey:         os.Getenv("SUPEROPS_API_KEY"),
			BaseURL:        getEnv("SUPEROPS_BASE_URL", "https://api.superops.ai/msp"),
			Subdomain:      os.Getenv("SUPEROPS_SUBDOMAIN"),
			ClientPageSize: getEnvAsInt("SUPEROPS_CLIENT_PAGE_SIZE", 100),
			TicketPageSize: getEnvAsInt("SUPEROPS_TICKET_PAGE_SIZE", 10),
		},
		Syncro: SyncroConfig{
			APIKey:  os.Getenv("SYNCRO_API_KEY"),
			BaseURL: getEnv("SYNCRO_BASE_URL", ""),
		},
		Migration: MigrationConfig{
			CutoffDate:      getEnv("MIGRATE_CUTOFF_DATE", "2024-04-01"),
			MatchStrategy:   getEnv("MIGRATE_MATCH_STRATEGY", "display-id"),
			Interactive:     getEnvAsBool("MIGRATE_INTERACTIVE", false),
			RateLimitMillis: getEnvAsInt("MIGRATE_RATE_LIMIT_MILLIS", 1000),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 0)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			TTLHours: getEnvAsInt("REDIS_CUSTOMER_TTL_HOURS", 24),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.SuperOps.APIKey == "" {
		return nil, fmt.Errorf("SUPEROPS_API_KEY is required")
	}
	if cfg.SuperOps.Subdomain == "" {
		return nil, fmt.Errorf("SUPEROPS_SUBDOMAIN is required")
	}
	if cfg.Syncro.APIKey == "" {
		return nil, fmt.Errorf("SYNCRO_API_KEY is required")
	}
	if cfg.Syncro.BaseURL == "" {
		return nil, fmt.Errorf("SYNCRO_BASE_URL is required")
	}

	return cfg, nil
}

// RateLimit returns the fixed pre-call delay as a duration.
func (m MigrationConfig) RateLimit() time.Duration {
	if m.RateLimitMillis <= 0 {
		return 0
	}
	return time.Duration(m.RateLimitMillis) * time.Millisecond
}

// CustomerTTL returns how long cached customer-id lookups stay valid.
func (r RedisConfig) CustomerTTL() time.Duration {
	if r.TTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(r.TTLHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
