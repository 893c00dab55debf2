package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr                  string
	DatabaseURL           string
	JWTSecret             string
	Environment           string
	LogLevel              string
	RunMigrations         bool
	MigrationsDir         string
	MaxBodyBytes          int64
	RateLimitPerMinute    int
	MetricsEnabled        bool
	StorageBackend        string
	StoragePublicBaseURL  string
	StorageBucket         string
	StorageBuckets        []string
	AzureConnectionString string
	StorageURLTTL         time.Duration
	DefaultTimezone       string
}

func Load() Config {
	return Config{
		Addr:                  getEnv("APP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		Environment:           getEnv("APP_ENV", "development"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		RunMigrations:         getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:         getEnv("MIGRATIONS_DIR", "migrations"),
		MaxBodyBytes:          int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute:    getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		MetricsEnabled:        getEnvBool("METRICS_ENABLED", true),
		StorageBackend:        getEnv("STORAGE_BACKEND", "public"),
		StoragePublicBaseURL:  getEnv("STORAGE_PUBLIC_BASE_URL", ""),
		StorageBucket:         getEnv("STORAGE_BUCKET", "employee-documents"),
		StorageBuckets:        getEnvList("STORAGE_BUCKETS", []string{"employee-documents", "requirements", "documents"}),
		AzureConnectionString: getEnv("AZURE_STORAGE_CONNECTION_STRING", ""),
		StorageURLTTL:         getEnvDuration("STORAGE_URL_TTL", 15*time.Minute),
		DefaultTimezone:       getEnv("DEFAULT_TIMEZONE", "Asia/Manila"),
	}
}

// Location resolves DefaultTimezone, falling back to the process zone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	switch c.StorageBackend {
	case "public":
		if strings.TrimSpace(c.StoragePublicBaseURL) == "" {
			return fmt.Errorf("STORAGE_PUBLIC_BASE_URL is required for the public storage backend")
		}
	case "azure":
		if strings.TrimSpace(c.AzureConnectionString) == "" {
			return fmt.Errorf("AZURE_STORAGE_CONNECTION_STRING is required for the azure storage backend")
		}
		if c.StorageURLTTL <= 0 {
			return fmt.Errorf("STORAGE_URL_TTL must be positive")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be public or azure, got %q", c.StorageBackend)
	}
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		return fmt.Errorf("DEFAULT_TIMEZONE: %w", err)
	}
	return nil
}
