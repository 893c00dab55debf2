package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DatabaseURL:          "postgres://localhost/hr",
		Environment:          "development",
		MaxBodyBytes:         1 << 20,
		RateLimitPerMinute:   60,
		StorageBackend:       "public",
		StoragePublicBaseURL: "https://files.example.com",
		DefaultTimezone:      "UTC",
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hr")
	t.Setenv("STORAGE_BUCKETS", " hr-files , ,archive ")
	t.Setenv("STORAGE_URL_TTL", "5m")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg := Load()
	if cfg.Addr != ":8080" || cfg.MigrationsDir != "migrations" || !cfg.RunMigrations {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if len(cfg.StorageBuckets) != 2 || cfg.StorageBuckets[0] != "hr-files" || cfg.StorageBuckets[1] != "archive" {
		t.Fatalf("unexpected buckets %v", cfg.StorageBuckets)
	}
	if cfg.StorageURLTTL != 5*time.Minute {
		t.Fatalf("expected 5m ttl, got %s", cfg.StorageURLTTL)
	}
	if cfg.RateLimitPerMinute != 60 {
		t.Fatalf("expected fallback rate limit, got %d", cfg.RateLimitPerMinute)
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"database", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"production secret", func(c *Config) { c.Environment = "production" }, "JWT_SECRET"},
		{"body limit", func(c *Config) { c.MaxBodyBytes = 10 }, "MAX_BODY_BYTES"},
		{"public base url", func(c *Config) { c.StoragePublicBaseURL = "" }, "STORAGE_PUBLIC_BASE_URL"},
		{"azure connection", func(c *Config) { c.StorageBackend = "azure" }, "AZURE_STORAGE_CONNECTION_STRING"},
		{"backend", func(c *Config) { c.StorageBackend = "s3" }, "STORAGE_BACKEND"},
		{"timezone", func(c *Config) { c.DefaultTimezone = "Mars/Olympus" }, "DEFAULT_TIMEZONE"},
	}
	for _, tc := range cases {
		cfg := validConfig()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error mentioning %s, got %v", tc.name, tc.want, err)
		}
	}
}
