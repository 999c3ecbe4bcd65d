package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionStoreBolt     = "bolt"
	SessionStorePostgres = "postgres"

	PreviewStoreMemory   = "memory"
	PreviewStoreSupabase = "supabase"
)

type Config struct {
	// Catalog backend
	APIBaseURL     string
	RequestTimeout time.Duration

	// Listing
	PageSize int

	// Session persistence
	SessionStore   string
	LocalStorePath string
	DatabaseURL    string
	SessionName    string

	// Image previews
	PreviewStore          string
	SupabaseURL           string
	SupabaseKey           string
	SupabasePreviewBucket string

	// Product field defaults override (YAML)
	FieldDefaultsFile string

	// Categories
	CategoryCacheTTL    time.Duration
	CategoryRefreshSpec string

	// Logging
	LogMode string
	LogFile string

	// Server
	Port        string
	Environment string
	BaseURL     string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:     getEnv("API_BASE_URL", "http://127.0.0.1:8000"),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 30*time.Second),

		PageSize: getInt("PAGE_SIZE", 10),

		SessionStore:   getEnv("SESSION_STORE", SessionStoreBolt),
		LocalStorePath: getEnv("LOCAL_STORE_PATH", "console.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SessionName:    getEnv("SESSION_NAME", "default"),

		PreviewStore:          getEnv("PREVIEW_STORE", PreviewStoreMemory),
		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseKey:           getEnv("SUPABASE_KEY", ""),
		SupabasePreviewBucket: getEnv("SUPABASE_PREVIEW_BUCKET", "product-previews"),

		FieldDefaultsFile: getEnv("FIELD_DEFAULTS_FILE", ""),

		CategoryCacheTTL:    getDuration("CATEGORY_CACHE_TTL", 24*time.Hour),
		CategoryRefreshSpec: getEnv("CATEGORY_REFRESH_SPEC", "@every 24h"),

		LogMode: getEnv("LOG_MODE", "development"),
		LogFile: getEnv("LOG_FILE", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive")
	}
	switch c.SessionStore {
	case SessionStoreBolt:
		if c.LocalStorePath == "" {
			return fmt.Errorf("LOCAL_STORE_PATH is required for the bolt session store")
		}
	case SessionStorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres session store")
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}
	switch c.PreviewStore {
	case PreviewStoreMemory:
	case PreviewStoreSupabase:
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required for the supabase preview store")
		}
		if c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_KEY is required for the supabase preview store")
		}
	default:
		return fmt.Errorf("unknown PREVIEW_STORE %q", c.PreviewStore)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
