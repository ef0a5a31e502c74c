package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	// CacheDir overrides the library's platform-default cache
	// directory when set.
	CacheDir string

	// RefreshInterval controls how often the background job re-warms
	// the cache artifacts.
	RefreshInterval time.Duration

	// RefreshBulk also refreshes the combined all-station artifact,
	// which is a large download; off by default.
	RefreshBulk bool

	// HTTPTimeout bounds upstream requests made by the server.
	HTTPTimeout time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.CacheDir = os.Getenv("SNOTEL_CACHE_DIR")

	// Refresh interval: default 6 hours, well inside the daily
	// staleness threshold.
	intervalStr := getenvDefault("REFRESH_INTERVAL", "6h")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	cfg.RefreshBulk = getenvBool("REFRESH_BULK", false)

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
