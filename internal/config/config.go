package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all service settings, populated from the environment.
type AppConfig struct {
	// MockAPIBaseURL is the root of the static mock-JSON tree. When empty
	// the service falls back to the bundled in-memory fixtures.
	MockAPIBaseURL string

	// DefaultStation is loaded into the weather store at startup.
	DefaultStation string

	// RefreshInterval controls the background observation/forecast refresh.
	RefreshInterval time.Duration

	// Observation history retention.
	HistoryMaxEntries int
	HistoryMaxAge     time.Duration

	// StorageDir is where dismissed-alert state is persisted. Empty means
	// in-memory only (dismissals last one session).
	StorageDir string

	// Retry budget for mock API requests.
	SourceMaxRetries     int
	SourceBackoffInitial time.Duration
	SourceBackoffMax     time.Duration

	HTTPTimeout time.Duration
	Port        string

	// MetricsPort serves the Prometheus endpoint on a separate listener.
	MetricsPort string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.MockAPIBaseURL = os.Getenv("MOCK_API_BASE_URL")
	cfg.DefaultStation = getenvDefault("DEFAULT_STATION", "baqueira-beret")
	cfg.StorageDir = os.Getenv("STORAGE_DIR")
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.MetricsPort = getenvDefault("METRICS_PORT", "9090")

	refreshStr := getenvDefault("REFRESH_INTERVAL", "15m")
	refresh, err := time.ParseDuration(refreshStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = refresh

	cfg.HistoryMaxEntries = getenvInt("HISTORY_MAX_ENTRIES", 96) // roughly 24h at 15-minute refreshes

	maxAgeStr := getenvDefault("HISTORY_MAX_AGE", "24h")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_MAX_AGE: %w", err)
	}
	cfg.HistoryMaxAge = maxAge

	cfg.SourceMaxRetries = getenvInt("SOURCE_MAX_RETRIES", 3)

	backoffInitialStr := getenvDefault("SOURCE_BACKOFF_INITIAL", "500ms")
	backoffInitial, err := time.ParseDuration(backoffInitialStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SOURCE_BACKOFF_INITIAL: %w", err)
	}
	cfg.SourceBackoffInitial = backoffInitial

	backoffMaxStr := getenvDefault("SOURCE_BACKOFF_MAX", "5s")
	backoffMax, err := time.ParseDuration(backoffMaxStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SOURCE_BACKOFF_MAX: %w", err)
	}
	cfg.SourceBackoffMax = backoffMax

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
