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
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string

	// TimezoneAPIKey enables named-timezone lookups; empty falls back to the provider UTC offset.
	TimezoneAPIKey    string
	TimezoneDBBaseURL string

	// Outbound HTTP resilience.
	HTTPTimeout      time.Duration // per attempt
	RetryMaxAttempts int
	RetryMaxBackoff  time.Duration
	RequestTimeout   time.Duration // whole fan-out of one user request

	// Provider probing. An empty ProbeLocation disables the scheduler.
	ProbeLocation   string
	ProbeInterval   time.Duration
	ProbeMaxHistory int           // max number of probe results kept (0 = unlimited)
	ProbeMaxAge     time.Duration // max age of probe results (0 = unlimited)

	Port     string
	LogLevel string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return fromEnv()
}

func fromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5")
	cfg.TimezoneAPIKey = os.Getenv("TIMEZONE_API_KEY")
	cfg.TimezoneDBBaseURL = getenvDefault("TIMEZONEDB_BASE_URL", "http://api.timezonedb.com/v2.1")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	cfg.RetryMaxAttempts = getenvInt("RETRY_MAX_ATTEMPTS", 3)
	if cfg.RetryMaxAttempts < 1 {
		return nil, fmt.Errorf("invalid RETRY_MAX_ATTEMPTS: must be at least 1, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.RetryMaxBackoff, err = getenvDuration("RETRY_MAX_BACKOFF", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getenvDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	cfg.ProbeLocation = os.Getenv("PROBE_LOCATION")
	if cfg.ProbeInterval, err = getenvDuration("PROBE_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	cfg.ProbeMaxHistory = getenvInt("PROBE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.ProbeMaxAge, err = getenvDuration("PROBE_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

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

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
