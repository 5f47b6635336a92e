package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{
		"OPENWEATHER_API_KEY", "OPENWEATHER_BASE_URL", "TIMEZONE_API_KEY", "TIMEZONEDB_BASE_URL",
		"HTTP_TIMEOUT", "RETRY_MAX_ATTEMPTS", "RETRY_MAX_BACKOFF", "REQUEST_TIMEOUT",
		"PROBE_LOCATION", "PROBE_INTERVAL", "PROBE_MAX_HISTORY", "PROBE_MAX_AGE", "PORT", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}

	cfg, err := fromEnv()
	require.NoError(t, err)
	require.Empty(t, cfg.OpenWeatherAPIKey)
	require.Equal(t, "https://api.openweathermap.org/data/2.5", cfg.OpenWeatherBaseURL)
	require.Equal(t, "http://api.timezonedb.com/v2.1", cfg.TimezoneDBBaseURL)
	require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 3, cfg.RetryMaxAttempts)
	require.Equal(t, 10*time.Second, cfg.RetryMaxBackoff)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.Empty(t, cfg.ProbeLocation)
	require.Equal(t, 15*time.Minute, cfg.ProbeInterval)
	require.Equal(t, 96, cfg.ProbeMaxHistory)
	require.Equal(t, 24*time.Hour, cfg.ProbeMaxAge)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestOverrides(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "ow-key")
	t.Setenv("TIMEZONE_API_KEY", "tz-key")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("PROBE_LOCATION", "London")
	t.Setenv("PROBE_INTERVAL", "1m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := fromEnv()
	require.NoError(t, err)
	require.Equal(t, "ow-key", cfg.OpenWeatherAPIKey)
	require.Equal(t, "tz-key", cfg.TimezoneAPIKey)
	require.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 5, cfg.RetryMaxAttempts)
	require.Equal(t, "London", cfg.ProbeLocation)
	require.Equal(t, time.Minute, cfg.ProbeInterval)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestInvalidValues(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")
	_, err := fromEnv()
	require.ErrorContains(t, err, "REQUEST_TIMEOUT")

	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("RETRY_MAX_ATTEMPTS", "0")
	_, err = fromEnv()
	require.ErrorContains(t, err, "RETRY_MAX_ATTEMPTS")
}
