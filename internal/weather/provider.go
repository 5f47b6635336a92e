package weather

import (
	"context"
	"time"
)

// Provider abstracts the weather data source (OpenWeatherMap).
type Provider interface {
	Name() string
	// Configured reports whether the provider has the credentials it needs.
	Configured() bool
	// NewSession returns the fetchers for a single user request.
	NewSession() Session
}

// Session holds the location resolver and series fetchers of one user request.
// Sessions are not shared between requests.
type Session interface {
	Resolve(ctx context.Context, location string) (Resolved, error)
	Forecast(ctx context.Context, coords Coordinates) ([]Sample[ForecastPoint], error)
	UVIndex(ctx context.Context, coords Coordinates) (Sample[UVReading], error)
	UVForecast(ctx context.Context, coords Coordinates, days int) ([]Sample[UVReading], error)
	AirPollution(ctx context.Context, coords Coordinates) ([]Sample[AirReading], error)
	AirPollutionForecast(ctx context.Context, coords Coordinates) ([]Sample[AirReading], error)
	// Alerts returns the active severe weather alerts; none is an empty slice.
	Alerts(ctx context.Context, coords Coordinates) ([]Alert, error)
}

// TimezoneLookup resolves the named timezone of a position.
type TimezoneLookup interface {
	Lookup(ctx context.Context, coords Coordinates) (Zone, error)
}

// ProbeStore is the contract the in-memory probe history must satisfy.
type ProbeStore interface {
	SaveProbe(result ProbeResult)
	Latest(location string) (ProbeResult, error)
	Range(location string, from, to time.Time) ([]ProbeResult, error)
}
