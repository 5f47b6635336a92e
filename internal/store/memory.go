package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-assistant/internal/common"
	"github.com/i474232898/weather-assistant/internal/weather"
)

var (
	// ErrNotFound is returned when no probe has been recorded for a given location.
	ErrNotFound = errors.New("no probe results for location")
)

// ProbeHistory holds a time-ordered list of probe results for a location.
type ProbeHistory struct {
	Results []weather.ProbeResult
}

// MemoryStore is a concurrency-safe in-memory record of provider probes.
// It only ever holds reachability checks, never fetched weather data.
type MemoryStore struct {
	mu sync.RWMutex

	// key: normalized location, value: history
	data map[string]*ProbeHistory

	// retention configuration
	maxHistory int           // max number of results per location
	maxAge     time.Duration // optional max age for results

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*ProbeHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveProbe appends a probe result and enforces retention.
func (s *MemoryStore) SaveProbe(result weather.ProbeResult) {
	key := common.NormalizeLocation(result.Location)

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &ProbeHistory{}
		s.data[key] = history
	}

	history.Results = append(history.Results, result)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Results) > s.maxHistory {
		over := len(history.Results) - s.maxHistory
		history.Results = history.Results[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Results); i++ {
			if !history.Results[i].Timestamp.Before(cutoff) {
				break
			}
		}
		history.Results = history.Results[i:]
	}
}

// Latest returns the most recent probe for a location.
func (s *MemoryStore) Latest(location string) (weather.ProbeResult, error) {
	key := common.NormalizeLocation(location)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Results) == 0 {
		return weather.ProbeResult{}, ErrNotFound
	}
	return history.Results[len(history.Results)-1], nil
}

// Range returns all probes for a location between from and to (inclusive).
func (s *MemoryStore) Range(location string, from, to time.Time) ([]weather.ProbeResult, error) {
	key := common.NormalizeLocation(location)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Results) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.ProbeResult
	for _, r := range history.Results {
		if !r.Timestamp.Before(from) && !r.Timestamp.After(to) {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
