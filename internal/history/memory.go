// Package history keeps a bounded in-memory record of the observations a
// station has served, so the API can show recent conditions alongside the
// live view.
package history

import (
	"errors"
	"sync"
	"time"

	"github.com/manuelxose/appski-weather/internal/weather"
)

// ErrNoHistory is returned when no observations are recorded for a station.
var ErrNoHistory = errors.New("no observation history for station")

// Store is a concurrency-safe per-station observation history with
// count- and age-based retention.
type Store struct {
	mu sync.RWMutex

	// key: station slug
	data map[string][]weather.CurrentObservation

	maxEntries int           // max observations per station (0 = unlimited)
	maxAge     time.Duration // max observation age (0 = unlimited)
}

// NewStore creates a history store with optional retention limits.
func NewStore(maxEntries int, maxAge time.Duration) *Store {
	return &Store{
		data:       make(map[string][]weather.CurrentObservation),
		maxEntries: maxEntries,
		maxAge:     maxAge,
	}
}

// Record appends an observation for a station and enforces retention.
// It implements weather.ObservationRecorder.
func (s *Store) Record(stationSlug string, obs weather.CurrentObservation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append(s.data[stationSlug], obs)

	if s.maxEntries > 0 && len(entries) > s.maxEntries {
		entries = entries[len(entries)-s.maxEntries:]
	}

	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(entries); i++ {
			if !entries[i].Timestamp.Before(cutoff) {
				break
			}
		}
		entries = entries[i:]
	}

	s.data[stationSlug] = entries
}

// Latest returns the most recent recorded observation for a station.
func (s *Store) Latest(stationSlug string) (weather.CurrentObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.data[stationSlug]
	if len(entries) == 0 {
		return weather.CurrentObservation{}, ErrNoHistory
	}
	return entries[len(entries)-1], nil
}

// Range returns the recorded observations for a station between from and to,
// inclusive.
func (s *Store) Range(stationSlug string, from, to time.Time) ([]weather.CurrentObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.data[stationSlug]
	if len(entries) == 0 {
		return nil, ErrNoHistory
	}

	var result []weather.CurrentObservation
	for _, obs := range entries {
		if !obs.Timestamp.Before(from) && !obs.Timestamp.After(to) {
			result = append(result, obs)
		}
	}
	if len(result) == 0 {
		return nil, ErrNoHistory
	}
	return result, nil
}
