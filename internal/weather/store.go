package weather

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/manuelxose/appski-weather/internal/observability"
)

// Store is the single source of truth for the weather data currently being
// viewed: one station's raw snapshot plus the selected altitude band.
// Raw fields are mutated only by the store itself; derived views are pure
// reads over the current snapshot. A Store is safe for concurrent use.
type Store struct {
	source   DataSource
	logger   *slog.Logger
	metrics  *observability.Metrics
	recorder ObservationRecorder

	mu       sync.RWMutex
	slug     string
	obs      *CurrentObservation
	forecast *Forecast
	webcams  []WebcamItem
	radar    *RadarInfo
	band     AltitudeBand
	loading  bool
	errMsg   string
}

// ForecastHorizonHours is the default forecast horizon requested from the
// data source.
const ForecastHorizonHours = 72

// NewStore creates a Store reading from the given data source.
func NewStore(source DataSource, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		source:  source,
		logger:  logger,
		metrics: metrics,
		band:    BandMid,
	}
}

// SetRecorder attaches an observation history sink. Every observation that
// survives a successful load or refresh is forwarded to it.
func (s *Store) SetRecorder(r ObservationRecorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorder = r
}

// LoadStation fetches the current observation, forecast, webcam list, and
// radar info for a station concurrently and replaces the whole raw snapshot
// atomically. If any fetch fails, none of the raw fields change and an error
// state with a human-readable message is recorded instead. A new call does
// not cancel an in-flight one; callers that overlap calls should discard
// results of superseded loads by comparing StationSlug.
func (s *Store) LoadStation(ctx context.Context, slug string) error {
	if slug == "" {
		return fmt.Errorf("station slug must not be empty")
	}

	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error

		obs      *CurrentObservation
		forecast *Forecast
		webcams  []WebcamItem
		radar    *RadarInfo
	)

	fail := func(what string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", what, err)
		}
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		v, err := s.timedFetch(ctx, "now", func(ctx context.Context) (any, error) {
			return s.source.GetNow(ctx, slug)
		})
		if err != nil {
			fail("current conditions", err)
			return
		}
		obs = v.(*CurrentObservation)
	}()
	go func() {
		defer wg.Done()
		v, err := s.timedFetch(ctx, "forecast", func(ctx context.Context) (any, error) {
			return s.source.GetForecast(ctx, slug, ForecastHorizonHours)
		})
		if err != nil {
			fail("forecast", err)
			return
		}
		forecast = v.(*Forecast)
	}()
	go func() {
		defer wg.Done()
		v, err := s.timedFetch(ctx, "webcams", func(ctx context.Context) (any, error) {
			return s.source.GetWebcams(ctx, slug)
		})
		if err != nil {
			fail("webcams", err)
			return
		}
		webcams = v.([]WebcamItem)
	}()
	go func() {
		defer wg.Done()
		v, err := s.timedFetch(ctx, "radar", func(ctx context.Context) (any, error) {
			return s.source.GetRadar(ctx, slug)
		})
		if err != nil {
			fail("radar", err)
			return
		}
		radar = v.(*RadarInfo)
	}()
	wg.Wait()

	if firstErr != nil {
		s.mu.Lock()
		s.loading = false
		s.errMsg = fmt.Sprintf("could not load weather for %s: %v", slug, firstErr)
		s.mu.Unlock()
		s.metrics.StationLoads.WithLabelValues("error").Inc()
		s.logger.Error("station load failed", "station", slug, "error", firstErr)
		return firstErr
	}

	s.mu.Lock()
	s.slug = slug
	s.obs = obs
	s.forecast = forecast
	s.webcams = webcams
	s.radar = radar
	s.loading = false
	s.errMsg = ""
	recorder := s.recorder
	s.mu.Unlock()

	if recorder != nil && obs != nil {
		recorder.Record(slug, *obs)
	}

	s.metrics.StationLoads.WithLabelValues("success").Inc()
	s.logger.Info("station loaded", "station", slug, "forecast_points", len(forecast.Points))
	return nil
}

// RefreshNow re-fetches only the current observation. Failures are logged
// and leave the previous value in place: a background refresh never
// regresses readers to an error state.
func (s *Store) RefreshNow(ctx context.Context) {
	s.mu.RLock()
	slug := s.slug
	s.mu.RUnlock()
	if slug == "" {
		return
	}

	obs, err := s.source.GetNow(ctx, slug)
	if err != nil {
		s.metrics.Refreshes.WithLabelValues("now", "error").Inc()
		s.logger.Warn("observation refresh failed, keeping previous value", "station", slug, "error", err)
		return
	}

	s.mu.Lock()
	s.obs = obs
	recorder := s.recorder
	s.mu.Unlock()

	if recorder != nil && obs != nil {
		recorder.Record(slug, *obs)
	}
	s.metrics.Refreshes.WithLabelValues("now", "success").Inc()
}

// RefreshForecast re-fetches only the forecast, with the same
// keep-stale-on-failure contract as RefreshNow.
func (s *Store) RefreshForecast(ctx context.Context) {
	s.mu.RLock()
	slug := s.slug
	s.mu.RUnlock()
	if slug == "" {
		return
	}

	forecast, err := s.source.GetForecast(ctx, slug, ForecastHorizonHours)
	if err != nil {
		s.metrics.Refreshes.WithLabelValues("forecast", "error").Inc()
		s.logger.Warn("forecast refresh failed, keeping previous value", "station", slug, "error", err)
		return
	}

	s.mu.Lock()
	s.forecast = forecast
	s.mu.Unlock()
	s.metrics.Refreshes.WithLabelValues("forecast", "success").Inc()
}

// SelectBand changes which altitude band all derived views read from.
// Unknown bands are ignored.
func (s *Store) SelectBand(band AltitudeBand) {
	if !ValidBand(band) {
		return
	}
	s.mu.Lock()
	s.band = band
	s.mu.Unlock()
}

// Reset clears the raw snapshot, selection, and error state, returning the
// store to its initial mid-band state. Used when leaving a station context.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slug = ""
	s.obs = nil
	s.forecast = nil
	s.webcams = nil
	s.radar = nil
	s.band = BandMid
	s.loading = false
	s.errMsg = ""
}

// StationSlug returns the slug of the currently loaded station, or "".
func (s *Store) StationSlug() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slug
}

// Band returns the currently selected altitude band.
func (s *Store) Band() AltitudeBand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.band
}

// Loading reports whether a LoadStation call is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastError returns the human-readable message of the last failed load,
// or "" when the store is not in an error state.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// HasData reports whether a current observation or forecast is present.
func (s *Store) HasData() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.obs != nil || s.forecast != nil
}

// Observation returns the raw (unadjusted) current observation, or nil.
func (s *Store) Observation() *CurrentObservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.obs
}

// Forecast returns the raw forecast, or nil.
func (s *Store) Forecast() *Forecast {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forecast
}

// Radar returns the radar info, or nil.
func (s *Store) Radar() *RadarInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.radar
}

// ObservationForBand returns the current observation adjusted for the
// selected band, or nil when nothing is loaded.
func (s *Store) ObservationForBand() *CurrentObservation {
	s.mu.RLock()
	obs, band := s.obs, s.band
	s.mu.RUnlock()
	return AdjustObservationForBand(obs, band)
}

// PointsForBand returns the forecast points for the selected band.
func (s *Store) PointsForBand() []ForecastPoint {
	s.mu.RLock()
	forecast, band := s.forecast, s.band
	s.mu.RUnlock()
	return FilterByBand(forecast, band)
}

// Summaries returns the three period summaries for the selected band.
func (s *Store) Summaries() []PeriodSummary {
	s.mu.RLock()
	forecast, band := s.forecast, s.band
	s.mu.RUnlock()
	return GenerateSummaries(forecast, band)
}

// BestWindow returns the best skiing window for the selected band, or nil.
func (s *Store) BestWindow() *SkiingWindow {
	s.mu.RLock()
	forecast, band := s.forecast, s.band
	s.mu.RUnlock()
	return FindBestSkiingWindow(forecast, band)
}

// ActiveWebcams returns the webcams that are active and either untagged or
// tagged with the selected band.
func (s *Store) ActiveWebcams() []WebcamItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []WebcamItem
	for _, cam := range s.webcams {
		if !cam.Active {
			continue
		}
		if cam.Band != nil && *cam.Band != s.band {
			continue
		}
		out = append(out, cam)
	}
	return out
}

func (s *Store) timedFetch(ctx context.Context, endpoint string, fetch func(context.Context) (any, error)) (any, error) {
	start := time.Now()
	v, err := fetch(ctx)
	s.metrics.SourceDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	return v, err
}
