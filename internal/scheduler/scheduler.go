package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/manuelxose/appski-weather/internal/weather"
)

// Scheduler periodically refreshes the weather store's observation and
// forecast in the background. Refresh failures never surface to readers;
// the store keeps serving the previous values.
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     *weather.Store
	logger    *slog.Logger
	interval  time.Duration
}

// New creates a new Scheduler for the given store.
func New(store *weather.Store, interval time.Duration, logger *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		store:     store,
		logger:    logger,
		interval:  interval,
	}
}

// Start schedules the periodic refresh job and starts the underlying
// scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		slug := s.store.StationSlug()
		if slug == "" {
			return
		}
		s.logger.Debug("running background weather refresh", "station", slug)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		s.store.RefreshNow(ctx)
		s.store.RefreshForecast(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
