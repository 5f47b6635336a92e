package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-assistant/internal/weather"
)

const defaultProbeTimeout = 30 * time.Second

// Prober checks provider reachability for a location.
type Prober interface {
	Probe(ctx context.Context, location string) weather.ProbeResult
}

// Scheduler periodically probes the weather provider with a canary location.
type Scheduler struct {
	scheduler *gocron.Scheduler
	prober    Prober
	location  string
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler. An empty location disables probing.
func New(location string, interval time.Duration, prober Prober, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		prober:    prober,
		location:  location,
		interval:  interval,
		timeout:   defaultProbeTimeout,
		logger:    logger.With(zap.String("component", "scheduler")),
	}
}

// Start schedules the probe job and starts the underlying scheduler. The first
// probe runs immediately.
func (s *Scheduler) Start() error {
	if s.location == "" {
		s.logger.Info("no probe location configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("provider probe scheduled", zap.String("location", s.location), zap.Int("every_minutes", minutes))
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	res := s.prober.Probe(ctx, s.location)
	if !res.OK {
		s.logger.Warn("provider probe failed",
			zap.String("location", res.Location),
			zap.String("code", res.Code),
			zap.Duration("latency", res.Latency),
		)
		return
	}
	s.logger.Info("provider probe succeeded", zap.String("location", res.Location), zap.Duration("latency", res.Latency))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
