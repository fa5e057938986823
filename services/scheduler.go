package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler drives the progression engine on a fixed period. The job runs in
// singleton mode so a slow tick is never overlapped by the next one; combined
// with the engine's idempotency guards this is the concurrency-safety story.
type Scheduler struct {
	progression *ProgressionService
	interval    time.Duration
	logger      *slog.Logger
	sched       gocron.Scheduler
}

func NewScheduler(progression *ProgressionService, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		progression: progression,
		interval:    interval,
		logger:      logger,
	}
}

// Start launches the periodic tick, running once immediately. It does not
// block.
func (s *Scheduler) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.tick),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	sched.Start()
	s.sched = sched
	s.logger.Info("progression scheduler started", slog.Duration("interval", s.interval))
	return nil
}

// Stop shuts the scheduler down, waiting for a running tick to finish.
func (s *Scheduler) Stop() error {
	if s.sched == nil {
		return nil
	}
	return s.sched.Shutdown()
}

func (s *Scheduler) tick() {
	// Bound every tick so a stalled store call cannot outlive the period;
	// whatever did not finish is retried on the next tick.
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	if err := s.progression.RunTick(ctx); err != nil {
		s.logger.Error("progression tick failed", slog.Any("error", err))
	}
}
