// Package scheduler drives repeated analysis runs on a cron schedule.
package scheduler

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// RunFunc is one full analysis run. Errors are logged, not fatal; the next
// scheduled run still fires.
type RunFunc func(ctx context.Context) error

// Scheduler fires the run function on a standard 5-field cron schedule.
type Scheduler struct {
	run    RunFunc
	cron   *cron.Cron
	logger arbor.ILogger

	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler around the run function.
func NewScheduler(run RunFunc, logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		run:    run,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the schedule and begins firing. Overlapping runs are
// skipped: if a run is still in flight when the next tick arrives, the tick
// is dropped.
func (s *Scheduler) Start(ctx context.Context, schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.mu.Lock()
		if s.isRunning {
			s.mu.Unlock()
			s.logger.Warn().Msg("Previous run still in progress, skipping scheduled tick")
			return
		}
		s.isRunning = true
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		if err := s.run(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Scheduled analysis run failed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", schedule).
		Msg("Analysis scheduler started")

	return nil
}

// Stop stops the scheduler and waits for any in-flight run registered with
// the cron runner to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Analysis scheduler stopped")
}
