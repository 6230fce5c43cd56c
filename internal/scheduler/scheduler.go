// Package scheduler runs the periodic jobs: pushing the watch symbol's report and
// sweeping expired price cache entries.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"StockLens/internal/notifier"
	"StockLens/internal/report"
)

// Sender delivers a formatted message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Sweeper drops expired cache entries and returns how many were removed.
type Sweeper interface {
	Sweep() int
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Builder  report.Builder
	Notifier Sender
	Cache    Sweeper
	Symbol   string
	Logger   zerolog.Logger
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler. Cron expressions include a seconds field.
func NewScheduler(ctx context.Context, builder report.Builder, sender Sender, sweeper Sweeper, symbol string, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Builder:  builder,
		Notifier: sender,
		Cache:    sweeper,
		Symbol:   symbol,
		Logger:   logger,
		Ctx:      ctx,
	}
}

// RegisterAll registers the watch-report and cache-sweep tasks. An empty cron expression skips its task.
func (s *Scheduler) RegisterAll(watchCron, sweepCron string) error {
	if watchCron != "" && s.Symbol != "" && s.Notifier != nil {
		if _, err := s.Cron.AddFunc(watchCron, s.watchTask); err != nil {
			return fmt.Errorf("register watch task: %w", err)
		}
	}
	if sweepCron != "" && s.Cache != nil {
		if _, err := s.Cron.AddFunc(sweepCron, s.sweepTask); err != nil {
			return fmt.Errorf("register sweep task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info().Msg("scheduler stopped")
}

// RunWatchNow executes the watch task immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunWatchNow() {
	s.watchTask()
}

func (s *Scheduler) watchTask() {
	s.Logger.Info().Str("symbol", s.Symbol).Msg("running watch task")
	rep, err := s.Builder.Build(s.Ctx, s.Symbol)
	if err != nil {
		s.Logger.Error().Err(err).Str("symbol", s.Symbol).Msg("watch report failed")
		s.trySend(notifier.FormatError(s.Symbol, err))
		return
	}
	s.trySend(notifier.FormatReport(rep))
}

func (s *Scheduler) sweepTask() {
	if n := s.Cache.Sweep(); n > 0 {
		s.Logger.Debug().Int("removed", n).Msg("price cache swept")
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Logger.Error().Err(err).Msg("send notification")
	}
}
