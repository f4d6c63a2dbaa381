package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"MACross/internal/backtest"
	"MACross/internal/notifier"
	"MACross/internal/report"
)

// Purger drops stale cache entries.
type Purger interface {
	Purge() (int64, error)
}

// Scheduler re-runs the backtest and maintains the HTTP cache on cron
// schedules.
type Scheduler struct {
	Cron      *cron.Cron
	Runner    *backtest.Runner
	Cache     Purger
	Notifier  notifier.Notifier
	ChartPath string
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. Overlapping runs of the same job are
// skipped.
func NewScheduler(ctx context.Context, runner *backtest.Runner, cache Purger, n notifier.Notifier, chartPath string) *Scheduler {
	if n == nil {
		n = notifier.Noop{}
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Runner:    runner,
		Cache:     cache,
		Notifier:  n,
		ChartPath: chartPath,
		Ctx:       ctx,
	}
}

// RegisterAll registers the backtest run and, when a cache is present, the
// cache purge.
func (s *Scheduler) RegisterAll(runCron, purgeCron string) error {
	if _, err := s.Cron.AddFunc(runCron, s.runTask); err != nil {
		return fmt.Errorf("register run task: %w", err)
	}
	if s.Cache != nil {
		if _, err := s.Cron.AddFunc(purgeCron, s.purgeTask); err != nil {
			return fmt.Errorf("register purge task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes the backtest task immediately.
func (s *Scheduler) RunNow() {
	s.runTask()
}

func (s *Scheduler) runTask() {
	log.Info().Msg("running scheduled backtest")
	res, err := s.Runner.Run(s.Ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduled backtest failed")
		s.trySend(fmt.Sprintf("❌ backtest failed: %v", err))
		return
	}

	if s.ChartPath != "" {
		if err := report.RenderChart(res, s.ChartPath); err != nil {
			log.Error().Err(err).Msg("render chart")
		} else {
			log.Info().Str("path", s.ChartPath).Msg("chart written")
		}
	}
	s.trySend(notifier.FormatRunReport(res))
}

func (s *Scheduler) purgeTask() {
	n, err := s.Cache.Purge()
	if err != nil {
		log.Error().Err(err).Msg("purge http cache")
		return
	}
	log.Info().Int64("removed", n).Msg("http cache purged")
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
