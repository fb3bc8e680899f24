package webwritten

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/plu-programming-party/partybot/internal/telemetry"
)

// Scheduler runs the periodic jobs: daily winner selection at midnight UTC
// and hourly pool maintenance.
type Scheduler struct {
	store   *Store
	gen     *Generator
	logger  *slog.Logger
	metrics *telemetry.Metrics
	cron    *cron.Cron
}

// NewScheduler creates the cron wiring. Start must be called to begin.
func NewScheduler(store *Store, gen *Generator, logger *slog.Logger, metrics *telemetry.Metrics) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		store:   store,
		gen:     gen,
		logger:  logger,
		metrics: metrics,
		cron:    cron.New(cron.WithLocation(time.UTC)),
	}
}

// Start registers and starts the cron jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 * * *", func() {
		if _, err := s.RunSelection(context.Background()); err != nil {
			s.logger.Error("daily selection failed", "error", err)
		}
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@hourly", func() {
		if err := s.MaintainPool(context.Background()); err != nil {
			s.logger.Error("pool maintenance failed", "error", err)
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("webwritten scheduler started")
	return nil
}

// Stop halts the cron scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunSelection performs one winner selection round.
func (s *Scheduler) RunSelection(ctx context.Context) (*Winner, error) {
	winner, err := s.store.SelectWinner(ctx)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		s.logger.Info("no winner today, not enough votes")
		return nil, nil
	}
	s.metrics.RecordWinner()
	s.logger.Info("daily winner selected", "rating", winner.Rating, "votes", winner.Votes)
	return winner, nil
}

// MaintainPool tops the sentence pool back up when it runs low.
func (s *Scheduler) MaintainPool(ctx context.Context) error {
	count, err := s.store.ActiveCount(ctx)
	if err != nil {
		return err
	}
	if count >= poolLowWater {
		return nil
	}
	s.logger.Info("pool low, generating sentences", "active", count)

	story, err := s.store.Story(ctx)
	if err != nil {
		return err
	}
	sentences := s.gen.Sentences(ctx, story, poolRefillSize)
	for _, sentence := range sentences {
		if _, err := s.store.AddPending(ctx, sentence, "", "llm"); err != nil {
			return err
		}
	}
	s.logger.Info("pool refilled", "added", len(sentences))
	return nil
}
