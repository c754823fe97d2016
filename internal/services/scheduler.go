package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

type tokenCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Scheduler runs housekeeping jobs in the background.
type Scheduler struct {
	scheduler gocron.Scheduler
	tokens    tokenCleaner
	interval  time.Duration
	logger    *zap.Logger
}

func NewScheduler(tokens tokenCleaner, interval time.Duration, logger *zap.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, tokens: tokens, interval: interval, logger: logger}, nil
}

func (s *Scheduler) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.cleanupTokens),
		gocron.WithName("token_cleanup"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to register token cleanup: %w", err)
	}

	s.scheduler.Start()
	s.logger.Info("scheduler started", zap.Duration("cleanup_interval", s.interval))
	return nil
}

func (s *Scheduler) cleanupTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.tokens.CleanupExpired(ctx)
	if err != nil {
		s.logger.Error("token cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("expired tokens removed", zap.Int64("count", removed))
	}
}

func (s *Scheduler) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		s.logger.Error("failed to shut down scheduler", zap.Error(err))
	}
}
