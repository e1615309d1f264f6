package service

import (
	"context"
	"time"

	"github.com/shivakharbanda/journalclub/internal/repository"
	"github.com/shivakharbanda/journalclub/pkg/logger"
	"github.com/shivakharbanda/journalclub/pkg/metrics"
)

// CounterService reconciles the denormalized episode reaction counters with
// the reaction table. The write path keeps counters correct with relative
// deltas; this job is the safety net that repairs drift from crashes or
// manual data edits.
type CounterService interface {
	// RecomputeAll rewrites drifted counters and returns how many episodes
	// were repaired.
	RecomputeAll(ctx context.Context) (int64, error)
	// Run recomputes on a fixed interval until the context is cancelled.
	Run(ctx context.Context, interval time.Duration)
}

type counterService struct {
	episodeRepo repository.EpisodeRepository
	metrics     *metrics.Metrics
	log         *logger.Logger
}

func NewCounterService(episodeRepo repository.EpisodeRepository, m *metrics.Metrics, log *logger.Logger) CounterService {
	return &counterService{
		episodeRepo: episodeRepo,
		metrics:     m,
		log:         log,
	}
}

func (s *counterService) RecomputeAll(ctx context.Context) (int64, error) {
	start := time.Now()
	drifted, err := s.episodeRepo.RecomputeReactionCounts(ctx)
	if err != nil {
		return 0, err
	}

	s.metrics.RecomputeRuns.Inc()
	s.metrics.CounterDrift.WithLabelValues("any").Set(float64(drifted))

	entry := s.log.WithField("drifted_episodes", drifted).
		WithField("duration_ms", time.Since(start).Milliseconds())
	if drifted > 0 {
		entry.Warn("Reaction counter recompute repaired drift")
	} else {
		entry.Debug("Reaction counter recompute found no drift")
	}
	return drifted, nil
}

func (s *counterService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.WithField("interval", interval.String()).Info("Counter reconciliation job started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Counter reconciliation job stopped")
			return
		case <-ticker.C:
			if _, err := s.RecomputeAll(ctx); err != nil {
				s.log.WithError(err).Error("Reaction counter recompute failed")
			}
		}
	}
}
