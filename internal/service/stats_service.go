package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eventopia/eventopia-api/internal/models"
	appErrors "github.com/eventopia/eventopia-api/pkg/errors"
)

const statsCacheKey = "stats:system"

type statsStore interface {
	Collect(ctx context.Context) (*models.SystemStats, error)
	RecentDecisions(ctx context.Context, limit int) ([]models.RecentDecision, error)
}

// StatsService serves the dashboard snapshot, cached briefly since the
// aggregates scan several tables.
type StatsService struct {
	repo     statsStore
	cache    eventCache
	cacheTTL time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewStatsService constructs a StatsService instance.
func NewStatsService(repo statsStore, cache eventCache, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, cache: cache, cacheTTL: cacheTTL, metrics: metrics, logger: logger}
}

// System returns the dashboard counters.
func (s *StatsService) System(ctx context.Context) (*models.SystemStats, error) {
	if s.cache != nil {
		var cached models.SystemStats
		if err := s.cache.Get(ctx, statsCacheKey, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return &cached, nil
		}
		s.metrics.RecordCacheOperation(false)
	}

	stats, err := s.repo.Collect(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to collect stats")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, statsCacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache stats", zap.Error(err))
		}
	}
	return stats, nil
}

// RecentDecisions returns the latest approval ledger entries.
func (s *StatsService) RecentDecisions(ctx context.Context, limit int) ([]models.RecentDecision, error) {
	decisions, err := s.repo.RecentDecisions(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recent decisions")
	}
	return decisions, nil
}
