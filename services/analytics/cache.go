package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marketplace/logger"
	"marketplace/models"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "analytics:report:"

// Cache stores finished reports in Redis, keyed by range.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache returns nil when caching is disabled.
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if rdb == nil || ttl <= 0 {
		return nil
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func cacheKey(r Range) string {
	return cacheKeyPrefix + string(r)
}

// Get reports a miss as (nil, nil).
func (c *Cache) Get(ctx context.Context, r Range) (*models.AnalyticsReport, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(r)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var report models.AnalyticsReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, fmt.Errorf("decode cached report: %w", err)
	}
	return &report, nil
}

func (c *Cache) Set(ctx context.Context, r Range, report *models.AnalyticsReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey(r), data, c.ttl).Err()
}

func WithCache(c *Cache) Option {
	return func(s *Service) { s.cache = c }
}

// Cached serves r from the cache when possible and stores fresh reports.
// Cache failures are logged and fall through to a recompute.
func (s *Service) Cached(ctx context.Context, r Range) (*models.AnalyticsReport, error) {
	if s.cache == nil {
		return s.ReportSafe(ctx, r)
	}

	if report, err := s.cache.Get(ctx, r); err != nil {
		logger.Log.WithError(err).WithField("range", r).Warn("analytics cache read failed")
	} else if report != nil {
		return report, nil
	}

	report, err := s.ReportSafe(ctx, r)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, r, report); err != nil {
		logger.Log.WithError(err).WithField("range", r).Warn("analytics cache write failed")
	}
	return report, nil
}

// Warm recomputes every range and refreshes the cache. It is a no-op when
// caching is disabled.
func (s *Service) Warm(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, r := range Ranges {
		report, err := s.ReportSafe(ctx, r)
		if err != nil {
			logger.Log.WithError(err).WithField("range", r).Error("analytics warm failed")
			continue
		}
		if err := s.cache.Set(ctx, r, report); err != nil {
			logger.Log.WithError(err).WithField("range", r).Warn("analytics cache write failed")
		}
	}
	logger.Log.Debug("analytics cache warmed")
}
