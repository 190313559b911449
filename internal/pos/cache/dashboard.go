package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/till-pos/internal/pos/report"
	"github.com/tair/till-pos/pkg/logger"
)

// DashboardKey is the Redis key of the cached snapshot
const DashboardKey = "pos:dashboard"

// DashboardSource computes a fresh snapshot
type DashboardSource interface {
	Dashboard(ctx context.Context) report.Dashboard
}

// DashboardCache serves the dashboard from Redis and recomputes it on a
// miss. Redis failures fall through to the source. A nil client disables
// caching entirely.
type DashboardCache struct {
	source DashboardSource
	redis  *redis.Client
	ttl    time.Duration
}

// NewDashboardCache creates a dashboard cache
func NewDashboardCache(source DashboardSource, client *redis.Client, ttl time.Duration) *DashboardCache {
	return &DashboardCache{source: source, redis: client, ttl: ttl}
}

// Dashboard returns the snapshot and whether it came from the cache
func (c *DashboardCache) Dashboard(ctx context.Context) (report.Dashboard, bool) {
	if c.redis == nil || c.ttl <= 0 {
		return c.source.Dashboard(ctx), false
	}

	data, err := c.redis.Get(ctx, DashboardKey).Bytes()
	switch {
	case err == nil:
		var d report.Dashboard
		if err := json.Unmarshal(data, &d); err == nil {
			return d, true
		}
		logger.Warn(ctx).Err(err).Msg("Failed to decode cached dashboard")
	case errors.Is(err, redis.Nil):
	default:
		logger.Warn(ctx).Err(err).Msg("Redis error, computing dashboard")
	}

	d := c.source.Dashboard(ctx)
	payload, err := json.Marshal(d)
	if err != nil {
		logger.Warn(ctx).Err(err).Msg("Failed to encode dashboard")
		return d, false
	}
	if err := c.redis.Set(ctx, DashboardKey, payload, c.ttl).Err(); err != nil {
		logger.Warn(ctx).Err(err).Msg("Failed to cache dashboard")
	}
	return d, false
}

// Invalidate drops the cached snapshot after a write that changes it
func (c *DashboardCache) Invalidate(ctx context.Context) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, DashboardKey).Err(); err != nil {
		logger.Warn(ctx).Err(err).Msg("Failed to invalidate dashboard cache")
	}
}
