// Package cache keeps the last computed dashboard in Redis.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/till-pos/pkg/logger"
)

// RedisConfig holds the connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ConnectRedis opens a client and pings it. An empty address disables the
// cache and returns a nil client.
func ConnectRedis(cfg RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		logger.Logger.Info().Msg("Redis address not set, dashboard cache disabled")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Logger.Info().Str("addr", cfg.Addr).Msg("Connected to Redis")
	return rdb, nil
}
