package config

import (
	"context"
	"fmt"

	"marketplace/logger"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil without error when no address is configured.
func ConnectRedis(ctx context.Context, cfg *Configuration) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Username: cfg.RedisUser,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	res, err := rdb.Ping(ctx).Result()
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Log.WithField("reply", res).Info("Connected to Redis")
	return rdb, nil
}
