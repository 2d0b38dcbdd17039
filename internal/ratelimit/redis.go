package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/config"
)

// NewRedisClient connects and pings Redis. It returns nil when no address
// is configured or the server is unreachable; callers then run without
// rate limiting.
func NewRedisClient(ctx context.Context, cfg config.RateLimitConfig, log *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, rate limiting disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, rate limiting disabled",
			zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = client.Close()
		return nil
	}

	log.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	return client
}
