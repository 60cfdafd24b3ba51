package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/m5cents/call-screening-backend/internal/infrastructure/config"
)

// Key prefixes for all cache entries owned by this service.
const (
	BlocklistMatchPrefix = "callscreen:match:blocklist:"
	ContactMatchPrefix   = "callscreen:match:contact:"
	RateLimitPrefix      = "callscreen:ratelimit:"
)

// NewRedisClient connects to Redis and verifies connectivity.
func NewRedisClient(cfg *config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info("redis client initialized",
		zap.String("addr", cfg.URL),
		zap.Int("db", cfg.DB))
	return client, nil
}
