package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/fixitsanclemente/quote-intake/internal/config"
	httpmiddleware "github.com/fixitsanclemente/quote-intake/internal/http/middleware"
	"github.com/fixitsanclemente/quote-intake/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, using in-process rate limiting", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildRateLimiter shares limits through Redis when a client is available
// and falls back to a per-instance token bucket. A non-positive limit
// disables rate limiting.
func BuildRateLimiter(cfg *appconfig.Config, redisClient *redis.Client) httpmiddleware.Limiter {
	if cfg == nil || cfg.RateLimitPerMinute <= 0 {
		return nil
	}
	if redisClient != nil {
		return httpmiddleware.NewRedisLimiter(redisClient, cfg.RateLimitPerMinute)
	}
	return httpmiddleware.NewTokenBucket(cfg.RateLimitPerMinute)
}
