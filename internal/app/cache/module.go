package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"fleetsync/internal/config"
	"fleetsync/internal/config/logger"
)

// Module provides the configured invalidation target
var Module = fx.Options(
	fx.Provide(NewInvalidator),
)

// NewInvalidator selects the invalidation target from configuration
func NewInvalidator(lc fx.Lifecycle, cfg *config.Config, log logger.Logger) Invalidator {
	if cfg.Cache.Driver != config.CacheRedis {
		return NewMemory()
	}

	target := NewRedis(
		redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr}),
		cfg.Cache.Prefix,
		cfg.Cache.Channel,
	)

	log.WithComponent("CACHE").Info().Msgf("Publishing invalidations to redis at %s", cfg.Cache.RedisAddr)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return target.Close()
		},
	})

	return target
}
