package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"

	"github.com/polkiloo/digimarket/internal/config"
)

// Module exposes payment event deduplicator to fx graph.
var Module = fx.Provide(newDeduplicator)

type dedupParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newDeduplicator(p dedupParams) Deduplicator {
	if p.Config.RedisAddress == "" {
		p.Logger.Info("redis not configured, payment events are not deduplicated")
		return Noop{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     p.Config.RedisAddress,
		Password: p.Config.RedisPassword,
		DB:       p.Config.RedisDB,
	})
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := client.Ping(pingCtx).Err(); err != nil {
				return fmt.Errorf("redis ping failed: %w", err)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return NewRedisDeduplicator(client, p.Config.EventDedupTTL)
}
