package config

import (
	"log/slog"

	"go.uber.org/fx"
)

// Module exposes configuration loader for fx graphs and logs which optional
// integrations are switched on.
var Module = fx.Options(
	fx.Provide(Load),
	fx.Invoke(logSummary),
)

func logSummary(cfg *Config, logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.String("address", cfg.RunAddress),
		slog.Int("workers", cfg.WorkerPoolSize),
		slog.Bool("kafka", cfg.KafkaEnabled()),
		slog.Bool("redis", cfg.RedisAddress != ""),
		slog.Bool("tracing", cfg.JaegerEndpoint != ""),
	)
}
