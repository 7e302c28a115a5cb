package telemetry

import (
	"context"
	"log/slog"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"

	"github.com/polkiloo/digimarket/internal/config"
)

// Module wires tracing provider and flushes it on shutdown.
var Module = fx.Options(
	fx.Provide(newTracerProvider),
	fx.Invoke(registerLifecycle),
)

type tracerParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
}

func newTracerProvider(p tracerParams) (*sdktrace.TracerProvider, error) {
	return NewTracerProvider(p.Ctx, p.Config.ServiceName, p.Config.JaegerEndpoint)
}

func registerLifecycle(lc fx.Lifecycle, tp *sdktrace.TracerProvider, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := tp.Shutdown(ctx); err != nil {
				logger.Error("tracer shutdown failed", slog.String("error", err.Error()))
				return err
			}
			return nil
		},
	})
}
