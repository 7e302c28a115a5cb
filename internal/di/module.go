package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/digimarket/internal/adapter/dedup"
	"github.com/polkiloo/digimarket/internal/app"
	"github.com/polkiloo/digimarket/internal/broker"
	"github.com/polkiloo/digimarket/internal/config"
	"github.com/polkiloo/digimarket/internal/logger"
	"github.com/polkiloo/digimarket/internal/pkg/auth"
	"github.com/polkiloo/digimarket/internal/server/http/handlers"
	"github.com/polkiloo/digimarket/internal/server/http/router"
	"github.com/polkiloo/digimarket/internal/storage/postgres"
	"github.com/polkiloo/digimarket/internal/telemetry"
	"github.com/polkiloo/digimarket/internal/usecase"
	"github.com/polkiloo/digimarket/internal/worker"
)

// Module composes the whole service. Broker hooks are registered before the
// app hooks so workers stop before the consumer is closed.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		telemetry.Module,
		auth.Module,
		postgres.Module,
		broker.Module,
		dedup.Module,
		usecase.Module,
		fx.Provide(
			func(s *postgres.Storage) app.HealthChecker { return s },
			func(d dedup.Deduplicator) worker.Deduplicator { return d },
			func(f *app.MarketplaceFacade) handlers.MarketplaceFacade { return f },
			paymentSource,
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

// paymentSource returns an untyped nil when Kafka is disabled so the worker
// sees a nil interface.
func paymentSource(consumer *broker.PaymentConsumer) worker.PaymentSource {
	if consumer == nil {
		return nil
	}
	return consumer
}
