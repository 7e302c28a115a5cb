package broker

import (
	"context"
	"errors"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/digimarket/internal/config"
	"github.com/polkiloo/digimarket/internal/usecase"
)

// Module wires Kafka payment consumer and audit publisher. Both are nil when
// no brokers are configured.
var Module = fx.Options(
	fx.Provide(newPaymentConsumer, newAuditPublisher),
	fx.Provide(fx.Annotate(auditSinks, fx.ResultTags(`group:"audit_sinks,flatten"`))),
	fx.Invoke(registerLifecycle),
)

type brokerParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newPaymentConsumer(p brokerParams) *PaymentConsumer {
	if !p.Config.KafkaEnabled() {
		p.Logger.Info("kafka brokers not configured, payment consumer disabled")
		return nil
	}
	return NewPaymentConsumer(p.Config.KafkaBrokers, p.Config.PaymentTopic, p.Config.PaymentGroupID, p.Logger)
}

func newAuditPublisher(p brokerParams) *AuditPublisher {
	if !p.Config.KafkaEnabled() {
		return nil
	}
	return NewAuditPublisher(p.Config.KafkaBrokers, p.Config.AuditTopic)
}

func auditSinks(publisher *AuditPublisher) []usecase.AuditSink {
	if publisher == nil {
		return nil
	}
	return []usecase.AuditSink{publisher}
}

func registerLifecycle(lc fx.Lifecycle, consumer *PaymentConsumer, publisher *AuditPublisher) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			var errs []error
			if consumer != nil {
				errs = append(errs, consumer.Close())
			}
			if publisher != nil {
				errs = append(errs, publisher.Close())
			}
			return errors.Join(errs...)
		},
	})
}
