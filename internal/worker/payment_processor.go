package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/model"
	"github.com/polkiloo/digimarket/internal/telemetry"
)

// PaymentSource yields payment events. The returned ack commits the event.
type PaymentSource interface {
	Next(ctx context.Context) (model.PaymentEvent, func(context.Context) error, error)
}

// Deduplicator filters redelivered events by id.
type Deduplicator interface {
	Claim(ctx context.Context, id string) (bool, error)
	Forget(ctx context.Context, id string) error
}

// PaymentFacade exposes the subset of application functionality required by the worker.
type PaymentFacade interface {
	PaymentSucceeded(ctx context.Context, orderID int64) error
	PaymentFailed(ctx context.Context, orderID int64, reason string) error
}

const maxRetryDelay = 30 * time.Second

type delivery struct {
	event model.PaymentEvent
	ack   func(context.Context) error
}

// PaymentProcessor feeds payment events into order lifecycle concurrently.
type PaymentProcessor struct {
	source     PaymentSource
	dedup      Deduplicator
	facade     PaymentFacade
	workers    int
	retryDelay time.Duration
	logger     *slog.Logger

	jobs   chan delivery
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPaymentProcessor constructs payment processor worker pool. A nil source
// leaves the processor idle.
func NewPaymentProcessor(source PaymentSource, dedup Deduplicator, facade PaymentFacade, workers int, logger *slog.Logger) *PaymentProcessor {
	if workers <= 0 {
		workers = 1
	}
	return &PaymentProcessor{
		source:     source,
		dedup:      dedup,
		facade:     facade,
		workers:    workers,
		retryDelay: time.Second,
		logger:     logger,
		jobs:       make(chan delivery, workers),
	}
}

// Start launches background processing.
func (p *PaymentProcessor) Start(ctx context.Context) {
	if p.source == nil {
		p.logger.Info("payment processor idle, no event source configured")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (p *PaymentProcessor) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *PaymentProcessor) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)

	for {
		event, ack, err := p.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("fetch payment event failed", slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.retryDelay):
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case p.jobs <- delivery{event: event, ack: ack}:
		}
	}
}

func (p *PaymentProcessor) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-p.jobs:
			if !ok {
				return
			}
			p.process(ctx, d)
		}
	}
}

// process applies one event. Business rejections are acknowledged. Infrastructure
// failures are retried until the worker stops, then the event stays
// unacknowledged and its id is forgotten.
func (p *PaymentProcessor) process(ctx context.Context, d delivery) {
	event := d.event
	logger := p.logger.With(
		slog.String("event_id", event.EventID),
		slog.String("event_type", string(event.EventType)),
		slog.Int64("order_id", event.OrderID),
	)
	settle := context.WithoutCancel(ctx)

	claimed, err := p.dedup.Claim(ctx, event.EventID)
	if err != nil {
		logger.Error("claim payment event failed", slog.String("error", err.Error()))
		p.count(event, "error")
		return
	}
	if !claimed {
		logger.Info("skipping duplicate payment event")
		p.count(event, "duplicate")
		p.ack(settle, d, logger)
		return
	}

	err = p.applyWithRetry(ctx, event, logger)
	switch {
	case err == nil:
		p.count(event, model.OutcomeSucceeded)
	case domainErrors.IsRejection(err):
		logger.Warn("payment event rejected", slog.String("code", domainErrors.Code(err)))
		p.count(event, model.OutcomeRejected)
	default:
		logger.Error("payment event failed", slog.String("error", err.Error()))
		p.count(event, model.OutcomeFailed)
		if err := p.dedup.Forget(settle, event.EventID); err != nil {
			logger.Error("forget payment event failed", slog.String("error", err.Error()))
		}
		return
	}

	p.ack(settle, d, logger)
}

// applyWithRetry keeps the event on this worker while the store fails. The
// consumer never fetches an uncommitted offset twice in one session, so giving
// up early would strand the order.
func (p *PaymentProcessor) applyWithRetry(ctx context.Context, event model.PaymentEvent, logger *slog.Logger) error {
	delay := p.retryDelay
	for attempt := 1; ; attempt++ {
		err := p.apply(ctx, event)
		if err == nil || domainErrors.IsRejection(err) {
			return err
		}
		logger.Warn("payment event apply failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("backoff", delay),
			slog.String("error", err.Error()),
		)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
		delay = min(delay*2, maxRetryDelay)
	}
}

func (p *PaymentProcessor) apply(ctx context.Context, event model.PaymentEvent) error {
	switch event.EventType {
	case model.PaymentSucceeded:
		return p.facade.PaymentSucceeded(ctx, event.OrderID)
	case model.PaymentFailed:
		return p.facade.PaymentFailed(ctx, event.OrderID, event.Reason)
	default:
		return fmt.Errorf("%w: unknown payment event type %q", domainErrors.ErrInvalidInput, event.EventType)
	}
}

func (p *PaymentProcessor) ack(ctx context.Context, d delivery, logger *slog.Logger) {
	if d.ack == nil {
		return
	}
	if err := d.ack(ctx); err != nil {
		logger.Error("ack payment event failed", slog.String("error", err.Error()))
	}
}

func (p *PaymentProcessor) count(event model.PaymentEvent, outcome string) {
	telemetry.PaymentEventsTotal.WithLabelValues(string(event.EventType), outcome).Inc()
}
