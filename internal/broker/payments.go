package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/polkiloo/digimarket/internal/domain/model"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PaymentConsumer reads payment gateway notifications from a consumer group.
// Offsets are committed only through the ack returned by Next.
type PaymentConsumer struct {
	reader messageReader
	logger *slog.Logger
}

// NewPaymentConsumer creates consumer group reader for topic.
func NewPaymentConsumer(brokers []string, topic, groupID string, logger *slog.Logger) *PaymentConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
		MaxWait:     time.Second,
	})
	return &PaymentConsumer{reader: reader, logger: logger}
}

// Next blocks until a well-formed payment event arrives. Malformed messages
// are committed and skipped.
func (c *PaymentConsumer) Next(ctx context.Context) (model.PaymentEvent, func(context.Context) error, error) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return model.PaymentEvent{}, nil, fmt.Errorf("fetch payment event: %w", err)
		}

		event, err := DecodePaymentEvent(msg.Value)
		if err != nil {
			c.logger.Warn("dropping malformed payment event",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				return model.PaymentEvent{}, nil, fmt.Errorf("commit malformed payment event: %w", err)
			}
			continue
		}

		ack := func(ctx context.Context) error {
			return c.reader.CommitMessages(ctx, msg)
		}
		return event, ack, nil
	}
}

// Close stops the reader and leaves the consumer group.
func (c *PaymentConsumer) Close() error {
	return c.reader.Close()
}

// DecodePaymentEvent parses and validates JSON payment notification.
func DecodePaymentEvent(raw []byte) (model.PaymentEvent, error) {
	var event model.PaymentEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return model.PaymentEvent{}, fmt.Errorf("decode payment event: %w", err)
	}
	if event.EventID == "" {
		return model.PaymentEvent{}, fmt.Errorf("payment event without event_id")
	}
	if event.OrderID <= 0 {
		return model.PaymentEvent{}, fmt.Errorf("payment event %s has invalid order_id %d", event.EventID, event.OrderID)
	}
	switch event.EventType {
	case model.PaymentSucceeded, model.PaymentFailed:
	default:
		return model.PaymentEvent{}, fmt.Errorf("payment event %s has unknown type %q", event.EventID, event.EventType)
	}
	return event, nil
}
