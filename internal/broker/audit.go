package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/polkiloo/digimarket/internal/domain/model"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AuditEvent is the wire form of an audit entry published for downstream consumers.
type AuditEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	UserID    *int64    `json:"user_id,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditPublisher mirrors audit entries to a Kafka topic.
type AuditPublisher struct {
	writer messageWriter
	newID  func() string
}

// NewAuditPublisher creates synchronous producer for topic.
func NewAuditPublisher(brokers []string, topic string) *AuditPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
	return &AuditPublisher{writer: writer, newID: uuid.NewString}
}

func (p *AuditPublisher) Name() string { return "kafka" }

// Write publishes entry keyed by its user so one account's history stays ordered.
func (p *AuditPublisher) Write(ctx context.Context, entry model.LogEntry) error {
	event := AuditEvent{
		EventID:   p.newID(),
		EventType: entry.EventType,
		UserID:    entry.UserID,
		Message:   entry.Message,
		CreatedAt: entry.CreatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(auditKey(entry.UserID)),
		Value: payload,
		Time:  entry.CreatedAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}

// Close flushes pending messages.
func (p *AuditPublisher) Close() error {
	return p.writer.Close()
}

func auditKey(userID *int64) string {
	if userID == nil {
		return "system"
	}
	return "user-" + strconv.FormatInt(*userID, 10)
}
