package model

import "time"

// PaymentEventType is the kind of payment gateway notification.
type PaymentEventType string

const (
	PaymentSucceeded PaymentEventType = "PAYMENT_SUCCESS"
	PaymentFailed    PaymentEventType = "PAYMENT_FAILED"
)

// PaymentEvent is a payment gateway notification for an order.
type PaymentEvent struct {
	EventID   string           `json:"event_id"`
	EventType PaymentEventType `json:"event_type"`
	Timestamp time.Time        `json:"timestamp"`
	OrderID   int64            `json:"order_id"`
	Reason    string           `json:"reason,omitempty"`
}
