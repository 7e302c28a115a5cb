package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of orders placed",
	})

	OrderTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Order lifecycle attempts by action and outcome",
	}, []string{"action", "outcome"})

	OfferTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "offer_transitions_total",
		Help: "Offer lifecycle attempts by action and outcome",
	}, []string{"action", "outcome"})

	InventoryReserveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inventory_reserve_latency_seconds",
		Help:    "Latency of inventory reservation statements",
		Buckets: prometheus.DefBuckets,
	})

	InventoryReservationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_reservations_failed_total",
		Help: "Total number of rejected inventory reservations",
	}, []string{"reason"})

	InventoryReleasedUnits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_released_units_total",
		Help: "Units returned to offers by cancellations and payment failures",
	})

	AuthorizationDeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authorization_denied_total",
		Help: "Authorization guard denials by reason",
	}, []string{"reason"})

	TransitionConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transition_conflicts_total",
		Help: "Compare-and-set conflicts retried by lifecycle operations",
	})

	PaymentEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_events_total",
		Help: "Payment events handled by type and outcome",
	}, []string{"type", "outcome"})

	AuditSinkErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_sink_errors_total",
		Help: "Audit entries a sink failed to deliver",
	}, []string{"sink"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
