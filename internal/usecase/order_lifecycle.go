package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/model"
	"github.com/polkiloo/digimarket/internal/domain/repository"
	"github.com/polkiloo/digimarket/internal/telemetry"
)

// orderEdge is one row of the order transition table.
type orderEdge struct {
	from    []model.OrderStatus
	to      model.OrderStatus
	release bool
}

var orderEdges = map[model.Action]orderEdge{
	model.ActionPaymentSucceeded: {
		from: []model.OrderStatus{model.OrderStatusPendingPayment},
		to:   model.OrderStatusProcessing,
	},
	model.ActionPaymentFailed: {
		from:    []model.OrderStatus{model.OrderStatusPendingPayment},
		to:      model.OrderStatusFailed,
		release: true,
	},
	model.ActionOrderCancel: {
		from:    []model.OrderStatus{model.OrderStatusPendingPayment, model.OrderStatusProcessing},
		to:      model.OrderStatusCancelled,
		release: true,
	},
	model.ActionOrderShip: {
		from: []model.OrderStatus{model.OrderStatusProcessing},
		to:   model.OrderStatusShipped,
	},
	model.ActionOrderDeliver: {
		from: []model.OrderStatus{model.OrderStatusShipped},
		to:   model.OrderStatusDelivered,
	},
}

func (e orderEdge) allows(status model.OrderStatus) bool {
	for _, s := range e.from {
		if s == status {
			return true
		}
	}
	return false
}

// OrderLifecycle owns the order state machine and orchestrates inventory.
type OrderLifecycle struct {
	tx     repository.Transactor
	guard  *AuthorizationGuard
	ledger *InventoryLedger
	audit  *AuditTrail
	log    *slog.Logger
}

// NewOrderLifecycle constructs OrderLifecycle.
func NewOrderLifecycle(tx repository.Transactor, guard *AuthorizationGuard, ledger *InventoryLedger, audit *AuditTrail, log *slog.Logger) *OrderLifecycle {
	return &OrderLifecycle{tx: tx, guard: guard, ledger: ledger, audit: audit, log: log}
}

// Place reserves stock for every line and creates a pending_payment order
// with prices frozen at the current offer price.
func (u *OrderLifecycle) Place(ctx context.Context, actor model.Actor, lines []model.LineItem) (*model.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderLifecycle.Place",
		attribute.Int64("actor.id", actor.ID), attribute.Int("lines", len(lines)))

	var placed *model.Order
	err := validateLines(lines)
	if err == nil {
		err = u.guard.Authorize(actor, model.ActionOrderPlace, model.Resource{OwnerID: actor.ID})
	}
	if err == nil {
		merged := model.MergeLineItems(lines)
		err = inTxWithRetry(ctx, u.tx, func(repos repository.Factory) error {
			items := make([]model.OrderItem, 0, len(merged))
			for _, line := range merged {
				offer, err := repos.Offers().GetByID(ctx, line.OfferID)
				if err != nil {
					return fmt.Errorf("offer %d: %w", line.OfferID, err)
				}
				if err := purchasable(offer); err != nil {
					return err
				}
				items = append(items, model.OrderItem{
					OfferID:         offer.ID,
					SellerID:        offer.SellerID,
					Title:           offer.Title,
					Quantity:        line.Quantity,
					PriceAtPurchase: offer.Price,
				})
			}

			if err := u.ledger.ReserveAll(ctx, repos, merged); err != nil {
				return err
			}

			order := &model.Order{
				BuyerID:     actor.ID,
				Status:      model.OrderStatusPendingPayment,
				TotalAmount: model.Total(items),
				Items:       items,
			}
			created, err := repos.Orders().Create(ctx, order)
			if err != nil {
				return err
			}
			placed = created
			return nil
		})
	}

	subject := "order"
	if placed != nil {
		subject = fmt.Sprintf("order %d placed total %s", placed.ID, placed.TotalAmount)
		telemetry.OrdersPlacedTotal.Inc()
	}
	u.finish(ctx, model.ActionOrderPlace, actorRef(actor), subject, err)
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// Cancel moves a pending or processing order to cancelled and releases stock.
func (u *OrderLifecycle) Cancel(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	return u.transition(ctx, &actor, model.ActionOrderCancel, id, "")
}

// Ship marks a processing order shipped.
func (u *OrderLifecycle) Ship(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	return u.transition(ctx, &actor, model.ActionOrderShip, id, "")
}

// Deliver marks a shipped order delivered.
func (u *OrderLifecycle) Deliver(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	return u.transition(ctx, &actor, model.ActionOrderDeliver, id, "")
}

// PaymentSucceeded is invoked by the payment path as the system actor.
func (u *OrderLifecycle) PaymentSucceeded(ctx context.Context, id int64) error {
	_, err := u.transition(ctx, nil, model.ActionPaymentSucceeded, id, "")
	return err
}

// PaymentFailed is invoked by the payment path as the system actor. All items are released.
func (u *OrderLifecycle) PaymentFailed(ctx context.Context, id int64, reason string) error {
	_, err := u.transition(ctx, nil, model.ActionPaymentFailed, id, reason)
	return err
}

// Get returns order with items when actor may view it.
func (u *OrderLifecycle) Get(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	var order *model.Order
	err := u.tx.InTx(ctx, func(repos repository.Factory) error {
		var err error
		order, err = repos.Orders().GetByID(ctx, id)
		if err != nil {
			return err
		}
		return u.guard.Authorize(actor, model.ActionOrderView, model.OrderResource(*order))
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// recentOrdersLimit bounds the admin order listing.
const recentOrdersLimit = 100

// ListMine returns the orders the actor takes part in, newest first. Buyers
// get what they placed, sellers get orders holding any of their items and
// admins get the most recent orders.
func (u *OrderLifecycle) ListMine(ctx context.Context, actor model.Actor) ([]model.Order, error) {
	if err := u.guard.RequireActive(actor); err != nil {
		return nil, err
	}
	var orders []model.Order
	err := u.tx.InTx(ctx, func(repos repository.Factory) error {
		var err error
		switch actor.Role {
		case model.RoleSeller:
			orders, err = repos.Orders().ListBySeller(ctx, actor.ID)
		case model.RoleAdmin:
			orders, err = repos.Orders().ListRecent(ctx, recentOrdersLimit)
		default:
			orders, err = repos.Orders().ListByBuyer(ctx, actor.ID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// transition applies one edge of the order table. A nil actor is the system
// and skips the guard.
func (u *OrderLifecycle) transition(ctx context.Context, actor *model.Actor, action model.Action, id int64, reason string) (*model.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderLifecycle."+actionName(action), attribute.Int64("order.id", id))

	edge := orderEdges[action]
	var result *model.Order
	err := inTxWithRetry(ctx, u.tx, func(repos repository.Factory) error {
		order, err := repos.Orders().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if actor != nil {
			if err := u.guard.Authorize(*actor, action, model.OrderResource(*order)); err != nil {
				return err
			}
		}
		if !edge.allows(order.Status) {
			return fmt.Errorf("%w: %s on %s order", domainErrors.ErrInvalidTransition, action, order.Status)
		}
		if err := repos.Orders().CompareAndSetStatus(ctx, id, order.Status, edge.to); err != nil {
			return err
		}
		if edge.release {
			if err := u.ledger.ReleaseAll(ctx, repos, order.Items); err != nil {
				return err
			}
		}
		order.Status = edge.to
		result = order
		return nil
	})
	err = conflictAsInvalidTransition(err)

	var actorID *int64
	if actor != nil {
		actorID = actorRef(*actor)
	}
	subject := fmt.Sprintf("order %d", id)
	if result != nil {
		subject = fmt.Sprintf("order %d -> %s", id, result.Status)
	}
	if reason != "" {
		subject = fmt.Sprintf("%s (%s)", subject, reason)
	}
	u.finish(ctx, action, actorID, subject, err)
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (u *OrderLifecycle) finish(ctx context.Context, action model.Action, actorID *int64, subject string, err error) {
	outcome := u.audit.RecordOutcome(ctx, action, actorID, subject, err)
	telemetry.OrderTransitionsTotal.WithLabelValues(string(action), outcome).Inc()
	if outcome == model.OutcomeFailed {
		u.log.Error("order operation failed",
			slog.String("action", string(action)),
			slog.String("subject", subject),
			slog.String("error", err.Error()),
		)
	}
}

// purchasable rejects offers that cannot be reserved. A sold offer is a
// stock problem, every other non-active status makes the offer unavailable.
func purchasable(offer *model.Offer) error {
	switch offer.Status {
	case model.OfferStatusActive:
		return nil
	case model.OfferStatusSold:
		return fmt.Errorf("offer %d: %w", offer.ID, domainErrors.ErrInsufficientStock)
	default:
		return fmt.Errorf("offer %d is %s: %w", offer.ID, offer.Status, domainErrors.ErrOfferUnavailable)
	}
}

func validateLines(lines []model.LineItem) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: order has no items", domainErrors.ErrInvalidInput)
	}
	for _, line := range lines {
		if line.OfferID <= 0 {
			return fmt.Errorf("%w: offer id must be positive", domainErrors.ErrInvalidInput)
		}
		if line.Quantity < 1 {
			return fmt.Errorf("%w: quantity must be at least 1", domainErrors.ErrInvalidInput)
		}
	}
	return nil
}
