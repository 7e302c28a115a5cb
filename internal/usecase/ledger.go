package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/model"
	"github.com/polkiloo/digimarket/internal/domain/repository"
	"github.com/polkiloo/digimarket/internal/telemetry"
)

// InventoryLedger is the only component that changes offer quantity. Every
// change is a single conditional statement executed inside the caller's
// transaction, so concurrent reservations are linearized by the row lock.
// The ledger trusts its caller and never inspects order state.
type InventoryLedger struct{}

// NewInventoryLedger constructs InventoryLedger.
func NewInventoryLedger() *InventoryLedger {
	return &InventoryLedger{}
}

// Reserve takes quantity units from an active offer. Reaching zero marks it sold.
func (l *InventoryLedger) Reserve(ctx context.Context, repos repository.Factory, offerID, quantity int64) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be positive", domainErrors.ErrInvalidInput)
	}

	start := time.Now()
	level, ok, err := repos.Inventory().Decrement(ctx, offerID, quantity)
	telemetry.InventoryReserveLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}

	if !ok {
		return rejectReservation(ctx, repos, offerID)
	}

	return applyStockLevel(ctx, repos.Offers(), level)
}

// rejectReservation explains a decrement that matched no row. The status is
// read after the failed update so a concurrent moderation is reported as such.
func rejectReservation(ctx context.Context, repos repository.Factory, offerID int64) error {
	status, found, err := repos.Inventory().Status(ctx, offerID)
	if err != nil {
		return err
	}
	switch {
	case !found:
		telemetry.InventoryReservationsFailed.WithLabelValues("NOT_FOUND").Inc()
		return fmt.Errorf("offer %d: %w", offerID, domainErrors.ErrNotFound)
	case status == model.OfferStatusActive || status == model.OfferStatusSold:
		telemetry.InventoryReservationsFailed.WithLabelValues("INSUFFICIENT_STOCK").Inc()
		return fmt.Errorf("offer %d: %w", offerID, domainErrors.ErrInsufficientStock)
	default:
		telemetry.InventoryReservationsFailed.WithLabelValues("OFFER_UNAVAILABLE").Inc()
		return fmt.Errorf("offer %d is %s: %w", offerID, status, domainErrors.ErrOfferUnavailable)
	}
}

// ReserveAll reserves every line in ascending offer order. The first failure
// aborts and the caller's transaction discards earlier reservations.
func (l *InventoryLedger) ReserveAll(ctx context.Context, repos repository.Factory, lines []model.LineItem) error {
	for _, line := range model.MergeLineItems(lines) {
		if err := l.Reserve(ctx, repos, line.OfferID, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Release returns quantity units to the offer. A sold offer becomes active again.
func (l *InventoryLedger) Release(ctx context.Context, repos repository.Factory, offerID, quantity int64) error {
	if _, err := l.increment(ctx, repos, offerID, quantity); err != nil {
		return err
	}
	telemetry.InventoryReleasedUnits.Add(float64(quantity))
	return nil
}

// ReleaseAll returns the stock of every order item.
func (l *InventoryLedger) ReleaseAll(ctx context.Context, repos repository.Factory, items []model.OrderItem) error {
	lines := make([]model.LineItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, model.LineItem{OfferID: item.OfferID, Quantity: item.Quantity})
	}
	for _, line := range model.MergeLineItems(lines) {
		if err := l.Release(ctx, repos, line.OfferID, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Restock adds seller supplied units.
func (l *InventoryLedger) Restock(ctx context.Context, repos repository.Factory, offerID, quantity int64) (model.StockLevel, error) {
	return l.increment(ctx, repos, offerID, quantity)
}

func (l *InventoryLedger) increment(ctx context.Context, repos repository.Factory, offerID, quantity int64) (model.StockLevel, error) {
	if quantity < 1 {
		return model.StockLevel{}, fmt.Errorf("%w: quantity must be positive", domainErrors.ErrInvalidInput)
	}
	level, err := repos.Inventory().Increment(ctx, offerID, quantity)
	if err != nil {
		return model.StockLevel{}, err
	}
	if err := applyStockLevel(ctx, repos.Offers(), level); err != nil {
		return model.StockLevel{}, err
	}
	return settledLevel(level), nil
}

// applyStockLevel performs the system transitions driven by quantity:
// active -> sold on depletion and sold -> active on replenishment.
func applyStockLevel(ctx context.Context, offers repository.OfferRepository, level model.StockLevel) error {
	var to model.OfferStatus
	switch {
	case level.Quantity == 0 && level.Status == model.OfferStatusActive:
		to = model.OfferStatusSold
	case level.Quantity > 0 && level.Status == model.OfferStatusSold:
		to = model.OfferStatusActive
	default:
		return nil
	}

	err := offers.CompareAndSetStatus(ctx, level.OfferID, level.Status, to, nil)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return fmt.Errorf("offer %d vanished during stock update: %w", level.OfferID, domainErrors.ErrConflict)
	}
	return err
}

func settledLevel(level model.StockLevel) model.StockLevel {
	if level.Quantity > 0 && level.Status == model.OfferStatusSold {
		level.Status = model.OfferStatusActive
	}
	if level.Quantity == 0 && level.Status == model.OfferStatusActive {
		level.Status = model.OfferStatusSold
	}
	return level
}
