package app

import (
	"context"
	"fmt"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/model"
	"github.com/polkiloo/digimarket/internal/usecase"
)

// HealthChecker reports availability of the backing store.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type MarketplaceFacade struct {
	auth   *usecase.AuthUseCase
	offers *usecase.OfferLifecycle
	orders *usecase.OrderLifecycle
	audit  *usecase.AuditLogReader
	health HealthChecker
}

func NewMarketplaceFacade(auth *usecase.AuthUseCase, offers *usecase.OfferLifecycle, orders *usecase.OrderLifecycle, audit *usecase.AuditLogReader, health HealthChecker) *MarketplaceFacade {
	return &MarketplaceFacade{auth: auth, offers: offers, orders: orders, audit: audit, health: health}
}

func (f *MarketplaceFacade) Register(ctx context.Context, login, password string, role model.Role) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password, role)
	return token, err
}

func (f *MarketplaceFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *MarketplaceFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *MarketplaceFacade) ActorOf(ctx context.Context, userID int64) (model.Actor, error) {
	return f.auth.ActorOf(ctx, userID)
}

func (f *MarketplaceFacade) DeleteAccount(ctx context.Context, actor model.Actor) error {
	return f.auth.DeleteSelf(ctx, actor)
}

func (f *MarketplaceFacade) BlockUser(ctx context.Context, actor model.Actor, userID int64) error {
	return f.auth.Block(ctx, actor, userID)
}

func (f *MarketplaceFacade) UnblockUser(ctx context.Context, actor model.Actor, userID int64) error {
	return f.auth.Unblock(ctx, actor, userID)
}

func (f *MarketplaceFacade) CreateOffer(ctx context.Context, actor model.Actor, draft model.OfferDraft) (*model.Offer, error) {
	return f.offers.Create(ctx, actor, draft)
}

func (f *MarketplaceFacade) Offer(ctx context.Context, actor model.Actor, id int64) (*model.Offer, error) {
	return f.offers.Get(ctx, actor, id)
}

func (f *MarketplaceFacade) EditOffer(ctx context.Context, actor model.Actor, id int64, patch model.OfferPatch) (*model.Offer, error) {
	return f.offers.Edit(ctx, actor, id, patch)
}

func (f *MarketplaceFacade) RestockOffer(ctx context.Context, actor model.Actor, id, quantity int64) (*model.Offer, error) {
	return f.offers.Restock(ctx, actor, id, quantity)
}

// ChangeOfferStatus dispatches a status action to the offer lifecycle.
func (f *MarketplaceFacade) ChangeOfferStatus(ctx context.Context, actor model.Actor, action model.Action, id int64) (*model.Offer, error) {
	switch action {
	case model.ActionOfferActivate:
		return f.offers.Activate(ctx, actor, id)
	case model.ActionOfferDeactivate:
		return f.offers.Deactivate(ctx, actor, id)
	case model.ActionOfferArchive:
		return f.offers.Archive(ctx, actor, id)
	case model.ActionOfferDelete:
		return f.offers.Delete(ctx, actor, id)
	case model.ActionOfferModerate:
		return f.offers.Moderate(ctx, actor, id)
	case model.ActionOfferUnmoderate:
		return f.offers.Unmoderate(ctx, actor, id)
	default:
		return nil, fmt.Errorf("%w: %s is not an offer status action", domainErrors.ErrInvalidInput, action)
	}
}

func (f *MarketplaceFacade) PlaceOrder(ctx context.Context, actor model.Actor, lines []model.LineItem) (*model.Order, error) {
	return f.orders.Place(ctx, actor, lines)
}

func (f *MarketplaceFacade) Order(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	return f.orders.Get(ctx, actor, id)
}

func (f *MarketplaceFacade) Orders(ctx context.Context, actor model.Actor) ([]model.Order, error) {
	return f.orders.ListMine(ctx, actor)
}

// ChangeOrderStatus dispatches cancel, ship or deliver to the order lifecycle.
func (f *MarketplaceFacade) ChangeOrderStatus(ctx context.Context, actor model.Actor, action model.Action, id int64) (*model.Order, error) {
	switch action {
	case model.ActionOrderCancel:
		return f.orders.Cancel(ctx, actor, id)
	case model.ActionOrderShip:
		return f.orders.Ship(ctx, actor, id)
	case model.ActionOrderDeliver:
		return f.orders.Deliver(ctx, actor, id)
	default:
		return nil, fmt.Errorf("%w: %s is not an order status action", domainErrors.ErrInvalidInput, action)
	}
}

func (f *MarketplaceFacade) PaymentSucceeded(ctx context.Context, orderID int64) error {
	return f.orders.PaymentSucceeded(ctx, orderID)
}

func (f *MarketplaceFacade) PaymentFailed(ctx context.Context, orderID int64, reason string) error {
	return f.orders.PaymentFailed(ctx, orderID, reason)
}

func (f *MarketplaceFacade) AuditLog(ctx context.Context, actor model.Actor, limit int) ([]model.LogEntry, error) {
	return f.audit.Recent(ctx, actor, limit)
}

func (f *MarketplaceFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
