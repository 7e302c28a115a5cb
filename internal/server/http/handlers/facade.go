package handlers

import (
	"context"

	"github.com/polkiloo/digimarket/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string, role model.Role) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (int64, error)
}

// AccountFacade manages user accounts.
type AccountFacade interface {
	ActorOf(ctx context.Context, userID int64) (model.Actor, error)
	DeleteAccount(ctx context.Context, actor model.Actor) error
	BlockUser(ctx context.Context, actor model.Actor, userID int64) error
	UnblockUser(ctx context.Context, actor model.Actor, userID int64) error
}

// OfferFacade encapsulates offer operations exposed via HTTP.
type OfferFacade interface {
	CreateOffer(ctx context.Context, actor model.Actor, draft model.OfferDraft) (*model.Offer, error)
	Offer(ctx context.Context, actor model.Actor, id int64) (*model.Offer, error)
	EditOffer(ctx context.Context, actor model.Actor, id int64, patch model.OfferPatch) (*model.Offer, error)
	RestockOffer(ctx context.Context, actor model.Actor, id, quantity int64) (*model.Offer, error)
	ChangeOfferStatus(ctx context.Context, actor model.Actor, action model.Action, id int64) (*model.Offer, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	PlaceOrder(ctx context.Context, actor model.Actor, lines []model.LineItem) (*model.Order, error)
	Order(ctx context.Context, actor model.Actor, id int64) (*model.Order, error)
	Orders(ctx context.Context, actor model.Actor) ([]model.Order, error)
	ChangeOrderStatus(ctx context.Context, actor model.Actor, action model.Action, id int64) (*model.Order, error)
}

// AuditFacade exposes the audit trail to administrators.
type AuditFacade interface {
	AuditLog(ctx context.Context, actor model.Actor, limit int) ([]model.LogEntry, error)
}

// HealthFacade reports backing store availability.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// MarketplaceFacade aggregates the full set of operations used across handlers.
type MarketplaceFacade interface {
	AuthFacade
	AccountFacade
	OfferFacade
	OrderFacade
	AuditFacade
	HealthFacade
}
