package test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/polkiloo/digimarket/internal/domain/model"
)

// AuthFacadeStub answers authentication calls. Unset hooks succeed with a
// fixed session for user 1.
type AuthFacadeStub struct {
	RegisterFn     func(context.Context, string, string, model.Role) (string, error)
	AuthenticateFn func(context.Context, string, string) (string, error)
}

func (s AuthFacadeStub) Register(ctx context.Context, login, password string, role model.Role) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, login, password, role)
	}
	return "token", nil
}

func (s AuthFacadeStub) Authenticate(ctx context.Context, login, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return "token", nil
}

func (s AuthFacadeStub) ParseToken(string) (int64, error) {
	return 1, nil
}

// AccountFacadeStub simulates account management.
type AccountFacadeStub struct {
	ActorFn   func(context.Context, int64) (model.Actor, error)
	DeleteFn  func(context.Context, model.Actor) error
	BlockFn   func(context.Context, model.Actor, int64) error
	UnblockFn func(context.Context, model.Actor, int64) error
}

// ActorOf returns an active buyer unless overridden.
func (s AccountFacadeStub) ActorOf(ctx context.Context, userID int64) (model.Actor, error) {
	if s.ActorFn != nil {
		return s.ActorFn(ctx, userID)
	}
	return model.Actor{ID: userID, Role: model.RoleBuyer, Status: model.UserStatusActive}, nil
}

// DeleteAccount delegates to override when provided.
func (s AccountFacadeStub) DeleteAccount(ctx context.Context, actor model.Actor) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, actor)
	}
	return nil
}

// BlockUser delegates to override when provided.
func (s AccountFacadeStub) BlockUser(ctx context.Context, actor model.Actor, userID int64) error {
	if s.BlockFn != nil {
		return s.BlockFn(ctx, actor, userID)
	}
	return nil
}

// UnblockUser delegates to override when provided.
func (s AccountFacadeStub) UnblockUser(ctx context.Context, actor model.Actor, userID int64) error {
	if s.UnblockFn != nil {
		return s.UnblockFn(ctx, actor, userID)
	}
	return nil
}

// SampleOffer returns an active offer owned by seller 2.
func SampleOffer(id int64) *model.Offer {
	return &model.Offer{
		ID:        id,
		SellerID:  2,
		Title:     "ebook",
		Price:     1250,
		Quantity:  3,
		Status:    model.OfferStatusActive,
		CreatedAt: time.Unix(0, 0).UTC(),
		UpdatedAt: time.Unix(0, 0).UTC(),
	}
}

// OfferFacadeStub simulates offer operations.
type OfferFacadeStub struct {
	CreateFn     func(context.Context, model.Actor, model.OfferDraft) (*model.Offer, error)
	GetFn        func(context.Context, model.Actor, int64) (*model.Offer, error)
	EditFn       func(context.Context, model.Actor, int64, model.OfferPatch) (*model.Offer, error)
	RestockFn    func(context.Context, model.Actor, int64, int64) (*model.Offer, error)
	TransitionFn func(context.Context, model.Actor, model.Action, int64) (*model.Offer, error)
}

// CreateOffer delegates to override or echoes draft.
func (s OfferFacadeStub) CreateOffer(ctx context.Context, actor model.Actor, draft model.OfferDraft) (*model.Offer, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, actor, draft)
	}
	offer := SampleOffer(1)
	offer.SellerID = actor.ID
	offer.Title = draft.Title
	offer.Price = draft.Price
	offer.Quantity = draft.Quantity
	return offer, nil
}

// Offer delegates to override or returns sample offer.
func (s OfferFacadeStub) Offer(ctx context.Context, actor model.Actor, id int64) (*model.Offer, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, actor, id)
	}
	return SampleOffer(id), nil
}

// EditOffer delegates to override or returns sample offer.
func (s OfferFacadeStub) EditOffer(ctx context.Context, actor model.Actor, id int64, patch model.OfferPatch) (*model.Offer, error) {
	if s.EditFn != nil {
		return s.EditFn(ctx, actor, id, patch)
	}
	return SampleOffer(id), nil
}

// RestockOffer delegates to override or returns sample offer.
func (s OfferFacadeStub) RestockOffer(ctx context.Context, actor model.Actor, id, quantity int64) (*model.Offer, error) {
	if s.RestockFn != nil {
		return s.RestockFn(ctx, actor, id, quantity)
	}
	return SampleOffer(id), nil
}

// ChangeOfferStatus delegates to override or returns sample offer.
func (s OfferFacadeStub) ChangeOfferStatus(ctx context.Context, actor model.Actor, action model.Action, id int64) (*model.Offer, error) {
	if s.TransitionFn != nil {
		return s.TransitionFn(ctx, actor, action, id)
	}
	return SampleOffer(id), nil
}

// SampleOrder returns a pending order of buyer 1 with a single item.
func SampleOrder(id int64) *model.Order {
	return &model.Order{
		ID:          id,
		BuyerID:     1,
		Status:      model.OrderStatusPendingPayment,
		TotalAmount: 2500,
		Items: []model.OrderItem{
			{OrderID: id, OfferID: 1, SellerID: 2, Title: "ebook", Quantity: 2, PriceAtPurchase: 1250},
		},
		CreatedAt: time.Unix(0, 0).UTC(),
		UpdatedAt: time.Unix(0, 0).UTC(),
	}
}

// OrderFacadeStub simulates order operations.
type OrderFacadeStub struct {
	PlaceFn      func(context.Context, model.Actor, []model.LineItem) (*model.Order, error)
	GetFn        func(context.Context, model.Actor, int64) (*model.Order, error)
	ListFn       func(context.Context, model.Actor) ([]model.Order, error)
	TransitionFn func(context.Context, model.Actor, model.Action, int64) (*model.Order, error)
}

// PlaceOrder delegates to override or returns sample order.
func (s OrderFacadeStub) PlaceOrder(ctx context.Context, actor model.Actor, lines []model.LineItem) (*model.Order, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, actor, lines)
	}
	return SampleOrder(1), nil
}

// Order delegates to override or returns sample order.
func (s OrderFacadeStub) Order(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, actor, id)
	}
	return SampleOrder(id), nil
}

// Orders delegates to override or returns no orders.
func (s OrderFacadeStub) Orders(ctx context.Context, actor model.Actor) ([]model.Order, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, actor)
	}
	return nil, nil
}

// ChangeOrderStatus delegates to override or returns sample order.
func (s OrderFacadeStub) ChangeOrderStatus(ctx context.Context, actor model.Actor, action model.Action, id int64) (*model.Order, error) {
	if s.TransitionFn != nil {
		return s.TransitionFn(ctx, actor, action, id)
	}
	return SampleOrder(id), nil
}

// AuditFacadeStub simulates audit log reads.
type AuditFacadeStub struct {
	LogFn func(context.Context, model.Actor, int) ([]model.LogEntry, error)
}

// AuditLog delegates to override or returns nothing.
func (s AuditFacadeStub) AuditLog(ctx context.Context, actor model.Actor, limit int) ([]model.LogEntry, error) {
	if s.LogFn != nil {
		return s.LogFn(ctx, actor, limit)
	}
	return nil, nil
}

// HealthFacadeStub reports configured health.
type HealthFacadeStub struct {
	Err error
}

// HealthCheck returns configured error.
func (s HealthFacadeStub) HealthCheck(context.Context) error {
	return s.Err
}

// MarketplaceFacadeStub aggregates facade dependencies for HTTP layer tests.
type MarketplaceFacadeStub struct {
	AuthFacadeStub
	AccountFacadeStub
	OfferFacadeStub
	OrderFacadeStub
	AuditFacadeStub
	HealthFacadeStub
}

// PaymentCall records a payment callback received by PaymentFacadeStub.
type PaymentCall struct {
	OrderID   int64
	Succeeded bool
	Reason    string
}

// ErrTransientPayment is returned by PaymentFacadeStub while FailFirst lasts.
var ErrTransientPayment = errors.New("payment store unavailable")

// PaymentFacadeStub records payment callbacks. The first FailFirst calls fail
// with ErrTransientPayment, later calls return Err.
type PaymentFacadeStub struct {
	Err       error
	FailFirst int
	Calls     []PaymentCall
	mu        sync.Mutex
}

// PaymentSucceeded records the callback.
func (s *PaymentFacadeStub) PaymentSucceeded(ctx context.Context, orderID int64) error {
	return s.record(PaymentCall{OrderID: orderID, Succeeded: true})
}

// PaymentFailed records the callback.
func (s *PaymentFacadeStub) PaymentFailed(ctx context.Context, orderID int64, reason string) error {
	return s.record(PaymentCall{OrderID: orderID, Reason: reason})
}

func (s *PaymentFacadeStub) record(call PaymentCall) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, call)
	if len(s.Calls) <= s.FailFirst {
		return ErrTransientPayment
	}
	return s.Err
}

// Recorded returns a snapshot of received callbacks.
func (s *PaymentFacadeStub) Recorded() []PaymentCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PaymentCall(nil), s.Calls...)
}

// DeduplicatorStub remembers claimed ids in memory.
type DeduplicatorStub struct {
	ClaimErr  error
	claimed   map[string]bool
	forgotten []string
	mu        sync.Mutex
}

// Claim marks id as seen.
func (s *DeduplicatorStub) Claim(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ClaimErr != nil {
		return false, s.ClaimErr
	}
	if s.claimed == nil {
		s.claimed = make(map[string]bool)
	}
	if s.claimed[id] {
		return false, nil
	}
	s.claimed[id] = true
	return true, nil
}

// Forget drops the mark for id.
func (s *DeduplicatorStub) Forget(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claimed, id)
	s.forgotten = append(s.forgotten, id)
	return nil
}

// Forgotten lists ids passed to Forget.
func (s *DeduplicatorStub) Forgotten() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.forgotten...)
}

// PaymentSourceStub serves events pushed to Events and records acks.
type PaymentSourceStub struct {
	Events chan model.PaymentEvent
	acked  []string
	mu     sync.Mutex
}

// NewPaymentSourceStub creates source with buffered event channel.
func NewPaymentSourceStub(events ...model.PaymentEvent) *PaymentSourceStub {
	s := &PaymentSourceStub{Events: make(chan model.PaymentEvent, len(events)+1)}
	for _, e := range events {
		s.Events <- e
	}
	return s
}

// Next blocks until an event is available or ctx is done.
func (s *PaymentSourceStub) Next(ctx context.Context) (model.PaymentEvent, func(context.Context) error, error) {
	select {
	case <-ctx.Done():
		return model.PaymentEvent{}, nil, ctx.Err()
	case e := <-s.Events:
		return e, func(context.Context) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.acked = append(s.acked, e.EventID)
			return nil
		}, nil
	}
}

// Acked lists acknowledged event ids in ack order.
func (s *PaymentSourceStub) Acked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.acked...)
}
