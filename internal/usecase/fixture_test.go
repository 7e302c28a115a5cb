package usecase

import (
	"io"
	"log/slog"
	"testing"

	"github.com/polkiloo/digimarket/internal/domain/model"
	testhelpers "github.com/polkiloo/digimarket/internal/test"
)

type fixture struct {
	store  *testhelpers.MemoryStore
	guard  *AuthorizationGuard
	ledger *InventoryLedger
	audit  *AuditTrail
	offers *OfferLifecycle
	orders *OrderLifecycle

	buyer   model.Actor
	seller  model.Actor
	seller2 model.Actor
	admin   model.Actor
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testhelpers.NewMemoryStore()
	log := discardLogger()
	guard := NewAuthorizationGuard()
	ledger := NewInventoryLedger()
	audit := NewAuditTrail(log, NewRepositoryAuditSink(store.AuditLog()))

	return &fixture{
		store:   store,
		guard:   guard,
		ledger:  ledger,
		audit:   audit,
		offers:  NewOfferLifecycle(store, guard, ledger, audit, log),
		orders:  NewOrderLifecycle(store, guard, ledger, audit, log),
		buyer:   store.AddUser(model.RoleBuyer, model.UserStatusActive).Actor(),
		seller:  store.AddUser(model.RoleSeller, model.UserStatusActive).Actor(),
		seller2: store.AddUser(model.RoleSeller, model.UserStatusActive).Actor(),
		admin:   store.AddUser(model.RoleAdmin, model.UserStatusActive).Actor(),
	}
}

func (f *fixture) offer(seller model.Actor, quantity int64, price model.Money) model.Offer {
	status := model.OfferStatusActive
	if quantity == 0 {
		status = model.OfferStatusInactive
	}
	return f.store.AddOffer(model.Offer{
		SellerID: seller.ID,
		Title:    testhelpers.RandomASCIIString(5, 12),
		Price:    price,
		Quantity: quantity,
		Status:   status,
	})
}

func (f *fixture) lastEvent(t *testing.T) string {
	t.Helper()
	types := f.store.EventTypes()
	if len(types) == 0 {
		t.Fatal("expected audit entries")
	}
	return types[len(types)-1]
}
