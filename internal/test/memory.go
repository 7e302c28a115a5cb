package test

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/model"
	"github.com/polkiloo/digimarket/internal/domain/repository"
)

// MemoryStore is an in-memory repository.Factory and repository.Transactor.
// Transactions are serialized and work on a copy that is committed only when
// the callback succeeds, so rollbacks behave like the real database.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState

	// OrderConflicts makes the next n order status writes report a lost race.
	OrderConflicts int
	// InventoryErr fails every inventory statement.
	InventoryErr error
	// OfferStatusWrites counts committed and uncommitted offer status writes.
	OfferStatusWrites int
}

type memState struct {
	nextID int64
	users  map[int64]model.User
	offers map[int64]model.Offer
	orders map[int64]model.Order
	logs   []model.LogEntry
}

// NewMemoryStore constructs empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memState{
		users:  make(map[int64]model.User),
		offers: make(map[int64]model.Offer),
		orders: make(map[int64]model.Order),
	}}
}

func (s *memState) clone() *memState {
	c := &memState{
		nextID: s.nextID,
		users:  make(map[int64]model.User, len(s.users)),
		offers: make(map[int64]model.Offer, len(s.offers)),
		orders: make(map[int64]model.Order, len(s.orders)),
		logs:   append([]model.LogEntry(nil), s.logs...),
	}
	for id, u := range s.users {
		c.users[id] = u
	}
	for id, o := range s.offers {
		c.offers[id] = copyOffer(o)
	}
	for id, o := range s.orders {
		c.orders[id] = copyOrder(o)
	}
	return c
}

func (s *memState) id() int64 {
	s.nextID++
	return s.nextID
}

func copyOffer(o model.Offer) model.Offer {
	if o.PreviousStatus != nil {
		prev := *o.PreviousStatus
		o.PreviousStatus = &prev
	}
	return o
}

func copyOrder(o model.Order) model.Order {
	o.Items = append([]model.OrderItem(nil), o.Items...)
	return o
}

// InTx runs fn against a private copy of the store. Transactions run one at a
// time; interleavings are covered by the postgres integration tests.
func (m *MemoryStore) InTx(ctx context.Context, fn func(repository.Factory) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	work := m.state.clone()
	if err := fn(&memFactory{store: m, state: work}); err != nil {
		return err
	}
	m.state = work
	return nil
}

func (m *MemoryStore) direct() *memFactory { return &memFactory{store: m} }

// Users returns non transactional user repository.
func (m *MemoryStore) Users() repository.UserRepository { return m.direct().Users() }

// Offers returns non transactional offer repository.
func (m *MemoryStore) Offers() repository.OfferRepository { return m.direct().Offers() }

// Orders returns non transactional order repository.
func (m *MemoryStore) Orders() repository.OrderRepository { return m.direct().Orders() }

// Inventory returns non transactional inventory repository.
func (m *MemoryStore) Inventory() repository.InventoryRepository { return m.direct().Inventory() }

// AuditLog returns non transactional audit repository.
func (m *MemoryStore) AuditLog() repository.AuditRepository { return m.direct().AuditLog() }

// AddUser seeds a user and returns it.
func (m *MemoryStore) AddUser(role model.Role, status model.UserStatus) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := model.User{ID: m.state.id(), Login: RandomASCIIString(6, 10), Role: role, Status: status}
	m.state.users[u.ID] = u
	return u
}

// AddOffer seeds an offer. ID and timestamps are assigned by the store.
func (m *MemoryStore) AddOffer(o model.Offer) model.Offer {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = m.state.id()
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	m.state.offers[o.ID] = copyOffer(o)
	return o
}

// Offer returns committed offer state.
func (m *MemoryStore) Offer(id int64) model.Offer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyOffer(m.state.offers[id])
}

// Order returns committed order state.
func (m *MemoryStore) Order(id int64) model.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyOrder(m.state.orders[id])
}

// ForceOrderStatus rewrites order status bypassing the lifecycle.
func (m *MemoryStore) ForceOrderStatus(id int64, status model.OrderStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := m.state.orders[id]
	o.Status = status
	m.state.orders[id] = o
}

// Logs returns committed audit entries in insertion order.
func (m *MemoryStore) Logs() []model.LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.LogEntry(nil), m.state.logs...)
}

// EventTypes lists committed audit event types in insertion order.
func (m *MemoryStore) EventTypes() []string {
	logs := m.Logs()
	types := make([]string, 0, len(logs))
	for _, l := range logs {
		types = append(types, l.EventType)
	}
	return types
}

// memFactory binds repositories either to a transaction copy or, with nil
// state, to the committed state under the store lock.
type memFactory struct {
	store *MemoryStore
	state *memState
}

func (f *memFactory) with(fn func(*memState) error) error {
	if f.state != nil {
		return fn(f.state)
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return fn(f.store.state)
}

func (f *memFactory) Users() repository.UserRepository          { return memUsers{f} }
func (f *memFactory) Offers() repository.OfferRepository        { return memOffers{f} }
func (f *memFactory) Orders() repository.OrderRepository        { return memOrders{f} }
func (f *memFactory) Inventory() repository.InventoryRepository { return memInventory{f} }
func (f *memFactory) AuditLog() repository.AuditRepository      { return memAudit{f} }

type memUsers struct{ f *memFactory }

func (r memUsers) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	var created model.User
	err := r.f.with(func(s *memState) error {
		for _, u := range s.users {
			if u.Login == login {
				return domainErrors.ErrAlreadyExists
			}
		}
		created = model.User{
			ID:           s.id(),
			Login:        login,
			PasswordHash: passwordHash,
			Role:         role,
			Status:       model.UserStatusActive,
			CreatedAt:    time.Now(),
		}
		s.users[created.ID] = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r memUsers) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	var found *model.User
	err := r.f.with(func(s *memState) error {
		for _, u := range s.users {
			if u.Login == login {
				u := u
				found = &u
				return nil
			}
		}
		return domainErrors.ErrNotFound
	})
	return found, err
}

func (r memUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var found model.User
	err := r.f.with(func(s *memState) error {
		u, ok := s.users[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		found = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r memUsers) SetStatus(ctx context.Context, id int64, status model.UserStatus) error {
	return r.f.with(func(s *memState) error {
		u, ok := s.users[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		u.Status = status
		s.users[id] = u
		return nil
	})
}

type memOffers struct{ f *memFactory }

func (r memOffers) Create(ctx context.Context, sellerID int64, draft model.OfferDraft, status model.OfferStatus) (*model.Offer, error) {
	var created model.Offer
	err := r.f.with(func(s *memState) error {
		now := time.Now()
		created = model.Offer{
			ID:         s.id(),
			SellerID:   sellerID,
			CategoryID: draft.CategoryID,
			Title:      draft.Title,
			Price:      draft.Price,
			Quantity:   draft.Quantity,
			Status:     status,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		s.offers[created.ID] = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r memOffers) GetByID(ctx context.Context, id int64) (*model.Offer, error) {
	var found model.Offer
	err := r.f.with(func(s *memState) error {
		o, ok := s.offers[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		found = copyOffer(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r memOffers) UpdateContent(ctx context.Context, id int64, patch model.OfferPatch) (*model.Offer, error) {
	var updated model.Offer
	err := r.f.with(func(s *memState) error {
		o, ok := s.offers[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		if patch.CategoryID != nil {
			o.CategoryID = *patch.CategoryID
		}
		if patch.Title != nil {
			o.Title = *patch.Title
		}
		if patch.Price != nil {
			o.Price = *patch.Price
		}
		o.UpdatedAt = time.Now()
		s.offers[id] = o
		updated = copyOffer(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r memOffers) CompareAndSetStatus(ctx context.Context, id int64, from, to model.OfferStatus, previous *model.OfferStatus) error {
	return r.f.with(func(s *memState) error {
		o, ok := s.offers[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		if o.Status != from {
			return domainErrors.ErrConflict
		}
		r.f.store.OfferStatusWrites++
		o.Status = to
		o.PreviousStatus = nil
		if previous != nil {
			prev := *previous
			o.PreviousStatus = &prev
		}
		o.UpdatedAt = time.Now()
		s.offers[id] = o
		return nil
	})
}

type memOrders struct{ f *memFactory }

func (r memOrders) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	var created model.Order
	err := r.f.with(func(s *memState) error {
		created = copyOrder(*order)
		created.ID = s.id()
		created.CreatedAt = time.Now()
		created.UpdatedAt = created.CreatedAt
		for i := range created.Items {
			created.Items[i].OrderID = created.ID
		}
		s.orders[created.ID] = copyOrder(created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r memOrders) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var found model.Order
	err := r.f.with(func(s *memState) error {
		o, ok := s.orders[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		found = copyOrder(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r memOrders) ListByBuyer(ctx context.Context, buyerID int64) ([]model.Order, error) {
	var orders []model.Order
	err := r.f.with(func(s *memState) error {
		for _, o := range s.orders {
			if o.BuyerID == buyerID {
				orders = append(orders, copyOrder(o))
			}
		}
		return nil
	})
	sortOrdersNewestFirst(orders)
	return orders, err
}

func (r memOrders) ListBySeller(ctx context.Context, sellerID int64) ([]model.Order, error) {
	var orders []model.Order
	err := r.f.with(func(s *memState) error {
		for _, o := range s.orders {
			for _, item := range o.Items {
				if item.SellerID == sellerID {
					orders = append(orders, copyOrder(o))
					break
				}
			}
		}
		return nil
	})
	sortOrdersNewestFirst(orders)
	return orders, err
}

func (r memOrders) ListRecent(ctx context.Context, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.f.with(func(s *memState) error {
		for _, o := range s.orders {
			orders = append(orders, copyOrder(o))
		}
		return nil
	})
	sortOrdersNewestFirst(orders)
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, err
}

func (r memOrders) CompareAndSetStatus(ctx context.Context, id int64, expected, to model.OrderStatus) error {
	return r.f.with(func(s *memState) error {
		if r.f.store.OrderConflicts > 0 {
			r.f.store.OrderConflicts--
			return domainErrors.ErrConflict
		}
		o, ok := s.orders[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		if o.Status != expected {
			return domainErrors.ErrConflict
		}
		o.Status = to
		o.UpdatedAt = time.Now()
		s.orders[id] = o
		return nil
	})
}

type memInventory struct{ f *memFactory }

func (r memInventory) Decrement(ctx context.Context, offerID, quantity int64) (model.StockLevel, bool, error) {
	var (
		level model.StockLevel
		ok    bool
	)
	err := r.f.with(func(s *memState) error {
		if r.f.store.InventoryErr != nil {
			return r.f.store.InventoryErr
		}
		o, exists := s.offers[offerID]
		if !exists || o.Status != model.OfferStatusActive || o.Quantity < quantity {
			return nil
		}
		o.Quantity -= quantity
		s.offers[offerID] = o
		level = model.StockLevel{OfferID: offerID, Quantity: o.Quantity, Status: o.Status}
		ok = true
		return nil
	})
	return level, ok, err
}

func (r memInventory) Increment(ctx context.Context, offerID, quantity int64) (model.StockLevel, error) {
	var level model.StockLevel
	err := r.f.with(func(s *memState) error {
		if r.f.store.InventoryErr != nil {
			return r.f.store.InventoryErr
		}
		o, exists := s.offers[offerID]
		if !exists {
			return domainErrors.ErrNotFound
		}
		o.Quantity += quantity
		s.offers[offerID] = o
		level = model.StockLevel{OfferID: offerID, Quantity: o.Quantity, Status: o.Status}
		return nil
	})
	return level, err
}

func (r memInventory) Status(ctx context.Context, offerID int64) (model.OfferStatus, bool, error) {
	var (
		status model.OfferStatus
		found  bool
	)
	err := r.f.with(func(s *memState) error {
		o, exists := s.offers[offerID]
		status, found = o.Status, exists
		return nil
	})
	return status, found, err
}

type memAudit struct{ f *memFactory }

func (r memAudit) Append(ctx context.Context, entry model.LogEntry) error {
	return r.f.with(func(s *memState) error {
		entry.ID = s.id()
		s.logs = append(s.logs, entry)
		return nil
	})
}

func (r memAudit) ListRecent(ctx context.Context, limit int) ([]model.LogEntry, error) {
	var out []model.LogEntry
	err := r.f.with(func(s *memState) error {
		for i := len(s.logs) - 1; i >= 0 && len(out) < limit; i-- {
			out = append(out, s.logs[i])
		}
		return nil
	})
	return out, err
}

var (
	_ repository.Factory    = (*MemoryStore)(nil)
	_ repository.Transactor = (*MemoryStore)(nil)
)
