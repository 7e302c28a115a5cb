package test

import (
	"context"
	"sort"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/model"
	"github.com/polkiloo/digimarket/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Login: login, PasswordHash: passwordHash, Role: role, Status: model.UserStatusActive}
	s.Next++
	s.Users[login] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// SetStatus changes the stored status.
func (s *UserRepositoryStub) SetStatus(ctx context.Context, id int64, status model.UserStatus) error {
	if s.Err != nil {
		return s.Err
	}
	user, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	user.Status = status
	return nil
}

// AuditRepositoryStub collects appended entries.
type AuditRepositoryStub struct {
	Entries []model.LogEntry
	Err     error
}

// Append stores entry unless Err is set.
func (s *AuditRepositoryStub) Append(ctx context.Context, entry model.LogEntry) error {
	if s.Err != nil {
		return s.Err
	}
	entry.ID = int64(len(s.Entries) + 1)
	s.Entries = append(s.Entries, entry)
	return nil
}

// ListRecent returns newest entries first.
func (s *AuditRepositoryStub) ListRecent(ctx context.Context, limit int) ([]model.LogEntry, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.LogEntry, 0, limit)
	for i := len(s.Entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.Entries[i])
	}
	return out, nil
}

// EventTypes lists recorded event types in order.
func (s *AuditRepositoryStub) EventTypes() []string {
	types := make([]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		types = append(types, e.EventType)
	}
	return types
}

var (
	_ repository.UserRepository  = (*UserRepositoryStub)(nil)
	_ repository.AuditRepository = (*AuditRepositoryStub)(nil)
)

func sortOrdersNewestFirst(orders []model.Order) {
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
}
