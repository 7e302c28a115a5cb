package repository

import (
	"context"

	"github.com/polkiloo/digimarket/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// Create inserts the order together with its frozen items.
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	ListByBuyer(ctx context.Context, buyerID int64) ([]model.Order, error)
	// ListBySeller returns orders holding at least one item of the seller.
	ListBySeller(ctx context.Context, sellerID int64) ([]model.Order, error)
	ListRecent(ctx context.Context, limit int) ([]model.Order, error)
	// CompareAndSetStatus returns ErrConflict when status differs from expected.
	CompareAndSetStatus(ctx context.Context, id int64, expected, to model.OrderStatus) error
}
