package repository

import (
	"context"

	"github.com/polkiloo/digimarket/internal/domain/model"
)

// InventoryRepository is the only writer of offer quantity.
type InventoryRepository interface {
	// Decrement subtracts quantity from an active offer in one conditional
	// statement. ok is false when the offer is missing, not active or short.
	Decrement(ctx context.Context, offerID, quantity int64) (level model.StockLevel, ok bool, err error)
	// Increment adds quantity back. It returns ErrNotFound for unknown offers.
	Increment(ctx context.Context, offerID, quantity int64) (model.StockLevel, error)
	// Status reads the current offer status. found is false for unknown offers.
	Status(ctx context.Context, offerID int64) (status model.OfferStatus, found bool, err error)
}
