package repository

import (
	"context"

	"github.com/polkiloo/digimarket/internal/domain/model"
)

// OfferRepository describes persistence operations with offers.
type OfferRepository interface {
	Create(ctx context.Context, sellerID int64, draft model.OfferDraft, status model.OfferStatus) (*model.Offer, error)
	GetByID(ctx context.Context, id int64) (*model.Offer, error)
	UpdateContent(ctx context.Context, id int64, patch model.OfferPatch) (*model.Offer, error)
	// CompareAndSetStatus moves offer from status "from" to "to" and stores previous.
	// It returns ErrConflict when the offer is no longer in "from".
	CompareAndSetStatus(ctx context.Context, id int64, from, to model.OfferStatus, previous *model.OfferStatus) error
}
