package postgres

import (
	"context"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/model"
)

type offerRepository struct {
	db querier
}

const offerColumns = `id, seller_id, category_id, title, price, quantity, status, previous_status, created_at, updated_at`

func (r *offerRepository) Create(ctx context.Context, sellerID int64, draft model.OfferDraft, status model.OfferStatus) (*model.Offer, error) {
	const query = `INSERT INTO offers (seller_id, category_id, title, price, quantity, status)
                   VALUES ($1, $2, $3, $4, $5, $6)
                   RETURNING ` + offerColumns
	row := r.db.QueryRow(ctx, query, sellerID, draft.CategoryID, draft.Title, int64(draft.Price), draft.Quantity, string(status))
	return scanOffer(row)
}

func (r *offerRepository) GetByID(ctx context.Context, id int64) (*model.Offer, error) {
	const query = `SELECT ` + offerColumns + ` FROM offers WHERE id=$1`
	return scanOffer(r.db.QueryRow(ctx, query, id))
}

func (r *offerRepository) UpdateContent(ctx context.Context, id int64, patch model.OfferPatch) (*model.Offer, error) {
	const query = `UPDATE offers
                   SET category_id=COALESCE($2, category_id),
                       title=COALESCE($3, title),
                       price=COALESCE($4, price),
                       updated_at=NOW()
                   WHERE id=$1
                   RETURNING ` + offerColumns
	var price *int64
	if patch.Price != nil {
		p := int64(*patch.Price)
		price = &p
	}
	return scanOffer(r.db.QueryRow(ctx, query, id, patch.CategoryID, patch.Title, price))
}

func (r *offerRepository) CompareAndSetStatus(ctx context.Context, id int64, from, to model.OfferStatus, previous *model.OfferStatus) error {
	const query = `UPDATE offers SET status=$3, previous_status=$4, updated_at=NOW() WHERE id=$1 AND status=$2`
	var prev *string
	if previous != nil {
		p := string(*previous)
		prev = &p
	}
	tag, err := r.db.Exec(ctx, query, id, string(from), string(to), prev)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrConflict
	}
	return nil
}

func scanOffer(row rowScanner) (*model.Offer, error) {
	var (
		o        model.Offer
		price    int64
		status   string
		previous *string
	)
	err := row.Scan(&o.ID, &o.SellerID, &o.CategoryID, &o.Title, &price, &o.Quantity, &status, &previous, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	o.Price = model.Money(price)
	o.Status = model.OfferStatus(status)
	if previous != nil {
		p := model.OfferStatus(*previous)
		o.PreviousStatus = &p
	}
	return &o, nil
}
