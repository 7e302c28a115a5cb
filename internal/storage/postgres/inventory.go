package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/polkiloo/digimarket/internal/domain/model"
)

// inventoryRepository changes offer quantity with single conditional
// statements. The row lock taken by UPDATE serializes concurrent buyers.
type inventoryRepository struct {
	db querier
}

func (r *inventoryRepository) Decrement(ctx context.Context, offerID, quantity int64) (model.StockLevel, bool, error) {
	const query = `UPDATE offers SET quantity=quantity-$2, updated_at=NOW()
                   WHERE id=$1 AND quantity>=$2 AND status='active'
                   RETURNING quantity, status`
	level, err := scanLevel(offerID, r.db.QueryRow(ctx, query, offerID, quantity))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.StockLevel{}, false, nil
		}
		return model.StockLevel{}, false, err
	}
	return level, true, nil
}

func (r *inventoryRepository) Increment(ctx context.Context, offerID, quantity int64) (model.StockLevel, error) {
	const query = `UPDATE offers SET quantity=quantity+$2, updated_at=NOW()
                   WHERE id=$1
                   RETURNING quantity, status`
	level, err := scanLevel(offerID, r.db.QueryRow(ctx, query, offerID, quantity))
	if err != nil {
		return model.StockLevel{}, notFound(err)
	}
	return level, nil
}

func (r *inventoryRepository) Status(ctx context.Context, offerID int64) (model.OfferStatus, bool, error) {
	const query = `SELECT status FROM offers WHERE id=$1`
	var status string
	if err := r.db.QueryRow(ctx, query, offerID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return model.OfferStatus(status), true, nil
}

func scanLevel(offerID int64, row rowScanner) (model.StockLevel, error) {
	var (
		qty    int64
		status string
	)
	if err := row.Scan(&qty, &status); err != nil {
		return model.StockLevel{}, err
	}
	return model.StockLevel{OfferID: offerID, Quantity: qty, Status: model.OfferStatus(status)}, nil
}
