package postgres

import (
	"context"
	"fmt"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/model"
)

type orderRepository struct {
	db querier
}

const (
	orderColumns = `id, buyer_id, status, total_amount, created_at, updated_at`
	itemColumns  = `order_id, offer_id, seller_id, title, quantity, price_at_purchase`
)

// Create inserts the order row and its items. Callers run it inside a
// transaction so that a failed item insert discards the order.
func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	const insertOrder = `INSERT INTO orders (buyer_id, status, total_amount) VALUES ($1, $2, $3)
                         RETURNING id, created_at, updated_at`
	created := *order
	err := r.db.QueryRow(ctx, insertOrder, order.BuyerID, string(order.Status), int64(order.TotalAmount)).
		Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	const insertItem = `INSERT INTO order_items (` + itemColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	created.Items = make([]model.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		item.OrderID = created.ID
		if _, err := r.db.Exec(ctx, insertItem, item.OrderID, item.OfferID, item.SellerID, item.Title, item.Quantity, int64(item.PriceAtPurchase)); err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
		created.Items = append(created.Items, item)
	}
	return &created, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	items, err := r.items(ctx, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return &order, nil
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE buyer_id=$1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, buyerID)
}

// ListBySeller goes through idx_order_items_seller.
func (r *orderRepository) ListBySeller(ctx context.Context, sellerID int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE id IN (SELECT order_id FROM order_items WHERE seller_id=$1)
                   ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, sellerID)
}

func (r *orderRepository) ListRecent(ctx context.Context, limit int) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC LIMIT $1`
	return r.list(ctx, query, limit)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		result []model.Order
		ids    []int64
	)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return result, nil
	}

	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Items = items[result[i].ID]
	}
	return result, nil
}

func (r *orderRepository) CompareAndSetStatus(ctx context.Context, id int64, expected, to model.OrderStatus) error {
	const query = `UPDATE orders SET status=$3, updated_at=NOW() WHERE id=$1 AND status=$2`
	tag, err := r.db.Exec(ctx, query, id, string(expected), string(to))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrConflict
	}
	return nil
}

func (r *orderRepository) items(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	const query = `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, offer_id`
	rows, err := r.db.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]model.OrderItem, len(orderIDs))
	for rows.Next() {
		var (
			item  model.OrderItem
			price int64
		)
		if err := rows.Scan(&item.OrderID, &item.OfferID, &item.SellerID, &item.Title, &item.Quantity, &price); err != nil {
			return nil, err
		}
		item.PriceAtPurchase = model.Money(price)
		result[item.OrderID] = append(result[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanOrder(row rowScanner) (model.Order, error) {
	var (
		o      model.Order
		status string
		total  int64
	)
	if err := row.Scan(&o.ID, &o.BuyerID, &status, &total, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return model.Order{}, err
	}
	o.Status = model.OrderStatus(status)
	o.TotalAmount = model.Money(total)
	return o, nil
}
