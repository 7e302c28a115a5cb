package model

import (
	"sort"
	"time"
)

// OrderStatus describes order fulfilment lifecycle.
type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
	OrderStatusFailed         OrderStatus = "failed"
)

// Terminal reports whether no further transition is permitted.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusFailed:
		return true
	}
	return false
}

// Order is a buyer checkout.
type Order struct {
	ID          int64
	BuyerID     int64
	Status      OrderStatus
	TotalAmount Money
	Items       []OrderItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderItem freezes offer data at the time of purchase.
type OrderItem struct {
	OrderID         int64
	OfferID         int64
	SellerID        int64
	Title           string
	Quantity        int64
	PriceAtPurchase Money
}

// LineItem is a buyer request to purchase quantity units of an offer.
type LineItem struct {
	OfferID  int64
	Quantity int64
}

// Total sums frozen item prices.
func Total(items []OrderItem) Money {
	var total Money
	for _, item := range items {
		total += item.PriceAtPurchase.Times(item.Quantity)
	}
	return total
}

// SellerIDs returns distinct sellers referenced by the order items.
func (o Order) SellerIDs() []int64 {
	seen := make(map[int64]struct{}, len(o.Items))
	ids := make([]int64, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.SellerID]; ok {
			continue
		}
		seen[item.SellerID] = struct{}{}
		ids = append(ids, item.SellerID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MergeLineItems folds duplicate offers together and orders lines by offer id,
// which fixes the row lock order used by the inventory ledger.
func MergeLineItems(lines []LineItem) []LineItem {
	byOffer := make(map[int64]int64, len(lines))
	for _, l := range lines {
		byOffer[l.OfferID] += l.Quantity
	}
	merged := make([]LineItem, 0, len(byOffer))
	for id, qty := range byOffer {
		merged = append(merged, LineItem{OfferID: id, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].OfferID < merged[j].OfferID })
	return merged
}
