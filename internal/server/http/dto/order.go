package dto

import "time"

// OrderLine is one requested offer in a checkout.
type OrderLine struct {
	OfferID  int64 `json:"offer_id"`
	Quantity int64 `json:"quantity"`
}

// PlaceOrderRequest describes checkout payload.
type PlaceOrderRequest struct {
	Items []OrderLine `json:"items"`
}

// OrderItemResponse describes a purchased item with its frozen price.
type OrderItemResponse struct {
	OfferID         int64  `json:"offer_id"`
	SellerID        int64  `json:"seller_id"`
	Title           string `json:"title"`
	Quantity        int64  `json:"quantity"`
	PriceAtPurchase string `json:"price_at_purchase"`
}

// OrderResponse describes an order.
type OrderResponse struct {
	ID          int64               `json:"id"`
	BuyerID     int64               `json:"buyer_id"`
	Status      string              `json:"status"`
	TotalAmount string              `json:"total_amount"`
	Items       []OrderItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}
