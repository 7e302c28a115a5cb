package dto

import "time"

// OfferRequest describes a new offer. Price is a decimal string such as "12.50".
type OfferRequest struct {
	CategoryID int64  `json:"category_id"`
	Title      string `json:"title"`
	Price      string `json:"price"`
	Quantity   int64  `json:"quantity"`
}

// OfferPatchRequest carries optional content edits.
type OfferPatchRequest struct {
	CategoryID *int64  `json:"category_id,omitempty"`
	Title      *string `json:"title,omitempty"`
	Price      *string `json:"price,omitempty"`
}

// RestockRequest adds units to offer stock.
type RestockRequest struct {
	Quantity int64 `json:"quantity"`
}

// OfferResponse describes an offer. The status remembered for unmoderation
// stays internal.
type OfferResponse struct {
	ID         int64     `json:"id"`
	SellerID   int64     `json:"seller_id"`
	CategoryID int64     `json:"category_id"`
	Title      string    `json:"title"`
	Price      string    `json:"price"`
	Quantity   int64     `json:"quantity"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
