package model

import "time"

// OfferStatus describes offer visibility lifecycle.
type OfferStatus string

const (
	OfferStatusActive    OfferStatus = "active"
	OfferStatusInactive  OfferStatus = "inactive"
	OfferStatusSold      OfferStatus = "sold"
	OfferStatusModerated OfferStatus = "moderated"
	OfferStatusArchived  OfferStatus = "archived"
	OfferStatusDeleted   OfferStatus = "deleted"
)

// Offer is a seller listing. Quantity is only changed through the inventory ledger.
type Offer struct {
	ID         int64
	SellerID   int64
	CategoryID int64
	Title      string
	Price      Money
	Quantity   int64
	Status     OfferStatus
	// PreviousStatus is set only while Status is moderated.
	PreviousStatus *OfferStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OfferDraft carries seller input for a new offer.
type OfferDraft struct {
	CategoryID int64
	Title      string
	Price      Money
	Quantity   int64
}

// OfferPatch carries content edits. Nil fields are left untouched.
type OfferPatch struct {
	CategoryID *int64
	Title      *string
	Price      *Money
}

// Empty reports whether patch changes nothing.
func (p OfferPatch) Empty() bool {
	return p.CategoryID == nil && p.Title == nil && p.Price == nil
}

// StockLevel is the offer state returned by an inventory ledger update.
type StockLevel struct {
	OfferID  int64
	Quantity int64
	Status   OfferStatus
}
