package model

import "strings"

// Action names an operation checked by the authorization guard.
type Action string

const (
	ActionOrderPlace   Action = "order.place"
	ActionOrderCancel  Action = "order.cancel"
	ActionOrderShip    Action = "order.ship"
	ActionOrderDeliver Action = "order.deliver"
	ActionOrderView    Action = "order.view"

	ActionOfferCreate     Action = "offer.create"
	ActionOfferEdit       Action = "offer.edit"
	ActionOfferActivate   Action = "offer.activate"
	ActionOfferDeactivate Action = "offer.deactivate"
	ActionOfferRestock    Action = "offer.restock"
	ActionOfferArchive    Action = "offer.archive"
	ActionOfferDelete     Action = "offer.delete"
	ActionOfferModerate   Action = "offer.moderate"
	ActionOfferUnmoderate Action = "offer.unmoderate"
	ActionOfferView       Action = "offer.view"

	ActionUserBlock   Action = "user.block"
	ActionUserUnblock Action = "user.unblock"
	ActionUserDelete  Action = "user.delete"

	ActionAuditView Action = "audit.view"

	// Payment callbacks are system events and bypass the guard.
	ActionPaymentSucceeded Action = "payment.succeeded"
	ActionPaymentFailed    Action = "payment.failed"
)

// OnOrder reports whether action targets an order.
func (a Action) OnOrder() bool {
	return strings.HasPrefix(string(a), "order.")
}

// Resource describes the target of an action for ownership checks.
type Resource struct {
	// OwnerID is the buyer of an order or the seller of an offer.
	OwnerID int64
	// SellerIDs lists the sellers of every order item.
	SellerIDs []int64
}

// OrderResource builds guard resource from order.
func OrderResource(o Order) Resource {
	return Resource{OwnerID: o.BuyerID, SellerIDs: o.SellerIDs()}
}

// OfferResource builds guard resource from offer.
func OfferResource(o Offer) Resource {
	return Resource{OwnerID: o.SellerID}
}
