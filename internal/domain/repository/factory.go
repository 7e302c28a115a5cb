package repository

import "context"

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Offers() OfferRepository
	Orders() OrderRepository
	Inventory() InventoryRepository
	AuditLog() AuditRepository
}

// Transactor runs fn with repositories bound to one database transaction.
// Returning an error from fn rolls back every write made through the factory.
type Transactor interface {
	InTx(ctx context.Context, fn func(Factory) error) error
}
