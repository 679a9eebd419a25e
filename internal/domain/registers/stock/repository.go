// Package stock provides the stock ledger: one row per product and location.
package stock

import (
	"context"

	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
)

// Repository defines persistence for stock rows.
// Get and the List methods read without locking; LockForUpdate and Save
// must run inside the caller's transaction.
type Repository interface {
	// Get returns the row or nil when it does not exist.
	Get(ctx context.Context, key entity.StockKey) (*entity.StockEntry, error)

	// LockForUpdate takes an exclusive row lock held until the transaction ends.
	// When create is set, an absent row is first materialized with quantity zero.
	// Returns nil when the row is absent and create is false.
	LockForUpdate(ctx context.Context, key entity.StockKey, create bool) (*entity.StockEntry, error)

	// Save writes the quantity of a locked row.
	Save(ctx context.Context, entry *entity.StockEntry) error

	// ListByLocation returns rows of one location ordered by product.
	ListByLocation(ctx context.Context, locationID id.ID, filter ListFilter) ([]entity.StockEntry, error)

	// ListByProduct returns rows of one product ordered by location.
	ListByProduct(ctx context.Context, product entity.ProductRef, filter ListFilter) ([]entity.StockEntry, error)

	// ListAll pages over every row in lock order.
	ListAll(ctx context.Context, filter ListFilter) ([]entity.StockEntry, error)
}

// ListFilter narrows list queries.
type ListFilter struct {
	ProductKind *entity.ProductKind
	LocationIDs []id.ID
	ExcludeZero bool
	Limit       int
	Offset      int
}
