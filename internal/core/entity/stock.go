package entity

import (
	"time"

	"hydrostock/internal/core/id"
	"hydrostock/internal/core/types"
)

// StockKey identifies one stock row: a product at a location.
type StockKey struct {
	Product    ProductRef
	LocationID id.ID
}

// NewStockKey creates a key.
func NewStockKey(product ProductRef, locationID id.ID) StockKey {
	return StockKey{Product: product, LocationID: locationID}
}

// Compare defines the global lock order: product kind, product id, location id.
func (k StockKey) Compare(o StockKey) int {
	if c := k.Product.Compare(o.Product); c != 0 {
		return c
	}
	return id.Compare(k.LocationID, o.LocationID)
}

func (k StockKey) String() string {
	return k.Product.String() + "@" + k.LocationID.String()
}

// StockEntry is the current on-hand quantity of one product at one location.
// Rows are created lazily at zero and never deleted.
type StockEntry struct {
	ProductRef

	LocationID id.ID          `db:"location_id" json:"locationId"`
	Quantity   types.Quantity `db:"quantity" json:"quantity"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updatedAt"`
}

// Key returns the row key.
func (e *StockEntry) Key() StockKey {
	return StockKey{Product: e.ProductRef, LocationID: e.LocationID}
}

// NewStockEntry creates a zero-quantity row.
func NewStockEntry(key StockKey) *StockEntry {
	now := time.Now().UTC()
	return &StockEntry{
		ProductRef: key.Product,
		LocationID: key.LocationID,
		Quantity:   types.ZeroQuantity(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
