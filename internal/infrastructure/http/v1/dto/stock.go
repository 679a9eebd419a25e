package dto

import (
	"time"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
)

// QuantityQuery holds GET /stock/quantity parameters.
type QuantityQuery struct {
	ProductQuery
	LocationID string `form:"locationId"`
}

// Key returns the stock row key. All three parameters are required.
func (q QuantityQuery) Key() (entity.StockKey, error) {
	ref, err := q.Ref()
	if err != nil {
		return entity.StockKey{}, err
	}
	if ref == nil {
		return entity.StockKey{}, apperror.NewValidation("productKind and productId are required")
	}
	loc, err := ParseOptionalID("locationId", q.LocationID)
	if err != nil {
		return entity.StockKey{}, err
	}
	if loc == nil {
		return entity.StockKey{}, apperror.NewValidation("locationId is required").WithDetail("field", "locationId")
	}
	return entity.NewStockKey(*ref, *loc), nil
}

// QuantityResponse is the on-hand quantity of one row.
type QuantityResponse struct {
	ProductKind string `json:"productKind"`
	ProductID   string `json:"productId"`
	LocationID  string `json:"locationId"`
	Quantity    string `json:"quantity"`
}

// BalanceQuery holds GET /stock/balances parameters: a location, a product, or both.
type BalanceQuery struct {
	ProductQuery
	LocationID  string `form:"locationId"`
	ExcludeZero bool   `form:"excludeZero"`
}

// StockEntryResponse is one stock row.
type StockEntryResponse struct {
	ProductKind string    `json:"productKind"`
	ProductID   string    `json:"productId"`
	LocationID  string    `json:"locationId"`
	Quantity    string    `json:"quantity"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FromStockEntries converts entries to responses.
func FromStockEntries(entries []entity.StockEntry) []StockEntryResponse {
	out := make([]StockEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = StockEntryResponse{
			ProductKind: string(e.Kind),
			ProductID:   e.ProductRef.ID.String(),
			LocationID:  e.LocationID.String(),
			Quantity:    e.Quantity.String(),
			UpdatedAt:   e.UpdatedAt,
		}
	}
	return out
}
