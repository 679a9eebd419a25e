package handlers

import (
	"github.com/gin-gonic/gin"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
	"hydrostock/internal/domain/movement"
	"hydrostock/internal/domain/registers/stock"
	"hydrostock/internal/infrastructure/http/v1/dto"
)

// StockHandler serves stock ledger reads.
type StockHandler struct {
	*BaseHandler
	engine *movement.Engine
	ledger *stock.Ledger
}

// NewStockHandler creates a stock handler.
func NewStockHandler(base *BaseHandler, engine *movement.Engine, ledger *stock.Ledger) *StockHandler {
	return &StockHandler{BaseHandler: base, engine: engine, ledger: ledger}
}

// Quantity handles GET /stock/quantity. A row that does not exist reads as zero.
func (h *StockHandler) Quantity(c *gin.Context) {
	var q dto.QuantityQuery
	if !h.BindQuery(c, &q) {
		return
	}
	key, err := q.Key()
	if err != nil {
		h.Error(c, err)
		return
	}

	qty, err := h.engine.CurrentQuantity(c.Request.Context(), key.Product, key.LocationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.QuantityResponse{
		ProductKind: string(key.Product.Kind),
		ProductID:   key.Product.ID.String(),
		LocationID:  key.LocationID.String(),
		Quantity:    qty.String(),
	})
}

// Balances handles GET /stock/balances.
func (h *StockHandler) Balances(c *gin.Context) {
	var q dto.BalanceQuery
	if !h.BindQuery(c, &q) {
		return
	}

	ref, err := q.Ref()
	if err != nil {
		h.Error(c, err)
		return
	}
	loc, err := dto.ParseOptionalID("locationId", q.LocationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	var entries []entity.StockEntry

	switch {
	case loc != nil:
		entries, err = h.ledger.LocationBalances(ctx, *loc, q.ExcludeZero)
		if err == nil && ref != nil {
			entries = filterProduct(entries, *ref)
		}
	case ref != nil:
		entries, err = h.ledger.ProductBalances(ctx, *ref, q.ExcludeZero)
	default:
		err = apperror.NewValidation("locationId or productKind and productId are required")
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": dto.FromStockEntries(entries)})
}

func filterProduct(entries []entity.StockEntry, ref entity.ProductRef) []entity.StockEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.ProductRef == ref {
			out = append(out, e)
		}
	}
	return out
}
