package stock

import (
	"context"
	"fmt"
	"sort"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/core/types"
)

// Ledger owns the non-negativity invariant of stock rows.
// Only the movement engine calls Lock and ApplyDelta, always inside its transaction.
type Ledger struct {
	repo Repository
}

// NewLedger creates a new stock ledger.
func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// LockRequest names a row to lock and whether it may be created.
type LockRequest struct {
	Key    entity.StockKey
	Create bool
}

// GetOrZero reads the current quantity, treating a missing row as zero.
func (l *Ledger) GetOrZero(ctx context.Context, key entity.StockKey) (types.Quantity, error) {
	entry, err := l.repo.Get(ctx, key)
	if err != nil {
		return types.ZeroQuantity(), fmt.Errorf("get stock %s: %w", key, err)
	}
	if entry == nil {
		return types.ZeroQuantity(), nil
	}
	return entry.Quantity, nil
}

// Lock acquires exclusive locks on all requested rows in the global key order,
// so two movements touching the same rows never wait on each other in a cycle.
// Duplicate keys are locked once; a key is created if any request for it allows creation.
func (l *Ledger) Lock(ctx context.Context, reqs []LockRequest) error {
	for _, req := range OrderLocks(reqs) {
		if _, err := l.repo.LockForUpdate(ctx, req.Key, req.Create); err != nil {
			return fmt.Errorf("lock stock %s: %w", req.Key, err)
		}
	}
	return nil
}

// OrderLocks sorts requests by key and merges duplicates.
func OrderLocks(reqs []LockRequest) []LockRequest {
	out := make([]LockRequest, 0, len(reqs))
	out = append(out, reqs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Key.Compare(out[j].Key) < 0
	})

	merged := out[:0]
	for _, req := range out {
		if n := len(merged); n > 0 && merged[n-1].Key == req.Key {
			merged[n-1].Create = merged[n-1].Create || req.Create
			continue
		}
		merged = append(merged, req)
	}
	return merged
}

// ApplyDelta adds delta to a row the caller has already locked and returns the new quantity.
// An absent row is created at zero only when allowCreate is set. A result below zero
// fails with INSUFFICIENT_STOCK, a result the column cannot hold fails with
// INVALID_QUANTITY. Either way the row is left untouched.
func (l *Ledger) ApplyDelta(ctx context.Context, key entity.StockKey, delta types.Quantity, allowCreate bool) (types.Quantity, error) {
	entry, err := l.repo.LockForUpdate(ctx, key, allowCreate)
	if err != nil {
		return types.ZeroQuantity(), fmt.Errorf("load stock %s: %w", key, err)
	}

	available := types.ZeroQuantity()
	if entry != nil {
		available = entry.Quantity
	}

	next := available.Add(delta)
	if entry == nil || next.IsNegative() {
		return available, apperror.NewInsufficientStock(
			key.Product.String(),
			key.LocationID.String(),
			delta.Neg(),
			available,
		)
	}

	if !types.FitsPrecision(next) {
		return available, apperror.NewInvalidQuantity(
			fmt.Sprintf("stock of %s at %s would reach %s, the limit is below %s",
				key.Product, key.LocationID, next, types.QuantityLimit())).
			WithDetail("available", available.String()).
			WithDetail("requested", delta.String())
	}

	entry.Quantity = next
	if err := l.repo.Save(ctx, entry); err != nil {
		return available, fmt.Errorf("save stock %s: %w", key, err)
	}
	return next, nil
}

// ProductTotal sums a product's quantity over the given locations, or over all
// locations when none are given.
func (l *Ledger) ProductTotal(ctx context.Context, product entity.ProductRef, locationIDs ...id.ID) (types.Quantity, error) {
	entries, err := l.repo.ListByProduct(ctx, product, ListFilter{LocationIDs: locationIDs})
	if err != nil {
		return types.ZeroQuantity(), fmt.Errorf("list stock for %s: %w", product, err)
	}

	total := types.ZeroQuantity()
	for _, e := range entries {
		total = total.Add(e.Quantity)
	}
	return total, nil
}

// LocationBalances returns the rows of one location. Zero rows stay visible
// unless excludeZero is set.
func (l *Ledger) LocationBalances(ctx context.Context, locationID id.ID, excludeZero bool) ([]entity.StockEntry, error) {
	return l.repo.ListByLocation(ctx, locationID, ListFilter{ExcludeZero: excludeZero})
}

// ProductBalances returns the rows of one product across locations.
func (l *Ledger) ProductBalances(ctx context.Context, product entity.ProductRef, excludeZero bool) ([]entity.StockEntry, error) {
	return l.repo.ListByProduct(ctx, product, ListFilter{ExcludeZero: excludeZero})
}

// Scan pages over every row, calling fn for each page. Used by read-only pollers.
func (l *Ledger) Scan(ctx context.Context, pageSize int, fn func([]entity.StockEntry) error) error {
	if pageSize <= 0 {
		pageSize = 500
	}
	for offset := 0; ; offset += pageSize {
		page, err := l.repo.ListAll(ctx, ListFilter{Limit: pageSize, Offset: offset})
		if err != nil {
			return fmt.Errorf("list stock page at %d: %w", offset, err)
		}
		if len(page) > 0 {
			if err := fn(page); err != nil {
				return err
			}
		}
		if len(page) < pageSize {
			return nil
		}
	}
}
