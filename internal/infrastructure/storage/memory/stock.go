package memory

import (
	"context"
	"sort"
	"time"

	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/domain/registers/stock"
)

// StockRepo implements stock.Repository.
type StockRepo struct {
	s *Store
}

// NewStockRepo creates a stock repository over the store.
func NewStockRepo(s *Store) *StockRepo {
	return &StockRepo{s: s}
}

// Get implements stock.Repository.
func (r *StockRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockEntry, error) {
	e, ok := r.s.getStock(txFrom(ctx), key)
	if !ok {
		return nil, nil
	}
	return &e, nil
}

// LockForUpdate implements stock.Repository.
func (r *StockRepo) LockForUpdate(ctx context.Context, key entity.StockKey, create bool) (*entity.StockEntry, error) {
	var out *entity.StockEntry
	err := r.s.write(ctx, func(t *memTx) error {
		if err := r.s.acquire(ctx, t, key); err != nil {
			return err
		}
		e, ok := r.s.getStock(t, key)
		if !ok {
			if !create {
				return nil
			}
			e = *entity.NewStockEntry(key)
			t.writes.stock[key] = e
		}
		out = &e
		return nil
	})
	return out, err
}

// Save implements stock.Repository.
func (r *StockRepo) Save(ctx context.Context, entry *entity.StockEntry) error {
	return r.s.write(ctx, func(t *memTx) error {
		if err := r.s.acquire(ctx, t, entry.Key()); err != nil {
			return err
		}
		e := *entry
		e.UpdatedAt = time.Now().UTC()
		t.writes.stock[e.Key()] = e
		return nil
	})
}

// ListByLocation implements stock.Repository.
func (r *StockRepo) ListByLocation(ctx context.Context, locationID id.ID, filter stock.ListFilter) ([]entity.StockEntry, error) {
	filter.LocationIDs = []id.ID{locationID}
	return r.list(ctx, nil, filter), nil
}

// ListByProduct implements stock.Repository.
func (r *StockRepo) ListByProduct(ctx context.Context, product entity.ProductRef, filter stock.ListFilter) ([]entity.StockEntry, error) {
	return r.list(ctx, &product, filter), nil
}

// ListAll implements stock.Repository.
func (r *StockRepo) ListAll(ctx context.Context, filter stock.ListFilter) ([]entity.StockEntry, error) {
	return r.list(ctx, nil, filter), nil
}

func (r *StockRepo) list(ctx context.Context, product *entity.ProductRef, filter stock.ListFilter) []entity.StockEntry {
	state := r.s.view(ctx)

	var locations map[id.ID]bool
	if len(filter.LocationIDs) > 0 {
		locations = make(map[id.ID]bool, len(filter.LocationIDs))
		for _, l := range filter.LocationIDs {
			locations[l] = true
		}
	}

	out := make([]entity.StockEntry, 0)
	for _, e := range state.stock {
		if product != nil && e.ProductRef != *product {
			continue
		}
		if filter.ProductKind != nil && e.Kind != *filter.ProductKind {
			continue
		}
		if locations != nil && !locations[e.LocationID] {
			continue
		}
		if filter.ExcludeZero && e.Quantity.IsZero() {
			continue
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Key().Compare(out[j].Key()) < 0
	})
	return page(out, filter.Limit, filter.Offset)
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

var _ stock.Repository = (*StockRepo)(nil)
