// Package register_repo provides the PostgreSQL stock ledger repository.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/domain/registers/stock"
	"hydrostock/internal/infrastructure/storage/postgres"
)

const stockEntriesTable = "stock_entries"

var stockColumns = []string{
	"product_kind", "product_id", "location_id",
	"quantity", "created_at", "updated_at",
}

// lockOrder matches entity.StockKey.Compare.
var lockOrder = []string{"product_kind", "product_id", "location_id"}

// StockRepo implements stock.Repository.
type StockRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

var _ stock.Repository = (*StockRepo)(nil)

// NewStockRepo creates a new stock ledger repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *StockRepo) keyed(key entity.StockKey) squirrel.SelectBuilder {
	return r.builder.Select(stockColumns...).
		From(stockEntriesTable).
		Where(squirrel.Eq{
			"product_kind": key.Product.Kind,
			"product_id":   key.Product.ID,
			"location_id":  key.LocationID,
		})
}

// Get returns the row or nil when it does not exist.
func (r *StockRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockEntry, error) {
	sql, args, err := r.keyed(key).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entry entity.StockEntry
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &entry, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock %s: %w", key, postgres.MapError(err))
	}
	return &entry, nil
}

// LockForUpdate locks the row with SELECT ... FOR UPDATE. With create set,
// an absent row is first inserted at zero; a concurrent insert of the same
// key waits on the unique index and then falls through to the lock.
func (r *StockRepo) LockForUpdate(ctx context.Context, key entity.StockKey, create bool) (*entity.StockEntry, error) {
	if r.txm.GetTx(ctx) == nil {
		return nil, fmt.Errorf("lock stock %s: %w", key, postgres.ErrNoTransaction)
	}
	q := r.txm.GetQuerier(ctx)

	if create {
		now := time.Now().UTC()
		sql, args, err := r.builder.Insert(stockEntriesTable).
			Columns(stockColumns...).
			Values(key.Product.Kind, key.Product.ID, key.LocationID, 0, now, now).
			Suffix("ON CONFLICT (product_kind, product_id, location_id) DO NOTHING").
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build insert: %w", err)
		}
		if _, err := q.Exec(ctx, sql, args...); err != nil {
			return nil, fmt.Errorf("materialize stock %s: %w", key, postgres.MapError(err))
		}
	}

	sql, args, err := r.keyed(key).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entry entity.StockEntry
	if err := pgxscan.Get(ctx, q, &entry, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock stock %s: %w", key, postgres.MapError(err))
	}
	return &entry, nil
}

// Save writes the quantity of a locked row.
func (r *StockRepo) Save(ctx context.Context, entry *entity.StockEntry) error {
	entry.UpdatedAt = time.Now().UTC()

	sql, args, err := r.builder.Update(stockEntriesTable).
		Set("quantity", entry.Quantity).
		Set("updated_at", entry.UpdatedAt).
		Where(squirrel.Eq{
			"product_kind": entry.Kind,
			"product_id":   entry.ProductRef.ID,
			"location_id":  entry.LocationID,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("save stock %s: %w", entry.Key(), postgres.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save stock %s: row does not exist", entry.Key())
	}
	return nil
}

// ListByLocation returns rows of one location ordered by product.
func (r *StockRepo) ListByLocation(ctx context.Context, locationID id.ID, filter stock.ListFilter) ([]entity.StockEntry, error) {
	filter.LocationIDs = []id.ID{locationID}
	return r.selectEntries(ctx, r.listQuery(filter))
}

// ListByProduct returns rows of one product ordered by location.
func (r *StockRepo) ListByProduct(ctx context.Context, product entity.ProductRef, filter stock.ListFilter) ([]entity.StockEntry, error) {
	filter.ProductKind = nil
	q := r.listQuery(filter).Where(squirrel.Eq{
		"product_kind": product.Kind,
		"product_id":   product.ID,
	})
	return r.selectEntries(ctx, q)
}

// ListAll pages over every row in lock order.
func (r *StockRepo) ListAll(ctx context.Context, filter stock.ListFilter) ([]entity.StockEntry, error) {
	return r.selectEntries(ctx, r.listQuery(filter))
}

func (r *StockRepo) listQuery(filter stock.ListFilter) squirrel.SelectBuilder {
	q := r.builder.Select(stockColumns...).From(stockEntriesTable)

	if filter.ProductKind != nil {
		q = q.Where(squirrel.Eq{"product_kind": *filter.ProductKind})
	}
	if len(filter.LocationIDs) > 0 {
		q = q.Where(squirrel.Eq{"location_id": filter.LocationIDs})
	}
	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"quantity": 0})
	}

	q = q.OrderBy(lockOrder...)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

func (r *StockRepo) selectEntries(ctx context.Context, q squirrel.SelectBuilder) ([]entity.StockEntry, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	entries := make([]entity.StockEntry, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select stock: %w", postgres.MapError(err))
	}
	return entries, nil
}
