package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/core/types"
	"hydrostock/internal/domain/registers/stock"
	"hydrostock/internal/infrastructure/storage/memory"
)

func TestOrderLocks(t *testing.T) {
	p := entity.NewProductRef(entity.ProductKindPipe, id.MustParse("00000000-0000-0000-0000-00000000000a"))
	l1 := id.MustParse("00000000-0000-0000-0000-000000000001")
	l2 := id.MustParse("00000000-0000-0000-0000-000000000002")

	got := stock.OrderLocks([]stock.LockRequest{
		{Key: entity.NewStockKey(p, l2), Create: true},
		{Key: entity.NewStockKey(p, l1)},
		{Key: entity.NewStockKey(p, l2)},
	})

	assert.Equal(t, []stock.LockRequest{
		{Key: entity.NewStockKey(p, l1)},
		{Key: entity.NewStockKey(p, l2), Create: true},
	}, got)
}

func TestApplyDelta(t *testing.T) {
	store := memory.NewStore()
	ledger := stock.NewLedger(memory.NewStockRepo(store))
	key := entity.NewStockKey(entity.NewProductRef(entity.ProductKindChemical, id.New()), id.New())
	ctx := context.Background()

	q, err := ledger.GetOrZero(ctx, key)
	require.NoError(t, err)
	assert.True(t, q.IsZero())

	err = store.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := ledger.ApplyDelta(ctx, key, types.MustQuantity("-1"), false)
		assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

		next, err := ledger.ApplyDelta(ctx, key, types.MustQuantity("8.5"), true)
		require.NoError(t, err)
		assert.Equal(t, "8.5", next.String())

		_, err = ledger.ApplyDelta(ctx, key, types.MustQuantity("-9"), false)
		require.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
		appErr, _ := apperror.AsAppError(err)
		assert.Equal(t, "9", appErr.Details["requested"])
		assert.Equal(t, "8.5", appErr.Details["available"])

		next, err = ledger.ApplyDelta(ctx, key, types.MustQuantity("-8.5"), false)
		require.NoError(t, err)
		assert.True(t, next.IsZero())
		return nil
	})
	require.NoError(t, err)

	q, err = ledger.GetOrZero(ctx, key)
	require.NoError(t, err)
	assert.True(t, q.IsZero())

	rows, err := ledger.LocationBalances(ctx, key.LocationID, false)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "zero row is kept")

	rows, err = ledger.LocationBalances(ctx, key.LocationID, true)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestApplyDeltaRejectsOverflow(t *testing.T) {
	store := memory.NewStore()
	ledger := stock.NewLedger(memory.NewStockRepo(store))
	key := entity.NewStockKey(entity.NewProductRef(entity.ProductKindPipe, id.New()), id.New())
	ctx := context.Background()

	err := store.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := ledger.ApplyDelta(ctx, key, types.MustQuantity("99999999999999"), true)
		require.NoError(t, err)

		got, err := ledger.ApplyDelta(ctx, key, types.MustQuantity("1"), true)
		require.True(t, apperror.HasCode(err, apperror.CodeInvalidQuantity), "%v", err)
		assert.Equal(t, "99999999999999", got.String())
		return nil
	})
	require.NoError(t, err)

	q, err := ledger.GetOrZero(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "99999999999999", q.String())
}

func TestScanPages(t *testing.T) {
	store := memory.NewStore()
	ledger := stock.NewLedger(memory.NewStockRepo(store))
	loc := id.New()

	err := store.RunInTransaction(context.Background(), func(ctx context.Context) error {
		for i := 0; i < 7; i++ {
			key := entity.NewStockKey(entity.NewProductRef(entity.ProductKindEquipment, id.New()), loc)
			if _, err := ledger.ApplyDelta(ctx, key, types.MustQuantity("1"), true); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	var pages []int
	err = ledger.Scan(context.Background(), 3, func(page []entity.StockEntry) error {
		pages = append(pages, len(page))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 1}, pages)

	total, err := ledger.ProductTotal(context.Background(), entity.NewProductRef(entity.ProductKindEquipment, id.New()))
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}
