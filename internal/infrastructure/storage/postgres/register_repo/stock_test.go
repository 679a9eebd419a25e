package register_repo

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/domain/registers/stock"
)

func TestStockListQuery(t *testing.T) {
	repo := NewStockRepo(nil)
	loc := uuid.MustParse("0190f1a2-0000-7000-8000-000000000001")
	kind := entity.ProductKindPipe

	tests := []struct {
		name     string
		filter   stock.ListFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "all rows",
			filter:  stock.ListFilter{},
			wantSQL: "SELECT product_kind, product_id, location_id, quantity, created_at, updated_at FROM stock_entries ORDER BY product_kind, product_id, location_id",
		},
		{
			name:     "kind, location and paging",
			filter:   stock.ListFilter{ProductKind: &kind, LocationIDs: []id.ID{loc}, Limit: 50, Offset: 100},
			wantSQL:  "SELECT product_kind, product_id, location_id, quantity, created_at, updated_at FROM stock_entries WHERE product_kind = $1 AND location_id IN ($2) ORDER BY product_kind, product_id, location_id LIMIT 50 OFFSET 100",
			wantArgs: []any{kind, loc},
		},
		{
			name:     "exclude zero",
			filter:   stock.ListFilter{ExcludeZero: true},
			wantSQL:  "SELECT product_kind, product_id, location_id, quantity, created_at, updated_at FROM stock_entries WHERE quantity <> $1 ORDER BY product_kind, product_id, location_id",
			wantArgs: []any{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := repo.listQuery(tt.filter).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			if len(tt.wantArgs) == 0 {
				assert.Empty(t, args)
				return
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestStockKeyedQueryLocksRow(t *testing.T) {
	repo := NewStockRepo(nil)
	key := entity.NewStockKey(
		entity.NewProductRef(entity.ProductKindChemical, uuid.MustParse("0190f1a2-0000-7000-8000-0000000000aa")),
		uuid.MustParse("0190f1a2-0000-7000-8000-0000000000bb"),
	)

	sql, args, err := repo.keyed(key).Suffix("FOR UPDATE").ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT product_kind, product_id, location_id, quantity, created_at, updated_at FROM stock_entries WHERE location_id = $1 AND product_id = $2 AND product_kind = $3 FOR UPDATE", sql)
	// uuid.UUID is a driver.Valuer, squirrel binds its string form.
	assert.Equal(t, []any{key.LocationID.String(), key.Product.ID.String(), key.Product.Kind}, args)
}
