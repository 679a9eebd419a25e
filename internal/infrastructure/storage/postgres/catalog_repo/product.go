// Package catalog_repo provides PostgreSQL access to the product catalogs,
// the location hierarchy and alert rules.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"hydrostock/internal/core/entity"
	"hydrostock/internal/domain/catalogs/product"
	"hydrostock/internal/infrastructure/storage/postgres"
)

// productTables maps each product kind to its catalog table.
var productTables = map[entity.ProductKind]string{
	entity.ProductKindChemical:  "cat_chemicals",
	entity.ProductKindPipe:      "cat_pipes",
	entity.ProductKindPump:      "cat_pumps",
	entity.ProductKindAccessory: "cat_accessories",
	entity.ProductKindEquipment: "cat_equipment",
}

// ProductTable returns the catalog table of kind.
func ProductTable(kind entity.ProductKind) (string, bool) {
	t, ok := productTables[kind]
	return t, ok
}

// ProductRegistry implements product.Registry over the catalog tables.
type ProductRegistry struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

var _ product.Registry = (*ProductRegistry)(nil)

// NewProductRegistry creates a product registry.
func NewProductRegistry(txm *postgres.TxManager) *ProductRegistry {
	return &ProductRegistry{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Exists reports whether the referenced product is in its catalog.
// Unknown kinds do not exist.
func (r *ProductRegistry) Exists(ctx context.Context, ref entity.ProductRef) (bool, error) {
	sql, args, ok, err := r.existsQuery(ref)
	if err != nil || !ok {
		return false, err
	}

	var exists bool
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check product %s: %w", ref, postgres.MapError(err))
	}
	return exists, nil
}

func (r *ProductRegistry) existsQuery(ref entity.ProductRef) (string, []any, bool, error) {
	table, ok := productTables[ref.Kind]
	if !ok {
		return "", nil, false, nil
	}

	// table comes from productTables, never from input.
	sql, args, err := r.builder.Select("1").From(table).Where(squirrel.Eq{"id": ref.ID}).
		Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return "", nil, false, fmt.Errorf("build query: %w", err)
	}
	return sql, args, true, nil
}
