package catalog_repo

import (
	"context"
	"fmt"

	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/infrastructure/storage/postgres"
)

// Organization is the top of the location hierarchy.
type Organization struct {
	ID   id.ID  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// Branch belongs to an organization.
type Branch struct {
	ID             id.ID  `db:"id" json:"id"`
	OrganizationID id.ID  `db:"organization_id" json:"organizationId"`
	Code           string `db:"code" json:"code"`
	Name           string `db:"name" json:"name"`
}

// System is a water system (treatment plant, distribution network) of a branch.
type System struct {
	ID       id.ID  `db:"id" json:"id"`
	BranchID id.ID  `db:"branch_id" json:"branchId"`
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
}

// StorageLocation belongs to a system.
type StorageLocation struct {
	ID       id.ID  `db:"id" json:"id"`
	SystemID id.ID  `db:"system_id" json:"systemId"`
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
}

// Product is a catalog row of any kind.
type Product struct {
	ID   id.ID  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
	Unit string `db:"unit" json:"unit"`
}

// Catalog is a full master data set.
type Catalog struct {
	Organizations []Organization                   `json:"organizations"`
	Branches      []Branch                         `json:"branches"`
	Systems       []System                         `json:"systems"`
	Locations     []StorageLocation                `json:"locations"`
	Products      map[entity.ProductKind][]Product `json:"products"`
}

// ImportStats counts imported rows per table.
type ImportStats map[string]int64

// Importer bulk-loads master data with COPY. Call inside a transaction.
type Importer struct {
	inserter *postgres.BatchInserter
}

// NewImporter creates an importer.
func NewImporter(txm *postgres.TxManager) *Importer {
	return &Importer{inserter: postgres.NewBatchInserter(txm)}
}

// Import loads the hierarchy top-down, then the product catalogs.
func (im *Importer) Import(ctx context.Context, c Catalog) (ImportStats, error) {
	stats := ImportStats{}

	steps := []struct {
		table   string
		columns []string
		rows    func(columns []string) [][]any
	}{
		{"cat_organizations", postgres.ExtractDBColumns[Organization](), func(cols []string) [][]any { return rowsOf(c.Organizations, cols) }},
		{"cat_branches", postgres.ExtractDBColumns[Branch](), func(cols []string) [][]any { return rowsOf(c.Branches, cols) }},
		{"cat_systems", postgres.ExtractDBColumns[System](), func(cols []string) [][]any { return rowsOf(c.Systems, cols) }},
		{"cat_storage_locations", postgres.ExtractDBColumns[StorageLocation](), func(cols []string) [][]any { return rowsOf(c.Locations, cols) }},
	}

	for _, step := range steps {
		n, err := im.inserter.CopyFromSlice(ctx, step.table, step.columns, step.rows(step.columns))
		if err != nil {
			return stats, fmt.Errorf("copy %s: %w", step.table, err)
		}
		stats[step.table] = n
	}

	for _, kind := range entity.ProductKinds() {
		products := c.Products[kind]
		if len(products) == 0 {
			continue
		}
		n, err := im.importProducts(ctx, kind, products)
		if err != nil {
			return stats, err
		}
		stats[productTables[kind]] = n
	}
	return stats, nil
}

func (im *Importer) importProducts(ctx context.Context, kind entity.ProductKind, products []Product) (int64, error) {
	table := productTables[kind]
	columns := postgres.ExtractDBColumns[Product]()

	rows := make(chan []any, 256)
	go func() {
		defer close(rows)
		for _, p := range products {
			select {
			case rows <- postgres.StructToRow(p, columns):
			case <-ctx.Done():
				return
			}
		}
	}()

	n, err := im.inserter.CopyFromRows(ctx, table, columns, rows)
	if err != nil {
		// Drain so the producer exits.
		for range rows {
		}
		return 0, fmt.Errorf("copy %s: %w", table, err)
	}
	return n, nil
}

func rowsOf[T any](items []T, columns []string) [][]any {
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, postgres.StructToRow(item, columns))
	}
	return rows
}
