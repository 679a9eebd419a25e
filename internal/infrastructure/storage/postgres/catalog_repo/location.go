package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/domain/catalogs/location"
	"hydrostock/internal/infrastructure/storage/postgres"
)

// LocationRegistry implements location.Registry. Branch and organization
// are resolved through the system a location belongs to.
type LocationRegistry struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

var _ location.Registry = (*LocationRegistry)(nil)

// NewLocationRegistry creates a location registry.
func NewLocationRegistry(txm *postgres.TxManager) *LocationRegistry {
	return &LocationRegistry{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *LocationRegistry) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(
		"l.id", "l.code", "l.name", "l.system_id",
		"s.branch_id", "b.organization_id",
	).
		From("cat_storage_locations l").
		Join("cat_systems s ON s.id = l.system_id").
		Join("cat_branches b ON b.id = s.branch_id")
}

// Get returns the location or NOT_FOUND.
func (r *LocationRegistry) Get(ctx context.Context, locationID id.ID) (*entity.Location, error) {
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"l.id": locationID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var loc entity.Location
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &loc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("location", locationID)
		}
		return nil, fmt.Errorf("get location: %w", postgres.MapError(err))
	}
	return &loc, nil
}
