// Package document_repo provides PostgreSQL repositories for movements
// and their audit records.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/domain/movement"
	"hydrostock/internal/infrastructure/storage/postgres"
)

const movementsTable = "movements"

var movementColumns = postgres.ExtractDBColumns[entity.Movement]()

// MovementRepo implements movement.Repository.
type MovementRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

var _ movement.Repository = (*MovementRepo)(nil)

// NewMovementRepo creates a movement repository.
func NewMovementRepo(txm *postgres.TxManager) *MovementRepo {
	return &MovementRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts an applied movement.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	sql, args, err := r.builder.Insert(movementsTable).
		SetMap(postgres.StructToMap(m)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", postgres.MapError(err))
	}
	return nil
}

// GetByID returns the movement or NOT_FOUND.
func (r *MovementRepo) GetByID(ctx context.Context, movementID id.ID) (*entity.Movement, error) {
	sql, args, err := r.builder.Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.Eq{"id": movementID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var m entity.Movement
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("movement", movementID)
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return &m, nil
}

// List returns movements newest first.
func (r *MovementRepo) List(ctx context.Context, filter movement.ListFilter) ([]entity.Movement, error) {
	sql, args, err := r.listQuery(filter.Normalize()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	out := make([]entity.Movement, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return out, nil
}

func (r *MovementRepo) listQuery(filter movement.ListFilter) squirrel.SelectBuilder {
	q := r.builder.Select(movementColumns...).From(movementsTable)

	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
	}
	if filter.Product != nil {
		q = q.Where(squirrel.Eq{"product_kind": filter.Product.Kind, "product_id": filter.Product.ID})
	}
	if filter.LocationID != nil {
		q = q.Where(touchesLocation(*filter.LocationID))
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.To})
	}

	return q.OrderBy("id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))
}

// touchesLocation matches rows whose source or destination is locationID.
func touchesLocation(locationID id.ID) squirrel.Or {
	return squirrel.Or{
		squirrel.Eq{"source_location_id": locationID},
		squirrel.Eq{"dest_location_id": locationID},
	}
}
