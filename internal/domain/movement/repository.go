package movement

import (
	"context"
	"time"

	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
)

// Repository persists applied movements. Movements are never updated.
type Repository interface {
	Create(ctx context.Context, m *entity.Movement) error

	// GetByID returns the movement or a NOT_FOUND AppError.
	GetByID(ctx context.Context, movementID id.ID) (*entity.Movement, error)

	// List returns movements newest first.
	List(ctx context.Context, filter ListFilter) ([]entity.Movement, error)
}

// ListFilter narrows movement queries. Nil fields do not filter.
type ListFilter struct {
	Type       *entity.MovementType
	Product    *entity.ProductRef
	LocationID *id.ID // matches either source or destination
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// Normalize applies list defaults.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
