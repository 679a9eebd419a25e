package memory

import (
	"context"
	"sort"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/domain/movement"
)

// MovementRepo implements movement.Repository.
type MovementRepo struct {
	s *Store
}

// NewMovementRepo creates a movement repository over the store.
func NewMovementRepo(s *Store) *MovementRepo {
	return &MovementRepo{s: s}
}

// Create implements movement.Repository.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	return r.s.write(ctx, func(t *memTx) error {
		t.writes.movements[m.ID] = *m
		return nil
	})
}

// GetByID implements movement.Repository.
func (r *MovementRepo) GetByID(ctx context.Context, movementID id.ID) (*entity.Movement, error) {
	m, ok := r.s.view(ctx).movements[movementID]
	if !ok {
		return nil, apperror.NewNotFound("movement", movementID)
	}
	return &m, nil
}

// List implements movement.Repository.
func (r *MovementRepo) List(ctx context.Context, filter movement.ListFilter) ([]entity.Movement, error) {
	out := make([]entity.Movement, 0)
	for _, m := range r.s.view(ctx).movements {
		if filter.Type != nil && m.Type != *filter.Type {
			continue
		}
		if filter.Product != nil && m.ProductRef != *filter.Product {
			continue
		}
		if filter.LocationID != nil && !touches(*filter.LocationID, m.SourceLocationID, m.DestLocationID) {
			continue
		}
		if filter.From != nil && m.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !m.CreatedAt.Before(*filter.To) {
			continue
		}
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool {
		return id.Compare(out[i].ID, out[j].ID) > 0
	})
	return page(out, filter.Limit, filter.Offset), nil
}

func touches(locationID id.ID, refs ...*id.ID) bool {
	for _, r := range refs {
		if r != nil && *r == locationID {
			return true
		}
	}
	return false
}

var _ movement.Repository = (*MovementRepo)(nil)
