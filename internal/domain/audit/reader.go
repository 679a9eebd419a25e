package audit

import (
	"context"

	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
)

// Reader is the query side of the audit trail.
type Reader struct {
	repo Repository
}

// NewReader creates a new audit reader.
func NewReader(repo Repository) *Reader {
	return &Reader{repo: repo}
}

// List returns records newest first.
func (r *Reader) List(ctx context.Context, filter Filter) ([]entity.AuditRecord, error) {
	return r.repo.List(ctx, filter.Normalize())
}

// Get returns one record or NOT_FOUND.
func (r *Reader) Get(ctx context.Context, auditID id.ID) (*entity.AuditRecord, error) {
	return r.repo.GetByID(ctx, auditID)
}
