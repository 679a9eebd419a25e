package memory

import (
	"context"
	"sort"
	"time"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/domain/audit"
)

// AuditRepo implements audit.Repository.
type AuditRepo struct {
	s *Store
}

// NewAuditRepo creates an audit repository over the store.
func NewAuditRepo(s *Store) *AuditRepo {
	return &AuditRepo{s: s}
}

// Insert implements audit.Repository.
func (r *AuditRepo) Insert(ctx context.Context, rec *entity.AuditRecord) error {
	return r.s.write(ctx, func(t *memTx) error {
		t.writes.audits[rec.ID] = *rec
		return nil
	})
}

// SetMovement implements audit.Repository.
func (r *AuditRepo) SetMovement(ctx context.Context, auditID, movementID id.ID) (bool, error) {
	var ok bool
	err := r.s.write(ctx, func(t *memTx) error {
		rec, found := r.s.getAudit(t, auditID)
		if !found || rec.Outcome != entity.AuditPending {
			return nil
		}
		mid := movementID
		rec.MovementID = &mid
		t.writes.audits[auditID] = rec
		ok = true
		return nil
	})
	return ok, err
}

// Finalize implements audit.Repository.
func (r *AuditRepo) Finalize(ctx context.Context, auditID id.ID, outcome entity.AuditOutcome, code, message string, at time.Time) (bool, error) {
	var ok bool
	err := r.s.write(ctx, func(t *memTx) error {
		rec, found := r.s.getAudit(t, auditID)
		if !found || rec.Outcome != entity.AuditPending {
			return nil
		}
		rec.Outcome = outcome
		rec.Code = code
		rec.Message = message
		rec.FinalizedAt = &at
		if outcome == entity.AuditFailed {
			rec.MovementID = nil
		}
		t.writes.audits[auditID] = rec
		ok = true
		return nil
	})
	return ok, err
}

// GetByID implements audit.Repository.
func (r *AuditRepo) GetByID(ctx context.Context, auditID id.ID) (*entity.AuditRecord, error) {
	rec, ok := r.s.getAudit(txFrom(ctx), auditID)
	if !ok {
		return nil, apperror.NewNotFound("audit record", auditID)
	}
	return &rec, nil
}

// List implements audit.Repository.
func (r *AuditRepo) List(ctx context.Context, filter audit.Filter) ([]entity.AuditRecord, error) {
	out := make([]entity.AuditRecord, 0)
	for _, rec := range r.s.view(ctx).audits {
		if filter.Outcome != nil && rec.Outcome != *filter.Outcome {
			continue
		}
		if filter.From != nil && rec.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !rec.CreatedAt.Before(*filter.To) {
			continue
		}
		if filter.Product != nil {
			if rec.ProductKind == nil || rec.ProductID == nil ||
				*rec.ProductKind != filter.Product.Kind || *rec.ProductID != filter.Product.ID {
				continue
			}
		}
		if filter.LocationID != nil && !touches(*filter.LocationID, rec.SourceLocationID, rec.DestLocationID) {
			continue
		}
		if filter.MovementID != nil && (rec.MovementID == nil || *rec.MovementID != *filter.MovementID) {
			continue
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		return id.Compare(out[i].ID, out[j].ID) > 0
	})
	return page(out, filter.Limit, filter.Offset), nil
}

// All returns every committed record oldest first.
func (r *AuditRepo) All() []entity.AuditRecord {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]entity.AuditRecord, 0, len(r.s.committed.audits))
	for _, rec := range r.s.committed.audits {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return id.Compare(out[i].ID, out[j].ID) < 0
	})
	return out
}

var _ audit.Repository = (*AuditRepo)(nil)
