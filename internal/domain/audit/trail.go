package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hydrostock/internal/core/apperror"
	appctx "hydrostock/internal/core/context"
	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/core/types"
)

// Attempt describes what a caller tried to do. Fields are kept as submitted.
type Attempt struct {
	RequestedBy      string
	MovementType     string
	ProductKind      *entity.ProductKind
	ProductID        *id.ID
	SourceLocationID *id.ID
	DestLocationID   *id.ID
	Quantity         *types.Quantity
	Payload          json.RawMessage
}

// Trail writes audit records. The movement engine is its only writer.
type Trail struct {
	repo Repository
	now  func() time.Time
}

// NewTrail creates a new audit trail writer.
func NewTrail(repo Repository) *Trail {
	return &Trail{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Open appends a PENDING record for an attempt that is about to be processed.
func (t *Trail) Open(ctx context.Context, attempt Attempt) (id.ID, error) {
	rec := t.newRecord(ctx, attempt, entity.AuditPending, "", "movement submitted")
	if err := t.repo.Insert(ctx, rec); err != nil {
		return id.ID{}, fmt.Errorf("insert pending audit: %w", err)
	}
	return rec.ID, nil
}

// Record appends a record that is terminal from the start.
func (t *Trail) Record(ctx context.Context, attempt Attempt, outcome entity.AuditOutcome, code, message string) (id.ID, error) {
	if !outcome.IsTerminal() {
		return id.ID{}, apperror.NewValidation(fmt.Sprintf("audit outcome %q is not terminal", outcome))
	}
	rec := t.newRecord(ctx, attempt, outcome, code, message)
	now := rec.CreatedAt
	rec.FinalizedAt = &now
	if err := t.repo.Insert(ctx, rec); err != nil {
		return id.ID{}, fmt.Errorf("insert audit: %w", err)
	}
	return rec.ID, nil
}

// Link attaches the applied movement to a PENDING record.
func (t *Trail) Link(ctx context.Context, auditID, movementID id.ID) error {
	ok, err := t.repo.SetMovement(ctx, auditID, movementID)
	if err != nil {
		return fmt.Errorf("link audit %s: %w", auditID, err)
	}
	if !ok {
		return fmt.Errorf("link audit %s: record is not pending", auditID)
	}
	return nil
}

// Finalize performs the single PENDING -> SUCCESS|FAILED transition.
func (t *Trail) Finalize(ctx context.Context, auditID id.ID, outcome entity.AuditOutcome, code, message string) error {
	if !outcome.IsTerminal() {
		return apperror.NewValidation(fmt.Sprintf("audit outcome %q is not terminal", outcome))
	}
	ok, err := t.repo.Finalize(ctx, auditID, outcome, code, message, t.now())
	if err != nil {
		return fmt.Errorf("finalize audit %s: %w", auditID, err)
	}
	if !ok {
		return fmt.Errorf("finalize audit %s: record is not pending", auditID)
	}
	return nil
}

func (t *Trail) newRecord(ctx context.Context, a Attempt, outcome entity.AuditOutcome, code, message string) *entity.AuditRecord {
	requestedBy := a.RequestedBy
	if requestedBy == "" {
		requestedBy = appctx.GetUserID(ctx)
	}
	return &entity.AuditRecord{
		ID:               id.New(),
		Outcome:          outcome,
		Code:             code,
		Message:          message,
		RequestedBy:      requestedBy,
		MovementType:     a.MovementType,
		ProductKind:      a.ProductKind,
		ProductID:        a.ProductID,
		SourceLocationID: a.SourceLocationID,
		DestLocationID:   a.DestLocationID,
		Quantity:         a.Quantity,
		Payload:          a.Payload,
		CreatedAt:        t.now(),
	}
}
