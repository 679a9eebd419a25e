// Package audit provides the append-only audit trail of movement attempts.
package audit

import (
	"context"
	"time"

	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
)

// Repository persists audit records. There is no delete, and the only update
// paths are linking a movement to a PENDING record and finalizing it.
type Repository interface {
	Insert(ctx context.Context, rec *entity.AuditRecord) error

	// SetMovement links a PENDING record to its movement.
	// Returns false when the record is missing or no longer pending.
	SetMovement(ctx context.Context, auditID, movementID id.ID) (bool, error)

	// Finalize moves a PENDING record to a terminal outcome.
	// Returns false when the record is missing or no longer pending.
	Finalize(ctx context.Context, auditID id.ID, outcome entity.AuditOutcome, code, message string, at time.Time) (bool, error)

	GetByID(ctx context.Context, auditID id.ID) (*entity.AuditRecord, error)
	List(ctx context.Context, filter Filter) ([]entity.AuditRecord, error)
}

// Filter narrows audit queries. Nil fields do not filter.
type Filter struct {
	Outcome    *entity.AuditOutcome
	From       *time.Time
	To         *time.Time
	Product    *entity.ProductRef
	LocationID *id.ID // matches either source or destination
	MovementID *id.ID
	Limit      int
	Offset     int
}

// DefaultLimit caps list queries without an explicit limit.
const DefaultLimit = 100

// Normalize applies list defaults.
func (f Filter) Normalize() Filter {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = DefaultLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
