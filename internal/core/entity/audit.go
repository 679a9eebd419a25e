package entity

import (
	"encoding/json"
	"time"

	"hydrostock/internal/core/id"
	"hydrostock/internal/core/types"
)

// AuditOutcome is the externally visible state of a movement attempt.
type AuditOutcome string

const (
	AuditPending AuditOutcome = "PENDING"
	AuditSuccess AuditOutcome = "SUCCESS"
	AuditFailed  AuditOutcome = "FAILED"
)

// IsTerminal reports whether the outcome can no longer change.
func (o AuditOutcome) IsTerminal() bool {
	return o == AuditSuccess || o == AuditFailed
}

// Valid reports whether o is a known outcome.
func (o AuditOutcome) Valid() bool {
	return o == AuditPending || o.IsTerminal()
}

// AuditRecord is one entry per movement attempt.
// MovementID is set only when the movement took effect.
// The attempted attributes are kept as submitted, so they may reference
// products or locations that do not exist.
type AuditRecord struct {
	ID         id.ID        `db:"id" json:"id"`
	MovementID *id.ID       `db:"movement_id" json:"movementId,omitempty"`
	Outcome    AuditOutcome `db:"outcome" json:"outcome"`
	Code       string       `db:"code" json:"code,omitempty"`
	Message    string       `db:"message" json:"message"`

	RequestedBy      string          `db:"requested_by" json:"requestedBy"`
	MovementType     string          `db:"movement_type" json:"movementType"`
	ProductKind      *ProductKind    `db:"product_kind" json:"productKind,omitempty"`
	ProductID        *id.ID          `db:"product_id" json:"productId,omitempty"`
	SourceLocationID *id.ID          `db:"source_location_id" json:"sourceLocationId,omitempty"`
	DestLocationID   *id.ID          `db:"dest_location_id" json:"destLocationId,omitempty"`
	Quantity         *types.Quantity `db:"quantity" json:"quantity,omitempty"`

	// Payload is a JSON snapshot of the submitted request.
	Payload json.RawMessage `db:"-" json:"payload,omitempty"`

	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	FinalizedAt *time.Time `db:"finalized_at" json:"finalizedAt,omitempty"`
}
