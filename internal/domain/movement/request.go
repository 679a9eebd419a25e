// Package movement implements the movement engine: it validates a requested
// stock movement, locks the affected stock rows and applies it atomically,
// recording every attempt in the audit trail.
package movement

import (
	"encoding/json"

	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/core/types"
	"hydrostock/internal/domain/audit"
)

// Request is a submitted movement. Products must hold exactly one reference.
type Request struct {
	Type             entity.MovementType `json:"type"`
	Products         []entity.ProductRef `json:"products"`
	Quantity         types.Quantity      `json:"quantity"`
	SourceLocationID *id.ID              `json:"sourceLocationId,omitempty"`
	DestLocationID   *id.ID              `json:"destLocationId,omitempty"`
	Reason           string              `json:"reason,omitempty"`
	RequestedBy      string              `json:"requestedBy"`
}

// attempt snapshots the request for the audit trail. Free text is sanitized
// so the record can always be stored, even for a rejected request.
func (r Request) attempt() audit.Attempt {
	r.Reason = entity.SanitizeMovementText(r.Reason)
	r.RequestedBy = entity.SanitizeMovementText(r.RequestedBy)

	a := audit.Attempt{
		RequestedBy:      r.RequestedBy,
		MovementType:     string(r.Type),
		SourceLocationID: r.SourceLocationID,
		DestLocationID:   r.DestLocationID,
	}
	if len(r.Products) == 1 {
		kind, pid := r.Products[0].Kind, r.Products[0].ID
		a.ProductKind = &kind
		a.ProductID = &pid
	}
	q := r.Quantity
	a.Quantity = &q
	if payload, err := json.Marshal(r); err == nil {
		a.Payload = payload
	}
	return a
}

// leg is one stock row change.
type leg struct {
	key         entity.StockKey
	delta       types.Quantity
	allowCreate bool
}
