package dto

import (
	"time"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/core/types"
	"hydrostock/internal/domain/movement"
)

// SubmitMovementRequest is the body of POST /movements.
// Product is shorthand for a single-element Products list; giving both
// yields two references and is rejected by the engine as ambiguous.
type SubmitMovementRequest struct {
	Type             string              `json:"type"`
	Product          *entity.ProductRef  `json:"product,omitempty"`
	Products         []entity.ProductRef `json:"products,omitempty"`
	Quantity         types.Quantity      `json:"quantity"`
	SourceLocationID *id.ID              `json:"sourceLocationId,omitempty"`
	DestLocationID   *id.ID              `json:"destLocationId,omitempty"`
	Reason           string              `json:"reason,omitempty"`
}

// Validate rejects free text the ledger cannot store.
func (r SubmitMovementRequest) Validate() error {
	return entity.ValidateMovementText("reason", r.Reason)
}

// ToRequest builds the engine request. The actor comes from authentication,
// never from the body.
func (r SubmitMovementRequest) ToRequest(actor string) movement.Request {
	products := make([]entity.ProductRef, 0, len(r.Products)+1)
	if r.Product != nil {
		products = append(products, *r.Product)
	}
	products = append(products, r.Products...)

	return movement.Request{
		Type:             entity.MovementType(r.Type),
		Products:         products,
		Quantity:         r.Quantity,
		SourceLocationID: r.SourceLocationID,
		DestLocationID:   r.DestLocationID,
		Reason:           r.Reason,
		RequestedBy:      actor,
	}
}

// MovementResponse is an applied movement.
type MovementResponse struct {
	ID               string    `json:"id"`
	Number           string    `json:"number,omitempty"`
	Type             string    `json:"type"`
	ProductKind      string    `json:"productKind"`
	ProductID        string    `json:"productId"`
	SourceLocationID *id.ID    `json:"sourceLocationId,omitempty"`
	DestLocationID   *id.ID    `json:"destLocationId,omitempty"`
	Quantity         string    `json:"quantity"`
	Reason           string    `json:"reason,omitempty"`
	RequestedBy      string    `json:"requestedBy"`
	CrossBranch      bool      `json:"crossBranch"`
	CreatedAt        time.Time `json:"createdAt"`
}

// FromMovement converts an entity to its response.
func FromMovement(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:               m.ID.String(),
		Number:           m.Number,
		Type:             string(m.Type),
		ProductKind:      string(m.Kind),
		ProductID:        m.ProductRef.ID.String(),
		SourceLocationID: m.SourceLocationID,
		DestLocationID:   m.DestLocationID,
		Quantity:         m.Quantity.String(),
		Reason:           m.Reason,
		RequestedBy:      m.RequestedBy,
		CrossBranch:      m.CrossBranch,
		CreatedAt:        m.CreatedAt,
	}
}

// MovementListQuery holds GET /movements parameters.
type MovementListQuery struct {
	PageQuery
	ProductQuery
	Type       string `form:"type"`
	LocationID string `form:"locationId"`
	From       string `form:"from"`
	To         string `form:"to"`
}

// Filter converts the query to a repository filter.
func (q MovementListQuery) Filter() (movement.ListFilter, error) {
	f := movement.ListFilter{Limit: q.Limit, Offset: q.Offset}

	if q.Type != "" {
		t, err := entity.ParseMovementType(q.Type)
		if err != nil {
			return f, err
		}
		f.Type = &t
	}

	var err error
	if f.Product, err = q.Ref(); err != nil {
		return f, err
	}
	if f.LocationID, err = ParseOptionalID("locationId", q.LocationID); err != nil {
		return f, err
	}
	if f.From, err = ParseOptionalTime("from", q.From); err != nil {
		return f, err
	}
	if f.To, err = ParseOptionalTime("to", q.To); err != nil {
		return f, err
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return f, apperror.NewValidation("from must be before to")
	}
	return f.Normalize(), nil
}
