package dto

import (
	"strings"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
	"hydrostock/internal/domain/audit"
)

// AuditListQuery holds GET /audit parameters.
type AuditListQuery struct {
	PageQuery
	ProductQuery
	Outcome    string `form:"outcome"`
	LocationID string `form:"locationId"`
	MovementID string `form:"movementId"`
	From       string `form:"from"`
	To         string `form:"to"`
}

// Filter converts the query to an audit filter.
func (q AuditListQuery) Filter() (audit.Filter, error) {
	f := audit.Filter{Limit: q.Limit, Offset: q.Offset}

	if q.Outcome != "" {
		o := entity.AuditOutcome(strings.ToUpper(q.Outcome))
		if !o.Valid() {
			return f, apperror.NewValidation("unknown outcome").WithDetail("outcome", q.Outcome)
		}
		f.Outcome = &o
	}

	var err error
	if f.Product, err = q.Ref(); err != nil {
		return f, err
	}
	if f.LocationID, err = ParseOptionalID("locationId", q.LocationID); err != nil {
		return f, err
	}
	if f.MovementID, err = ParseOptionalID("movementId", q.MovementID); err != nil {
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
