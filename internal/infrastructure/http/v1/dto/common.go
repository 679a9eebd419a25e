// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
)

// IDResponse is returned on create.
type IDResponse struct {
	ID string `json:"id"`
}

// ListResponse wraps list results with paging parameters.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// PageQuery holds limit/offset query parameters.
type PageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=1000"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// ProductQuery identifies a product in query parameters.
type ProductQuery struct {
	ProductKind string `form:"productKind"`
	ProductID   string `form:"productId"`
}

// Ref returns the referenced product, nil when neither parameter is set.
func (q ProductQuery) Ref() (*entity.ProductRef, error) {
	if q.ProductKind == "" && q.ProductID == "" {
		return nil, nil
	}
	if q.ProductKind == "" || q.ProductID == "" {
		return nil, apperror.NewValidation("productKind and productId must be given together")
	}
	kind, err := entity.ParseProductKind(q.ProductKind)
	if err != nil {
		return nil, err
	}
	pid, err := id.Parse(q.ProductID)
	if err != nil {
		return nil, apperror.NewValidation("invalid productId format").WithDetail("field", "productId")
	}
	ref := entity.NewProductRef(kind, pid)
	return &ref, nil
}

// ParseOptionalID parses an optional id parameter.
func ParseOptionalID(field, value string) (*id.ID, error) {
	v, err := id.ParseOptional(value)
	if err != nil {
		return nil, apperror.NewValidation("invalid " + field + " format").WithDetail("field", field)
	}
	return v, nil
}

// ParseOptionalTime parses an optional RFC 3339 timestamp.
func ParseOptionalTime(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, apperror.NewValidation("invalid " + field + ", expected RFC 3339").WithDetail("field", field)
	}
	return &t, nil
}
