// Package alerting polls stock rows and raises alerts when configured
// threshold rules fire. It only reads stock.
package alerting

import (
	"context"

	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/core/types"
)

// DefaultCondition is used when a rule has no condition of its own.
const DefaultCondition = "quantity < threshold"

// Rule is a threshold rule. Nil scope fields match everything; a ProductID
// narrows to one product and requires ProductKind.
type Rule struct {
	ID          id.ID               `db:"id" json:"id"`
	Name        string              `db:"name" json:"name"`
	ProductKind *entity.ProductKind `db:"product_kind" json:"productKind,omitempty"`
	ProductID   *id.ID              `db:"product_id" json:"productId,omitempty"`
	LocationID  *id.ID              `db:"location_id" json:"locationId,omitempty"`
	Threshold   types.Quantity      `db:"threshold" json:"threshold"`
	Condition   string              `db:"condition" json:"condition,omitempty"`
	Active      bool                `db:"active" json:"active"`
}

// Expression returns the CEL condition to evaluate.
func (r *Rule) Expression() string {
	if r.Condition == "" {
		return DefaultCondition
	}
	return r.Condition
}

// Applies reports whether the rule scope covers the stock row.
func (r *Rule) Applies(e *entity.StockEntry) bool {
	if r.ProductKind != nil && *r.ProductKind != e.Kind {
		return false
	}
	if r.ProductID != nil && *r.ProductID != e.ProductRef.ID {
		return false
	}
	if r.LocationID != nil && *r.LocationID != e.LocationID {
		return false
	}
	return true
}

// RuleRepository loads rules.
type RuleRepository interface {
	ListActive(ctx context.Context) ([]Rule, error)
}
