package entity

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/id"
	"hydrostock/internal/core/types"
)

// MovementType is the kind of change a movement applies.
type MovementType string

const (
	// MovementReceipt adds stock at the destination.
	MovementReceipt MovementType = "RECEIPT"
	// MovementIssue removes stock at the source.
	MovementIssue MovementType = "ISSUE"
	// MovementTransfer moves stock from source to destination.
	MovementTransfer MovementType = "TRANSFER"
	// MovementAdjustment adds stock at the single given location.
	MovementAdjustment MovementType = "ADJUSTMENT"
)

// ParseMovementType accepts a type name in any letter case.
func ParseMovementType(s string) (MovementType, error) {
	t := MovementType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case MovementReceipt, MovementIssue, MovementTransfer, MovementAdjustment:
		return t, nil
	}
	return "", apperror.NewValidation(fmt.Sprintf("unknown movement type %q", s)).
		WithDetail("field", "type")
}

// Movement is an applied change to inventory. Immutable once recorded.
type Movement struct {
	ID   id.ID        `db:"id" json:"id"`
	Type MovementType `db:"type" json:"type"`

	// Number is the display number, e.g. RCV-2026-00042. Empty when numbering is off.
	Number string `db:"number" json:"number,omitempty"`

	ProductRef

	SourceLocationID *id.ID         `db:"source_location_id" json:"sourceLocationId,omitempty"`
	DestLocationID   *id.ID         `db:"dest_location_id" json:"destLocationId,omitempty"`
	Quantity         types.Quantity `db:"quantity" json:"quantity"`
	Reason           string         `db:"reason" json:"reason"`
	RequestedBy      string         `db:"requested_by" json:"requestedBy"`

	// CrossBranch is informational: set for transfers between branches.
	CrossBranch bool      `db:"cross_branch" json:"crossBranch"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// ValidateMovementQuantity checks that q is strictly positive and fits the ledger scale.
func ValidateMovementQuantity(q types.Quantity) error {
	if !q.IsPositive() {
		return apperror.NewInvalidQuantity("quantity must be strictly positive").
			WithDetail("quantity", q.String())
	}
	if !types.FitsScale(q) {
		return apperror.NewInvalidQuantity(
			fmt.Sprintf("quantity supports at most %d fractional digits", types.QuantityScale)).
			WithDetail("quantity", q.String())
	}
	if !types.FitsPrecision(q) {
		return apperror.NewInvalidQuantity(
			fmt.Sprintf("quantity must be less than %s", types.QuantityLimit())).
			WithDetail("quantity", q.String())
	}
	return nil
}

// ValidateMovementText rejects text that cannot be stored in a TEXT or JSONB
// column: invalid UTF-8 or a NUL character.
func ValidateMovementText(field, value string) error {
	if !utf8.ValidString(value) {
		return apperror.NewValidation(field + " is not valid UTF-8").WithDetail("field", field)
	}
	if strings.IndexByte(value, 0) >= 0 {
		return apperror.NewValidation(field + " must not contain NUL characters").WithDetail("field", field)
	}
	return nil
}

// SanitizeMovementText returns value with invalid bytes replaced and NUL removed.
func SanitizeMovementText(value string) string {
	return strings.ReplaceAll(strings.ToValidUTF8(value, "\uFFFD"), "\x00", "")
}
