package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRejection(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid quantity", NewInvalidQuantity("quantity must be positive"), true},
		{"product", NewProductReference("exactly one product reference is required"), true},
		{"location", NewInvalidLocation("source", "source location is required"), true},
		{"insufficient", NewInsufficientStock("pipe:1", "l1", decimal.NewFromInt(5), decimal.Zero), true},
		{"timeout", NewConcurrencyTimeout(errors.New("lock timeout")), true},
		{"wrapped rejection", fmt.Errorf("apply: %w", NewInvalidQuantity("x")), true},
		{"internal", NewInternal(errors.New("boom")), false},
		{"not found", NewNotFound("movement", "1"), false},
		{"plain", errors.New("connection reset"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRejection(tt.err))
		})
	}
}

func TestInsufficientStockDetails(t *testing.T) {
	err := NewInsufficientStock("chemical:abc", "loc-1", decimal.RequireFromString("500"), decimal.RequireFromString("70"))

	assert.Equal(t, CodeInsufficientStock, err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Equal(t, "500", err.Details["requested"])
	assert.Equal(t, "70", err.Details["available"])
	assert.Contains(t, err.Message, "requested 500")
}

func TestConcurrencyTimeoutUnwraps(t *testing.T) {
	cause := errors.New("canceling statement due to lock timeout")
	err := fmt.Errorf("lock row: %w", NewConcurrencyTimeout(cause))

	require.True(t, HasCode(err, CodeConcurrencyTimeout))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusConflict, GetHTTPStatus(err))
}
