package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"hydrostock/internal/core/apperror"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"lock timeout", &pgconn.PgError{Code: "55P03"}, apperror.CodeConcurrencyTimeout},
		{"statement timeout", fmt.Errorf("select: %w", &pgconn.PgError{Code: "57014"}), apperror.CodeConcurrencyTimeout},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, apperror.CodeConcurrencyTimeout},
		{"numeric overflow", &pgconn.PgError{Code: "22003"}, apperror.CodeInvalidQuantity},
		{"unique violation", &pgconn.PgError{Code: "23505"}, ""},
		{"plain", errors.New("conn closed"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			assert.ErrorIs(t, got, tt.err)
			if tt.code == "" {
				assert.False(t, apperror.IsAppError(got))
				return
			}
			assert.True(t, apperror.HasCode(got, tt.code))
			assert.True(t, apperror.IsRejection(got))
		})
	}
	assert.NoError(t, MapError(nil))
}
