package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"hydrostock/internal/core/apperror"
)

// PostgreSQL error codes mapped to rejections.
const (
	pgLockNotAvailable  = "55P03"
	pgQueryCanceled     = "57014"
	pgDeadlockDetected  = "40P01"
	pgNumericOutOfRange = "22003"
)

// MapError converts lock and statement timeouts into CONCURRENCY_TIMEOUT and
// numeric overflow into INVALID_QUANTITY. Other errors are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgQueryCanceled, pgDeadlockDetected:
			return apperror.NewConcurrencyTimeout(err)
		case pgNumericOutOfRange:
			return apperror.NewInvalidQuantity("quantity is out of the stored range").WithCause(err)
		}
	}
	return err
}
