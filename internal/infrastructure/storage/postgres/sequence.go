package postgres

import (
	"context"
	"fmt"
)

// SequenceStore keeps numerator counters in sys_sequences. It always runs on
// the pool, never inside the caller's transaction, so a counter row is locked
// only for the duration of one statement.
type SequenceStore struct {
	pool *Pool
}

// NewSequenceStore creates a sequence store.
func NewSequenceStore(pool *Pool) *SequenceStore {
	return &SequenceStore{pool: pool}
}

// Advance adds by to the counter, creating it when absent, and returns the new value.
func (s *SequenceStore) Advance(ctx context.Context, key string, by int64) (int64, error) {
	var val int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + EXCLUDED.current_val
		RETURNING current_val
	`, key, by).Scan(&val)
	if err != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", key, MapError(err))
	}
	return val, nil
}

// Set overwrites the counter.
func (s *SequenceStore) Set(ctx context.Context, key string, value int64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = EXCLUDED.current_val
	`, key, value)
	if err != nil {
		return fmt.Errorf("set sequence %s: %w", key, MapError(err))
	}
	return nil
}
