// Package tx provides transaction management abstractions.
// Domain services depend on these interfaces; the implementations live in
// infrastructure/storage/postgres and infrastructure/storage/memory.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back, otherwise committed.
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// RunInSavepoint executes fn inside a savepoint of the transaction already
	// carried by ctx. If fn returns an error, every write made by fn is undone
	// while the enclosing transaction stays usable. Calling it outside a
	// transaction is an error.
	RunInSavepoint(ctx context.Context, fn func(ctx context.Context) error) error
}
