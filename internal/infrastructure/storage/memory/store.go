// Package memory provides an in-memory transactional store behind the same
// repository interfaces as the PostgreSQL driver. It backs tests and the
// development STORAGE_DRIVER=memory mode.
//
// Each transaction buffers its writes in an overlay that is merged into the
// committed state on commit. Stock rows are guarded by key-level locks held
// until the transaction ends, so concurrent movements on the same row serialize
// exactly as with SELECT ... FOR UPDATE.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/domain/alerting"
	"hydrostock/internal/domain/outbox"
)

// DefaultLockTimeout mirrors the default DB_LOCK_TIMEOUT.
const DefaultLockTimeout = 5 * time.Second

// ErrNoTransaction is returned by RunInSavepoint outside a transaction.
var ErrNoTransaction = errors.New("savepoint requires an active transaction")

type memoryState struct {
	stock     map[entity.StockKey]entity.StockEntry
	movements map[id.ID]entity.Movement
	audits    map[id.ID]entity.AuditRecord
	outbox    map[id.ID]outbox.Message
}

func newMemoryState() *memoryState {
	return &memoryState{
		stock:     map[entity.StockKey]entity.StockEntry{},
		movements: map[id.ID]entity.Movement{},
		audits:    map[id.ID]entity.AuditRecord{},
		outbox:    map[id.ID]outbox.Message{},
	}
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{
		stock:     make(map[entity.StockKey]entity.StockEntry, len(s.stock)),
		movements: make(map[id.ID]entity.Movement, len(s.movements)),
		audits:    make(map[id.ID]entity.AuditRecord, len(s.audits)),
		outbox:    make(map[id.ID]outbox.Message, len(s.outbox)),
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.movements {
		c.movements[k] = v
	}
	for k, v := range s.audits {
		c.audits[k] = v
	}
	for k, v := range s.outbox {
		c.outbox[k] = v
	}
	return c
}

// Store is the in-memory database.
type Store struct {
	mu        sync.Mutex
	committed *memoryState
	locks     map[entity.StockKey]chan struct{}

	catalogMu sync.RWMutex
	products  map[entity.ProductRef]struct{}
	locations map[id.ID]entity.Location
	rules     []alerting.Rule

	lockTimeout time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout bounds how long a transaction waits for a row lock.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		committed:   newMemoryState(),
		locks:       map[entity.StockKey]chan struct{}{},
		products:    map[entity.ProductRef]struct{}{},
		locations:   map[id.ID]entity.Location{},
		lockTimeout: DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping reports the store as healthy unless ctx is done.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

type txKey struct{}

type memTx struct {
	writes *memoryState
	held   map[entity.StockKey]chan struct{}
}

func txFrom(ctx context.Context) *memTx {
	if t, ok := ctx.Value(txKey{}).(*memTx); ok {
		return t
	}
	return nil
}

// RunInTransaction implements tx.Manager. Nested calls reuse the outer transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}

	t := &memTx{writes: newMemoryState(), held: map[entity.StockKey]chan struct{}{}}
	defer func() {
		if p := recover(); p != nil {
			s.release(t)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		s.release(t)
		return err
	}

	s.commit(t)
	return nil
}

// RunInSavepoint implements tx.Manager. On error the overlay is restored to
// its state before fn; locks stay held until the transaction ends.
func (s *Store) RunInSavepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	t := txFrom(ctx)
	if t == nil {
		return ErrNoTransaction
	}

	snapshot := t.writes.clone()
	if err := fn(ctx); err != nil {
		t.writes = snapshot
		return err
	}
	return nil
}

// write runs fn in the transaction from ctx, or in a one-off transaction.
func (s *Store) write(ctx context.Context, fn func(t *memTx) error) error {
	if t := txFrom(ctx); t != nil {
		return fn(t)
	}
	return s.RunInTransaction(ctx, func(ctx context.Context) error {
		return fn(txFrom(ctx))
	})
}

func (s *Store) commit(t *memTx) {
	s.mu.Lock()
	for k, v := range t.writes.stock {
		s.committed.stock[k] = v
	}
	for k, v := range t.writes.movements {
		s.committed.movements[k] = v
	}
	for k, v := range t.writes.audits {
		s.committed.audits[k] = v
	}
	for k, v := range t.writes.outbox {
		s.committed.outbox[k] = v
	}
	s.mu.Unlock()
	s.release(t)
}

func (s *Store) release(t *memTx) {
	for key, sem := range t.held {
		<-sem
		delete(t.held, key)
	}
}

// acquire takes the row lock for key, waiting up to the lock timeout.
func (s *Store) acquire(ctx context.Context, t *memTx, key entity.StockKey) error {
	if _, ok := t.held[key]; ok {
		return nil
	}

	s.mu.Lock()
	sem, ok := s.locks[key]
	if !ok {
		sem = make(chan struct{}, 1)
		s.locks[key] = sem
	}
	s.mu.Unlock()

	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()

	select {
	case sem <- struct{}{}:
		t.held[key] = sem
		return nil
	case <-timer.C:
		return apperror.NewConcurrencyTimeout(fmt.Errorf("lock %s: wait exceeded %s", key, s.lockTimeout))
	case <-ctx.Done():
		return apperror.NewConcurrencyTimeout(fmt.Errorf("lock %s: %w", key, ctx.Err()))
	}
}

// view merges the committed state with the overlay of the transaction in ctx.
// Callers must not hold s.mu.
func (s *Store) view(ctx context.Context) *memoryState {
	s.mu.Lock()
	merged := s.committed.clone()
	s.mu.Unlock()

	if t := txFrom(ctx); t != nil {
		for k, v := range t.writes.stock {
			merged.stock[k] = v
		}
		for k, v := range t.writes.movements {
			merged.movements[k] = v
		}
		for k, v := range t.writes.audits {
			merged.audits[k] = v
		}
		for k, v := range t.writes.outbox {
			merged.outbox[k] = v
		}
	}
	return merged
}

func (s *Store) getStock(t *memTx, key entity.StockKey) (entity.StockEntry, bool) {
	if t != nil {
		if e, ok := t.writes.stock[key]; ok {
			return e, true
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.committed.stock[key]
	return e, ok
}

func (s *Store) getAudit(t *memTx, auditID id.ID) (entity.AuditRecord, bool) {
	if t != nil {
		if r, ok := t.writes.audits[auditID]; ok {
			return r, true
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.committed.audits[auditID]
	return r, ok
}
