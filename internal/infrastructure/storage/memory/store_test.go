package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/core/types"
	"hydrostock/internal/domain/outbox"
)

func testKey() entity.StockKey {
	return entity.NewStockKey(entity.NewProductRef(entity.ProductKindChemical, id.New()), id.New())
}

func TestCommitMakesWritesVisible(t *testing.T) {
	s := NewStore()
	repo := NewStockRepo(s)
	key := testKey()
	ctx := context.Background()

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		e, err := repo.LockForUpdate(ctx, key, true)
		require.NoError(t, err)
		e.Quantity = types.MustQuantity("12.5")
		require.NoError(t, repo.Save(ctx, e))

		outside, err := repo.Get(context.Background(), key)
		require.NoError(t, err)
		assert.Nil(t, outside, "uncommitted row must not be visible outside the transaction")
		return nil
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Quantity.Equal(types.MustQuantity("12.5")))
}

func TestRollbackDiscardsWrites(t *testing.T) {
	s := NewStore()
	repo := NewStockRepo(s)
	key := testKey()
	boom := errors.New("boom")

	err := s.RunInTransaction(context.Background(), func(ctx context.Context) error {
		_, err := repo.LockForUpdate(ctx, key, true)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSavepointRollbackKeepsEarlierWrites(t *testing.T) {
	s := NewStore()
	stockRepo := NewStockRepo(s)
	auditRepo := NewAuditRepo(s)
	key := testKey()
	auditID := id.New()

	err := s.RunInTransaction(context.Background(), func(ctx context.Context) error {
		require.NoError(t, auditRepo.Insert(ctx, &entity.AuditRecord{ID: auditID, Outcome: entity.AuditPending}))

		spErr := s.RunInSavepoint(ctx, func(ctx context.Context) error {
			_, err := stockRepo.LockForUpdate(ctx, key, true)
			require.NoError(t, err)
			return apperror.NewInvalidQuantity("nope")
		})
		assert.True(t, apperror.HasCode(spErr, apperror.CodeInvalidQuantity))

		ok, err := auditRepo.Finalize(ctx, auditID, entity.AuditFailed, apperror.CodeInvalidQuantity, "nope", time.Now())
		require.NoError(t, err)
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, err)

	row, err := stockRepo.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Nil(t, row, "zero row created inside the savepoint must be rolled back")

	rec, err := auditRepo.GetByID(context.Background(), auditID)
	require.NoError(t, err)
	assert.Equal(t, entity.AuditFailed, rec.Outcome)
}

func TestSavepointOutsideTransaction(t *testing.T) {
	s := NewStore()
	err := s.RunInSavepoint(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrNoTransaction)
}

func TestLockWaitTimesOut(t *testing.T) {
	s := NewStore(WithLockTimeout(50 * time.Millisecond))
	repo := NewStockRepo(s)
	key := testKey()

	locked := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = s.RunInTransaction(context.Background(), func(ctx context.Context) error {
			_, err := repo.LockForUpdate(ctx, key, true)
			assert.NoError(t, err)
			close(locked)
			<-done
			return nil
		})
	}()
	<-locked

	err := s.RunInTransaction(context.Background(), func(ctx context.Context) error {
		_, err := repo.LockForUpdate(ctx, key, true)
		return err
	})
	close(done)

	assert.True(t, apperror.HasCode(err, apperror.CodeConcurrencyTimeout), "got %v", err)
}

func TestLockSerializesWriters(t *testing.T) {
	s := NewStore()
	repo := NewStockRepo(s)
	key := testKey()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.RunInTransaction(context.Background(), func(ctx context.Context) error {
				e, err := repo.LockForUpdate(ctx, key, true)
				if err != nil {
					return err
				}
				e.Quantity = e.Quantity.Add(types.MustQuantity("1"))
				return repo.Save(ctx, e)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.Get(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(types.MustQuantity("20")), "got %s", got.Quantity)
}

func TestOutboxRelayRetriesThenFails(t *testing.T) {
	s := NewStore()
	handler := &failingHandler{err: errors.New("smtp down")}
	ob := NewOutbox(s, 10, handler)

	require.NoError(t, s.RunInTransaction(context.Background(), func(ctx context.Context) error {
		return ob.Publish(ctx, outbox.Event{AggregateType: "movement", AggregateID: id.New(), EventType: outbox.EventMovementApplied, Payload: map[string]string{"k": "v"}})
	}))

	n, err := ob.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	msgs := ob.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, 1, msgs[0].RetryCount)
	assert.Equal(t, outbox.StatusPending, msgs[0].Status)
	require.NotNil(t, msgs[0].NextRetryAt)

	n, err = ob.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, handler.calls, "message is not due before its retry time")

	handler.err = nil
	s.mu.Lock()
	m := s.committed.outbox[msgs[0].ID]
	m.NextRetryAt = nil
	s.committed.outbox[m.ID] = m
	s.mu.Unlock()

	n, err = ob.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, outbox.StatusPublished, ob.Messages()[0].Status)
}

func TestOutboxPublishRequiresTransaction(t *testing.T) {
	ob := NewOutbox(NewStore(), 10, nil)
	err := ob.Publish(context.Background(), outbox.Event{EventType: "x"})
	assert.Error(t, err)
}

type failingHandler struct {
	err   error
	calls int
}

func (h *failingHandler) Handle(context.Context, *outbox.Message) error {
	h.calls++
	return h.err
}
