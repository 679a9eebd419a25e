package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"hydrostock/internal/core/id"
	"hydrostock/internal/domain/outbox"
	"hydrostock/pkg/logger"
)

// Outbox implements outbox.Publisher and a relay over the store.
type Outbox struct {
	s         *Store
	handler   outbox.Handler
	batchSize int
}

// NewOutbox creates an outbox. handler may be nil when only publishing.
func NewOutbox(s *Store, batchSize int, handler outbox.Handler) *Outbox {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Outbox{s: s, handler: handler, batchSize: batchSize}
}

// Publish implements outbox.Publisher. It must run inside a transaction.
func (o *Outbox) Publish(ctx context.Context, event outbox.Event) error {
	t := txFrom(ctx)
	if t == nil {
		return fmt.Errorf("outbox publish requires transaction context")
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	msg := outbox.Message{
		ID:            id.New(),
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       payload,
		Status:        outbox.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	t.writes.outbox[msg.ID] = msg
	return nil
}

// PublishBatch implements outbox.BatchPublisher.
func (o *Outbox) PublishBatch(ctx context.Context, events []outbox.Event) error {
	for _, e := range events {
		if err := o.Publish(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Messages returns committed messages oldest first.
func (o *Outbox) Messages() []outbox.Message {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	out := make([]outbox.Message, 0, len(o.s.committed.outbox))
	for _, m := range o.s.committed.outbox {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return id.Compare(out[i].ID, out[j].ID) < 0
	})
	return out
}

// ProcessBatch delivers due pending messages and returns how many were published.
func (o *Outbox) ProcessBatch(ctx context.Context) (int, error) {
	if o.handler == nil {
		return 0, fmt.Errorf("outbox relay has no handler")
	}

	now := time.Now().UTC()
	var due []outbox.Message
	for _, m := range o.Messages() {
		if m.Status != outbox.StatusPending {
			continue
		}
		if m.NextRetryAt != nil && m.NextRetryAt.After(now) {
			continue
		}
		due = append(due, m)
		if len(due) == o.batchSize {
			break
		}
	}

	processed := 0
	for i := range due {
		msg := due[i]
		err := o.handler.Handle(ctx, &msg)

		o.s.mu.Lock()
		if err != nil {
			errStr := err.Error()
			next := outbox.NextRetry(now, msg.RetryCount)
			msg.RetryCount++
			msg.LastError = &errStr
			msg.NextRetryAt = &next
			if msg.RetryCount > outbox.MaxRetries {
				msg.Status = outbox.StatusFailed
			}
		} else {
			published := time.Now().UTC()
			msg.Status = outbox.StatusPublished
			msg.PublishedAt = &published
			processed++
		}
		o.s.committed.outbox[msg.ID] = msg
		o.s.mu.Unlock()

		if err != nil {
			logger.Warn(ctx, "outbox delivery failed", "message_id", msg.ID, "retry_count", msg.RetryCount, "error", err)
		}
	}
	return processed, nil
}

var _ outbox.Publisher = (*Outbox)(nil)
