// Package outbox defines transactional outbox events.
// Events are written in the same transaction as the change they describe
// and delivered later by a relay.
package outbox

import (
	"context"
	"encoding/json"
	"time"

	"hydrostock/internal/core/id"
)

// Status represents the state of an outbox message.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusFailed    Status = "failed"
)

// MaxRetries is how many failed deliveries a message survives before it is marked failed.
const MaxRetries = 5

// Event types.
const (
	EventMovementApplied = "stock.movement.applied"
	EventStockBelowLimit = "stock.alert.triggered"
)

// Event is a domain event to be published via the outbox.
type Event struct {
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       any
}

// Message is a stored outbox event.
type Message struct {
	ID            id.ID           `db:"id"`
	AggregateType string          `db:"aggregate_type"`
	AggregateID   id.ID           `db:"aggregate_id"`
	EventType     string          `db:"event_type"`
	Payload       json.RawMessage `db:"payload"`
	Status        Status          `db:"status"`
	RetryCount    int             `db:"retry_count"`
	LastError     *string         `db:"last_error"`
	NextRetryAt   *time.Time      `db:"next_retry_at"`
	CreatedAt     time.Time       `db:"created_at"`
	PublishedAt   *time.Time      `db:"published_at"`
}

// Publisher writes events within the current transaction.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// BatchPublisher is implemented by publishers that can write several events
// in one round trip.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, events []Event) error
}

// Handler delivers a message. An error schedules a retry.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// NextRetry returns when a message that failed retryCount times is due again.
func NextRetry(now time.Time, retryCount int) time.Time {
	return now.Add(time.Duration(retryCount+1) * time.Minute)
}
