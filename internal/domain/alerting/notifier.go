package alerting

import (
	"context"

	"hydrostock/internal/core/tx"
	"hydrostock/internal/domain/outbox"
	"hydrostock/pkg/logger"
)

// LogNotifier writes alerts to the log.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(ctx context.Context, alerts []Alert) error {
	for _, a := range alerts {
		logger.Warn(ctx, "stock alert",
			"rule", a.RuleName,
			"product", a.Product.String(),
			"location_id", a.LocationID,
			"quantity", a.Quantity.String(),
			"threshold", a.Threshold.String(),
		)
	}
	return nil
}

// OutboxNotifier stores alerts as outbox events so delivery is retried
// by the relay.
type OutboxNotifier struct {
	txManager tx.Manager
	publisher outbox.Publisher
}

// NewOutboxNotifier creates a notifier publishing through the outbox.
func NewOutboxNotifier(txManager tx.Manager, publisher outbox.Publisher) *OutboxNotifier {
	return &OutboxNotifier{txManager: txManager, publisher: publisher}
}

// Notify implements Notifier. All alerts of one scan are written atomically.
func (n *OutboxNotifier) Notify(ctx context.Context, alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	events := make([]outbox.Event, 0, len(alerts))
	for _, a := range alerts {
		events = append(events, outbox.Event{
			AggregateType: "alert_rule",
			AggregateID:   a.RuleID,
			EventType:     outbox.EventStockBelowLimit,
			Payload:       a,
		})
	}

	return n.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if bp, ok := n.publisher.(outbox.BatchPublisher); ok {
			return bp.PublishBatch(ctx, events)
		}
		for _, e := range events {
			if err := n.publisher.Publish(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// MultiNotifier fans out to several notifiers, stopping at the first error.
type MultiNotifier []Notifier

// Notify implements Notifier.
func (m MultiNotifier) Notify(ctx context.Context, alerts []Alert) error {
	for _, n := range m {
		if err := n.Notify(ctx, alerts); err != nil {
			return err
		}
	}
	return nil
}
