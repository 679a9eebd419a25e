package alerting

import (
	"context"
	"fmt"
	"time"

	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/core/types"
	"hydrostock/internal/domain/registers/stock"
	"hydrostock/pkg/logger"
)

// Alert is a fired rule for one stock row.
type Alert struct {
	RuleID     id.ID             `json:"ruleId"`
	RuleName   string            `json:"ruleName"`
	Product    entity.ProductRef `json:"product"`
	LocationID id.ID             `json:"locationId"`
	Quantity   types.Quantity    `json:"quantity"`
	Threshold  types.Quantity    `json:"threshold"`
	RaisedAt   time.Time         `json:"raisedAt"`
}

// Notifier delivers alerts.
type Notifier interface {
	Notify(ctx context.Context, alerts []Alert) error
}

// Checker scans stock rows against the active rules.
type Checker struct {
	ledger    *stock.Ledger
	rules     RuleRepository
	evaluator *Evaluator
	notifier  Notifier
	pageSize  int
}

// NewChecker creates a checker.
func NewChecker(ledger *stock.Ledger, rules RuleRepository, evaluator *Evaluator, notifier Notifier) *Checker {
	return &Checker{
		ledger:    ledger,
		rules:     rules,
		evaluator: evaluator,
		notifier:  notifier,
		pageSize:  500,
	}
}

// Scan evaluates every active rule against every stock row it applies to
// and hands the fired alerts to the notifier. Rules whose condition does not
// compile are skipped and logged.
func (c *Checker) Scan(ctx context.Context) ([]Alert, error) {
	rules, err := c.rules.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list alert rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, nil
	}

	usable := rules[:0]
	for _, r := range rules {
		if _, err := c.evaluator.Compile(r.Expression()); err != nil {
			logger.Warn(ctx, "skipping alert rule", "rule_id", r.ID, "rule", r.Name, "error", err)
			continue
		}
		usable = append(usable, r)
	}

	now := time.Now().UTC()
	var alerts []Alert
	err = c.ledger.Scan(ctx, c.pageSize, func(page []entity.StockEntry) error {
		for i := range page {
			entry := &page[i]
			for j := range usable {
				rule := &usable[j]
				if !rule.Applies(entry) {
					continue
				}
				fired, err := c.evaluator.Fires(rule, entry)
				if err != nil {
					return err
				}
				if fired {
					alerts = append(alerts, Alert{
						RuleID:     rule.ID,
						RuleName:   rule.Name,
						Product:    entry.ProductRef,
						LocationID: entry.LocationID,
						Quantity:   entry.Quantity,
						Threshold:  rule.Threshold,
						RaisedAt:   now,
					})
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(alerts) > 0 && c.notifier != nil {
		if err := c.notifier.Notify(ctx, alerts); err != nil {
			return alerts, fmt.Errorf("notify alerts: %w", err)
		}
	}
	return alerts, nil
}
