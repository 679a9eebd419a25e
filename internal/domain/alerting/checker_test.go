package alerting_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/core/types"
	"hydrostock/internal/domain/alerting"
	"hydrostock/internal/domain/outbox"
	"hydrostock/internal/domain/registers/stock"
	"hydrostock/internal/infrastructure/storage/memory"
)

type captureNotifier struct {
	alerts []alerting.Alert
}

func (c *captureNotifier) Notify(_ context.Context, alerts []alerting.Alert) error {
	c.alerts = append(c.alerts, alerts...)
	return nil
}

func seed(t *testing.T, ledger *stock.Ledger, store *memory.Store, key entity.StockKey, qty string) {
	t.Helper()
	err := store.RunInTransaction(context.Background(), func(ctx context.Context) error {
		_, err := ledger.ApplyDelta(ctx, key, types.MustQuantity(qty), true)
		return err
	})
	require.NoError(t, err)
}

func TestScan(t *testing.T) {
	store := memory.NewStore()
	ledger := stock.NewLedger(memory.NewStockRepo(store))
	rules := memory.NewRuleRepo(store)
	evaluator, err := alerting.NewEvaluator()
	require.NoError(t, err)

	plant := id.New()
	depot := id.New()
	chlorine := entity.NewProductRef(entity.ProductKindChemical, id.New())
	pipe := entity.NewProductRef(entity.ProductKindPipe, id.New())

	seed(t, ledger, store, entity.NewStockKey(chlorine, plant), "40")
	seed(t, ledger, store, entity.NewStockKey(chlorine, depot), "400")
	seed(t, ledger, store, entity.NewStockKey(pipe, depot), "3")

	chemical := entity.ProductKindChemical
	rules.Add(alerting.Rule{ID: id.New(), Name: "chemicals low", ProductKind: &chemical, Threshold: types.MustQuantity("50"), Active: true})
	rules.Add(alerting.Rule{ID: id.New(), Name: "depot pipes", LocationID: &depot, Threshold: types.MustQuantity("5"),
		Condition: `kind == "pipe" && quantity <= threshold`, Active: true})
	rules.Add(alerting.Rule{ID: id.New(), Name: "disabled", Threshold: types.MustQuantity("1000"), Active: false})
	rules.Add(alerting.Rule{ID: id.New(), Name: "broken", Condition: "quantity +", Active: true})

	notifier := &captureNotifier{}
	checker := alerting.NewChecker(ledger, rules, evaluator, notifier)

	alerts, err := checker.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, alerts, notifier.alerts)

	byRule := map[string]alerting.Alert{}
	for _, a := range alerts {
		byRule[a.RuleName] = a
	}
	assert.Equal(t, plant, byRule["chemicals low"].LocationID)
	assert.Equal(t, "40", byRule["chemicals low"].Quantity.String())
	assert.Equal(t, pipe, byRule["depot pipes"].Product)

	q, err := ledger.GetOrZero(context.Background(), entity.NewStockKey(chlorine, plant))
	require.NoError(t, err)
	assert.Equal(t, "40", q.String(), "scan never mutates stock")
}

func TestEvaluatorRejectsNonBool(t *testing.T) {
	evaluator, err := alerting.NewEvaluator()
	require.NoError(t, err)

	_, err = evaluator.Compile("quantity * 2.0")
	assert.ErrorContains(t, err, "must evaluate to bool")

	_, err = evaluator.Compile("unknown_var > 1.0")
	assert.Error(t, err)

	_, err = evaluator.Compile(alerting.DefaultCondition)
	assert.NoError(t, err)
}

func TestOutboxNotifier(t *testing.T) {
	store := memory.NewStore()
	ob := memory.NewOutbox(store, 10, nil)
	notifier := alerting.NewOutboxNotifier(store, ob)

	err := notifier.Notify(context.Background(), []alerting.Alert{
		{RuleID: id.New(), RuleName: "a"},
		{RuleID: id.New(), RuleName: "b"},
	})
	require.NoError(t, err)

	msgs := ob.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, outbox.EventStockBelowLimit, msgs[0].EventType)
	assert.Equal(t, "alert_rule", msgs[0].AggregateType)
}
