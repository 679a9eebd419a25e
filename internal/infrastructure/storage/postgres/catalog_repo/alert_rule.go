package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"hydrostock/internal/domain/alerting"
	"hydrostock/internal/infrastructure/storage/postgres"
)

const alertRulesTable = "alert_rules"

var alertRuleColumns = postgres.ExtractDBColumns[alerting.Rule]()

// AlertRuleRepo implements alerting.RuleRepository.
type AlertRuleRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

var _ alerting.RuleRepository = (*AlertRuleRepo)(nil)

// NewAlertRuleRepo creates an alert rule repository.
func NewAlertRuleRepo(txm *postgres.TxManager) *AlertRuleRepo {
	return &AlertRuleRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListActive returns active rules ordered by name.
func (r *AlertRuleRepo) ListActive(ctx context.Context) ([]alerting.Rule, error) {
	sql, args, err := r.builder.Select(alertRuleColumns...).
		From(alertRulesTable).
		Where(squirrel.Eq{"active": true}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rules := make([]alerting.Rule, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rules, sql, args...); err != nil {
		return nil, fmt.Errorf("select alert rules: %w", err)
	}
	return rules, nil
}

// Create stores a rule.
func (r *AlertRuleRepo) Create(ctx context.Context, rule *alerting.Rule) error {
	sql, args, err := r.builder.Insert(alertRulesTable).
		SetMap(postgres.StructToMap(rule)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert alert rule: %w", err)
	}
	return nil
}
