package memory

import (
	"context"

	"hydrostock/internal/domain/alerting"
)

// RuleRepo implements alerting.RuleRepository.
type RuleRepo struct {
	s *Store
}

// NewRuleRepo creates a rule repository over the store.
func NewRuleRepo(s *Store) *RuleRepo {
	return &RuleRepo{s: s}
}

// Add stores a rule.
func (r *RuleRepo) Add(rule alerting.Rule) {
	r.s.catalogMu.Lock()
	defer r.s.catalogMu.Unlock()
	r.s.rules = append(r.s.rules, rule)
}

// ListActive implements alerting.RuleRepository.
func (r *RuleRepo) ListActive(_ context.Context) ([]alerting.Rule, error) {
	r.s.catalogMu.RLock()
	defer r.s.catalogMu.RUnlock()

	out := make([]alerting.Rule, 0, len(r.s.rules))
	for _, rule := range r.s.rules {
		if rule.Active {
			out = append(out, rule)
		}
	}
	return out, nil
}

var _ alerting.RuleRepository = (*RuleRepo)(nil)
