package alerting

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"hydrostock/internal/core/entity"
)

// Evaluator compiles rule conditions once and evaluates them per stock row.
type Evaluator struct {
	env *cel.Env

	mu    sync.Mutex
	cache map[string]cel.Program
}

// NewEvaluator declares the variables conditions may use:
// quantity and threshold (double), kind, product_id and location_id (string).
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("quantity", cel.DoubleType),
		cel.Variable("threshold", cel.DoubleType),
		cel.Variable("kind", cel.StringType),
		cel.Variable("product_id", cel.StringType),
		cel.Variable("location_id", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}
	return &Evaluator{env: env, cache: make(map[string]cel.Program)}, nil
}

// Compile parses and type-checks a condition. It must yield a bool.
func (e *Evaluator) Compile(expr string) (cel.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if prg, ok := e.cache[expr]; ok {
		return prg, nil
	}

	ast, iss := e.env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compile condition %q: %w", expr, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("condition %q must evaluate to bool, got %s", expr, ast.OutputType())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program condition %q: %w", expr, err)
	}
	e.cache[expr] = prg
	return prg, nil
}

// Fires evaluates the rule against one stock row.
func (e *Evaluator) Fires(rule *Rule, entry *entity.StockEntry) (bool, error) {
	prg, err := e.Compile(rule.Expression())
	if err != nil {
		return false, err
	}

	quantity, _ := entry.Quantity.Float64()
	threshold, _ := rule.Threshold.Float64()

	out, _, err := prg.Eval(map[string]any{
		"quantity":    quantity,
		"threshold":   threshold,
		"kind":        string(entry.Kind),
		"product_id":  entry.ProductRef.ID.String(),
		"location_id": entry.LocationID.String(),
	})
	if err != nil {
		return false, fmt.Errorf("evaluate rule %s: %w", rule.Name, err)
	}

	fired, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule %s: condition returned %T", rule.Name, out.Value())
	}
	return fired, nil
}
