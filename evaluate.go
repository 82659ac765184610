package observe

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoEvaluator indicates the registry has no evaluator configured.
var ErrNoEvaluator = errors.New("observe: evaluator not configured")

// Evaluate runs expr with the registry's evaluator, outside any class. It is
// the ad-hoc form of an expression member and logs through the evaluator
// logger the same way.
func (r *Registry) Evaluate(ctx RuleContext, expr string) (any, error) {
	if expr == "" {
		return nil, fmt.Errorf("observe: expression must not be empty")
	}
	evaluator := r.cfg.evaluator
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	ctx = ctx.withDefaultMaps()
	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, err := evaluator.Evaluate(ctx, expr)
	err = wrapEvaluationError(engine, expr, ctx.scopeLabel(), err)
	r.cfg.evaluatorLogger.LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expr,
		Scope:    ctx.scopeLabel(),
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch e.(type) {
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if fmt.Sprintf("%T", e) == "*observe.jsEvaluator" {
			return "js"
		}
		return "custom"
	}
}
