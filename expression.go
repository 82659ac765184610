package observe

import (
	"time"
)

// Expression declares a read-only accessor whose value is expression
// evaluated over the listed input properties. The expression is compiled
// once, when the class is defined; each read evaluates it against a snapshot
// of the inputs taken through the object, so a computed expression tracks
// every input it reads.
func (b *Builder) Expression(key, expression string, inputs []string, decls ...Declarator) error {
	if err := b.usable(key); err != nil {
		return err
	}
	reg := b.class.registry
	evaluator := reg.cfg.evaluator
	if evaluator == nil {
		return annotationError("declare", b.class, key, ErrNoEvaluator)
	}
	engine := evaluatorEngineName(evaluator)
	rule, err := evaluator.Compile(expression, inputs...)
	if err != nil {
		return annotationError("declare", b.class, key, wrapEvaluationError(engine, expression, qualify(b.class.Name(), key), err))
	}

	names := append([]string(nil), inputs...)
	className := b.class.Name()
	get := func(r Receiver) (any, error) {
		ctx := RuleContext{
			Snapshot: make(map[string]any, len(names)),
			Class:    className,
			Key:      key,
		}
		for _, name := range names {
			value, err := r.Get(name)
			if err != nil {
				return nil, err
			}
			ctx.Snapshot[name] = value
		}
		start := time.Now()
		value, err := rule.Evaluate(ctx)
		err = wrapEvaluationError(engine, expression, ctx.scopeLabel(), err)
		reg.cfg.evaluatorLogger.LogEvaluation(EvaluatorLogEvent{
			Engine:   engine,
			Expr:     expression,
			Scope:    ctx.scopeLabel(),
			Duration: time.Since(start),
			Err:      err,
		})
		if err != nil {
			return nil, err
		}
		return value, nil
	}
	return b.Accessor(key, Accessor{Get: get}, decls...)
}
