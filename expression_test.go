package observe

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-observe/reactive"
	"github.com/stretchr/testify/require"
)

type pricing struct {
	price    *reactive.Ref[int]
	quantity *reactive.Ref[int]
}

func definePricing(t *testing.T, reg *Registry, expression string) *Class {
	t.Helper()
	class, err := reg.Define("Order", func(b *Builder) error {
		if err := b.Getter("price", func(r Receiver) (any, error) {
			return r.Host().(*pricing).price.Get(), nil
		}); err != nil {
			return err
		}
		if err := b.Getter("quantity", func(r Receiver) (any, error) {
			return r.Host().(*pricing).quantity.Get(), nil
		}); err != nil {
			return err
		}
		return b.Expression("total", expression, []string{"price", "quantity"}, Computed())
	})
	require.NoError(t, err)
	return class
}

func TestExpressionMemberRecomputesOnInputChange(t *testing.T) {
	tests := []struct {
		name      string
		evaluator func() Evaluator
		want      func(int) any
	}{
		{name: "expr", evaluator: func() Evaluator { return NewExprEvaluator() }, want: func(n int) any { return n }},
		{name: "cel", evaluator: func() Evaluator { return NewCELEvaluator() }, want: func(n int) any { return int64(n) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var evaluations []EvaluatorLogEvent
			reg, sys := newTestRegistry(t,
				WithEvaluator(tt.evaluator()),
				WithEvaluatorLogger(EvaluatorLoggerFunc(func(e EvaluatorLogEvent) {
					evaluations = append(evaluations, e)
				})),
			)
			class := definePricing(t, reg, "price * quantity")

			host := &pricing{price: reactive.NewRef(sys, 3), quantity: reactive.NewRef(sys, 2)}
			obj := class.New(host)
			require.NoError(t, MakeObservable(obj))

			v, err := obj.Get("total")
			require.NoError(t, err)
			require.Equal(t, tt.want(6), v)

			_, err = obj.Get("total")
			require.NoError(t, err)
			require.Len(t, evaluations, 1, "cached reads do not evaluate")
			require.Equal(t, tt.name, evaluations[0].Engine)
			require.Equal(t, "Order.total", evaluations[0].Scope)

			host.quantity.Set(5)
			v, err = obj.Get("total")
			require.NoError(t, err)
			require.Equal(t, tt.want(15), v)
			require.Len(t, evaluations, 2)
		})
	}
}

func TestExpressionInputsShadowBuiltins(t *testing.T) {
	cache := NewMemoryProgramCache()
	reg, sys := newTestRegistry(t, WithProgramCache(cache))
	class, err := reg.Define("Counter", func(b *Builder) error {
		if err := b.Getter("count", func(r Receiver) (any, error) {
			return hostBox(r).value.Get(), nil
		}); err != nil {
			return err
		}
		if err := b.Getter("len", func(Receiver) (any, error) { return 10, nil }); err != nil {
			return err
		}
		return b.Expression("doubled", "count * 2 + len", []string{"count", "len"}, Computed())
	})
	require.NoError(t, err)

	host := newBox(sys, 3)
	obj := class.New(host)
	require.NoError(t, MakeObservable(obj))
	v, err := obj.Get("doubled")
	require.NoError(t, err)
	require.Equal(t, 16, v)

	host.value.Set(4)
	v, err = obj.Get("doubled")
	require.NoError(t, err)
	require.Equal(t, 18, v)

	// The same source compiled over different inputs is cached separately.
	_, err = reg.Evaluate(RuleContext{Snapshot: map[string]any{"count": 1, "len": 0}}, "count * 2 + len")
	require.NoError(t, err)
	_, err = reg.Evaluate(RuleContext{Snapshot: map[string]any{"count": 1, "len": 0, "extra": true}}, "count * 2 + len")
	require.NoError(t, err)
	require.Equal(t, 2, cache.Len())
}

func TestExpressionCompileErrorFailsDeclaration(t *testing.T) {
	reg, _ := newTestRegistry(t, WithEvaluator(NewCELEvaluator()))
	_, err := reg.Define("Order", func(b *Builder) error {
		return b.Expression("total", "price *", []string{"price"}, Computed())
	})
	require.Error(t, err)

	var annErr *AnnotationError
	require.True(t, errors.As(err, &annErr))
	require.Equal(t, "Order.total", annErr.Property())

	var evalErr *EvaluationError
	require.True(t, errors.As(err, &evalErr))
	require.Equal(t, "cel", evalErr.Engine)
	require.Equal(t, "price *", evalErr.Expr)

	_, exists := reg.Class("Order")
	require.False(t, exists)
}

func TestExpressionRuntimeErrorIsCached(t *testing.T) {
	var failures int
	reg, sys := newTestRegistry(t, WithEvaluatorLogger(EvaluatorLoggerFunc(func(e EvaluatorLogEvent) {
		if e.Err != nil {
			failures++
		}
	})))
	class := definePricing(t, reg, "price % quantity")

	host := &pricing{price: reactive.NewRef(sys, 3), quantity: reactive.NewRef(sys, 0)}
	obj := class.New(host)
	require.NoError(t, MakeObservable(obj))

	// Modulo by zero panics inside expr's VM, which Run reports as an error.
	_, err := obj.Get("total")
	var evalErr *EvaluationError
	require.True(t, errors.As(err, &evalErr), "got %v", err)
	require.Equal(t, "expr", evalErr.Engine)
	require.Equal(t, "Order.total", evalErr.Scope)

	_, err = obj.Get("total")
	require.Error(t, err)
	require.Equal(t, 1, failures)
}

func TestExpressionUsesCustomFunctions(t *testing.T) {
	upper := func(args ...any) (any, error) {
		return strings.ToUpper(args[0].(string)), nil
	}
	reg, sys := newTestRegistry(t, WithCustomFunction("upper", upper))
	class, err := reg.Define("Greeting", func(b *Builder) error {
		if err := b.Getter("name", func(r Receiver) (any, error) {
			return r.Host().(*reactive.Ref[string]).Get(), nil
		}); err != nil {
			return err
		}
		return b.Expression("shout", `upper(name) + "!"`, []string{"name"}, Computed())
	})
	require.NoError(t, err)

	name := reactive.NewRef(sys, "ada")
	obj := class.New(name)
	require.NoError(t, MakeObservable(obj))
	v, err := obj.Get("shout")
	require.NoError(t, err)
	require.Equal(t, "ADA!", v)

	name.Set("grace")
	v, err = obj.Get("shout")
	require.NoError(t, err)
	require.Equal(t, "GRACE!", v)
}

func TestCELCallBinding(t *testing.T) {
	functions := NewFunctionRegistry()
	require.NoError(t, functions.Register("sum", func(args ...any) (any, error) {
		total := int64(0)
		for _, arg := range args {
			total += arg.(int64)
		}
		return total, nil
	}))
	evaluator := NewCELEvaluator(CELWithFunctionRegistry(functions))

	v, err := evaluator.Evaluate(RuleContext{Snapshot: map[string]any{"a": 2}}, `call("sum", [a, 3, 4])`)
	require.NoError(t, err)
	require.Equal(t, int64(9), v)

	_, err = evaluator.Evaluate(RuleContext{}, `call("missing", [])`)
	require.Error(t, err)
}

func TestRegistryEvaluate(t *testing.T) {
	var logged []EvaluatorLogEvent
	cache := NewMemoryProgramCache()
	reg, _ := newTestRegistry(t,
		WithProgramCache(cache),
		WithEvaluatorLogger(EvaluatorLoggerFunc(func(e EvaluatorLogEvent) {
			logged = append(logged, e)
		})),
	)

	ctx := RuleContext{Snapshot: map[string]any{"count": 4}, Args: map[string]any{"factor": 2}}
	v, err := reg.Evaluate(ctx, "count * args.factor")
	require.NoError(t, err)
	require.Equal(t, 8, v)

	_, err = reg.Evaluate(ctx, "count * args.factor")
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len(), "compiled programs are cached")

	require.Len(t, logged, 2)
	require.Equal(t, "expr", logged[0].Engine)
	require.Equal(t, "unknown", logged[0].Scope)

	_, err = reg.Evaluate(ctx, "")
	require.Error(t, err)

	_, err = reg.Evaluate(ctx, "count +")
	var evalErr *EvaluationError
	require.True(t, errors.As(err, &evalErr))
	require.Len(t, logged, 3)
	require.Error(t, logged[2].Err)
}

func TestEvaluatorEngineName(t *testing.T) {
	require.Equal(t, "expr", evaluatorEngineName(NewExprEvaluator()))
	require.Equal(t, "cel", evaluatorEngineName(NewCELEvaluator()))
	require.Equal(t, "unknown", evaluatorEngineName(nil))
}
