package observe

// RuleContext carries the inputs of one expression evaluation.
type RuleContext struct {
	// Snapshot holds the input properties read from the object.
	Snapshot map[string]any
	Args     map[string]any
	Class    string
	Key      string
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Snapshot == nil {
		ctx.Snapshot = map[string]any{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) scopeLabel() string {
	if label := qualify(ctx.Class, ctx.Key); label != "" {
		return label
	}
	return "unknown"
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	// Compile prepares expr once. Variables names the snapshot keys the
	// expression may reference; engines with typed environments declare them
	// up front.
	Compile(expr string, variables ...string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// WithEvaluator configures the evaluator used by expression members.
func WithEvaluator(e Evaluator) RegistryOption {
	return func(cfg *registryConfig) {
		cfg.evaluator = e
	}
}
