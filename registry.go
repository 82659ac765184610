package observe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-observe/pkg/activity"
	"github.com/goliatone/go-observe/reactive"
)

// Kind tags an annotation record.
type Kind int

const (
	// KindComputed marks an accessor backed by a cached, tracked computation.
	KindComputed Kind = iota + 1
	// KindOverride marks an accessor redefining an inherited computed.
	KindOverride
)

func (k Kind) String() string {
	switch k {
	case KindComputed:
		return "computed"
	case KindOverride:
		return "override"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "computed":
		*k = KindComputed
	case "override":
		*k = KindOverride
	default:
		return fmt.Errorf("observe: unknown annotation kind %q", text)
	}
	return nil
}

// Record is one annotation declared directly on one class for one property.
type Record struct {
	Kind    Kind
	Options Options
	// Class is the class the record was declared on.
	Class *Class
	// Origin is the class holding the root computed declaration.
	Origin *Class
	// Inherited is set when an override took its options from the ancestor.
	Inherited bool
}

// Registry owns classes and the annotation records declared on them. Records
// are written only while a class is being defined; afterwards the registry is
// safe for concurrent readers.
type Registry struct {
	mu          sync.RWMutex
	classes     map[string]*Class
	annotations map[*Class]map[string]Record

	cfg     registryConfig
	emitter *activity.Emitter
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	engine          Engine
	evaluator       Evaluator
	programCache    ProgramCache
	functions       *FunctionRegistry
	logger          Logger
	evaluatorLogger EvaluatorLogger
	activityHooks   activity.Hooks
	activityChannel string
	activityActor   string
}

func applyRegistryOptions(opts []RegistryOption) registryConfig {
	cfg := registryConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEngine configures the reactivity engine used to bind computed
// properties.
func WithEngine(engine Engine) RegistryOption {
	return func(cfg *registryConfig) {
		cfg.engine = engine
	}
}

// WithReactiveSystem binds computed properties with the reference engine
// running on sys. Observables read by accessors must come from the same
// system.
func WithReactiveSystem(sys *reactive.System) RegistryOption {
	return func(cfg *registryConfig) {
		cfg.engine = NewReactiveEngine(sys)
	}
}

// WithLogger configures the logger receiving declaration and binding events.
func WithLogger(logger Logger) RegistryOption {
	return func(cfg *registryConfig) {
		cfg.logger = logger
	}
}

// NewRegistry constructs an empty registry. Without WithEngine it binds with
// the reference engine on reactive.DefaultSystem, and without WithEvaluator
// expression members use the expr evaluator.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := applyRegistryOptions(opts)
	if cfg.engine == nil {
		cfg.engine = NewReactiveEngine(reactive.DefaultSystem())
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	if cfg.evaluatorLogger == nil {
		cfg.evaluatorLogger = noopEvaluatorLogger{}
	}
	if cfg.evaluator == nil {
		var exprOpts []ExprEvaluatorOption
		if cfg.programCache != nil {
			exprOpts = append(exprOpts, ExprWithProgramCache(cfg.programCache))
		}
		if cfg.functions != nil {
			exprOpts = append(exprOpts, ExprWithFunctionRegistry(cfg.functions))
		}
		cfg.evaluator = NewExprEvaluator(exprOpts...)
	}
	return &Registry{
		classes:     map[string]*Class{},
		annotations: map[*Class]map[string]Record{},
		cfg:         cfg,
		emitter: activity.NewEmitter(cfg.activityHooks, activity.Config{
			Enabled: len(cfg.activityHooks) > 0,
			Channel: cfg.activityChannel,
			ActorID: cfg.activityActor,
		}),
	}
}

// Define registers a class named name. The build function is the class body:
// it declares members and annotations through the Builder. When build returns
// an error the class is discarded together with every record it declared.
func (r *Registry) Define(name string, build func(b *Builder) error, opts ...ClassOption) (*Class, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrClassNameRequired
	}
	cfg := applyClassOptions(opts)
	if cfg.parent != nil && cfg.parent.registry != r {
		return nil, fmt.Errorf("observe: define %s: %w", name, misuse("parent %s belongs to another registry", cfg.parent.Name()))
	}
	if _, exists := r.Class(name); exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateClass, name)
	}

	class := &Class{
		name:     name,
		parent:   cfg.parent,
		members:  map[string]*Descriptor{},
		registry: r,
	}
	class.chain = append([]*Class{class}, cfg.parent.Ancestors()...)

	start := time.Now()
	builder := &Builder{class: class}
	var err error
	if build != nil {
		err = build(builder)
	}
	builder.sealed = true
	if err != nil {
		r.discard(class)
		return nil, err
	}

	r.mu.Lock()
	if _, exists := r.classes[name]; exists {
		r.mu.Unlock()
		r.discard(class)
		return nil, fmt.Errorf("%w: %s", ErrDuplicateClass, name)
	}
	class.sealed = true
	r.classes[name] = class
	r.mu.Unlock()

	for _, fn := range builder.pending {
		fn()
	}

	r.log(LogEvent{
		Op:       LogOpDefine,
		Class:    name,
		Duration: time.Since(start),
	})
	return class, nil
}

// MustDefine is Define for package-level class variables; it panics on error.
func (r *Registry) MustDefine(name string, build func(b *Builder) error, opts ...ClassOption) *Class {
	class, err := r.Define(name, build, opts...)
	if err != nil {
		panic(err)
	}
	return class
}

// Class returns the class registered under name.
func (r *Registry) Class(name string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	class, ok := r.classes[name]
	return class, ok
}

// Classes returns registered class names sorted alphabetically.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declare stores record for key on class while the class is being defined.
// It fails with ErrDuplicateAnnotation when class already holds a record for
// key, and with ErrMisuse once Define has returned for class.
func (r *Registry) Declare(class *Class, key string, record Record) error {
	if class == nil || class.registry != r {
		return misuse("class does not belong to this registry")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if class.sealed {
		return misuse("class %s is already defined", class.Name())
	}
	records := r.annotations[class]
	if _, exists := records[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAnnotation, qualify(class.Name(), key))
	}
	if records == nil {
		records = map[string]Record{}
		r.annotations[class] = records
	}
	record.Class = class
	record.Options = record.Options.Clone()
	records[key] = record
	return nil
}

// LookupOwn returns the record declared directly on class for key.
func (r *Registry) LookupOwn(class *Class, key string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.annotations[class][key]
	if !ok {
		return Record{}, false
	}
	record.Options = record.Options.Clone()
	return record, true
}

// LookupChain returns the first record for key walking chain in order.
func (r *Registry) LookupChain(chain []*Class, key string) (Record, bool) {
	for _, class := range chain {
		if record, ok := r.LookupOwn(class, key); ok {
			return record, true
		}
	}
	return Record{}, false
}

func (r *Registry) ownRecords(class *Class) map[string]Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := r.annotations[class]
	if len(records) == 0 {
		return nil
	}
	out := make(map[string]Record, len(records))
	for key, record := range records {
		out[key] = record
	}
	return out
}

func (r *Registry) discard(class *Class) {
	r.mu.Lock()
	class.sealed = true
	delete(r.annotations, class)
	r.mu.Unlock()
}

func (r *Registry) engine() Engine {
	return r.cfg.engine
}

func (r *Registry) log(event LogEvent) {
	r.cfg.logger.Log(event)
}

func (r *Registry) emit(event activity.Event) {
	if !r.emitter.Enabled() {
		return
	}
	if err := r.emitter.Emit(context.Background(), event); err != nil {
		r.log(LogEvent{
			Op:    LogOpActivity,
			Class: stringMetadata(event.Metadata, "class"),
			Key:   stringMetadata(event.Metadata, "key"),
			Err:   err,
		})
	}
}

func stringMetadata(meta map[string]any, key string) string {
	value, _ := meta[key].(string)
	return value
}
