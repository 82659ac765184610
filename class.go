package observe

import (
	"github.com/google/uuid"
)

// Class is a type defined through a Registry. It owns its accessor members and
// a cached ancestor list, most derived first, that the resolver walks instead
// of following implicit prototype links.
type Class struct {
	name     string
	parent   *Class
	chain    []*Class
	members  map[string]*Descriptor
	order    []string
	registry *Registry
	// sealed is set, under the registry lock, once Define returns.
	sealed bool
}

// Name returns the class name.
func (c *Class) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// Parent returns the direct ancestor, or nil for a root class.
func (c *Class) Parent() *Class {
	if c == nil {
		return nil
	}
	return c.parent
}

// Registry returns the registry that defined the class.
func (c *Class) Registry() *Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Ancestors returns the class followed by every ancestor up to the root.
func (c *Class) Ancestors() []*Class {
	if c == nil || len(c.chain) == 0 {
		return nil
	}
	return append([]*Class(nil), c.chain...)
}

// Extends reports whether c is other or a subclass of other.
func (c *Class) Extends(other *Class) bool {
	if c == nil || other == nil {
		return false
	}
	for _, ancestor := range c.chain {
		if ancestor == other {
			return true
		}
	}
	return false
}

// Members returns the keys of the accessors declared directly on c.
func (c *Class) Members() []string {
	if c == nil || len(c.order) == 0 {
		return nil
	}
	return append([]string(nil), c.order...)
}

// HasMember reports whether c declares key directly.
func (c *Class) HasMember(key string) bool {
	if c == nil {
		return false
	}
	_, ok := c.members[key]
	return ok
}

// Annotations resolves the effective annotation map shared by every instance
// of c.
func (c *Class) Annotations() map[string]Annotation {
	if c == nil {
		return map[string]Annotation{}
	}
	return c.registry.collect(c)
}

// New creates an instance of c around host. Host is the application value
// accessors reach through Receiver.Host; it may be nil. Call MakeObservable
// on the result before handing it out.
func (c *Class) New(host any) *Object {
	return &Object{
		id:    uuid.New(),
		class: c,
		host:  host,
		props: map[string]*Descriptor{},
	}
}

// ClassOption configures Define.
type ClassOption func(*classConfig)

type classConfig struct {
	parent *Class
}

// Extends makes the defined class a subclass of parent.
func Extends(parent *Class) ClassOption {
	return func(cfg *classConfig) {
		cfg.parent = parent
	}
}

func applyClassOptions(opts []ClassOption) classConfig {
	cfg := classConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Builder is the class body handed to the build function of Define. It is
// only usable until Define returns.
type Builder struct {
	class   *Class
	sealed  bool
	pending []func()
}

// Class returns the class under construction.
func (b *Builder) Class() *Class {
	if b == nil {
		return nil
	}
	return b.class
}

// Accessor declares an accessor member on the class, optionally annotated by
// a single declarator.
func (b *Builder) Accessor(key string, acc Accessor, decls ...Declarator) error {
	if err := b.usable(key); err != nil {
		return err
	}
	if acc.Get == nil && acc.Set == nil {
		return annotationError("declare", b.class, key, misuse("accessor has neither getter nor setter"))
	}
	decl, err := single(decls)
	if err != nil {
		return annotationError("declare", b.class, key, err)
	}
	if b.class.HasMember(key) {
		if _, annotated := b.class.registry.LookupOwn(b.class, key); annotated && decl != nil {
			return annotationError("declare", b.class, key, illegalRedeclaration(b.class, key, ErrDuplicateAnnotation))
		}
		return annotationError("declare", b.class, key, misuse("member already defined on %s", b.class.Name()))
	}
	if decl != nil {
		if err := decl.declare(b, key); err != nil {
			return err
		}
	}

	copied := acc
	b.class.members[key] = &Descriptor{
		Accessor:     &copied,
		Enumerable:   false,
		Configurable: true,
	}
	b.class.order = append(b.class.order, key)
	return nil
}

// Getter declares a read-only accessor member.
func (b *Builder) Getter(key string, get func(r Receiver) (any, error), decls ...Declarator) error {
	return b.Accessor(key, Accessor{Get: get}, decls...)
}

// Field annotates a property the class does not define as a member, such as
// a value every constructor assigns with Object.DefineField. Binding such a
// property to a computed fails with ErrInvalidAnnotationTarget once the
// instance shows it is a plain value.
func (b *Builder) Field(key string, decls ...Declarator) error {
	if err := b.usable(key); err != nil {
		return err
	}
	decl, err := single(decls)
	if err != nil {
		return annotationError("declare", b.class, key, err)
	}
	if decl == nil {
		return annotationError("declare", b.class, key, misuse("field requires a declarator"))
	}
	return decl.declare(b, key)
}

// after queues fn until Define commits the class; a discarded class never
// reports its declarations.
func (b *Builder) after(fn func()) {
	b.pending = append(b.pending, fn)
}

func (b *Builder) usable(key string) error {
	if b == nil || b.class == nil {
		return misuse("builder is not attached to a class definition")
	}
	if b.sealed {
		return annotationError("declare", b.class, key, misuse("builder used after %s was defined", b.class.Name()))
	}
	if key == "" {
		return annotationError("declare", b.class, key, misuse("property key must not be empty"))
	}
	return nil
}

func single(decls []Declarator) (Declarator, error) {
	switch len(decls) {
	case 0:
		return nil, nil
	case 1:
		if decls[0] == nil {
			return nil, misuse("declarator is nil")
		}
		return decls[0], nil
	default:
		return nil, misuse("a member accepts a single declarator, got %d", len(decls))
	}
}
