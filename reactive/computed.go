package reactive

// Computed is a cached derived value. The getter runs lazily on the first read
// and again only after one of the sources it read has changed.
type Computed[T any] struct {
	computation
	dep     dep
	getter  func() (T, error)
	setter  func(T) error
	value   T
	err     error
	dirty   bool
	running bool
	runs    int
}

// ComputedOption configures debug hooks on a Computed.
type ComputedOption func(*computation)

// OnTrack registers fn to run whenever the computed starts tracking a source.
func OnTrack(fn func(DebugEvent)) ComputedOption {
	return func(c *computation) {
		c.onTrack = fn
	}
}

// OnTrigger registers fn to run whenever a tracked source changes.
func OnTrigger(fn func(DebugEvent)) ComputedOption {
	return func(c *computation) {
		c.onTrigger = fn
	}
}

// NewComputed constructs a read-only Computed.
func NewComputed[T any](sys *System, getter func() (T, error), opts ...ComputedOption) *Computed[T] {
	return NewWritableComputed(sys, getter, nil, opts...)
}

// NewWritableComputed constructs a Computed whose Set forwards to setter. A nil
// setter produces a read-only value.
func NewWritableComputed[T any](sys *System, getter func() (T, error), setter func(T) error, opts ...ComputedOption) *Computed[T] {
	if sys == nil {
		sys = DefaultSystem()
	}
	c := &Computed[T]{
		computation: computation{sys: sys},
		getter:      getter,
		setter:      setter,
		dirty:       true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&c.computation)
		}
	}
	return c
}

// Get returns the cached value, recomputing it first when stale, and tracks
// the read on the current subscriber.
func (c *Computed[T]) Get() (T, error) {
	if c.running {
		var zero T
		return zero, ErrCycle
	}
	if c.dirty {
		c.evaluate()
	}
	c.sys.track(&c.dep, DebugEvent{Target: c, Op: OpGet, Key: "value"})
	return c.value, c.err
}

// Set forwards value to the setter.
func (c *Computed[T]) Set(value T) error {
	if c.setter == nil {
		return ErrReadOnly
	}
	return c.setter(value)
}

// Writable reports whether the computed was created with a setter.
func (c *Computed[T]) Writable() bool {
	return c.setter != nil
}

// Dirty reports whether the next Get will recompute.
func (c *Computed[T]) Dirty() bool {
	return c.dirty
}

// Runs reports how many times the getter has been evaluated.
func (c *Computed[T]) Runs() int {
	return c.runs
}

func (c *Computed[T]) evaluate() {
	c.cleanup(c)
	c.running = true
	defer func() {
		c.running = false
	}()
	c.sys.run(c, func() {
		c.runs++
		if c.getter == nil {
			var zero T
			c.value, c.err = zero, nil
			return
		}
		c.value, c.err = c.getter()
	})
	c.dirty = false
}

func (c *Computed[T]) notify(event DebugEvent) {
	c.triggered(event)
	if c.dirty {
		return
	}
	c.dirty = true
	c.sys.trigger(&c.dep, DebugEvent{Target: c, Op: OpDirty, Key: "value"})
}
