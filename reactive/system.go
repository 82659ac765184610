// Package reactive is a small synchronous reactivity engine: primitive
// observable cells (Ref), cached derived values (Computed), and side effects
// (Effect) connected by automatic dependency tracking.
//
// Reading a Ref or Computed while another Computed or Effect is evaluating
// registers a dependency edge. Writing a Ref marks every dependent Computed
// dirty and queues dependent effects; queued effects run once propagation has
// finished, so an effect never observes a half-invalidated graph.
//
//	sys := reactive.NewSystem()
//	count := reactive.NewRef(sys, 1)
//	doubled := reactive.NewComputed(sys, func() (int, error) {
//	    return count.Get() * 2, nil
//	})
//	sys.Effect(func() {
//	    v, _ := doubled.Get()
//	    fmt.Println("doubled:", v)
//	})
//	count.Set(2) // prints "doubled: 4"
//
// A System is not safe for concurrent use. All primitives created from one
// System must be driven from a single logical thread of control.
package reactive

import (
	"errors"
	"sync"
)

var (
	// ErrReadOnly is returned when writing a Computed created without a setter.
	ErrReadOnly = errors.New("reactive: computed value is read-only")
	// ErrCycle is returned when a Computed reads itself while evaluating.
	ErrCycle = errors.New("reactive: cycle detected while evaluating computed")
)

// Op classifies a DebugEvent.
type Op string

const (
	// OpGet marks a tracked read.
	OpGet Op = "get"
	// OpSet marks a write that changed a Ref.
	OpSet Op = "set"
	// OpDirty marks a Computed invalidating its own dependents.
	OpDirty Op = "dirty"
)

// DebugEvent describes a dependency being tracked or triggered. It is handed
// to OnTrack and OnTrigger hooks.
type DebugEvent struct {
	Target   any
	Op       Op
	Key      string
	OldValue any
	NewValue any
}

// System owns the tracking context shared by a family of primitives.
type System struct {
	active   subscriber
	depth    int
	flushing bool
	pending  []*Effect
}

// NewSystem constructs an empty reactive system.
func NewSystem() *System {
	return &System{}
}

var (
	defaultOnce   sync.Once
	defaultSystem *System
)

// DefaultSystem returns the process-wide system used when callers do not
// provide their own.
func DefaultSystem() *System {
	defaultOnce.Do(func() {
		defaultSystem = NewSystem()
	})
	return defaultSystem
}

// Untracked runs fn without registering dependencies on the current
// subscriber.
func (s *System) Untracked(fn func()) {
	s.run(nil, fn)
}

type subscriber interface {
	link(d *dep) bool
	tracked(event DebugEvent)
	notify(event DebugEvent)
}

// dep is the subscriber list of one observable source.
type dep struct {
	subs []subscriber
}

func (d *dep) add(sub subscriber) {
	d.subs = append(d.subs, sub)
}

func (d *dep) remove(sub subscriber) {
	for i, existing := range d.subs {
		if existing == sub {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

func (s *System) run(sub subscriber, fn func()) {
	prev := s.active
	s.active = sub
	defer func() {
		s.active = prev
	}()
	fn()
}

func (s *System) track(d *dep, event DebugEvent) {
	sub := s.active
	if sub == nil {
		return
	}
	if !sub.link(d) {
		return
	}
	d.add(sub)
	sub.tracked(event)
}

func (s *System) trigger(d *dep, event DebugEvent) {
	if len(d.subs) == 0 {
		return
	}
	s.depth++
	subs := append([]subscriber(nil), d.subs...)
	for _, sub := range subs {
		sub.notify(event)
	}
	s.depth--
	if s.depth == 0 {
		s.flush()
	}
}

func (s *System) flush() {
	if s.flushing {
		return
	}
	s.flushing = true
	defer func() {
		s.flushing = false
	}()
	for len(s.pending) > 0 {
		effect := s.pending[0]
		s.pending = s.pending[1:]
		effect.queued = false
		if !effect.stopped {
			effect.run()
		}
	}
}

// computation is the dependency bookkeeping shared by Computed and Effect.
type computation struct {
	sys       *System
	deps      []*dep
	onTrack   func(DebugEvent)
	onTrigger func(DebugEvent)
}

func (c *computation) link(d *dep) bool {
	for _, existing := range c.deps {
		if existing == d {
			return false
		}
	}
	c.deps = append(c.deps, d)
	return true
}

func (c *computation) tracked(event DebugEvent) {
	if c.onTrack != nil {
		c.onTrack(event)
	}
}

func (c *computation) triggered(event DebugEvent) {
	if c.onTrigger != nil {
		c.onTrigger(event)
	}
}

func (c *computation) cleanup(self subscriber) {
	for _, d := range c.deps {
		d.remove(self)
	}
	c.deps = nil
}

// Dependencies reports how many sources are currently tracked.
func (c *computation) Dependencies() int {
	return len(c.deps)
}
