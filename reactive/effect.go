package reactive

// Effect re-runs a function whenever a source it read during its previous run
// changes. Effects are flushed after a write has finished propagating.
type Effect struct {
	computation
	fn      func()
	stopped bool
	queued  bool
}

// EffectOption configures debug hooks on an Effect.
type EffectOption = ComputedOption

// Effect runs fn immediately and again after each change to its sources.
func (s *System) Effect(fn func(), opts ...EffectOption) *Effect {
	e := &Effect{
		computation: computation{sys: s},
		fn:          fn,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&e.computation)
		}
	}
	e.run()
	return e
}

// Stop detaches the effect from its sources. A stopped effect never runs again.
func (e *Effect) Stop() {
	if e.stopped {
		return
	}
	e.stopped = true
	e.cleanup(e)
}

// Stopped reports whether Stop was called.
func (e *Effect) Stopped() bool {
	return e.stopped
}

func (e *Effect) run() {
	e.cleanup(e)
	if e.fn == nil {
		return
	}
	e.sys.run(e, e.fn)
}

func (e *Effect) notify(event DebugEvent) {
	if e.stopped || e.queued {
		return
	}
	// An effect writing a source it reads does not retrigger itself.
	if e.sys.active == subscriber(e) {
		return
	}
	e.triggered(event)
	e.queued = true
	e.sys.pending = append(e.sys.pending, e)
}
