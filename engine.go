package observe

import "github.com/goliatone/go-observe/reactive"

// Engine supplies the computed-value primitive the binder wraps accessors
// with. The handle must cache the getter's result, register a dependency when
// read inside another tracked evaluation, and invalidate when a source the
// getter read changes.
type Engine interface {
	MakeComputed(getter func() (any, error), setter func(any) error, options Options) ComputedHandle
}

// ComputedHandle is a bound computed value.
type ComputedHandle interface {
	Get() (any, error)
	Set(value any) error
	Writable() bool
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(getter func() (any, error), setter func(any) error, options Options) ComputedHandle

// MakeComputed implements Engine.
func (f EngineFunc) MakeComputed(getter func() (any, error), setter func(any) error, options Options) ComputedHandle {
	return f(getter, setter, options)
}

type reactiveEngine struct {
	sys *reactive.System
}

// NewReactiveEngine returns an Engine backed by the reference reactive
// package. OptionOnTrack and OptionOnTrigger are translated into the matching
// computed hooks; every other option is ignored.
func NewReactiveEngine(sys *reactive.System) Engine {
	if sys == nil {
		sys = reactive.DefaultSystem()
	}
	return reactiveEngine{sys: sys}
}

func (e reactiveEngine) MakeComputed(getter func() (any, error), setter func(any) error, options Options) ComputedHandle {
	var opts []reactive.ComputedOption
	if fn, ok := options[OptionOnTrack].(func(reactive.DebugEvent)); ok && fn != nil {
		opts = append(opts, reactive.OnTrack(fn))
	}
	if fn, ok := options[OptionOnTrigger].(func(reactive.DebugEvent)); ok && fn != nil {
		opts = append(opts, reactive.OnTrigger(fn))
	}
	return reactive.NewWritableComputed(e.sys, getter, setter, opts...)
}
