package observe

import (
	layering "github.com/goliatone/go-observe/layering"
	"github.com/goliatone/go-observe/reactive"
)

// Options is the configuration bag attached to a computed declaration. The
// registry never interprets its entries; it only copies them along the
// inheritance chain and hands them to the engine at bind time.
type Options map[string]any

const (
	// OptionOnTrack is read by the reference engine; the value must be a
	// func(reactive.DebugEvent) called whenever the computed tracks a source.
	OptionOnTrack = "onTrack"
	// OptionOnTrigger is read by the reference engine; the value must be a
	// func(reactive.DebugEvent) called whenever a tracked source changes.
	OptionOnTrigger = "onTrigger"
)

// OnTrack returns Options carrying an OptionOnTrack hook.
func OnTrack(fn func(reactive.DebugEvent)) Options {
	return Options{OptionOnTrack: fn}
}

// OnTrigger returns Options carrying an OptionOnTrigger hook.
func OnTrigger(fn func(reactive.DebugEvent)) Options {
	return Options{OptionOnTrigger: fn}
}

// Clone returns a shallow copy. A nil bag stays nil so "no options" remains
// distinguishable from "empty options".
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	out := make(Options, len(o))
	for key, value := range o {
		out[key] = value
	}
	return out
}

func mergeOptions(strong, weak Options) Options {
	return layering.MergeLayers(strong, weak)
}
