package activity

import (
	"context"
	"strings"
	"sync"
)

// CaptureHook records normalized events in memory, for tests and examples.
type CaptureHook struct {
	Events []Event
	Err    error
	mu     sync.Mutex
}

// Notify records the event and returns any configured error.
func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, NormalizeEvent(event))
	return h.Err
}

// Declared returns the captured annotation.declared events in arrival order.
func (h *CaptureHook) Declared() []Event {
	return h.Find(VerbAnnotationDeclared)
}

// Bound returns the captured property.bound events in arrival order.
func (h *CaptureHook) Bound() []Event {
	return h.Find(VerbPropertyBound)
}

// Find returns the captured events with the given verb. The verb is matched
// the way NormalizeEvent stores it.
func (h *CaptureHook) Find(verb string) []Event {
	verb = strings.ToLower(strings.TrimSpace(verb))
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Event
	for _, event := range h.Events {
		if event.Verb == verb {
			out = append(out, event)
		}
	}
	return out
}

// ObjectIDs lists the object ids of the captured events with the given verb.
func (h *CaptureHook) ObjectIDs(verb string) []string {
	events := h.Find(verb)
	if len(events) == 0 {
		return nil
	}
	ids := make([]string, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.ObjectID)
	}
	return ids
}

// Reset drops every captured event.
func (h *CaptureHook) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = nil
}
