package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultChannel is stamped on events that reach a hook without a channel.
const DefaultChannel = "observe"

// Verbs emitted by the registry and the binder.
const (
	VerbAnnotationDeclared = "annotation.declared"
	VerbPropertyBound      = "property.bound"
)

// Object types carried by the registry and binder verbs.
const (
	ObjectTypeAnnotation = "annotation"
	ObjectTypeProperty   = "property"
)

// ErrObjectTypeMismatch reports a known verb paired with the wrong object type.
var ErrObjectTypeMismatch = errors.New("activity: object type does not match verb")

var verbObjectTypes = map[string]string{
	VerbAnnotationDeclared: ObjectTypeAnnotation,
	VerbPropertyBound:      ObjectTypeProperty,
}

// Event describes an annotation lifecycle occurrence fanned out to hooks.
// ObjectID is a qualified Class.key for declarations and objectID/key for
// bound properties.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// ActivityHook receives normalized activity events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans out events to zero or more hooks.
type Hooks []ActivityHook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify normalizes the event and forwards it to all hooks, returning a joined
// error if any fail. Events missing a verb, object type or object id are
// dropped silently. A registry or binder verb carrying a foreign object type
// is rejected with ErrObjectTypeMismatch before any hook runs.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}

	normalized := NormalizeEvent(event)
	if !Complete(normalized) {
		return nil
	}
	if err := ValidateEvent(normalized); err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// Complete reports whether the event carries the fields every hook requires.
func Complete(event Event) bool {
	return event.Verb != "" && event.ObjectType != "" && event.ObjectID != ""
}

// ValidateEvent checks a normalized event. Verbs outside the registry and
// binder set pass through unchecked.
func ValidateEvent(event Event) error {
	want, ok := verbObjectTypes[event.Verb]
	if !ok || event.ObjectType == want {
		return nil
	}
	return fmt.Errorf("%w: %s carries %q, want %q", ErrObjectTypeMismatch, event.Verb, event.ObjectType, want)
}

// NormalizeEvent trims whitespace, lowercases the verb and object type, and
// clones metadata and recipients. A missing channel becomes DefaultChannel and
// a missing timestamp becomes now.
func NormalizeEvent(event Event) Event {
	normalized := event
	normalized.Verb = strings.ToLower(strings.TrimSpace(event.Verb))
	normalized.ActorID = strings.TrimSpace(event.ActorID)
	normalized.UserID = strings.TrimSpace(event.UserID)
	normalized.TenantID = strings.TrimSpace(event.TenantID)
	normalized.ObjectType = strings.ToLower(strings.TrimSpace(event.ObjectType))
	normalized.ObjectID = strings.TrimSpace(event.ObjectID)
	normalized.Channel = strings.TrimSpace(event.Channel)
	if normalized.Channel == "" {
		normalized.Channel = DefaultChannel
	}
	normalized.DefinitionCode = strings.TrimSpace(event.DefinitionCode)
	normalized.Metadata = cloneMap(event.Metadata)
	if len(event.Recipients) > 0 {
		normalized.Recipients = append([]string{}, event.Recipients...)
	} else {
		normalized.Recipients = nil
	}
	if normalized.OccurredAt.IsZero() {
		normalized.OccurredAt = time.Now()
	}
	return normalized
}

// cloneMap copies metadata one level deep. Option key lists are copied too so
// a hook appending to them never reaches the declaring record.
func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		if keys, ok := value.([]string); ok {
			value = append([]string{}, keys...)
		}
		dst[key] = value
	}
	return dst
}
