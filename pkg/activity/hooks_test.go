package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"k": "v"}
	recipients := []string{" a ", "b "}
	evt := Event{
		Verb:           " create ",
		ActorID:        " actor ",
		UserID:         " user ",
		TenantID:       " tenant ",
		ObjectType:     " annotation ",
		ObjectID:       " 42 ",
		Channel:        " observe ",
		DefinitionCode: " def ",
		Recipients:     recipients,
		Metadata:       meta,
	}

	got := NormalizeEvent(evt)

	if got.Verb != "create" || got.ObjectType != "annotation" || got.ObjectID != "42" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.ActorID != "actor" || got.UserID != "user" || got.TenantID != "tenant" || got.Channel != "observe" || got.DefinitionCode != "def" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	if got.Metadata["k"] != "v" {
		t.Fatalf("expected metadata value preserved: %+v", got.Metadata)
	}
	got.Metadata["k"] = "changed"
	if evt.Metadata["k"] != "v" {
		t.Fatalf("expected original metadata untouched: %+v", evt.Metadata)
	}
	got.Recipients[0] = "changed"
	if recipients[0] != " a " {
		t.Fatalf("expected original recipients untouched: %+v", recipients)
	}
}

func TestHooksNotifyShortCircuitsMissingRequired(t *testing.T) {
	hooks := Hooks{&CaptureHook{}}
	err := hooks.Notify(context.Background(), Event{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	capture := hooks[0].(*CaptureHook)
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Events))
	}
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	capture := &CaptureHook{}
	boom1 := errors.New("boom1")
	boom2 := errors.New("boom2")
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, event Event) error {
			if ctx != nil {
				ctxSeen = true
			}
			return nil
		}),
		capture,
		HookFunc(func(_ context.Context, _ Event) error { return boom1 }),
		nil,
		HookFunc(func(_ context.Context, _ Event) error { return boom2 }),
	}

	err := hooks.Notify(nil, Event{Verb: "update", ObjectType: "annotation", ObjectID: "1"})
	if err == nil || !errors.Is(err, boom1) || !errors.Is(err, boom2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !ctxSeen {
		t.Fatalf("expected context fallback to be non-nil")
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected event to be captured once, got %d", len(capture.Events))
	}
}

func TestEmitterDisabledAndEnabled(t *testing.T) {
	capture := &CaptureHook{}

	disabled := NewEmitter(Hooks{capture}, Config{Enabled: false})
	if disabled.Enabled() {
		t.Fatalf("expected emitter to be disabled")
	}
	if err := disabled.Emit(context.Background(), Event{Verb: "create", ObjectType: "annotation", ObjectID: "1"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured when disabled")
	}

	enabled := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: ""})
	if !enabled.Enabled() {
		t.Fatalf("expected emitter to be enabled")
	}
	if err := enabled.Emit(context.Background(), Event{Verb: "create", ObjectType: "annotation", ObjectID: "1"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected one event captured, got %d", len(capture.Events))
	}
	if capture.Events[0].Channel != "observe" {
		t.Fatalf("expected default channel applied, got %q", capture.Events[0].Channel)
	}
}

func TestEmitterPreservesExplicitChannel(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "default"})

	err := emitter.Emit(context.Background(), Event{
		Verb:       "create",
		ObjectType: "annotation",
		ObjectID:   "1",
		Channel:    "custom",
		OccurredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if capture.Events[0].Channel != "custom" {
		t.Fatalf("expected explicit channel preserved, got %q", capture.Events[0].Channel)
	}
	if capture.Events[0].OccurredAt != (time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected occurred_at preserved, got %v", capture.Events[0].OccurredAt)
	}
}

func TestEmitterAppliesDefaultActor(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, ActorID: " svc-observe "})

	if err := emitter.Emit(context.Background(), Event{Verb: "annotation.declared", ObjectType: "annotation", ObjectID: "Base.foo"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if err := emitter.Emit(context.Background(), Event{Verb: "annotation.declared", ObjectType: "annotation", ObjectID: "Base.bar", ActorID: "user-1"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if capture.Events[0].ActorID != "svc-observe" {
		t.Fatalf("expected default actor applied, got %q", capture.Events[0].ActorID)
	}
	if capture.Events[1].ActorID != "user-1" {
		t.Fatalf("expected explicit actor preserved, got %q", capture.Events[1].ActorID)
	}
}

func TestNormalizeEventLowercasesAndDefaultsChannel(t *testing.T) {
	got := NormalizeEvent(Event{Verb: " Property.Bound ", ObjectType: "PROPERTY", ObjectID: "obj-1/doubled"})

	if got.Verb != VerbPropertyBound || got.ObjectType != ObjectTypeProperty {
		t.Fatalf("expected lowercased verb and object type, got %+v", got)
	}
	if got.ObjectID != "obj-1/doubled" {
		t.Fatalf("expected object id case preserved, got %q", got.ObjectID)
	}
	if got.Channel != DefaultChannel {
		t.Fatalf("expected default channel %q, got %q", DefaultChannel, got.Channel)
	}
}

func TestNormalizeEventClonesOptionKeys(t *testing.T) {
	keys := []string{"label", "weight"}
	got := NormalizeEvent(Event{
		Verb:       VerbAnnotationDeclared,
		ObjectType: ObjectTypeAnnotation,
		ObjectID:   "Base.foo",
		Metadata:   map[string]any{"option_keys": keys},
	})

	cloned, ok := got.Metadata["option_keys"].([]string)
	if !ok || len(cloned) != 2 {
		t.Fatalf("expected option keys preserved, got %v", got.Metadata["option_keys"])
	}
	cloned[0] = "changed"
	if keys[0] != "label" {
		t.Fatalf("expected original option keys untouched: %v", keys)
	}
}

func TestHooksNotifyRejectsMismatchedObjectType(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}

	err := hooks.Notify(context.Background(), Event{Verb: VerbAnnotationDeclared, ObjectType: ObjectTypeProperty, ObjectID: "Base.foo"})
	if !errors.Is(err, ErrObjectTypeMismatch) {
		t.Fatalf("expected ErrObjectTypeMismatch, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Events))
	}

	if err := hooks.Notify(context.Background(), Event{Verb: "annotation.removed", ObjectType: "property", ObjectID: "Base.foo"}); err != nil {
		t.Fatalf("expected unknown verbs to pass through, got %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected unknown verb captured, got %d", len(capture.Events))
	}
}

func TestCaptureHookQueries(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}
	ctx := context.Background()

	events := []Event{
		{Verb: VerbAnnotationDeclared, ObjectType: ObjectTypeAnnotation, ObjectID: "Base.foo"},
		{Verb: VerbPropertyBound, ObjectType: ObjectTypeProperty, ObjectID: "obj-1/foo"},
		{Verb: VerbAnnotationDeclared, ObjectType: ObjectTypeAnnotation, ObjectID: "Child.foo"},
	}
	for _, event := range events {
		if err := hooks.Notify(ctx, event); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}

	if got := capture.ObjectIDs(VerbAnnotationDeclared); len(got) != 2 || got[0] != "Base.foo" || got[1] != "Child.foo" {
		t.Fatalf("unexpected declared ids: %v", got)
	}
	if got := capture.Bound(); len(got) != 1 || got[0].ObjectID != "obj-1/foo" {
		t.Fatalf("unexpected bound events: %+v", got)
	}
	if got := capture.Find(" Annotation.Declared "); len(got) != 2 {
		t.Fatalf("expected verb lookup to normalize, got %d", len(got))
	}
	if got := capture.ObjectIDs("property.unbound"); got != nil {
		t.Fatalf("expected nil ids for unknown verb, got %v", got)
	}

	capture.Reset()
	if len(capture.Declared()) != 0 || len(capture.Events) != 0 {
		t.Fatalf("expected reset to drop events")
	}
}
