package usersink

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-observe/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook forwards annotation lifecycle events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
	// Verbs limits the forwarded events. Empty forwards every verb; a sink
	// that only audits bindings sets it to activity.VerbPropertyBound.
	Verbs []string
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
// The declaring class and property key land in the record data alongside the
// event metadata.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}

	normalized := activity.NormalizeEvent(event)
	if !activity.Complete(normalized) || !h.accepts(normalized.Verb) {
		return nil
	}
	if err := activity.ValidateEvent(normalized); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	record := usertypes.ActivityRecord{
		ActorID:    parseUUID(normalized.ActorID),
		UserID:     parseUUID(normalized.UserID),
		TenantID:   parseUUID(normalized.TenantID),
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		Data:       normalized.Metadata,
		OccurredAt: normalized.OccurredAt,
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}
	set := func(key string, value any) {
		if record.Data == nil {
			record.Data = map[string]any{}
		}
		record.Data[key] = value
	}
	if normalized.ObjectType == activity.ObjectTypeAnnotation {
		if class, key, ok := strings.Cut(normalized.ObjectID, "."); ok {
			if _, present := record.Data["class"]; !present {
				set("class", class)
			}
			if _, present := record.Data["key"]; !present {
				set("key", key)
			}
		}
	}
	if normalized.DefinitionCode != "" {
		set("definition_code", normalized.DefinitionCode)
	}
	if len(normalized.Recipients) > 0 {
		set("recipients", normalized.Recipients)
	}

	return h.Sink.Log(ctx, record)
}

func (h Hook) accepts(verb string) bool {
	if len(h.Verbs) == 0 {
		return true
	}
	for _, allowed := range h.Verbs {
		if strings.EqualFold(strings.TrimSpace(allowed), verb) {
			return true
		}
	}
	return false
}

// parseUUID maps ids that are not UUIDs, such as service names, to uuid.Nil.
func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil
	}
	return id
}
