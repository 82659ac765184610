package activity

import (
	"strings"
	"time"
)

// AnnotationEventInput describes the common fields for annotation lifecycle
// events: a declaration recorded on a class, or a property bound on an
// instance.
type AnnotationEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	Class      string
	Key        string
	Kind       string
	Origin     string
	DeclaredBy string
	ObjectID   string
	OptionKeys []string
	Inherited  bool
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildAnnotationDeclaredEvent constructs an event for an annotation recorded
// on a class. The object id is the qualified Class.key property.
func BuildAnnotationDeclaredEvent(input AnnotationEventInput) Event {
	objectID := qualify(input.Class, input.Key)
	return buildAnnotationEvent(VerbAnnotationDeclared, ObjectTypeAnnotation, objectID, input)
}

// BuildPropertyBoundEvent constructs an event for a computed property bound on
// an instance. The object id is objectID/key, falling back to Class.key.
func BuildPropertyBoundEvent(input AnnotationEventInput) Event {
	objectID := strings.TrimSpace(input.ObjectID)
	if objectID != "" && input.Key != "" {
		objectID = objectID + "/" + input.Key
	}
	if objectID == "" {
		objectID = qualify(input.Class, input.Key)
	}
	return buildAnnotationEvent(VerbPropertyBound, ObjectTypeProperty, objectID, input)
}

func buildAnnotationEvent(verb, objectType, objectID string, input AnnotationEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}
	if input.Class != "" {
		set("class", input.Class)
	}
	if input.Key != "" {
		set("key", input.Key)
	}
	if input.Kind != "" {
		set("kind", input.Kind)
	}
	if input.Origin != "" {
		set("origin", input.Origin)
	}
	if input.DeclaredBy != "" {
		set("declared_by", input.DeclaredBy)
	}
	if len(input.OptionKeys) > 0 {
		set("option_keys", append([]string{}, input.OptionKeys...))
	}
	if input.Inherited {
		set("inherited", true)
	}
	if strings.TrimSpace(objectID) == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func qualify(class, key string) string {
	class = strings.TrimSpace(class)
	key = strings.TrimSpace(key)
	switch {
	case class == "":
		return key
	case key == "":
		return class
	default:
		return class + "." + key
	}
}
