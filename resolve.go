package observe

// Annotation is one entry of an effective annotation map. Kind is always
// KindComputed: overrides resolve to the computed they redefine.
type Annotation struct {
	Kind    Kind
	Options Options
	// DeclaredBy is the most derived class declaring the property.
	DeclaredBy *Class
	// Origin is the class holding the root computed declaration.
	Origin *Class
}

// CollectAnnotations resolves the effective annotations for obj by walking
// its class chain from most derived to root. The nearest declaration wins; an
// override resolves to a computed carrying its own options, or the nearest
// ancestor's when it has none. Keys without declarations are absent. The map
// is built fresh on every call.
func CollectAnnotations(obj *Object) map[string]Annotation {
	if obj == nil || obj.class == nil {
		return map[string]Annotation{}
	}
	return obj.class.registry.collect(obj.class)
}

func (r *Registry) collect(class *Class) map[string]Annotation {
	out := map[string]Annotation{}
	chain := class.Ancestors()
	for i, c := range chain {
		for key, record := range r.ownRecords(c) {
			if _, seen := out[key]; seen {
				continue
			}
			out[key] = r.resolveRecord(chain[i+1:], key, record)
		}
	}
	return out
}

func (r *Registry) resolveRecord(ancestors []*Class, key string, record Record) Annotation {
	annotation := Annotation{
		Kind:       KindComputed,
		Options:    record.Options.Clone(),
		DeclaredBy: record.Class,
		Origin:     record.Origin,
	}
	if record.Kind != KindOverride || record.Options != nil {
		return annotation
	}
	for _, ancestor := range ancestors {
		inherited, ok := r.LookupOwn(ancestor, key)
		if !ok {
			continue
		}
		if inherited.Options != nil || inherited.Kind == KindComputed {
			annotation.Options = inherited.Options
			break
		}
	}
	return annotation
}
