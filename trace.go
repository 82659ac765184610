package observe

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Trace captures how each class in an object's chain contributes to the
// effective annotation of one property.
type Trace struct {
	Key       string       `json:"key" yaml:"key"`
	Class     string       `json:"class" yaml:"class"`
	Effective *Effective   `json:"effective,omitempty" yaml:"effective,omitempty"`
	Layers    []Provenance `json:"layers" yaml:"layers"`
}

// Effective is the JSON-friendly form of the resolved annotation.
type Effective struct {
	Kind       Kind     `json:"kind" yaml:"kind"`
	DeclaredBy string   `json:"declared_by" yaml:"declared_by"`
	Origin     string   `json:"origin" yaml:"origin"`
	OptionKeys []string `json:"option_keys,omitempty" yaml:"option_keys,omitempty"`
}

// Provenance details one class in the chain.
type Provenance struct {
	Class      string   `json:"class" yaml:"class"`
	Member     bool     `json:"member" yaml:"member"`
	Found      bool     `json:"found" yaml:"found"`
	Kind       Kind     `json:"kind,omitempty" yaml:"kind,omitempty"`
	Inherited  bool     `json:"inherited,omitempty" yaml:"inherited,omitempty"`
	OptionKeys []string `json:"option_keys,omitempty" yaml:"option_keys,omitempty"`
}

// TraceAnnotation reports, most derived first, which classes declare a member
// or an annotation for key and what the resolver makes of it.
func TraceAnnotation(obj *Object, key string) Trace {
	trace := Trace{Key: key}
	if obj == nil || obj.class == nil {
		return trace
	}
	class := obj.class
	trace.Class = class.Name()
	for _, c := range class.Ancestors() {
		layer := Provenance{
			Class:  c.Name(),
			Member: c.HasMember(key),
		}
		if record, ok := class.registry.LookupOwn(c, key); ok {
			layer.Found = true
			layer.Kind = record.Kind
			layer.Inherited = record.Inherited
			layer.OptionKeys = optionKeys(record.Options)
		}
		trace.Layers = append(trace.Layers, layer)
	}
	if annotation, ok := CollectAnnotations(obj)[key]; ok {
		trace.Effective = &Effective{
			Kind:       annotation.Kind,
			DeclaredBy: annotation.DeclaredBy.Name(),
			Origin:     annotation.Origin.Name(),
			OptionKeys: optionKeys(annotation.Options),
		}
	}
	return trace
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

// ToYAML renders the trace as YAML, which reads better than JSON in
// diagnostics output.
func (t Trace) ToYAML() ([]byte, error) {
	return yaml.Marshal(t)
}
