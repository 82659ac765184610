package observe

import (
	"sort"
	"time"

	"github.com/goliatone/go-observe/pkg/activity"
)

// AdministrationKey is the hidden own property holding an object's bound
// computed handles.
const AdministrationKey = "$observe"

type administration struct {
	bound map[string]ComputedHandle
}

// MakeObservable resolves obj's annotations and binds them. Call it from the
// constructor before obj is used; calling it again, for example from both a
// base and a derived constructor, only binds keys that are still unbound.
func MakeObservable(obj *Object) error {
	if obj == nil || obj.class == nil {
		return misuse("MakeObservable requires an object created by Class.New")
	}
	return Bind(obj, CollectAnnotations(obj))
}

type bindPlan struct {
	key        string
	annotation Annotation
	accessor   Accessor
	owner      *Class
}

// Bind installs a reactive accessor on obj for each entry of annotations. Each
// key must resolve to an accessor with a getter; otherwise Bind fails with
// ErrInvalidAnnotationTarget before touching the object.
func Bind(obj *Object, annotations map[string]Annotation) error {
	if obj == nil || obj.class == nil {
		return misuse("Bind requires an object created by Class.New")
	}
	class := obj.class
	reg := class.registry

	existing, _ := existingAdministration(obj)

	keys := make([]string, 0, len(annotations))
	for key := range annotations {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	plans := make([]bindPlan, 0, len(keys))
	for _, key := range keys {
		if existing != nil {
			if _, bound := existing.bound[key]; bound {
				continue
			}
		}
		d, owner, ok := LookupDescriptor(obj, key)
		if !ok || !d.HasGetter() {
			return annotationError("bind", class, key, ErrInvalidAnnotationTarget)
		}
		if owner == nil && !d.Configurable {
			return annotationError("bind", class, key, ErrNotConfigurable)
		}
		plans = append(plans, bindPlan{
			key:        key,
			annotation: annotations[key],
			accessor:   *d.Accessor,
			owner:      owner,
		})
	}

	adm, err := administrationOf(obj)
	if err != nil {
		return annotationError("bind", class, AdministrationKey, err)
	}
	for _, plan := range plans {
		start := time.Now()
		handle := reg.engine().MakeComputed(plan.getter(obj), plan.setter(obj), plan.annotation.Options.Clone())
		wrapper := &Accessor{
			Get: func(Receiver) (any, error) {
				return handle.Get()
			},
		}
		if handle.Writable() {
			wrapper.Set = func(_ Receiver, value any) error {
				return handle.Set(value)
			}
		}
		if err := obj.Define(plan.key, Descriptor{
			Accessor:     wrapper,
			Enumerable:   false,
			Configurable: true,
		}); err != nil {
			return annotationError("bind", class, plan.key, err)
		}
		adm.bound[plan.key] = handle

		reg.log(LogEvent{
			Op:       LogOpBind,
			Class:    class.Name(),
			Key:      plan.key,
			Kind:     KindComputed,
			ObjectID: obj.ID(),
			Duration: time.Since(start),
		})
		reg.emit(activity.BuildPropertyBoundEvent(activity.AnnotationEventInput{
			Class:      class.Name(),
			Key:        plan.key,
			Kind:       KindComputed.String(),
			Origin:     plan.annotation.Origin.Name(),
			DeclaredBy: plan.annotation.DeclaredBy.Name(),
			ObjectID:   obj.ID(),
			OptionKeys: optionKeys(plan.annotation.Options),
		}))
	}
	return nil
}

func (p bindPlan) getter(obj *Object) func() (any, error) {
	get := p.accessor.Get
	receiver := Receiver{object: obj, class: p.owner}
	return func() (any, error) {
		return get(receiver)
	}
}

func (p bindPlan) setter(obj *Object) func(any) error {
	set := p.accessor.Set
	if set == nil {
		return nil
	}
	receiver := Receiver{object: obj, class: p.owner}
	return func(value any) error {
		return set(receiver, value)
	}
}

// BoundHandle returns the computed handle bound to key on obj.
func BoundHandle(obj *Object, key string) (ComputedHandle, bool) {
	if obj == nil {
		return nil, false
	}
	adm, ok := existingAdministration(obj)
	if !ok {
		return nil, false
	}
	handle, ok := adm.bound[key]
	return handle, ok
}

// IsObservable reports whether MakeObservable or Bind ran on obj.
func IsObservable(obj *Object) bool {
	_, ok := existingAdministration(obj)
	return ok
}

func existingAdministration(obj *Object) (*administration, bool) {
	if obj == nil {
		return nil, false
	}
	d, ok := obj.props[AdministrationKey]
	if !ok {
		return nil, false
	}
	adm, ok := d.Value.(*administration)
	return adm, ok
}

func administrationOf(obj *Object) (*administration, error) {
	if adm, ok := existingAdministration(obj); ok {
		return adm, nil
	}
	adm := &administration{bound: map[string]ComputedHandle{}}
	if err := InstallHidden(obj, AdministrationKey, adm); err != nil {
		return nil, err
	}
	return adm, nil
}
