package observe

import (
	"fmt"

	"github.com/google/uuid"
)

// Object is an instance of a Class. It holds the instance's own properties,
// including the reactive accessors installed by MakeObservable, and the host
// value that class accessors operate on.
type Object struct {
	id    uuid.UUID
	class *Class
	host  any
	props map[string]*Descriptor
	order []string
}

// ID returns the object's identifier.
func (o *Object) ID() string {
	if o == nil {
		return ""
	}
	return o.id.String()
}

// Class returns the class the object was created from.
func (o *Object) Class() *Class {
	if o == nil {
		return nil
	}
	return o.class
}

// Host returns the value passed to Class.New.
func (o *Object) Host() any {
	if o == nil {
		return nil
	}
	return o.host
}

// Define installs an own property. Redefining an existing own property fails
// with ErrNotConfigurable unless that property is configurable.
func (o *Object) Define(key string, d Descriptor) error {
	if key == "" {
		return misuse("property key must not be empty")
	}
	if existing, ok := o.props[key]; ok {
		if !existing.Configurable {
			return fmt.Errorf("observe: define %s: %w", qualify(o.class.Name(), key), ErrNotConfigurable)
		}
		copied := d
		o.props[key] = &copied
		return nil
	}
	if o.props == nil {
		o.props = map[string]*Descriptor{}
	}
	copied := d
	o.props[key] = &copied
	o.order = append(o.order, key)
	return nil
}

// DefineField installs an own enumerable data property, the equivalent of a
// field assignment in a constructor.
func (o *Object) DefineField(key string, value any) error {
	return o.Define(key, Descriptor{
		Value:        value,
		Writable:     true,
		Enumerable:   true,
		Configurable: true,
	})
}

// Keys returns the enumerable own keys in definition order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, 0, len(o.order))
	for _, key := range o.order {
		if o.props[key].Enumerable {
			keys = append(keys, key)
		}
	}
	return keys
}

// Get reads key, invoking the accessor when the property is one.
func (o *Object) Get(key string) (any, error) {
	d, owner, ok := LookupDescriptor(o, key)
	if !ok {
		return nil, fmt.Errorf("observe: get %s: %w", qualify(o.Class().Name(), key), ErrPropertyNotFound)
	}
	if !d.IsAccessor() {
		return d.Value, nil
	}
	if d.Accessor.Get == nil {
		return nil, nil
	}
	return d.Accessor.Get(Receiver{object: o, class: owner})
}

// Set writes key through the property's setter, or replaces the value of a
// writable own data property. Class members are always accessors, so data
// properties are always own.
func (o *Object) Set(key string, value any) error {
	d, owner, ok := LookupDescriptor(o, key)
	if !ok {
		return fmt.Errorf("observe: set %s: %w", qualify(o.Class().Name(), key), ErrPropertyNotFound)
	}
	if d.IsAccessor() {
		if d.Accessor.Set == nil {
			return fmt.Errorf("observe: set %s: %w", qualify(o.Class().Name(), key), ErrReadOnly)
		}
		return d.Accessor.Set(Receiver{object: o, class: owner}, value)
	}
	if !d.Writable {
		return fmt.Errorf("observe: set %s: %w", qualify(o.Class().Name(), key), ErrReadOnly)
	}
	o.props[key].Value = value
	return nil
}

// Value reads key from obj and asserts the result to T.
func Value[T any](obj *Object, key string) (T, error) {
	var zero T
	raw, err := obj.Get(key)
	if err != nil {
		return zero, err
	}
	if raw == nil {
		return zero, nil
	}
	typed, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("observe: get %s: value of type %T is not %T", qualify(obj.Class().Name(), key), raw, zero)
	}
	return typed, nil
}

// Receiver is the object an accessor runs against, bound to the class that
// declared the accessor so Super reaches the right ancestor.
type Receiver struct {
	object *Object
	class  *Class
}

// Object returns the object the property is read on.
func (r Receiver) Object() *Object {
	return r.object
}

// Class returns the class that declared the running accessor, or nil for own
// properties.
func (r Receiver) Class() *Class {
	return r.class
}

// Host returns the object's host value.
func (r Receiver) Host() any {
	return r.object.Host()
}

// Get reads a property on the object.
func (r Receiver) Get(key string) (any, error) {
	return r.object.Get(key)
}

// Set writes a property on the object.
func (r Receiver) Set(key string, value any) error {
	return r.object.Set(key, value)
}

// Super reads key using the implementation inherited by the declaring class,
// skipping any reactive wrapper installed on the object.
func (r Receiver) Super(key string) (any, error) {
	d, owner, err := r.superDescriptor(key)
	if err != nil {
		return nil, err
	}
	if !d.HasGetter() {
		return nil, nil
	}
	return d.Accessor.Get(Receiver{object: r.object, class: owner})
}

// SuperSet writes key through the setter inherited by the declaring class.
func (r Receiver) SuperSet(key string, value any) error {
	d, owner, err := r.superDescriptor(key)
	if err != nil {
		return err
	}
	if !d.IsAccessor() || d.Accessor.Set == nil {
		return fmt.Errorf("observe: super set %s: %w", qualify(r.class.Name(), key), ErrReadOnly)
	}
	return d.Accessor.Set(Receiver{object: r.object, class: owner}, value)
}

func (r Receiver) superDescriptor(key string) (Descriptor, *Class, error) {
	if r.class == nil || r.class.parent == nil {
		return Descriptor{}, nil, fmt.Errorf("observe: super %s: %w", qualify(r.class.Name(), key), ErrPropertyNotFound)
	}
	d, owner, ok := LookupClassDescriptor(r.class.parent, key)
	if !ok {
		return Descriptor{}, nil, fmt.Errorf("observe: super %s: %w", qualify(r.class.Name(), key), ErrPropertyNotFound)
	}
	return d, owner, nil
}
