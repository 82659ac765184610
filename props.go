package observe

// Accessor is a getter with an optional setter. Both receive the object the
// property is read on, bound to the class that declared the accessor.
type Accessor struct {
	Get func(r Receiver) (any, error)
	Set func(r Receiver, value any) error
}

// Descriptor describes one property, either an accessor pair or a data value.
type Descriptor struct {
	Accessor     *Accessor
	Value        any
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// IsAccessor reports whether d describes an accessor pair.
func (d Descriptor) IsAccessor() bool {
	return d.Accessor != nil
}

// HasGetter reports whether d is an accessor with a getter.
func (d Descriptor) HasGetter() bool {
	return d.Accessor != nil && d.Accessor.Get != nil
}

// LookupDescriptor searches the object's own properties and then its class
// chain, most derived first. The returned class is nil for own properties.
func LookupDescriptor(obj *Object, key string) (Descriptor, *Class, bool) {
	if obj == nil {
		return Descriptor{}, nil, false
	}
	if d, ok := obj.props[key]; ok {
		return *d, nil, true
	}
	return LookupClassDescriptor(obj.class, key)
}

// LookupClassDescriptor searches class members starting at class and walking
// towards the root.
func LookupClassDescriptor(class *Class, key string) (Descriptor, *Class, bool) {
	for _, c := range class.Ancestors() {
		if d, ok := c.members[key]; ok {
			return *d, c, true
		}
	}
	return Descriptor{}, nil, false
}

// InstallHidden defines an own, non-enumerable, configurable, writable data
// property on obj.
func InstallHidden(obj *Object, key string, value any) error {
	return obj.Define(key, Descriptor{
		Value:        value,
		Writable:     true,
		Enumerable:   false,
		Configurable: true,
	})
}

// OwnKeys returns every own key of obj, hidden ones included, in definition
// order.
func OwnKeys(obj *Object) []string {
	if obj == nil || len(obj.order) == 0 {
		return nil
	}
	return append([]string(nil), obj.order...)
}
