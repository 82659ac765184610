package observe

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-observe/pkg/activity"
)

// Declarator annotates a class member. Use Computed or Override to build one
// and pass it to a Builder member method.
type Declarator interface {
	Kind() Kind
	declare(b *Builder, key string) error
}

type declarator struct {
	kind    Kind
	options Options
	merge   bool
	err     error
}

// Computed marks an accessor as a cached derived value. It may be used bare,
// Computed(), or configured, Computed(opts); opts are forwarded to the engine
// when the property is bound.
func Computed(options ...Options) Declarator {
	return newDeclarator(KindComputed, options)
}

// Override marks an accessor as redefining an inherited member. It is
// required when the inherited member is computed; without options the
// override keeps the ancestor's configuration.
func Override(options ...Options) Declarator {
	return newDeclarator(KindOverride, options)
}

// OverrideMerged is Override layering options over the inherited
// configuration instead of replacing it.
func OverrideMerged(options Options) Declarator {
	d := newDeclarator(KindOverride, []Options{options})
	d.merge = true
	return d
}

func newDeclarator(kind Kind, options []Options) declarator {
	d := declarator{kind: kind}
	switch len(options) {
	case 0:
	case 1:
		d.options = options[0].Clone()
	default:
		d.err = misuse("%s accepts a single options argument, got %d", kind, len(options))
	}
	return d
}

func (d declarator) Kind() Kind {
	return d.kind
}

func (d declarator) declare(b *Builder, key string) error {
	class := b.class
	reg := class.registry
	if d.err != nil {
		return annotationError("declare", class, key, d.err)
	}

	_, hasOwn := reg.LookupOwn(class, key)
	inherited, hasInherited := reg.LookupChain(class.chain[1:], key)

	var record Record
	switch d.kind {
	case KindComputed:
		if hasOwn {
			return annotationError("declare", class, key, illegalRedeclaration(class, key, ErrDuplicateAnnotation))
		}
		if hasInherited {
			return annotationError("declare", class, key, illegalRedeclaration(class, key, nil))
		}
		record = Record{
			Kind:    KindComputed,
			Options: d.options,
			Origin:  class,
		}
	case KindOverride:
		if hasOwn {
			return annotationError("declare", class, key, illegalRedeclaration(class, key, ErrDuplicateAnnotation))
		}
		if !hasInherited {
			if _, _, ok := LookupClassDescriptor(class.parent, key); !ok {
				return annotationError("declare", class, key, misuse("no inherited member %s to override", key))
			}
			b.after(func() {
				reg.log(LogEvent{Op: LogOpPlainOverride, Class: class.Name(), Key: key, Kind: KindOverride})
			})
			return nil
		}
		record = Record{
			Kind:    KindOverride,
			Options: d.options,
			Origin:  inherited.Origin,
		}
		switch {
		case d.options == nil:
			record.Options = inherited.Options
			record.Inherited = true
		case d.merge:
			record.Options = mergeOptions(d.options, inherited.Options)
		}
	default:
		return annotationError("declare", class, key, misuse("unknown declarator kind %d", d.kind))
	}

	if err := reg.Declare(class, key, record); err != nil {
		return annotationError("declare", class, key, err)
	}
	event := activity.BuildAnnotationDeclaredEvent(activity.AnnotationEventInput{
		Class:      class.Name(),
		Key:        key,
		Kind:       d.kind.String(),
		Origin:     record.Origin.Name(),
		OptionKeys: optionKeys(record.Options),
		Inherited:  record.Inherited,
	})
	b.after(func() {
		reg.log(LogEvent{Op: LogOpDeclare, Class: class.Name(), Key: key, Kind: d.kind})
		reg.emit(event)
	})
	return nil
}

func optionKeys(options Options) []string {
	if len(options) == 0 {
		return nil
	}
	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// String implements fmt.Stringer for diagnostics.
func (d declarator) String() string {
	if len(d.options) == 0 {
		return d.kind.String()
	}
	return fmt.Sprintf("%s(%v)", d.kind, optionKeys(d.options))
}
