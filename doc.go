// Package observe declares reactive computed properties on classes defined
// through an explicit Registry.
//
// A class body registers accessor members and annotates them with Computed or
// Override. Each class caches its ancestor list, and the resolver walks it
// most derived first, so the nearest declaration of a property wins. An
// override of an inherited computed keeps it computed, with its own options or
// the ancestor's.
//
//	reg := observe.NewRegistry()
//	base := reg.MustDefine("Base", func(b *observe.Builder) error {
//		return b.Getter("total", total, observe.Computed())
//	})
//	obj := base.New(host)
//	if err := observe.MakeObservable(obj); err != nil {
//		return err
//	}
//
// MakeObservable replaces every annotated accessor of the instance with one
// backed by the registry's Engine, by default the reference engine in package
// reactive. Binding is idempotent, so constructors along a class chain may all
// call it.
package observe
