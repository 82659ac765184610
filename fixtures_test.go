package observe

import (
	"testing"

	"github.com/goliatone/go-observe/reactive"
	"github.com/stretchr/testify/require"
)

type box struct {
	value *reactive.Ref[int]
	runs  map[string]int
}

func newBox(sys *reactive.System, v int) *box {
	return &box{value: reactive.NewRef(sys, v), runs: map[string]int{}}
}

func hostBox(r Receiver) *box {
	return r.Host().(*box)
}

func newTestRegistry(t *testing.T, opts ...RegistryOption) (*Registry, *reactive.System) {
	t.Helper()
	sys := reactive.NewSystem()
	return NewRegistry(append([]RegistryOption{WithReactiveSystem(sys)}, opts...)...), sys
}

// valueAccessor reads and writes the host box, counting getter runs under key.
func valueAccessor(key string) Accessor {
	return Accessor{
		Get: func(r Receiver) (any, error) {
			b := hostBox(r)
			b.runs[key]++
			return b.value.Get(), nil
		},
		Set: func(r Receiver, value any) error {
			hostBox(r).value.Set(value.(int))
			return nil
		},
	}
}

func defineBase(t *testing.T, reg *Registry, decl Declarator) *Class {
	t.Helper()
	class, err := reg.Define("Base", func(b *Builder) error {
		return b.Accessor("foo", valueAccessor("Base.foo"), decl)
	})
	require.NoError(t, err)
	return class
}
