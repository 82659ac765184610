package reactive

import "reflect"

// Ref is a primitive observable cell.
type Ref[T any] struct {
	sys   *System
	dep   dep
	value T
	equal func(a, b T) bool
}

// RefOption configures a Ref.
type RefOption[T any] func(*Ref[T])

// WithEqual replaces the change detection used by Set.
func WithEqual[T any](equal func(a, b T) bool) RefOption[T] {
	return func(r *Ref[T]) {
		if equal != nil {
			r.equal = equal
		}
	}
}

// NewRef constructs a Ref holding value.
func NewRef[T any](sys *System, value T, opts ...RefOption[T]) *Ref[T] {
	if sys == nil {
		sys = DefaultSystem()
	}
	r := &Ref[T]{
		sys:   sys,
		value: value,
		equal: func(a, b T) bool { return Same(a, b) },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Get returns the current value and tracks the read.
func (r *Ref[T]) Get() T {
	r.sys.track(&r.dep, DebugEvent{Target: r, Op: OpGet, Key: "value"})
	return r.value
}

// Peek returns the current value without tracking.
func (r *Ref[T]) Peek() T {
	return r.value
}

// Set stores value and notifies dependents when it differs from the current
// value.
func (r *Ref[T]) Set(value T) {
	if r.equal(r.value, value) {
		return
	}
	old := r.value
	r.value = value
	r.sys.trigger(&r.dep, DebugEvent{
		Target:   r,
		Op:       OpSet,
		Key:      "value",
		OldValue: old,
		NewValue: value,
	})
}

// Update applies fn to the current value and stores the result.
func (r *Ref[T]) Update(fn func(T) T) {
	if fn == nil {
		return
	}
	r.Set(fn(r.value))
}

// Same reports whether a and b should be treated as the same value. Values of
// non-comparable types (slices, maps, funcs) are never the same, so writing
// one always notifies.
func Same(a, b any) (same bool) {
	defer func() {
		// Comparable structs can still hold non-comparable interface values.
		if recover() != nil {
			same = false
		}
	}()
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil {
		return true
	}
	if !ta.Comparable() {
		return false
	}
	if a == b {
		return true
	}
	// NaN is the same as itself.
	switch ta.Kind() {
	case reflect.Float32, reflect.Float64:
		fa, fb := reflect.ValueOf(a).Float(), reflect.ValueOf(b).Float()
		return fa != fa && fb != fb
	}
	return false
}
