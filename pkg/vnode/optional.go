package vnode

import "reflect"

// Optional holds a value that may be absent. For scalar T (booleans,
// numbers and strings) properties accept Optional[T], *T and bare T
// interchangeably; all three resolve to the same property value, and an
// absent value resolves to the toolkit default.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a present optional value.
func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, set: true}
}

// None returns an absent optional value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// OrElse returns the value, or fallback when absent.
func (o Optional[T]) OrElse(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}

func (o Optional[T]) resolve() (any, bool) {
	if !o.set {
		return nil, false
	}
	return o.value, true
}

type optional interface {
	resolve() (any, bool)
}

// Resolve normalizes a property input. It unwraps Optional values and
// dereferences pointers to scalars, reporting false when the input is absent
// (an empty Optional, nil, or a nil pointer). Pointers to anything else are
// kept as they are, so a shared model object or image handle keeps its
// identity.
func Resolve(value any) (any, bool) {
	if value == nil {
		return nil, false
	}
	if opt, ok := value.(optional); ok {
		inner, present := opt.resolve()
		if !present {
			return nil, false
		}
		return Resolve(inner)
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		if scalar(rv.Type().Elem().Kind()) {
			return rv.Elem().Interface(), true
		}
	}
	return value, true
}

func scalar(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}
