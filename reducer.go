package parcore

import (
	"math"
	"reflect"
)

// Number is the constraint satisfied by the built-in reducers.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// Reducer describes how partial reduction values combine: Init writes the
// identity, Join folds src into dst, and Final post-processes the fully
// merged value exactly once. Join must be associative; the engine gives no
// ordering guarantee for Join calls across threads.
type Reducer[T any] interface {
	Init(v *T)
	Join(dst, src *T)
	Final(v *T)
}

// Sum reduces by addition. The identity is the zero value.
type Sum[T Number] struct{}

func (Sum[T]) Init(v *T)       { var zero T; *v = zero }
func (Sum[T]) Join(dst, src *T) { *dst += *src }
func (Sum[T]) Final(*T)        {}

// Prod reduces by multiplication. The identity is one.
type Prod[T Number] struct{}

func (Prod[T]) Init(v *T)       { *v = 1 }
func (Prod[T]) Join(dst, src *T) { *dst *= *src }
func (Prod[T]) Final(*T)        {}

// Min reduces to the smallest value seen. The identity is the type's
// maximum representable value (+Inf for floats).
type Min[T Number] struct{}

func (Min[T]) Init(v *T) { *v = typeLimit[T](true) }
func (Min[T]) Join(dst, src *T) {
	if *src < *dst {
		*dst = *src
	}
}
func (Min[T]) Final(*T) {}

// Max reduces to the largest value seen. The identity is the type's
// minimum representable value (-Inf for floats).
type Max[T Number] struct{}

func (Max[T]) Init(v *T) { *v = typeLimit[T](false) }
func (Max[T]) Join(dst, src *T) {
	if *src > *dst {
		*dst = *src
	}
}
func (Max[T]) Final(*T) {}

// typeLimit returns the maximum (upper=true) or minimum representable
// value of T. Resolved through reflection so named numeric types work;
// only runs in Init, never in the per-iteration path.
func typeLimit[T Number](upper bool) T {
	var v T
	rv := reflect.ValueOf(&v).Elem()
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		if upper {
			rv.SetFloat(math.Inf(1))
		} else {
			rv.SetFloat(math.Inf(-1))
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		bits := rv.Type().Bits()
		if upper {
			rv.SetInt(int64(1)<<(bits-1) - 1)
		} else {
			rv.SetInt(-(int64(1) << (bits - 1)))
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		if upper {
			bits := rv.Type().Bits()
			rv.SetUint(^uint64(0) >> (64 - bits))
		} else {
			rv.SetUint(0)
		}
	}
	return v
}
