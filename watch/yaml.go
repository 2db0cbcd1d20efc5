package watch

import (
	"github.com/mohae/deepcopy"
	"github.com/phanxgames/bramble"
)

// Decoded is the result of decoding a watched document.
type Decoded[T any] struct {
	Value T
	Err   error
}

// YAML returns an observable that decodes src as YAML into a deep copy of
// defaults every time src changes, so one decode never sees the keys of
// another. Struct values are validated with their validate tags. A read or
// decode failure is reported in Err with Value set to a copy of defaults.
// Unexported fields of defaults are not copied.
func YAML[T any](src bramble.Observable[Contents], defaults T) *bramble.Derived[Decoded[T]] {
	return bramble.Map(src, func(c Contents) Decoded[T] {
		if c.Err != nil {
			return Decoded[T]{Value: fresh(defaults), Err: c.Err}
		}
		v := fresh(defaults)
		if err := Decode(c.Data, &v); err != nil {
			return Decoded[T]{Value: fresh(defaults), Err: err}
		}
		return Decoded[T]{Value: v}
	})
}

func fresh[T any](defaults T) T {
	v, _ := deepcopy.Copy(defaults).(T)
	return v
}
