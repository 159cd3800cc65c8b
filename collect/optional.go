package collect

import (
	"fmt"
	"reflect"

	"github.com/goccy/go-json"
)

// Optional holds either one value or nothing.
type Optional[T any] struct {
	v  T
	ok bool
}

// Of returns a present Optional. It panics on a nil pointer, like the other
// typed constructors.
func Of[T any](v T) Optional[T] {
	if isNull(v) {
		panic(ErrNullElement)
	}
	return Optional[T]{v: v, ok: true}
}

// Absent returns an empty Optional.
func Absent[T any]() Optional[T] { return Optional[T]{} }

func (o Optional[T]) IsPresent() bool { return o.ok }

func (o Optional[T]) Get() (T, bool) { return o.v, o.ok }

func (o Optional[T]) OrElse(d T) T {
	if o.ok {
		return o.v
	}
	return d
}

// Value returns the held value or nil.
func (o Optional[T]) Value() any {
	if !o.ok {
		return nil
	}
	return o.v
}

func (o Optional[T]) String() string {
	if !o.ok {
		return "Optional.absent()"
	}
	return fmt.Sprintf("Optional.of(%v)", o.v)
}

// MarshalJSON writes the value, or null when absent.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}

func (Optional[T]) TypeParams() []reflect.Type { return params[T]() }

// Wrap returns a present Optional[T] holding v, or Absent when v is nil.
func (Optional[T]) Wrap(v any) (any, error) {
	if isNull(v) {
		return Optional[T]{}, nil
	}
	t, err := checkElement[T](v)
	if err != nil {
		return nil, err
	}
	return Optional[T]{v: t, ok: true}, nil
}

// AbsentValue returns Absent as an untyped value.
func (Optional[T]) AbsentValue() any { return Optional[T]{} }

// OptionalValue is the runtime view shared by every Optional[T].
type OptionalValue interface {
	IsPresent() bool
	Value() any
	TypeParams() []reflect.Type
	Wrap(v any) (any, error)
	AbsentValue() any
}
