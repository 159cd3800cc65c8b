// Package collect holds immutable value containers and the builders used to
// assemble them one element at a time.
package collect

import (
	"iter"
	"reflect"

	"github.com/ygrebnov/errorc"
)

// Kind identifies a container family.
type Kind int

const (
	KindList Kind = iota
	KindSet
	KindSortedSet
	KindMultiset
	KindSortedMultiset
	KindRangeSet
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindSortedSet:
		return "sortedset"
	case KindMultiset:
		return "multiset"
	case KindSortedMultiset:
		return "sortedmultiset"
	case KindRangeSet:
		return "rangeset"
	}
	return "unknown"
}

var namespace = errorc.Namespace("collect")

var (
	ErrNullElement     = namespace.NewError("null element")
	ErrElementType     = namespace.NewError("element type mismatch")
	ErrBuilderConsumed = namespace.NewError("builder already built")
	ErrInvalidRange    = namespace.NewError("invalid range")
	ErrInvalidHostPort = namespace.NewError("invalid host and port")
)

var newKey = errorc.KeyFactory("collect")

var (
	ErrorFieldElementType = newKey("element_type") // collect.element_type
	ErrorFieldValueType   = newKey("value_type")   // collect.value_type
	ErrorFieldInput       = newKey("input")        // collect.input
)

// Builder accumulates elements for exactly one immutable container.
type Builder interface {
	Add(v any) error
	Build() (any, error)
}

// Shape describes how to create a container of one concrete type.
type Shape struct {
	Kind       Kind
	Name       string
	NewBuilder func() Builder
	Empty      func() any
}

// Of builds a one-element container.
func (s Shape) Of(v any) (any, error) {
	b := s.NewBuilder()
	if err := b.Add(v); err != nil {
		return nil, err
	}
	return b.Build()
}

// Shaped is implemented by every generic container. Both methods work on the
// zero value.
type Shaped interface {
	Shape() Shape
	TypeParams() []reflect.Type
}

// isNull reports whether v is nil or a nil pointer.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map:
		return rv.IsNil()
	}
	return false
}

// checkElement converts an element added through the erased Builder API.
func checkElement[E any](v any) (E, error) {
	var zero E
	if isNull(v) {
		return zero, ErrNullElement
	}
	e, ok := v.(E)
	if !ok {
		return zero, errorc.With(ErrElementType,
			errorc.String(ErrorFieldElementType, reflect.TypeFor[E]().String()),
			errorc.String(ErrorFieldValueType, reflect.TypeOf(v).String()))
	}
	return e, nil
}

// anyValues yields items as untyped values, for encoders that write each
// element themselves.
func anyValues[E any](items []E) iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, e := range items {
			if !yield(e) {
				return
			}
		}
	}
}

func params[E any]() []reflect.Type { return []reflect.Type{reflect.TypeFor[E]()} }

// mustAll builds a container from typed elements and panics on null elements.
func mustAll[E any](b Builder, items []E) any {
	for _, e := range items {
		if err := b.Add(e); err != nil {
			panic(err)
		}
	}
	out, err := b.Build()
	if err != nil {
		panic(err)
	}
	return out
}
