package collect

import (
	"iter"
	"reflect"
	"slices"

	"github.com/goccy/go-json"
)

// ImmutableList is an ordered sequence that never changes after Build.
type ImmutableList[E any] struct {
	items []E
}

// ListOf returns a list of items. It panics if an element is a nil pointer.
func ListOf[E any](items ...E) ImmutableList[E] {
	return mustAll(&listBuilder[E]{}, items).(ImmutableList[E])
}

func (l ImmutableList[E]) Len() int      { return len(l.items) }
func (l ImmutableList[E]) IsEmpty() bool { return len(l.items) == 0 }
func (l ImmutableList[E]) At(i int) E    { return l.items[i] }

// Slice returns a copy of the elements.
func (l ImmutableList[E]) Slice() []E { return slices.Clone(l.items) }

func (l ImmutableList[E]) All() iter.Seq2[int, E] { return slices.All(l.items) }

// Values yields the elements as untyped values.
func (l ImmutableList[E]) Values() iter.Seq[any] { return anyValues(l.items) }

func (l ImmutableList[E]) MarshalJSON() ([]byte, error) { return marshalSlice(l.items) }

func (ImmutableList[E]) TypeParams() []reflect.Type { return params[E]() }

func (ImmutableList[E]) Shape() Shape {
	return Shape{
		Kind:       KindList,
		Name:       "ImmutableList",
		NewBuilder: func() Builder { return &listBuilder[E]{} },
		Empty:      func() any { return ImmutableList[E]{} },
	}
}

type listBuilder[E any] struct {
	items []E
	built bool
}

func (b *listBuilder[E]) Add(v any) error {
	if b.built {
		return ErrBuilderConsumed
	}
	e, err := checkElement[E](v)
	if err != nil {
		return err
	}
	b.items = append(b.items, e)
	return nil
}

func (b *listBuilder[E]) Build() (any, error) {
	if b.built {
		return nil, ErrBuilderConsumed
	}
	b.built = true
	return ImmutableList[E]{items: b.items}, nil
}

// marshalSlice writes nil and empty slices as [].
func marshalSlice[E any](items []E) ([]byte, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(items)
}
