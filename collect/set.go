package collect

import (
	"cmp"
	"iter"
	"reflect"
	"slices"
)

// ImmutableSet keeps unique elements in first-insertion order.
type ImmutableSet[E comparable] struct {
	items []E
	index map[E]struct{}
}

// SetOf returns a set of items. It panics if an element is a nil pointer.
func SetOf[E comparable](items ...E) ImmutableSet[E] {
	return mustAll(newSetBuilder[E](), items).(ImmutableSet[E])
}

func (s ImmutableSet[E]) Len() int      { return len(s.items) }
func (s ImmutableSet[E]) IsEmpty() bool { return len(s.items) == 0 }

func (s ImmutableSet[E]) Contains(e E) bool {
	_, ok := s.index[e]
	return ok
}

func (s ImmutableSet[E]) Slice() []E { return slices.Clone(s.items) }

func (s ImmutableSet[E]) All() iter.Seq[E] { return slices.Values(s.items) }

func (s ImmutableSet[E]) Values() iter.Seq[any] { return anyValues(s.items) }

func (s ImmutableSet[E]) MarshalJSON() ([]byte, error) { return marshalSlice(s.items) }

func (ImmutableSet[E]) TypeParams() []reflect.Type { return params[E]() }

func (ImmutableSet[E]) Shape() Shape {
	return Shape{
		Kind:       KindSet,
		Name:       "ImmutableSet",
		NewBuilder: func() Builder { return newSetBuilder[E]() },
		Empty:      func() any { return ImmutableSet[E]{} },
	}
}

type setBuilder[E comparable] struct {
	items []E
	index map[E]struct{}
	built bool
}

func newSetBuilder[E comparable]() *setBuilder[E] {
	return &setBuilder[E]{index: make(map[E]struct{})}
}

func (b *setBuilder[E]) Add(v any) error {
	if b.built {
		return ErrBuilderConsumed
	}
	e, err := checkElement[E](v)
	if err != nil {
		return err
	}
	if _, dup := b.index[e]; !dup {
		b.index[e] = struct{}{}
		b.items = append(b.items, e)
	}
	return nil
}

func (b *setBuilder[E]) Build() (any, error) {
	if b.built {
		return nil, ErrBuilderConsumed
	}
	b.built = true
	return ImmutableSet[E]{items: b.items, index: b.index}, nil
}

// ImmutableSortedSet keeps unique elements in ascending order.
type ImmutableSortedSet[E cmp.Ordered] struct {
	items []E
}

// SortedSetOf returns a sorted set of items.
func SortedSetOf[E cmp.Ordered](items ...E) ImmutableSortedSet[E] {
	return mustAll(&sortedSetBuilder[E]{}, items).(ImmutableSortedSet[E])
}

func (s ImmutableSortedSet[E]) Len() int      { return len(s.items) }
func (s ImmutableSortedSet[E]) IsEmpty() bool { return len(s.items) == 0 }

func (s ImmutableSortedSet[E]) Contains(e E) bool {
	_, ok := slices.BinarySearch(s.items, e)
	return ok
}

// First returns the smallest element; ok is false for an empty set.
func (s ImmutableSortedSet[E]) First() (e E, ok bool) {
	if len(s.items) == 0 {
		return e, false
	}
	return s.items[0], true
}

// Last returns the largest element; ok is false for an empty set.
func (s ImmutableSortedSet[E]) Last() (e E, ok bool) {
	if len(s.items) == 0 {
		return e, false
	}
	return s.items[len(s.items)-1], true
}

func (s ImmutableSortedSet[E]) Slice() []E { return slices.Clone(s.items) }

func (s ImmutableSortedSet[E]) All() iter.Seq[E] { return slices.Values(s.items) }

func (s ImmutableSortedSet[E]) Values() iter.Seq[any] { return anyValues(s.items) }

func (s ImmutableSortedSet[E]) MarshalJSON() ([]byte, error) { return marshalSlice(s.items) }

func (ImmutableSortedSet[E]) TypeParams() []reflect.Type { return params[E]() }

func (ImmutableSortedSet[E]) Shape() Shape {
	return Shape{
		Kind:       KindSortedSet,
		Name:       "ImmutableSortedSet",
		NewBuilder: func() Builder { return &sortedSetBuilder[E]{} },
		Empty:      func() any { return ImmutableSortedSet[E]{} },
	}
}

type sortedSetBuilder[E cmp.Ordered] struct {
	items []E
	built bool
}

func (b *sortedSetBuilder[E]) Add(v any) error {
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

func (b *sortedSetBuilder[E]) Build() (any, error) {
	if b.built {
		return nil, ErrBuilderConsumed
	}
	b.built = true
	slices.Sort(b.items)
	return ImmutableSortedSet[E]{items: slices.Compact(b.items)}, nil
}
