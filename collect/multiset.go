package collect

import (
	"cmp"
	"iter"
	"reflect"
	"slices"
)

// Multiset counts occurrences of each element. Distinct elements keep the order
// of their first occurrence.
type Multiset[E comparable] struct {
	elems  []E
	counts map[E]int
	size   int
}

// MultisetOf returns a multiset of items.
func MultisetOf[E comparable](items ...E) Multiset[E] {
	return mustAll(newMultisetBuilder[E](), items).(Multiset[E])
}

// Len returns the total number of occurrences.
func (m Multiset[E]) Len() int      { return m.size }
func (m Multiset[E]) IsEmpty() bool { return m.size == 0 }

// Count returns the number of occurrences of e.
func (m Multiset[E]) Count(e E) int { return m.counts[e] }

func (m Multiset[E]) Contains(e E) bool { return m.counts[e] > 0 }

// ElementSet returns the distinct elements.
func (m Multiset[E]) ElementSet() []E { return slices.Clone(m.elems) }

// Entries yields each distinct element with its count.
func (m Multiset[E]) Entries() iter.Seq2[E, int] {
	return func(yield func(E, int) bool) {
		for _, e := range m.elems {
			if !yield(e, m.counts[e]) {
				return
			}
		}
	}
}

// Slice returns every occurrence, equal elements adjacent.
func (m Multiset[E]) Slice() []E { return expand(m.elems, m.counts, m.size) }

// Values yields every occurrence as an untyped value.
func (m Multiset[E]) Values() iter.Seq[any] { return anyValues(m.Slice()) }

func (m Multiset[E]) MarshalJSON() ([]byte, error) { return marshalSlice(m.Slice()) }

func (Multiset[E]) TypeParams() []reflect.Type { return params[E]() }

func (Multiset[E]) Shape() Shape {
	return Shape{
		Kind:       KindMultiset,
		Name:       "Multiset",
		NewBuilder: func() Builder { return newMultisetBuilder[E]() },
		Empty:      func() any { return Multiset[E]{} },
	}
}

type multisetBuilder[E comparable] struct {
	elems  []E
	counts map[E]int
	size   int
	built  bool
}

func newMultisetBuilder[E comparable]() *multisetBuilder[E] {
	return &multisetBuilder[E]{counts: make(map[E]int)}
}

func (b *multisetBuilder[E]) Add(v any) error {
	if b.built {
		return ErrBuilderConsumed
	}
	e, err := checkElement[E](v)
	if err != nil {
		return err
	}
	if b.counts[e] == 0 {
		b.elems = append(b.elems, e)
	}
	b.counts[e]++
	b.size++
	return nil
}

func (b *multisetBuilder[E]) Build() (any, error) {
	if b.built {
		return nil, ErrBuilderConsumed
	}
	b.built = true
	return Multiset[E]{elems: b.elems, counts: b.counts, size: b.size}, nil
}

// SortedMultiset is a Multiset whose distinct elements are kept in ascending order.
type SortedMultiset[E cmp.Ordered] struct {
	elems  []E
	counts map[E]int
	size   int
}

// SortedMultisetOf returns a sorted multiset of items.
func SortedMultisetOf[E cmp.Ordered](items ...E) SortedMultiset[E] {
	return mustAll(&sortedMultisetBuilder[E]{inner: newMultisetBuilder[E]()}, items).(SortedMultiset[E])
}

func (m SortedMultiset[E]) Len() int          { return m.size }
func (m SortedMultiset[E]) IsEmpty() bool     { return m.size == 0 }
func (m SortedMultiset[E]) Count(e E) int     { return m.counts[e] }
func (m SortedMultiset[E]) Contains(e E) bool { return m.counts[e] > 0 }
func (m SortedMultiset[E]) ElementSet() []E   { return slices.Clone(m.elems) }

func (m SortedMultiset[E]) Entries() iter.Seq2[E, int] {
	return func(yield func(E, int) bool) {
		for _, e := range m.elems {
			if !yield(e, m.counts[e]) {
				return
			}
		}
	}
}

func (m SortedMultiset[E]) Slice() []E { return expand(m.elems, m.counts, m.size) }

func (m SortedMultiset[E]) Values() iter.Seq[any] { return anyValues(m.Slice()) }

func (m SortedMultiset[E]) MarshalJSON() ([]byte, error) { return marshalSlice(m.Slice()) }

func (SortedMultiset[E]) TypeParams() []reflect.Type { return params[E]() }

func (SortedMultiset[E]) Shape() Shape {
	return Shape{
		Kind:       KindSortedMultiset,
		Name:       "SortedMultiset",
		NewBuilder: func() Builder { return &sortedMultisetBuilder[E]{inner: newMultisetBuilder[E]()} },
		Empty:      func() any { return SortedMultiset[E]{} },
	}
}

type sortedMultisetBuilder[E cmp.Ordered] struct {
	inner *multisetBuilder[E]
}

func (b *sortedMultisetBuilder[E]) Add(v any) error { return b.inner.Add(v) }

func (b *sortedMultisetBuilder[E]) Build() (any, error) {
	if _, err := b.inner.Build(); err != nil {
		return nil, err
	}
	elems := b.inner.elems
	slices.Sort(elems)
	return SortedMultiset[E]{elems: elems, counts: b.inner.counts, size: b.inner.size}, nil
}

func expand[E comparable](elems []E, counts map[E]int, size int) []E {
	out := make([]E, 0, size)
	for _, e := range elems {
		for range counts[e] {
			out = append(out, e)
		}
	}
	return out
}
