package collect

import (
	"cmp"
	"reflect"
	"slices"
	"strings"
)

// RangeSet is a set of disjoint, non-adjacent, non-empty ranges in ascending
// order. Connected ranges are merged when the set is built.
type RangeSet[C cmp.Ordered] struct {
	ranges []Range[C]
}

// RangeSetOf builds a range set, merging connected ranges.
func RangeSetOf[C cmp.Ordered](ranges ...Range[C]) RangeSet[C] {
	return mustAll(&rangeSetBuilder[C]{}, ranges).(RangeSet[C])
}

// Ranges returns the merged ranges.
func (s RangeSet[C]) Ranges() []Range[C] { return slices.Clone(s.ranges) }

func (s RangeSet[C]) Len() int      { return len(s.ranges) }
func (s RangeSet[C]) IsEmpty() bool { return len(s.ranges) == 0 }

func (s RangeSet[C]) Contains(c C) bool {
	i, _ := slices.BinarySearchFunc(s.ranges, c, func(r Range[C], c C) int {
		switch {
		case !r.upper.lessThan(c):
			if r.lower.lessThan(c) {
				return 0
			}
			return 1
		}
		return -1
	})
	return i < len(s.ranges) && s.ranges[i].Contains(c)
}

// Span returns the smallest range enclosing the set; ok is false when empty.
func (s RangeSet[C]) Span() (r Range[C], ok bool) {
	if len(s.ranges) == 0 {
		return r, false
	}
	return s.ranges[0].Span(s.ranges[len(s.ranges)-1]), true
}

func (s RangeSet[C]) String() string {
	parts := make([]string, len(s.ranges))
	for i, r := range s.ranges {
		parts[i] = r.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (s RangeSet[C]) MarshalJSON() ([]byte, error) { return marshalSlice(s.ranges) }

func (RangeSet[C]) TypeParams() []reflect.Type { return params[C]() }

// RangeListType is the list-of-ranges type a range set is read from.
func (RangeSet[C]) RangeListType() reflect.Type { return reflect.TypeFor[[]*Range[C]]() }

func (RangeSet[C]) Shape() Shape {
	return Shape{
		Kind:       KindRangeSet,
		Name:       "RangeSet",
		NewBuilder: func() Builder { return &rangeSetBuilder[C]{} },
		Empty:      func() any { return RangeSet[C]{} },
	}
}

// RangeSetShaped is implemented by RangeSet[C].
type RangeSetShaped interface {
	Shaped
	RangeListType() reflect.Type
}

type rangeSetBuilder[C cmp.Ordered] struct {
	ranges []Range[C]
	built  bool
}

// Add accepts Range[C] or a non-nil *Range[C].
func (b *rangeSetBuilder[C]) Add(v any) error {
	if b.built {
		return ErrBuilderConsumed
	}
	if p, ok := v.(*Range[C]); ok && p != nil {
		v = *p
	}
	r, err := checkElement[Range[C]](v)
	if err != nil {
		return err
	}
	if !r.IsEmpty() {
		b.ranges = append(b.ranges, r)
	}
	return nil
}

func (b *rangeSetBuilder[C]) Build() (any, error) {
	if b.built {
		return nil, ErrBuilderConsumed
	}
	b.built = true
	slices.SortFunc(b.ranges, func(x, y Range[C]) int { return x.lower.compare(y.lower) })
	var merged []Range[C]
	for _, r := range b.ranges {
		if n := len(merged); n > 0 && merged[n-1].IsConnected(r) {
			merged[n-1] = merged[n-1].Span(r)
			continue
		}
		merged = append(merged, r)
	}
	return RangeSet[C]{ranges: merged}, nil
}
