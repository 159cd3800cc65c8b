package collect

import (
	"iter"
	"slices"

	"github.com/goccy/go-json"
)

// primitiveList is the compact backing store shared by the primitive lists.
type primitiveList[P any] struct {
	items []P
}

func (l primitiveList[P]) Len() int      { return len(l.items) }
func (l primitiveList[P]) IsEmpty() bool { return len(l.items) == 0 }
func (l primitiveList[P]) At(i int) P    { return l.items[i] }

// Slice returns a copy of the values.
func (l primitiveList[P]) Slice() []P { return slices.Clone(l.items) }

func (l primitiveList[P]) All() iter.Seq2[int, P] { return slices.All(l.items) }

func (l primitiveList[P]) MarshalJSON() ([]byte, error) { return marshalSlice(l.items) }

// compact copies vs; every empty list has a nil backing slice.
func compact[P any](vs []P) primitiveList[P] {
	if len(vs) == 0 {
		return primitiveList[P]{}
	}
	return primitiveList[P]{items: slices.Clip(slices.Clone(vs))}
}

type (
	// Booleans is an immutable list of bool.
	Booleans struct{ primitiveList[bool] }
	// Bytes is an immutable list of signed bytes.
	Bytes struct{ primitiveList[int8] }
	// Chars is an immutable list of characters, written as one-character strings.
	Chars struct{ primitiveList[rune] }
	// Doubles is an immutable list of float64.
	Doubles struct{ primitiveList[float64] }
	// Floats is an immutable list of float32.
	Floats struct{ primitiveList[float32] }
	// Ints is an immutable list of int32.
	Ints struct{ primitiveList[int32] }
	// Longs is an immutable list of int64.
	Longs struct{ primitiveList[int64] }
	// Shorts is an immutable list of int16.
	Shorts struct{ primitiveList[int16] }
)

func NewBooleans(vs ...bool) Booleans  { return Booleans{compact(vs)} }
func NewBytes(vs ...int8) Bytes        { return Bytes{compact(vs)} }
func NewChars(vs ...rune) Chars        { return Chars{compact(vs)} }
func NewDoubles(vs ...float64) Doubles { return Doubles{compact(vs)} }
func NewFloats(vs ...float32) Floats   { return Floats{compact(vs)} }
func NewInts(vs ...int32) Ints         { return Ints{compact(vs)} }
func NewLongs(vs ...int64) Longs       { return Longs{compact(vs)} }
func NewShorts(vs ...int16) Shorts     { return Shorts{compact(vs)} }

// String returns the characters as a string.
func (c Chars) String() string { return string(c.items) }

func (c Chars) MarshalJSON() ([]byte, error) {
	out := make([]string, len(c.items))
	for i, r := range c.items {
		out[i] = string(r)
	}
	return json.Marshal(out)
}
