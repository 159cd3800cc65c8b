package collect

import (
	"cmp"
	"fmt"
	"reflect"
	"strings"

	"github.com/goccy/go-json"
	"github.com/ygrebnov/errorc"
)

// BoundType tells whether an endpoint belongs to the range.
type BoundType int

const (
	Open BoundType = iota
	Closed
)

func (b BoundType) String() string {
	if b == Closed {
		return "CLOSED"
	}
	return "OPEN"
}

// ParseBoundType accepts "OPEN" and "CLOSED" in any case.
func ParseBoundType(s string) (BoundType, error) {
	switch strings.ToUpper(s) {
	case "OPEN":
		return Open, nil
	case "CLOSED":
		return Closed, nil
	}
	return Open, errorc.With(ErrInvalidRange, errorc.String(ErrorFieldInput, s))
}

// cut is a point between values: below(v) sits just under v, above(v) just over.
// Unbounded lower and upper ends are the minimum and maximum cuts.
type cut[C cmp.Ordered] struct {
	v     C
	above bool
	inf   int // -1 below everything, +1 above everything, 0 bounded
}

func (a cut[C]) compare(b cut[C]) int {
	if a.inf != b.inf {
		return cmp.Compare(a.inf, b.inf)
	}
	if a.inf != 0 {
		return 0
	}
	if c := cmp.Compare(a.v, b.v); c != 0 {
		return c
	}
	switch {
	case a.above == b.above:
		return 0
	case a.above:
		return 1
	}
	return -1
}

// lessThan reports whether the cut lies below value c.
func (a cut[C]) lessThan(c C) bool {
	switch a.inf {
	case -1:
		return true
	case 1:
		return false
	}
	if a.above {
		return a.v < c
	}
	return a.v <= c
}

// Range is an interval over an ordered type, optionally unbounded on either end.
type Range[C cmp.Ordered] struct {
	lower cut[C]
	upper cut[C]
}

// Endpoint describes one end of a range for NewRange.
type Endpoint[C cmp.Ordered] struct {
	Value   C
	Type    BoundType
	Bounded bool
}

// Bound returns a bounded endpoint.
func Bound[C cmp.Ordered](v C, t BoundType) Endpoint[C] {
	return Endpoint[C]{Value: v, Type: t, Bounded: true}
}

// NewRange validates and builds a range. Lower must not exceed upper, and an
// open range (a..a) is rejected.
func NewRange[C cmp.Ordered](lower, upper Endpoint[C]) (Range[C], error) {
	r := Range[C]{lower: cut[C]{inf: -1}, upper: cut[C]{inf: 1}}
	if lower.Bounded {
		r.lower = cut[C]{v: lower.Value, above: lower.Type == Open}
	}
	if upper.Bounded {
		r.upper = cut[C]{v: upper.Value, above: upper.Type == Closed}
	}
	if r.lower.compare(r.upper) > 0 {
		return Range[C]{}, errorc.With(ErrInvalidRange, errorc.String(ErrorFieldInput, r.String()))
	}
	return r, nil
}

func mustRange[C cmp.Ordered](lower, upper Endpoint[C]) Range[C] {
	r, err := NewRange(lower, upper)
	if err != nil {
		panic(err)
	}
	return r
}

func ClosedRange[C cmp.Ordered](lo, hi C) Range[C] {
	return mustRange(Bound(lo, Closed), Bound(hi, Closed))
}
func OpenRange[C cmp.Ordered](lo, hi C) Range[C] {
	return mustRange(Bound(lo, Open), Bound(hi, Open))
}
func ClosedOpen[C cmp.Ordered](lo, hi C) Range[C] {
	return mustRange(Bound(lo, Closed), Bound(hi, Open))
}
func OpenClosed[C cmp.Ordered](lo, hi C) Range[C] {
	return mustRange(Bound(lo, Open), Bound(hi, Closed))
}
func AtLeast[C cmp.Ordered](lo C) Range[C]     { return mustRange(Bound(lo, Closed), Endpoint[C]{}) }
func GreaterThan[C cmp.Ordered](lo C) Range[C] { return mustRange(Bound(lo, Open), Endpoint[C]{}) }
func AtMost[C cmp.Ordered](hi C) Range[C]      { return mustRange(Endpoint[C]{}, Bound(hi, Closed)) }
func LessThan[C cmp.Ordered](hi C) Range[C]    { return mustRange(Endpoint[C]{}, Bound(hi, Open)) }
func Singleton[C cmp.Ordered](v C) Range[C]    { return ClosedRange(v, v) }
func AllValues[C cmp.Ordered]() Range[C]       { return mustRange(Endpoint[C]{}, Endpoint[C]{}) }

func (r Range[C]) HasLowerBound() bool { return r.lower.inf == 0 }
func (r Range[C]) HasUpperBound() bool { return r.upper.inf == 0 }

// Lower returns the lower endpoint; Bounded is false for (-∞.
func (r Range[C]) Lower() Endpoint[C] {
	if r.lower.inf != 0 {
		return Endpoint[C]{}
	}
	t := Closed
	if r.lower.above {
		t = Open
	}
	return Endpoint[C]{Value: r.lower.v, Type: t, Bounded: true}
}

// Upper returns the upper endpoint; Bounded is false for +∞).
func (r Range[C]) Upper() Endpoint[C] {
	if r.upper.inf != 0 {
		return Endpoint[C]{}
	}
	t := Open
	if r.upper.above {
		t = Closed
	}
	return Endpoint[C]{Value: r.upper.v, Type: t, Bounded: true}
}

func (r Range[C]) Contains(c C) bool { return r.lower.lessThan(c) && !r.upper.lessThan(c) }

// IsEmpty reports ranges such as [a..a).
func (r Range[C]) IsEmpty() bool { return r.lower.compare(r.upper) == 0 }

// IsConnected reports whether r and o overlap or touch.
func (r Range[C]) IsConnected(o Range[C]) bool {
	return r.lower.compare(o.upper) <= 0 && o.lower.compare(r.upper) <= 0
}

// Span returns the smallest range enclosing both.
func (r Range[C]) Span(o Range[C]) Range[C] {
	out := r
	if o.lower.compare(out.lower) < 0 {
		out.lower = o.lower
	}
	if o.upper.compare(out.upper) > 0 {
		out.upper = o.upper
	}
	return out
}

// Equal compares bounds.
func (r Range[C]) Equal(o Range[C]) bool {
	return r.lower.compare(o.lower) == 0 && r.upper.compare(o.upper) == 0
}

// String renders the range as [a..b), (-∞..b] and so on.
func (r Range[C]) String() string {
	b := &strings.Builder{}
	switch {
	case r.lower.inf != 0:
		b.WriteString("(-∞")
	case r.lower.above:
		fmt.Fprintf(b, "(%v", r.lower.v)
	default:
		fmt.Fprintf(b, "[%v", r.lower.v)
	}
	b.WriteString("..")
	switch {
	case r.upper.inf != 0:
		b.WriteString("+∞)")
	case r.upper.above:
		fmt.Fprintf(b, "%v]", r.upper.v)
	default:
		fmt.Fprintf(b, "%v)", r.upper.v)
	}
	return b.String()
}

type rangeJSON[C cmp.Ordered] struct {
	LowerEndpoint  *C     `json:"lowerEndpoint,omitempty"`
	LowerBoundType string `json:"lowerBoundType,omitempty"`
	UpperEndpoint  *C     `json:"upperEndpoint,omitempty"`
	UpperBoundType string `json:"upperBoundType,omitempty"`
}

// MarshalJSON writes the object form; unbounded ends are omitted.
func (r Range[C]) MarshalJSON() ([]byte, error) {
	var out rangeJSON[C]
	if lo := r.Lower(); lo.Bounded {
		out.LowerEndpoint, out.LowerBoundType = &lo.Value, lo.Type.String()
	}
	if hi := r.Upper(); hi.Bounded {
		out.UpperEndpoint, out.UpperBoundType = &hi.Value, hi.Type.String()
	}
	return json.Marshal(out)
}

func (Range[C]) TypeParams() []reflect.Type { return params[C]() }

// AnyEndpoint is an endpoint whose value is not statically typed.
type AnyEndpoint struct {
	Value   any
	Type    BoundType
	Bounded bool
}

// RangeMaker builds ranges for an endpoint type known only at runtime.
type RangeMaker interface {
	TypeParams() []reflect.Type
	MakeRange(lower, upper AnyEndpoint) (any, error)
}

// MakeRange builds a Range[C] from untyped endpoints.
func (Range[C]) MakeRange(lower, upper AnyEndpoint) (any, error) {
	conv := func(e AnyEndpoint) (Endpoint[C], error) {
		if !e.Bounded {
			return Endpoint[C]{}, nil
		}
		v, err := checkElement[C](e.Value)
		if err != nil {
			return Endpoint[C]{}, err
		}
		return Bound(v, e.Type), nil
	}
	lo, err := conv(lower)
	if err != nil {
		return nil, err
	}
	hi, err := conv(upper)
	if err != nil {
		return nil, err
	}
	return NewRange(lo, hi)
}

// TextEndpoint is one end of a range in bracket notation, before conversion.
type TextEndpoint struct {
	Text    string
	Type    BoundType
	Bounded bool
}

// SplitRangeText splits "[a..b)", "(-∞..b]" or "[a..+∞)" into its endpoints.
func SplitRangeText(s string) (lower, upper TextEndpoint, err error) {
	bad := errorc.With(ErrInvalidRange, errorc.String(ErrorFieldInput, s))
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return lower, upper, bad
	}
	lo, hi, ok := strings.Cut(s[1:len(s)-1], "..")
	if !ok {
		return lower, upper, bad
	}
	switch s[0] {
	case '[':
		lower = TextEndpoint{Text: lo, Type: Closed, Bounded: true}
	case '(':
		lower = TextEndpoint{Text: lo, Type: Open, Bounded: lo != "-∞"}
	default:
		return lower, upper, bad
	}
	switch s[len(s)-1] {
	case ']':
		upper = TextEndpoint{Text: hi, Type: Closed, Bounded: true}
	case ')':
		upper = TextEndpoint{Text: hi, Type: Open, Bounded: hi != "+∞"}
	default:
		return lower, upper, bad
	}
	if !lower.Bounded {
		lower.Text = ""
	}
	if !upper.Bounded {
		upper.Text = ""
	}
	return lower, upper, nil
}
