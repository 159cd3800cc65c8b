package collect_test

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/containerjson/collect"
)

func build(t *testing.T, s collect.Shape, vs ...any) any {
	t.Helper()
	b := s.NewBuilder()
	for _, v := range vs {
		require.NoError(t, b.Add(v))
	}
	out, err := b.Build()
	require.NoError(t, err)
	return out
}

func TestBuilders_PreserveContainerSemantics(t *testing.T) {
	list := build(t, collect.ImmutableList[string]{}.Shape(), "b", "a", "b").(collect.ImmutableList[string])
	assert.Equal(t, []string{"b", "a", "b"}, list.Slice())

	set := build(t, collect.ImmutableSet[string]{}.Shape(), "b", "a", "b").(collect.ImmutableSet[string])
	assert.Equal(t, []string{"b", "a"}, set.Slice())
	assert.True(t, set.Contains("a"))

	sorted := build(t, collect.ImmutableSortedSet[int]{}.Shape(), 3, 1, 2, 1).(collect.ImmutableSortedSet[int])
	assert.Equal(t, []int{1, 2, 3}, sorted.Slice())
	first, ok := sorted.First()
	assert.True(t, ok)
	assert.Equal(t, 1, first)

	ms := build(t, collect.Multiset[string]{}.Shape(), "abc", "foo", "abc").(collect.Multiset[string])
	assert.Equal(t, 3, ms.Len())
	assert.Equal(t, 2, ms.Count("abc"))
	assert.Equal(t, 0, ms.Count("bar"))
	assert.Equal(t, []string{"abc", "abc", "foo"}, ms.Slice())

	sms := build(t, collect.SortedMultiset[string]{}.Shape(), "z", "a", "z").(collect.SortedMultiset[string])
	assert.Equal(t, []string{"a", "z", "z"}, sms.Slice())
}

func TestBuilders_RejectNullAndWrongTypes(t *testing.T) {
	b := collect.ImmutableList[*int]{}.Shape().NewBuilder()
	var nilPtr *int
	assert.ErrorIs(t, b.Add(nil), collect.ErrNullElement)
	assert.ErrorIs(t, b.Add(nilPtr), collect.ErrNullElement)

	sb := collect.ImmutableSet[string]{}.Shape().NewBuilder()
	err := sb.Add(42)
	require.ErrorIs(t, err, collect.ErrElementType)
	assert.Contains(t, err.Error(), "string")
}

func TestBuilders_AreConsumedByBuild(t *testing.T) {
	for _, s := range []collect.Shape{
		collect.ImmutableList[int]{}.Shape(),
		collect.ImmutableSet[int]{}.Shape(),
		collect.ImmutableSortedSet[int]{}.Shape(),
		collect.Multiset[int]{}.Shape(),
		collect.SortedMultiset[int]{}.Shape(),
		collect.RangeSet[int]{}.Shape(),
	} {
		b := s.NewBuilder()
		_, err := b.Build()
		require.NoError(t, err, s.Name)
		_, err = b.Build()
		assert.ErrorIs(t, err, collect.ErrBuilderConsumed, s.Name)
		assert.ErrorIs(t, b.Add(1), collect.ErrBuilderConsumed, s.Name)
	}
}

func TestShape_OfAndEmpty(t *testing.T) {
	s := collect.ImmutableSet[string]{}.Shape()
	one, err := s.Of("x")
	require.NoError(t, err)
	assert.Equal(t, 1, one.(collect.ImmutableSet[string]).Len())
	assert.True(t, s.Empty().(collect.ImmutableSet[string]).IsEmpty())
	_, err = s.Of(nil)
	assert.ErrorIs(t, err, collect.ErrNullElement)
}

func TestContainers_MarshalAsArrays(t *testing.T) {
	cases := []struct {
		v    any
		want string
	}{
		{collect.ListOf[string](), `[]`},
		{collect.ListOf("a", "b"), `["a","b"]`},
		{collect.SortedSetOf(3, 1), `[1,3]`},
		{collect.MultisetOf("abc", "foo", "abc"), `["abc","abc","foo"]`},
		{collect.NewChars('h', 'i'), `["h","i"]`},
		{collect.NewInts(1, 2), `[1,2]`},
		{collect.Of(5), `5`},
		{collect.Absent[int](), `null`},
	}
	for _, c := range cases {
		out, err := json.Marshal(c.v)
		require.NoError(t, err)
		assert.JSONEq(t, c.want, string(out))
	}
}

func TestRange_BoundsAndString(t *testing.T) {
	r := collect.ClosedOpen(1, 5)
	assert.Equal(t, "[1..5)", r.String())
	assert.True(t, r.Contains(1))
	assert.False(t, r.Contains(5))
	assert.Equal(t, "(-∞..3]", collect.AtMost(3).String())
	assert.Equal(t, "(2..+∞)", collect.GreaterThan(2).String())
	assert.True(t, collect.AllValues[int]().Contains(-100))
	assert.True(t, collect.ClosedOpen(2, 2).IsEmpty())

	_, err := collect.NewRange(collect.Bound(5, collect.Closed), collect.Bound(1, collect.Closed))
	assert.ErrorIs(t, err, collect.ErrInvalidRange)
	_, err = collect.NewRange(collect.Bound(1, collect.Open), collect.Bound(1, collect.Open))
	assert.ErrorIs(t, err, collect.ErrInvalidRange)
}

func TestRange_MarshalObjectForm(t *testing.T) {
	out, err := json.Marshal(collect.ClosedOpen(1, 5))
	require.NoError(t, err)
	assert.JSONEq(t, `{"lowerEndpoint":1,"lowerBoundType":"CLOSED","upperEndpoint":5,"upperBoundType":"OPEN"}`, string(out))
	out, err = json.Marshal(collect.AtLeast(7))
	require.NoError(t, err)
	assert.JSONEq(t, `{"lowerEndpoint":7,"lowerBoundType":"CLOSED"}`, string(out))
}

func TestSplitRangeText(t *testing.T) {
	lo, hi, err := collect.SplitRangeText("(-∞..5]")
	require.NoError(t, err)
	assert.False(t, lo.Bounded)
	assert.Equal(t, collect.TextEndpoint{Text: "5", Type: collect.Closed, Bounded: true}, hi)

	for _, bad := range []string{"", "[1,2]", "{1..2}", "1..2"} {
		_, _, err := collect.SplitRangeText(bad)
		assert.ErrorIs(t, err, collect.ErrInvalidRange, bad)
	}
}

func TestRangeSet_MergesConnectedRanges(t *testing.T) {
	rs := collect.RangeSetOf(
		collect.ClosedOpen(5, 8),
		collect.ClosedOpen(1, 3),
		collect.ClosedOpen(3, 4),
		collect.ClosedRange(7, 10),
		collect.ClosedOpen(20, 20),
	)
	assert.Equal(t, "[[1..4), [5..10]]", rs.String())
	assert.True(t, rs.Contains(3))
	assert.False(t, rs.Contains(4))
	assert.True(t, rs.Contains(10))
	span, ok := rs.Span()
	require.True(t, ok)
	assert.Equal(t, "[1..10]", span.String())

	b := collect.RangeSet[int]{}.Shape().NewBuilder()
	var nilRange *collect.Range[int]
	assert.ErrorIs(t, b.Add(nilRange), collect.ErrNullElement)
	r := collect.Singleton(2)
	require.NoError(t, b.Add(&r))
}

func TestOptional_WrapAndAbsent(t *testing.T) {
	var ov collect.OptionalValue = collect.Optional[string]{}
	v, err := ov.Wrap("x")
	require.NoError(t, err)
	got, ok := v.(collect.Optional[string]).Get()
	assert.True(t, ok)
	assert.Equal(t, "x", got)

	v, err = ov.Wrap(nil)
	require.NoError(t, err)
	assert.False(t, v.(collect.Optional[string]).IsPresent())
	assert.Equal(t, "fallback", collect.Absent[string]().OrElse("fallback"))

	_, err = ov.Wrap(1)
	assert.True(t, errors.Is(err, collect.ErrElementType))
}

func TestHostAndPort_Parse(t *testing.T) {
	cases := []struct {
		in      string
		host    string
		port    int
		hasPort bool
		canon   string
	}{
		{"example.com", "example.com", 0, false, "example.com"},
		{"example.com:8080", "example.com", 8080, true, "example.com:8080"},
		{"[::1]:443", "::1", 443, true, "[::1]:443"},
		{"[::1]", "::1", 0, false, "[::1]"},
		{"::1", "::1", 0, false, "[::1]"},
		{"host:", "host", 0, false, "host"},
	}
	for _, c := range cases {
		hp, err := collect.ParseHostAndPort(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.host, hp.Host(), c.in)
		port, ok := hp.Port()
		assert.Equal(t, c.hasPort, ok, c.in)
		assert.Equal(t, c.port, port, c.in)
		assert.Equal(t, c.canon, hp.String(), c.in)
	}

	for _, bad := range []string{"[::1", "[::1]x", "host:+1", "host:http", "host:70000"} {
		_, err := collect.ParseHostAndPort(bad)
		assert.ErrorIs(t, err, collect.ErrInvalidHostPort, bad)
	}

	_, err := collect.ParseHostAndPort("::1")
	require.NoError(t, err)
	hp, _ := collect.ParseHostAndPort("::1")
	_, err = hp.RequireBracketsForIPv6()
	assert.ErrorIs(t, err, collect.ErrInvalidHostPort)
}

func TestHostAndPort_FromParts(t *testing.T) {
	hp, err := collect.HostAndPortFromParts("::1", 80)
	require.NoError(t, err)
	assert.Equal(t, "[::1]:80", hp.String())

	_, err = collect.HostAndPortFromParts("a.b:1", 80)
	assert.ErrorIs(t, err, collect.ErrInvalidHostPort)
	_, err = collect.HostAndPortFromParts("a.b", -1)
	assert.ErrorIs(t, err, collect.ErrInvalidHostPort)

	out, err := json.Marshal(hp)
	require.NoError(t, err)
	assert.Equal(t, `"[::1]:80"`, string(out))
}
