package containers_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/containerjson"
	"github.com/reoring/containerjson/collect"
	"github.com/reoring/containerjson/containers"
	"github.com/reoring/containerjson/databind"
)

func newMapper(cfg containerjson.Config) *databind.Mapper {
	return databind.NewMapper(cfg, containers.NewModule())
}

func unmarshal[T any](t *testing.T, m *databind.Mapper, in string) T {
	t.Helper()
	v, err := databind.Unmarshal[T](context.Background(), m, []byte(in))
	require.NoError(t, err)
	return v
}

func issueOf(t *testing.T, err error) containerjson.Issue {
	t.Helper()
	require.Error(t, err)
	iss, ok := containerjson.AsIssues(err)
	require.True(t, ok, "expected Issues, got %T: %v", err, err)
	require.NotEmpty(t, iss)
	return iss[0]
}

func TestMultiset_CountsOccurrences(t *testing.T) {
	m := newMapper(containerjson.Config{})
	ms := unmarshal[collect.Multiset[string]](t, m, `["abc","abc","foo"]`)
	assert.Equal(t, 3, ms.Len())
	assert.Equal(t, 2, ms.Count("abc"))
	assert.Equal(t, 1, ms.Count("foo"))
	assert.Equal(t, 0, ms.Count("bar"))
}

func TestMultiset_SingleValue(t *testing.T) {
	m := newMapper(containerjson.Config{}.Enable(containerjson.AcceptSingleValueAsArray))
	ms := unmarshal[collect.Multiset[string]](t, m, `"abc"`)
	assert.Equal(t, 1, ms.Len())
	assert.Equal(t, 1, ms.Count("abc"))
}

func TestContainers_PreserveKindSemantics(t *testing.T) {
	m := newMapper(containerjson.Config{})

	list := unmarshal[collect.ImmutableList[string]](t, m, `["b","a","b"]`)
	assert.Equal(t, []string{"b", "a", "b"}, list.Slice())

	set := unmarshal[collect.ImmutableSet[int]](t, m, `[3,1,3,2]`)
	assert.Equal(t, []int{3, 1, 2}, set.Slice())

	sorted := unmarshal[collect.ImmutableSortedSet[string]](t, m, `["c","a","b","a"]`)
	assert.Equal(t, []string{"a", "b", "c"}, sorted.Slice())

	sms := unmarshal[collect.SortedMultiset[int]](t, m, `[5,1,5]`)
	assert.Equal(t, []int{1, 5, 5}, sms.Slice())
	assert.Equal(t, 2, sms.Count(5))

	nested := unmarshal[collect.ImmutableList[collect.ImmutableSet[string]]](t, m, `[["a","a"],[]]`)
	require.Equal(t, 2, nested.Len())
	assert.Equal(t, []string{"a"}, nested.At(0).Slice())
	assert.True(t, nested.At(1).IsEmpty())
}

func TestContainers_SingleValueCoercion(t *testing.T) {
	ctx := context.Background()
	off := newMapper(containerjson.Config{})
	_, err := databind.Unmarshal[collect.ImmutableList[int]](ctx, off, []byte(`7`))
	is := issueOf(t, err)
	assert.Equal(t, containerjson.CodeUnexpectedToken, is.Code)
	assert.Contains(t, is.Hint, "begin-array")
	assert.Contains(t, is.Hint, "collect.ImmutableList[int]")
	assert.ErrorIs(t, err, containerjson.ErrUnexpectedToken)

	on := off.With(containerjson.Config{}.Enable(containerjson.AcceptSingleValueAsArray))
	single := unmarshal[collect.ImmutableList[int]](t, on, `7`)
	array := unmarshal[collect.ImmutableList[int]](t, on, `[7]`)
	assert.Equal(t, array, single)

	obj := unmarshal[collect.ImmutableList[collect.HostAndPort]](t, on, `{"host":"h","port":1}`)
	require.Equal(t, 1, obj.Len())
	assert.Equal(t, "h:1", obj.At(0).String())
}

type coercion struct {
	On      collect.ImmutableList[string] `json:"on" cj:"single"`
	Off     collect.ImmutableList[string] `json:"off" cj:"nosingle"`
	Default collect.ImmutableList[string] `json:"default"`
}

func TestContainers_PropertySettingWinsOverFeature(t *testing.T) {
	ctx := context.Background()
	m := newMapper(containerjson.Config{})

	got := unmarshal[coercion](t, m, `{"on":"x"}`)
	assert.Equal(t, []string{"x"}, got.On.Slice())

	_, err := databind.Unmarshal[coercion](ctx, m, []byte(`{"default":"x"}`))
	assert.Equal(t, "/default", issueOf(t, err).Path)

	global := m.With(containerjson.Config{}.Enable(containerjson.AcceptSingleValueAsArray))
	got = unmarshal[coercion](t, global, `{"default":"x"}`)
	assert.Equal(t, []string{"x"}, got.Default.Slice())

	_, err = databind.Unmarshal[coercion](ctx, global, []byte(`{"off":"x"}`))
	is := issueOf(t, err)
	assert.Equal(t, containerjson.CodeUnexpectedToken, is.Code)
	assert.Equal(t, "/off", is.Path)
}

type nullPolicies struct {
	Skip  collect.ImmutableList[string] `json:"skip" cj:"nulls=skip"`
	Empty collect.ImmutableList[string] `json:"empty" cj:"nulls=empty"`
	Fail  collect.ImmutableSet[int]     `json:"fail" cj:"nulls=fail,single"`
}

func TestContainers_Nulls(t *testing.T) {
	ctx := context.Background()
	m := newMapper(containerjson.Config{})

	_, err := databind.Unmarshal[collect.ImmutableList[string]](ctx, m, []byte(`["a",null]`))
	is := issueOf(t, err)
	assert.Equal(t, containerjson.CodeNullRejected, is.Code)
	assert.Equal(t, "/1", is.Path)
	assert.Contains(t, is.Hint, "collect.ImmutableList[string]")
	assert.ErrorIs(t, err, containerjson.ErrNullRejected)

	_, err = databind.Unmarshal[collect.ImmutableList[*int]](ctx, m, []byte(`[1,null]`))
	assert.Equal(t, containerjson.CodeNullRejected, issueOf(t, err).Code)

	opts := unmarshal[collect.ImmutableList[collect.Optional[string]]](t, m, `["a",null]`)
	assert.Equal(t, []collect.Optional[string]{collect.Of("a"), collect.Absent[string]()}, opts.Slice())

	got := unmarshal[nullPolicies](t, m, `{"skip":["a",null,"b"],"empty":[null,"x"],"fail":null}`)
	assert.Equal(t, []string{"a", "b"}, got.Skip.Slice())
	assert.Equal(t, []string{"", "x"}, got.Empty.Slice())
	assert.True(t, got.Fail.IsEmpty())

	_, err = databind.Unmarshal[nullPolicies](ctx, m, []byte(`{"fail":[1,null]}`))
	is = issueOf(t, err)
	assert.Equal(t, containerjson.CodeNullRejected, is.Code)
	assert.Equal(t, "/fail/1", is.Path)
}

func TestContainers_ElementErrorsCarryPaths(t *testing.T) {
	m := newMapper(containerjson.Config{})
	_, err := databind.Unmarshal[collect.ImmutableList[collect.ImmutableList[int]]](context.Background(), m, []byte(`[[1],[2,"x"]]`))
	is := issueOf(t, err)
	assert.Equal(t, containerjson.CodeInvalidFormat, is.Code)
	assert.Equal(t, "/1/1", is.Path)
}

func TestContainers_MapElements(t *testing.T) {
	m := newMapper(containerjson.Config{})
	got := unmarshal[collect.ImmutableList[map[string]int]](t, m, `[{"a":1},{"b":2}]`)
	assert.Equal(t, []map[string]int{{"a": 1}, {"b": 2}}, got.Slice())

	_, err := databind.Unmarshal[collect.ImmutableList[map[string]int]](context.Background(), m, []byte(`[{"a":1},{"b":"x"}]`))
	is := issueOf(t, err)
	assert.Equal(t, containerjson.CodeInvalidFormat, is.Code)
	assert.Equal(t, "/1/b", is.Path)
}

func TestContainers_ErasedType(t *testing.T) {
	ctx := context.Background()
	rt := reflect.TypeFor[collect.ImmutableList[int]]()

	m := newMapper(containerjson.Config{})
	_, err := m.ReadValue(ctx, containerjson.JSONBytes([]byte(`[1]`)), databind.Erased(rt))
	is := issueOf(t, err)
	assert.Equal(t, containerjson.CodeUnresolvedType, is.Code)
	assert.ErrorIs(t, err, containerjson.ErrUnresolvedType)

	// A handler registered for the raw type resolves its elements from the
	// declared type it is bound to.
	mod := containers.NewModule()
	bound := databind.NewMapper(containerjson.Config{}, mod)
	bound.Registry().AddDeserializerFinder(databind.FinderFunc(func(t databind.Type, r *databind.Registry) (databind.Deserializer, error) {
		if t.Raw() != rt {
			return nil, nil
		}
		return mod.FindDeserializer(databind.Erased(rt), r)
	}))
	got := unmarshal[collect.ImmutableList[int]](t, bound, `[1,2]`)
	assert.Equal(t, []int{1, 2}, got.Slice())

	// Re-binding the same handler outside of that declared type cannot find
	// the element type again.
	dc := databind.NewContext(ctx, bound.Config(), bound.Registry())
	d, err := dc.FindRootValueDeserializer(databind.TypeFor[collect.ImmutableList[int]]())
	require.NoError(t, err)
	_, err = d.(databind.ContextualDeserializer).CreateContextual(dc, nil)
	assert.Equal(t, containerjson.CodeUnresolvedType, issueOf(t, err).Code)
}

func TestContainerDeserializer_IdentityReuse(t *testing.T) {
	m := newMapper(containerjson.Config{})
	dc := databind.NewContext(context.Background(), m.Config(), m.Registry())

	d, err := dc.FindRootValueDeserializer(databind.TypeFor[collect.ImmutableList[string]]())
	require.NoError(t, err)
	cd, ok := d.(databind.ContextualDeserializer)
	require.True(t, ok)

	again, err := cd.CreateContextual(dc, nil)
	require.NoError(t, err)
	assert.Same(t, d, again)

	prop := &databind.Property{Name: "tags", Type: databind.TypeFor[collect.ImmutableList[string]]()}
	same, err := cd.CreateContextual(dc, prop)
	require.NoError(t, err)
	assert.Same(t, d, same)

	prop.Format.AcceptSingleValueAsArray = containerjson.True
	single, err := cd.CreateContextual(dc, prop)
	require.NoError(t, err)
	assert.NotSame(t, d, single)

	idem, err := single.(databind.ContextualDeserializer).CreateContextual(dc, prop)
	require.NoError(t, err)
	assert.Same(t, single, idem)
}

func TestContainerDeserializer_PrimitiveIdentityReuse(t *testing.T) {
	m := newMapper(containerjson.Config{})
	dc := databind.NewContext(context.Background(), m.Config(), m.Registry())

	for _, rt := range []reflect.Type{reflect.TypeFor[collect.Ints](), reflect.TypeFor[collect.Chars]()} {
		d, err := dc.FindRootValueDeserializer(databind.TypeOf(rt))
		require.NoError(t, err)
		again, err := d.(databind.ContextualDeserializer).CreateContextual(dc, nil)
		require.NoError(t, err, rt.String())
		assert.Same(t, d, again, rt.String())
	}
}

func TestContainerDeserializer_SingleNull(t *testing.T) {
	m := newMapper(containerjson.Config{}.Enable(containerjson.AcceptSingleValueAsArray))
	dc := databind.NewContext(context.Background(), m.Config(), m.Registry())

	parse := func(t *testing.T, d databind.Deserializer) (any, error) {
		t.Helper()
		p := databind.NewParser(containerjson.JSONBytes([]byte(`null`)), m.Config())
		_, err := p.NextToken()
		require.NoError(t, err)
		return d.Deserialize(p, dc)
	}
	listType := databind.TypeFor[collect.ImmutableList[string]]()

	d, err := dc.FindRootValueDeserializer(listType)
	require.NoError(t, err)
	_, err = parse(t, d)
	assert.Equal(t, containerjson.CodeNullRejected, issueOf(t, err).Code)

	skip, err := dc.FindContextualValueDeserializer(listType, &databind.Property{
		Type:   listType,
		Format: databind.Format{ContentNulls: containerjson.NullsSkip},
	})
	require.NoError(t, err)
	v, err := parse(t, skip)
	require.NoError(t, err)
	assert.True(t, v.(collect.ImmutableList[string]).IsEmpty())

	optType := databind.TypeFor[collect.ImmutableList[collect.Optional[int]]]()
	opt, err := dc.FindRootValueDeserializer(optType)
	require.NoError(t, err)
	v, err = parse(t, opt)
	require.NoError(t, err)
	assert.Equal(t, []collect.Optional[int]{collect.Absent[int]()}, v.(collect.ImmutableList[collect.Optional[int]]).Slice())
}

type animal interface{ Sound() string }

type dog struct {
	Name string `json:"name"`
}

func (dog) Sound() string { return "woof" }

type cat struct {
	Name string `json:"name"`
}

func (cat) Sound() string { return "meow" }

type zoo struct {
	All    collect.ImmutableList[animal] `json:"all"`
	NoCats collect.ImmutableList[animal] `json:"noCats" cj:"exclude=cat"`
}

func zooMapper() *databind.Mapper {
	m := newMapper(containerjson.Config{})
	m.Registry().RegisterSubtypes(reflect.TypeFor[animal](), databind.TypeInfo{
		Property: "kind",
		Subtypes: map[string]reflect.Type{"dog": reflect.TypeFor[dog](), "cat": reflect.TypeFor[cat]()},
	})
	return m
}

func TestContainers_PolymorphicElements(t *testing.T) {
	m := zooMapper()
	got := unmarshal[zoo](t, m, `{"all":[{"kind":"dog","name":"rex"},["cat",{"name":"tom"}]],"noCats":[{"kind":"dog","name":"a"}]}`)
	assert.Equal(t, []animal{dog{Name: "rex"}, cat{Name: "tom"}}, got.All.Slice())
	assert.Equal(t, []animal{dog{Name: "a"}}, got.NoCats.Slice())

	_, err := databind.Unmarshal[zoo](context.Background(), m, []byte(`{"noCats":[{"kind":"cat","name":"x"}]}`))
	is := issueOf(t, err)
	assert.Equal(t, containerjson.CodeDiscriminatorUnknown, is.Code)
	assert.Equal(t, "/noCats/0", is.Path)
}

func TestContainerDeserializer_TypedFromArray(t *testing.T) {
	m := zooMapper()
	dc := databind.NewContext(context.Background(), m.Config(), m.Registry())
	listType := databind.TypeFor[collect.ImmutableList[string]]()
	d, err := dc.FindRootValueDeserializer(listType)
	require.NoError(t, err)

	holder := reflect.TypeFor[collect.ImmutableList[string]]()
	m.Registry().RegisterSubtypes(reflect.TypeFor[any](), databind.TypeInfo{Subtypes: map[string]reflect.Type{"tags": holder}})
	td := m.Registry().TypeDeserializerFor(databind.TypeFor[any]())
	require.NotNil(t, td)

	p := databind.NewParser(containerjson.JSONBytes([]byte(`["tags",["a","b"]]`)), m.Config())
	_, err = p.NextToken()
	require.NoError(t, err)
	v, err := databind.DeserializeWithType(d, p, dc, td)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v.(collect.ImmutableList[string]).Slice())
}

func TestContainers_ContentConverter(t *testing.T) {
	type lengths struct {
		Sizes collect.ImmutableSortedSet[int] `json:"sizes" cj:"convert=len"`
	}
	m := newMapper(containerjson.Config{})
	m.Registry().RegisterConverter("len", databind.Converter{
		In:      databind.TypeFor[string](),
		Convert: func(v any) (any, error) { return len(v.(string)), nil },
	})
	got := unmarshal[lengths](t, m, `{"sizes":["ccc","a","bb","a"]}`)
	assert.Equal(t, []int{1, 2, 3}, got.Sizes.Slice())
}
