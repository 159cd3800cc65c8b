package databind_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/containerjson/collect"
	"github.com/reoring/containerjson/databind"
)

func TestTypeOf_CapturesTypeArguments(t *testing.T) {
	list := databind.TypeFor[collect.ImmutableList[string]]()
	require.Equal(t, []reflect.Type{reflect.TypeFor[string]()}, list.Params())
	ct, ok := list.ContentType()
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[string](), ct.Raw())

	m := databind.TypeFor[map[string]int]()
	ct, ok = m.ContentType()
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[int](), ct.Raw())

	ptr := databind.TypeFor[*int]()
	ct, ok = ptr.ContentType()
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[int](), ct.Raw())

	_, ok = databind.TypeFor[string]().ContentType()
	assert.False(t, ok)
}

func TestErased_DropsTypeArguments(t *testing.T) {
	rt := reflect.TypeFor[collect.Multiset[int]]()
	full := databind.TypeOf(rt)
	erased := databind.Erased(rt)

	assert.True(t, erased.IsErased())
	assert.False(t, full.IsErased())
	assert.Empty(t, erased.Params())
	_, ok := erased.ContentType()
	assert.False(t, ok)
	assert.Equal(t, "collect.Multiset", erased.String())
	assert.Equal(t, "collect.Multiset[int]", full.String())
	assert.False(t, full.Equal(erased))
	assert.True(t, full.Equal(databind.TypeFor[collect.Multiset[int]]()))
}
