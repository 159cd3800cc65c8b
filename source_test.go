package containerjson_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/containerjson"
)

func tokens(t *testing.T, src containerjson.Source) []containerjson.TokenKind {
	t.Helper()
	var out []containerjson.TokenKind
	for {
		tok, err := src.NextToken()
		if err != nil {
			return out
		}
		out = append(out, tok.Kind)
	}
}

func TestDrivers_AgreeOnTokens(t *testing.T) {
	doc := `{"a":[1,"x",true,null]}`
	want := []containerjson.TokenKind{
		containerjson.TokenBeginObject, containerjson.TokenKey,
		containerjson.TokenBeginArray, containerjson.TokenNumber, containerjson.TokenString,
		containerjson.TokenBool, containerjson.TokenNull, containerjson.TokenEndArray,
		containerjson.TokenEndObject,
	}
	for _, d := range []containerjson.Driver{containerjson.GoJSONDriver(), containerjson.StdJSONDriver(), containerjson.YAMLDriver()} {
		t.Run(d.Name(), func(t *testing.T) {
			assert.Equal(t, want, tokens(t, d.NewBytes([]byte(doc))))
			assert.Equal(t, want, tokens(t, d.NewReader(strings.NewReader(doc))))
		})
	}
}

func TestSetDriver(t *testing.T) {
	t.Cleanup(containerjson.UseDefaultDriver)
	assert.Equal(t, "go-json", containerjson.CurrentDriver().Name())

	containerjson.SetDriver(nil)
	assert.Equal(t, "go-json", containerjson.CurrentDriver().Name())

	containerjson.SetDriver(containerjson.StdJSONDriver())
	assert.Equal(t, "encoding/json", containerjson.CurrentDriver().Name())
}

func TestEnforce_Paths(t *testing.T) {
	ps := containerjson.Enforce(containerjson.JSONBytes([]byte(`{"items":["a",{"k":1}]}`)), containerjson.Config{})
	var paths []string
	for {
		if _, err := ps.NextToken(); err != nil {
			break
		}
		paths = append(paths, ps.Path())
	}
	assert.Equal(t, []string{"", "/items", "/items", "/items/0", "/items/1", "/items/1/k", "/items/1/k", "/items/1", "/items", ""}, paths)
}

func TestEnforce_Limits(t *testing.T) {
	cfg := containerjson.Config{MaxDepth: 2}
	ps := containerjson.Enforce(containerjson.JSONBytes([]byte(`[[[1]]]`)), cfg)
	var err error
	for err == nil {
		_, err = ps.NextToken()
	}
	iss := containerjson.ToIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, containerjson.CodeParseError, iss[0].Code)
	assert.Equal(t, "/0/0", iss[0].Path)

	cfg = containerjson.Config{Strictness: containerjson.Strictness{OnDuplicateKey: containerjson.Error}}
	ps = containerjson.Enforce(containerjson.JSONBytes([]byte(`{"a":1,"a":2}`)), cfg)
	for err = nil; err == nil; {
		_, err = ps.NextToken()
	}
	iss = containerjson.ToIssues(err)
	assert.Equal(t, containerjson.CodeDuplicateKey, iss[0].Code)
	assert.Equal(t, "/a", iss[0].Path)
}
