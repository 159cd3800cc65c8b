package gojson_test

import (
	"encoding/json"
	"strings"
	"testing"

	eng "github.com/reoring/containerjson/internal/engine"
	gojsonsrc "github.com/reoring/containerjson/source/gojson"
	jsonsrc "github.com/reoring/containerjson/source/json"
)

func TestDrivers_ProduceSameTokens(t *testing.T) {
	const doc = `{"a":[1,"two",null,{"b":false}],"c":"d"}`
	collect := func(src eng.TokenSource) []eng.Token {
		var out []eng.Token
		for {
			tok, err := src.NextToken()
			if err != nil {
				return out
			}
			tok.Offset = 0
			out = append(out, tok)
		}
	}
	got := collect(gojsonsrc.NewReader(strings.NewReader(doc)))
	want := collect(jsonsrc.NewBytes([]byte(doc)))
	if len(got) != len(want) || len(got) != 14 {
		t.Fatalf("token count mismatch: go-json=%d encoding/json=%d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("token %d differs: %#v vs %#v", i, got[i], want[i])
		}
	}
	if got[1].Kind != eng.KindKey || got[3].Number != "1" {
		t.Fatalf("unexpected tokens: %#v", got[:4])
	}
}

func TestGoJSON_KeepsNumberText(t *testing.T) {
	v, err := eng.DecodeAnyFromSource(gojsonsrc.NewBytes([]byte(`[12345678901234567890]`)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.([]any)[0] != json.Number("12345678901234567890") {
		t.Fatalf("number text lost: %#v", v)
	}
}
