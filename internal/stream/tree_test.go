package stream

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	eng "github.com/reoring/containerjson/internal/engine"
)

func TestTreeSource_RoundTripsThroughDecode(t *testing.T) {
	in := map[string]any{
		"b": []any{json.Number("1"), "x", nil, true},
		"a": map[string]any{},
	}
	src, err := NewTreeSource(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, err := src.NextToken()
	if err != nil || first.Kind != eng.KindBeginObject {
		t.Fatalf("want begin-object, got %v (%v)", first.Kind, err)
	}
	k, _ := src.NextToken()
	if k.Kind != eng.KindKey || k.String != "a" {
		t.Fatalf("keys must be sorted, got %q", k.String)
	}

	src, _ = NewTreeSource(in)
	out, err := eng.DecodeAnyFromSource(src)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	arr := out.(map[string]any)["b"].([]any)
	if len(arr) != 4 || arr[0] != json.Number("1") || arr[2] != nil {
		t.Fatalf("unexpected array %#v", arr)
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		t.Fatalf("want EOF after the tree, got %v", err)
	}
}

func TestTreeSource_RejectsUnknownValues(t *testing.T) {
	if _, err := NewTreeSource(struct{}{}); err == nil {
		t.Fatalf("expected error for struct value")
	}
}
