package engine

import (
	"errors"
	"io"
	"testing"
)

type sliceSource struct {
	toks []Token
	pos  int
}

func (s *sliceSource) NextToken() (Token, error) {
	if s.pos >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}

func (s *sliceSource) Location() int64 { return int64(s.pos) }

func toks(kinds ...any) *sliceSource {
	var out []Token
	for _, k := range kinds {
		switch v := k.(type) {
		case Kind:
			out = append(out, Token{Kind: v})
		case string:
			out = append(out, Token{Kind: KindKey, String: v})
		}
	}
	return &sliceSource{toks: out}
}

func TestEnforcement_TracksPointerPaths(t *testing.T) {
	// {"a":[1,{"b/c":null}]}
	src := WrapWithEnforcement(toks(KindBeginObject, "a", KindBeginArray, KindNumber,
		KindBeginObject, "b/c", KindNull, KindEndObject, KindEndArray, KindEndObject), EnforceOptions{})
	want := []string{"", "/a", "/a", "/a/0", "/a/1", "/a/1/b~1c", "/a/1/b~1c", "/a/1", "/a", ""}
	for i, w := range want {
		if _, err := src.NextToken(); err != nil {
			t.Fatalf("token %d: %v", i, err)
		}
		if got := src.Path(); got != w {
			t.Fatalf("token %d: path %q, want %q", i, got, w)
		}
	}
}

func TestEnforcement_DuplicateKeys(t *testing.T) {
	mk := func() TokenSource {
		return toks(KindBeginObject, "k", KindNull, "k", KindNull, KindEndObject)
	}
	var sunk []SimpleIssue
	warn := WrapWithEnforcement(mk(), EnforceOptions{OnDuplicate: DupWarn, IssueSink: func(si SimpleIssue) { sunk = append(sunk, si) }})
	if _, err := DecodeAnyFromSource(warn); err != nil {
		t.Fatalf("warn mode must not fail: %v", err)
	}
	if len(sunk) != 1 || sunk[0].Code != "duplicate_key" || sunk[0].Path != "/k" {
		t.Fatalf("unexpected sink: %#v", sunk)
	}

	_, err := DecodeAnyFromSource(WrapWithEnforcement(mk(), EnforceOptions{OnDuplicate: DupError}))
	var ie IssueError
	if !errors.As(err, &ie) || ie.Code != "duplicate_key" {
		t.Fatalf("want duplicate_key, got %v", err)
	}
}

func TestEnforcement_MaxDepthAndBytes(t *testing.T) {
	_, err := DecodeAnyFromSource(WrapWithEnforcement(toks(KindBeginArray, KindBeginArray, KindEndArray, KindEndArray), EnforceOptions{MaxDepth: 1}))
	var ie IssueError
	if !errors.As(err, &ie) || ie.Code != "parse_error" {
		t.Fatalf("want depth error, got %v", err)
	}
	_, err = DecodeAnyFromSource(WrapWithEnforcement(toks(KindBeginArray, KindNull, KindNull, KindEndArray), EnforceOptions{MaxBytes: 2}))
	if !errors.As(err, &ie) || ie.Code != "truncated" {
		t.Fatalf("want truncated, got %v", err)
	}
}

func TestSkipValue(t *testing.T) {
	src := toks(KindBeginArray, KindBeginObject, "x", KindNull, KindEndObject, KindEndArray, KindBool)
	first, _ := src.NextToken()
	if err := SkipValue(src, first); err != nil {
		t.Fatalf("skip: %v", err)
	}
	next, _ := src.NextToken()
	if next.Kind != KindBool {
		t.Fatalf("expected to resume after the skipped value, got %v", next.Kind)
	}
}
