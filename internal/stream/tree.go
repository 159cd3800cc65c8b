package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"

	eng "github.com/reoring/containerjson/internal/engine"
)

// TreeSource replays an already decoded value (map[string]any, []any, string,
// json.Number, float64, bool, nil) as a token stream. Object keys are replayed
// in sorted order.
type TreeSource struct {
	toks []eng.Token
	pos  int
}

// NewTreeSource flattens v into tokens.
func NewTreeSource(v any) (*TreeSource, error) {
	s := &TreeSource{}
	if err := s.flatten(v); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *TreeSource) flatten(v any) error {
	switch x := v.(type) {
	case nil:
		s.emit(eng.Token{Kind: eng.KindNull})
	case map[string]any:
		s.emit(eng.Token{Kind: eng.KindBeginObject})
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			s.emit(eng.Token{Kind: eng.KindKey, String: k})
			if err := s.flatten(x[k]); err != nil {
				return err
			}
		}
		s.emit(eng.Token{Kind: eng.KindEndObject})
	case []any:
		s.emit(eng.Token{Kind: eng.KindBeginArray})
		for _, e := range x {
			if err := s.flatten(e); err != nil {
				return err
			}
		}
		s.emit(eng.Token{Kind: eng.KindEndArray})
	case string:
		s.emit(eng.Token{Kind: eng.KindString, String: x})
	case json.Number:
		s.emit(eng.Token{Kind: eng.KindNumber, Number: string(x)})
	case float64:
		s.emit(eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(x, 'g', -1, 64)})
	case int:
		s.emit(eng.Token{Kind: eng.KindNumber, Number: strconv.Itoa(x)})
	case int64:
		s.emit(eng.Token{Kind: eng.KindNumber, Number: strconv.FormatInt(x, 10)})
	case bool:
		s.emit(eng.Token{Kind: eng.KindBool, Bool: x})
	default:
		return fmt.Errorf("stream: cannot replay %T", v)
	}
	return nil
}

func (s *TreeSource) emit(t eng.Token) {
	t.Offset = -1
	s.toks = append(s.toks, t)
}

func (s *TreeSource) NextToken() (eng.Token, error) {
	if s.pos >= len(s.toks) {
		return eng.Token{}, io.EOF
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}

func (s *TreeSource) Location() int64 { return -1 }
