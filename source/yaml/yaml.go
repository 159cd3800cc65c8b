// Package yaml exposes a YAML document as the same token stream the JSON drivers
// produce, so YAML input binds through the regular handlers.
package yaml

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	eng "github.com/reoring/containerjson/internal/engine"
)

type source struct {
	r    io.Reader
	toks []eng.Token
	pos  int
	err  error
	read bool
}

// NewReader wraps an io.Reader holding a YAML document. Only the first
// document is read.
func NewReader(r io.Reader) eng.TokenSource { return &source{r: r} }

// NewBytes wraps a YAML byte slice.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) load() {
	s.read = true
	var doc yaml.Node
	if err := yaml.NewDecoder(s.r).Decode(&doc); err != nil {
		if err == io.EOF {
			return
		}
		s.err = fmt.Errorf("yaml: %w", err)
		return
	}
	s.err = s.walk(&doc)
}

func (s *source) walk(n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			s.emit(eng.Token{Kind: eng.KindNull})
			return nil
		}
		return s.walk(n.Content[0])
	case yaml.AliasNode:
		return s.walk(n.Alias)
	case yaml.MappingNode:
		s.emit(eng.Token{Kind: eng.KindBeginObject})
		for i := 0; i+1 < len(n.Content); i += 2 {
			s.emit(eng.Token{Kind: eng.KindKey, String: n.Content[i].Value})
			if err := s.walk(n.Content[i+1]); err != nil {
				return err
			}
		}
		s.emit(eng.Token{Kind: eng.KindEndObject})
	case yaml.SequenceNode:
		s.emit(eng.Token{Kind: eng.KindBeginArray})
		for _, c := range n.Content {
			if err := s.walk(c); err != nil {
				return err
			}
		}
		s.emit(eng.Token{Kind: eng.KindEndArray})
	case yaml.ScalarNode:
		return s.scalar(n)
	default:
		return fmt.Errorf("yaml: unsupported node kind %d at line %d", n.Kind, n.Line)
	}
	return nil
}

func (s *source) scalar(n *yaml.Node) error {
	switch n.ShortTag() {
	case "!!null":
		s.emit(eng.Token{Kind: eng.KindNull})
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return fmt.Errorf("yaml: line %d: %w", n.Line, err)
		}
		s.emit(eng.Token{Kind: eng.KindBool, Bool: b})
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return fmt.Errorf("yaml: line %d: %w", n.Line, err)
		}
		s.emit(eng.Token{Kind: eng.KindNumber, Number: strconv.FormatInt(i, 10)})
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return fmt.Errorf("yaml: line %d: %w", n.Line, err)
		}
		s.emit(eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(f, 'g', -1, 64)})
	default:
		s.emit(eng.Token{Kind: eng.KindString, String: n.Value})
	}
	return nil
}

func (s *source) emit(t eng.Token) {
	t.Offset = -1
	s.toks = append(s.toks, t)
}

func (s *source) NextToken() (eng.Token, error) {
	if !s.read {
		s.load()
	}
	if s.err != nil {
		return eng.Token{}, s.err
	}
	if s.pos >= len(s.toks) {
		return eng.Token{}, io.EOF
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}

func (s *source) Location() int64 { return -1 }
