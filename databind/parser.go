package databind

import (
	"github.com/reoring/containerjson"
	eng "github.com/reoring/containerjson/internal/engine"
	"github.com/reoring/containerjson/internal/stream"
)

// Parser is a pull cursor over a token stream. Handlers are called with the
// parser on the first token of their value and return with it on the last one.
type Parser struct {
	src    eng.PathSource
	cur    eng.Token
	has    bool
	prefix string
}

// NewParser wraps src with the depth, size and duplicate-key limits of cfg.
func NewParser(src containerjson.Source, cfg containerjson.Config) *Parser {
	return &Parser{src: containerjson.Enforce(src, cfg)}
}

// NextToken advances and returns the new current token kind.
func (p *Parser) NextToken() (containerjson.TokenKind, error) {
	tok, err := p.src.NextToken()
	if err != nil {
		p.has = false
		return containerjson.TokenNull, err
	}
	p.cur, p.has = tok, true
	return containerjson.FromEngineKind(tok.Kind), nil
}

// CurrentToken returns the kind of the current token.
func (p *Parser) CurrentToken() containerjson.TokenKind {
	return containerjson.FromEngineKind(p.cur.Kind)
}

// Token returns the current token.
func (p *Parser) Token() containerjson.Token {
	return containerjson.Token{
		Kind:   containerjson.FromEngineKind(p.cur.Kind),
		String: p.cur.String,
		Number: p.cur.Number,
		Bool:   p.cur.Bool,
		Offset: p.cur.Offset,
	}
}

// HasToken reports whether a current token exists.
func (p *Parser) HasToken() bool { return p.has }

func (p *Parser) IsExpectedStartArrayToken() bool {
	return p.has && p.cur.Kind == eng.KindBeginArray
}

// IsNull reports whether the current token is null.
func (p *Parser) IsNull() bool { return p.has && p.cur.Kind == eng.KindNull }

// Text returns the text of a string, key or number token, and "true"/"false"
// for booleans.
func (p *Parser) Text() string {
	switch p.cur.Kind {
	case eng.KindString, eng.KindKey:
		return p.cur.String
	case eng.KindNumber:
		return p.cur.Number
	case eng.KindBool:
		if p.cur.Bool {
			return "true"
		}
		return "false"
	case eng.KindNull:
		return "null"
	}
	return ""
}

func (p *Parser) Bool() bool { return p.cur.Bool }

// ReadValueAsTree decodes the current value into map[string]any, []any or a
// scalar (numbers as json.Number).
func (p *Parser) ReadValueAsTree() (any, error) {
	v, err := eng.DecodeValue(p.src, p.cur)
	if err != nil {
		return nil, err
	}
	p.closeCurrent()
	return v, nil
}

// SkipChildren consumes the rest of the current object or array.
func (p *Parser) SkipChildren() error {
	if err := eng.SkipValue(p.src, p.cur); err != nil {
		return err
	}
	p.closeCurrent()
	return nil
}

func (p *Parser) closeCurrent() {
	switch p.cur.Kind {
	case eng.KindBeginObject:
		p.cur = eng.Token{Kind: eng.KindEndObject, Offset: -1}
	case eng.KindBeginArray:
		p.cur = eng.Token{Kind: eng.KindEndArray, Offset: -1}
	}
}

// Path returns the JSON Pointer of the current token.
func (p *Parser) Path() string {
	if s := p.prefix + p.src.Path(); s != "" {
		return s
	}
	return "/"
}

func (p *Parser) Location() int64 { return p.src.Location() }

// Sub returns a parser replaying tree, positioned on its first token. Paths are
// reported relative to the current path of p.
func (p *Parser) Sub(tree any) (*Parser, error) {
	ts, err := stream.NewTreeSource(tree)
	if err != nil {
		return nil, err
	}
	prefix := p.prefix + p.src.Path()
	sub := &Parser{src: eng.WrapWithEnforcement(ts, eng.EnforceOptions{}), prefix: prefix}
	if _, err := sub.NextToken(); err != nil {
		return nil, err
	}
	return sub, nil
}
