package containerjson

import (
	"io"
	"sync"

	eng "github.com/reoring/containerjson/internal/engine"
	gojsonsrc "github.com/reoring/containerjson/source/gojson"
	jsonsrc "github.com/reoring/containerjson/source/json"
	yamlsrc "github.com/reoring/containerjson/source/yaml"
)

// tokenKind enumerates JSON token kinds.
type tokenKind int

const (
	_tokenBeginObject tokenKind = iota
	_tokenEndObject
	_tokenBeginArray
	_tokenEndArray
	_tokenKey
	_tokenString
	_tokenNumber
	_tokenBool
	_tokenNull
)

// TokenKind is the exported alias of the internal token kind.
type TokenKind = tokenKind

const (
	TokenBeginObject TokenKind = _tokenBeginObject
	TokenEndObject   TokenKind = _tokenEndObject
	TokenBeginArray  TokenKind = _tokenBeginArray
	TokenEndArray    TokenKind = _tokenEndArray
	TokenKey         TokenKind = _tokenKey
	TokenString      TokenKind = _tokenString
	TokenNumber      TokenKind = _tokenNumber
	TokenBool        TokenKind = _tokenBool
	TokenNull        TokenKind = _tokenNull
)

// String returns the name used in diagnostics.
func (k tokenKind) String() string {
	switch k {
	case _tokenBeginObject:
		return "begin-object"
	case _tokenEndObject:
		return "end-object"
	case _tokenBeginArray:
		return "begin-array"
	case _tokenEndArray:
		return "end-array"
	case _tokenKey:
		return "key"
	case _tokenString:
		return "string"
	case _tokenNumber:
		return "number"
	case _tokenBool:
		return "bool"
	case _tokenNull:
		return "null"
	default:
		return "unknown"
	}
}

// IsScalar reports whether the kind is a single-token value.
func (k tokenKind) IsScalar() bool {
	switch k {
	case _tokenString, _tokenNumber, _tokenBool, _tokenNull:
		return true
	}
	return false
}

// Token describes a token in the input stream. Offset records the byte position
// when known (-1 otherwise).
type Token struct {
	Kind   tokenKind
	String string // Stored for key/string tokens.
	Number string // Stored as text; conversion happens in the handler that consumes it.
	Bool   bool
	Offset int64
}

// Source abstracts over polymorphic input sources.
type Source interface {
	NextToken() (Token, error)
	Location() int64 // byte offset; -1 if unknown
}

// Driver converts raw input into a Source. The default implementation is based
// on goccy/go-json and may be swapped with SetDriver.
type Driver interface {
	NewReader(r io.Reader) Source
	NewBytes(b []byte) Source
	Name() string
}

var (
	driverMu      sync.RWMutex
	currentDriver Driver = goJSONDriver{}
)

// SetDriver replaces the global JSON driver; nil values are ignored.
func SetDriver(d Driver) {
	if d == nil {
		return
	}
	driverMu.Lock()
	currentDriver = d
	driverMu.Unlock()
}

// UseDefaultDriver restores the go-json backed driver.
func UseDefaultDriver() {
	driverMu.Lock()
	currentDriver = goJSONDriver{}
	driverMu.Unlock()
}

// CurrentDriver returns the driver used by JSONReader and JSONBytes.
func CurrentDriver() Driver {
	driverMu.RLock()
	d := currentDriver
	driverMu.RUnlock()
	return d
}

type goJSONDriver struct{}

func (goJSONDriver) NewReader(r io.Reader) Source {
	return &engineSourceAdapter{inner: gojsonsrc.NewReader(r)}
}
func (goJSONDriver) NewBytes(b []byte) Source {
	return &engineSourceAdapter{inner: gojsonsrc.NewBytes(b)}
}
func (goJSONDriver) Name() string { return "go-json" }

type stdJSONDriver struct{}

func (stdJSONDriver) NewReader(r io.Reader) Source {
	return &engineSourceAdapter{inner: jsonsrc.NewReader(r)}
}
func (stdJSONDriver) NewBytes(b []byte) Source {
	return &engineSourceAdapter{inner: jsonsrc.NewBytes(b)}
}
func (stdJSONDriver) Name() string { return "encoding/json" }

type yamlDriver struct{}

func (yamlDriver) NewReader(r io.Reader) Source {
	return &engineSourceAdapter{inner: yamlsrc.NewReader(r)}
}
func (yamlDriver) NewBytes(b []byte) Source {
	return &engineSourceAdapter{inner: yamlsrc.NewBytes(b)}
}
func (yamlDriver) Name() string { return "yaml.v3" }

// GoJSONDriver returns the default go-json driver.
func GoJSONDriver() Driver { return goJSONDriver{} }

// StdJSONDriver returns a driver backed by encoding/json.
func StdJSONDriver() Driver { return stdJSONDriver{} }

// YAMLDriver returns a driver that reads the first YAML document of its input.
func YAMLDriver() Driver { return yamlDriver{} }

// JSONReader wraps an io.Reader as a JSON Source.
func JSONReader(r io.Reader) Source { return CurrentDriver().NewReader(r) }

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return CurrentDriver().NewBytes(b) }

// YAMLReader wraps an io.Reader holding YAML as a Source.
func YAMLReader(r io.Reader) Source { return yamlDriver{}.NewReader(r) }

// YAMLBytes wraps a YAML byte slice as a Source.
func YAMLBytes(b []byte) Source { return yamlDriver{}.NewBytes(b) }

// SourceFromEngine wraps an engine.TokenSource as a containerjson.Source.
func SourceFromEngine(inner eng.TokenSource) Source {
	return &engineSourceAdapter{inner: inner}
}

type engineSourceAdapter struct {
	inner eng.TokenSource
}

func (s *engineSourceAdapter) NextToken() (Token, error) {
	t, err := s.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	return Token{Kind: fromEngineKind(t.Kind), String: t.String, Number: t.Number, Bool: t.Bool, Offset: t.Offset}, nil
}
func (s *engineSourceAdapter) Location() int64 { return s.inner.Location() }

func fromEngineKind(k eng.Kind) tokenKind {
	switch k {
	case eng.KindBeginObject:
		return _tokenBeginObject
	case eng.KindEndObject:
		return _tokenEndObject
	case eng.KindBeginArray:
		return _tokenBeginArray
	case eng.KindEndArray:
		return _tokenEndArray
	case eng.KindKey:
		return _tokenKey
	case eng.KindString:
		return _tokenString
	case eng.KindNumber:
		return _tokenNumber
	case eng.KindBool:
		return _tokenBool
	default:
		return _tokenNull
	}
}

// FromEngineKind converts an engine kind to the public token kind.
func FromEngineKind(k eng.Kind) TokenKind { return fromEngineKind(k) }
