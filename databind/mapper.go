package databind

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/reoring/containerjson"
)

// Mapper is the binding facade. It is safe for concurrent use; contextualized
// root handlers are cached per declared type.
type Mapper struct {
	cfg   containerjson.Config
	reg   *Registry
	roots *sync.Map // Type.key() -> Deserializer
}

// NewMapper returns a mapper with its own registry and the given modules.
func NewMapper(cfg containerjson.Config, modules ...Module) *Mapper {
	return &Mapper{cfg: cfg, reg: NewRegistry(cfg, modules...), roots: &sync.Map{}}
}

// With returns a mapper sharing the registry and handler caches but using cfg.
func (m *Mapper) With(cfg containerjson.Config) *Mapper {
	return &Mapper{cfg: cfg, reg: m.reg, roots: m.roots}
}

func (m *Mapper) Registry() *Registry          { return m.reg }
func (m *Mapper) Config() containerjson.Config { return m.cfg }

// ReadValue binds the single value read from src to t.
func (m *Mapper) ReadValue(ctx context.Context, src containerjson.Source, t Type) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, containerjson.ToIssues(err)
	}
	dc := NewContext(ctx, m.cfg, m.reg)
	p := NewParser(src, m.cfg)
	if _, err := p.NextToken(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, containerjson.Issues{{Path: "/", Code: containerjson.CodeTruncated, Message: "no content", Cause: err, Offset: -1}}
		}
		return nil, containerjson.ToIssues(err)
	}
	d, err := m.root(dc, t)
	if err != nil {
		return nil, err
	}
	v, err := ReadValue(d, p, dc, dc.FindTypeDeserializer(t))
	if err != nil {
		return nil, containerjson.ToIssues(err)
	}
	if m.cfg.IsEnabled(containerjson.FailOnTrailingTokens) {
		_, err := p.NextToken()
		if err == nil {
			return nil, containerjson.Issues{{Path: p.Path(), Code: containerjson.CodeParseError, Message: "trailing tokens after the root value", Offset: p.Location()}}
		}
		if !errors.Is(err, io.EOF) {
			return nil, containerjson.ToIssues(err)
		}
	}
	return v, nil
}

func (m *Mapper) root(dc *Context, t Type) (Deserializer, error) {
	if d, ok := m.roots.Load(t.key()); ok {
		return d.(Deserializer), nil
	}
	d, err := dc.FindRootValueDeserializer(t)
	if err != nil {
		return nil, err
	}
	actual, _ := m.roots.LoadOrStore(t.key(), d)
	return actual.(Deserializer), nil
}

// Marshal encodes v, applying the registry's serializer modifiers to structs.
func (m *Mapper) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := &encoder{reg: m.reg, cfg: m.cfg}
	if err := enc.encode(&buf, reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal binds JSON data to T using the current driver.
func Unmarshal[T any](ctx context.Context, m *Mapper, data []byte) (T, error) {
	return UnmarshalFrom[T](ctx, m, containerjson.JSONBytes(data))
}

// UnmarshalFrom binds the value read from src to T. A null root yields the
// null value of T's handler.
func UnmarshalFrom[T any](ctx context.Context, m *Mapper, src containerjson.Source) (T, error) {
	var zero T
	v, err := m.ReadValue(ctx, src, TypeFor[T]())
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	if out, ok := v.(T); ok {
		return out, nil
	}
	out := reflect.New(reflect.TypeFor[T]()).Elem()
	if err := assign(out, v); err != nil {
		return zero, containerjson.Issues{{Path: "/", Code: containerjson.CodeInvalidType, Message: fmt.Sprintf("cannot bind %T to %s", v, TypeFor[T]()), Cause: err, Offset: -1}}
	}
	return out.Interface().(T), nil
}
