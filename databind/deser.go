package databind

import (
	"fmt"
	"reflect"
)

// Deserializer converts the value at the parser's current token. Handlers are
// immutable once contextualized and may be shared between goroutines.
type Deserializer interface {
	Deserialize(p *Parser, ctx *Context) (any, error)
}

// ContextualDeserializer derives a handler specialized for a binding site. It
// returns itself when nothing changes.
type ContextualDeserializer interface {
	CreateContextual(ctx *Context, prop *Property) (Deserializer, error)
}

// ResolvableDeserializer finishes setup after the handler has been registered,
// so recursive types can refer to it.
type ResolvableDeserializer interface {
	Resolve(ctx *Context) error
}

// TypedDeserializer reads values carrying embedded type metadata.
type TypedDeserializer interface {
	DeserializeWithType(p *Parser, ctx *Context, td TypeDeserializer) (any, error)
}

// NullValueProvider supplies the value used for a null token.
type NullValueProvider interface {
	NullValue(p *Parser, ctx *Context) (any, error)
}

// EmptyValueProvider supplies the canonical empty value of a handler.
type EmptyValueProvider interface {
	EmptyValue(ctx *Context) (any, error)
}

// DeserializeWithType reads a value through td, using the handler's own typed
// path when it has one.
func DeserializeWithType(d Deserializer, p *Parser, ctx *Context, td TypeDeserializer) (any, error) {
	if td == nil {
		return d.Deserialize(p, ctx)
	}
	if typed, ok := d.(TypedDeserializer); ok {
		return typed.DeserializeWithType(p, ctx, td)
	}
	return td.DeserializeTypedFromAny(p, ctx)
}

// ReadValue reads the current value with d, routing null tokens to the
// handler's null value.
func ReadValue(d Deserializer, p *Parser, ctx *Context, td TypeDeserializer) (any, error) {
	if p.IsNull() {
		if np, ok := d.(NullValueProvider); ok {
			return np.NullValue(p, ctx)
		}
		return nil, nil
	}
	return DeserializeWithType(d, p, ctx, td)
}

// ---- null providers ----

type skipper struct{}

func (*skipper) NullValue(*Parser, *Context) (any, error) { return nil, nil }

var skipNulls NullValueProvider = &skipper{}

// SkipNulls returns the provider that marks null elements to be dropped.
func SkipNulls() NullValueProvider { return skipNulls }

// IsSkipper reports whether np drops null elements.
func IsSkipper(np NullValueProvider) bool { return np == skipNulls }

// failNulls rejects null elements of a container.
type failNulls struct{ typeName string }

func (f failNulls) NullValue(p *Parser, ctx *Context) (any, error) {
	return nil, ctx.nullRejected(f.typeName, p)
}

// emptyNulls replaces null elements with the handler's empty value.
type emptyNulls struct{ d EmptyValueProvider }

func (e emptyNulls) NullValue(_ *Parser, ctx *Context) (any, error) { return e.d.EmptyValue(ctx) }

// ---- value assignment ----

// assign stores v into dst, converting between types of the same kind.
func assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.SetZero()
		return nil
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.Type().AssignableTo(dst.Type()):
		dst.Set(rv)
	case rv.Kind() == dst.Kind() && rv.Type().ConvertibleTo(dst.Type()):
		dst.Set(rv.Convert(dst.Type()))
	default:
		return fmt.Errorf("cannot assign %s to %s", rv.Type(), dst.Type())
	}
	return nil
}
