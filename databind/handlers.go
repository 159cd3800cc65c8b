package databind

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/reoring/containerjson"
)

// scalarDeserializer reads strings, booleans and numbers into t. Numeric text
// in string tokens is accepted, as is a number token for a string.
type scalarDeserializer struct {
	t Type
}

func (d *scalarDeserializer) Deserialize(p *Parser, ctx *Context) (any, error) {
	rt := d.t.raw
	tok := p.CurrentToken()
	if !tok.IsScalar() || tok == containerjson.TokenNull {
		return nil, ctx.HandleUnexpectedToken(d.t, p, "")
	}
	text := p.Text()
	out := reflect.New(rt).Elem()
	if rt == jsonNumberType {
		if tok != containerjson.TokenNumber {
			if _, err := strconv.ParseFloat(text, 64); err != nil {
				return nil, ctx.ReportInvalidFormat(d.t, p, text, err)
			}
		}
		out.SetString(text)
		return out.Interface(), nil
	}
	switch rt.Kind() {
	case reflect.String:
		if tok == containerjson.TokenBool {
			return nil, ctx.WrongTokenError(d.t, p, containerjson.TokenString, "")
		}
		out.SetString(text)
	case reflect.Bool:
		switch tok {
		case containerjson.TokenBool:
			out.SetBool(p.Bool())
		case containerjson.TokenString:
			b, err := strconv.ParseBool(text)
			if err != nil {
				return nil, ctx.ReportInvalidFormat(d.t, p, text, err)
			}
			out.SetBool(b)
		default:
			return nil, ctx.WrongTokenError(d.t, p, containerjson.TokenBool, "")
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if tok == containerjson.TokenBool {
			return nil, ctx.WrongTokenError(d.t, p, containerjson.TokenNumber, "")
		}
		n, err := strconv.ParseInt(text, 10, rt.Bits())
		if err != nil {
			return nil, ctx.ReportInvalidFormat(d.t, p, text, err)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if tok == containerjson.TokenBool {
			return nil, ctx.WrongTokenError(d.t, p, containerjson.TokenNumber, "")
		}
		n, err := strconv.ParseUint(text, 10, rt.Bits())
		if err != nil {
			return nil, ctx.ReportInvalidFormat(d.t, p, text, err)
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		if tok == containerjson.TokenBool {
			return nil, ctx.WrongTokenError(d.t, p, containerjson.TokenNumber, "")
		}
		f, err := strconv.ParseFloat(text, rt.Bits())
		if err != nil {
			return nil, ctx.ReportInvalidFormat(d.t, p, text, err)
		}
		out.SetFloat(f)
	default:
		return nil, ctx.ReportBadDefinition(d.t, p, "not a scalar type")
	}
	return out.Interface(), nil
}

// EmptyValue is the zero value of the scalar type.
func (d *scalarDeserializer) EmptyValue(*Context) (any, error) {
	return reflect.Zero(d.t.raw).Interface(), nil
}

// treeDeserializer reads any value into map[string]any, []any or a scalar.
type treeDeserializer struct {
	t Type
}

func (d *treeDeserializer) Deserialize(p *Parser, ctx *Context) (any, error) {
	v, err := p.ReadValueAsTree()
	if err != nil {
		return nil, containerjson.ToIssues(err)
	}
	return v, nil
}

func (d *treeDeserializer) DeserializeWithType(p *Parser, ctx *Context, td TypeDeserializer) (any, error) {
	return td.DeserializeTypedFromAny(p, ctx)
}

// abstractDeserializer handles non-empty interfaces, which need type metadata.
type abstractDeserializer struct {
	t Type
}

func (d *abstractDeserializer) Deserialize(p *Parser, ctx *Context) (any, error) {
	td := ctx.FindTypeDeserializer(d.t)
	if td == nil {
		return nil, ctx.ReportBadDefinition(d.t, p, fmt.Sprintf("%s is abstract and has no registered subtypes", d.t))
	}
	return td.DeserializeTypedFromAny(p, ctx)
}

func (d *abstractDeserializer) DeserializeWithType(p *Parser, ctx *Context, td TypeDeserializer) (any, error) {
	return td.DeserializeTypedFromAny(p, ctx)
}

// ConvertingDeserializer reads a value with a delegate handler and passes it
// through a named Converter.
type ConvertingDeserializer struct {
	name     string
	conv     Converter
	delegate Deserializer
}

func (d *ConvertingDeserializer) Deserialize(p *Parser, ctx *Context) (any, error) {
	v, err := d.delegate.Deserialize(p, ctx)
	if err != nil {
		return nil, err
	}
	out, err := d.conv.Convert(v)
	if err != nil {
		return nil, ctx.ReportInvalidFormat(d.conv.In, p, fmt.Sprint(v), err)
	}
	return out, nil
}

// pointerDeserializer reads the element and returns a pointer to it. Null
// yields a nil pointer of the declared type.
type pointerDeserializer struct {
	t     Type
	inner Deserializer
	td    TypeDeserializer
}

func (d *pointerDeserializer) CreateContextual(ctx *Context, prop *Property) (Deserializer, error) {
	elem, _ := d.t.ContentType()
	inner := d.inner
	if inner == nil {
		var err error
		if inner, err = ctx.FindContextualValueDeserializer(elem, prop); err != nil {
			return nil, err
		}
	}
	td := d.td
	if td == nil {
		td = ctx.FindTypeDeserializer(elem)
	}
	if td != nil {
		td = td.ForProperty(prop)
	}
	if inner == d.inner && td == d.td {
		return d, nil
	}
	return &pointerDeserializer{t: d.t, inner: inner, td: td}, nil
}

func (d *pointerDeserializer) Deserialize(p *Parser, ctx *Context) (any, error) {
	if p.IsNull() {
		return d.NullValue(p, ctx)
	}
	v, err := DeserializeWithType(d.inner, p, ctx, d.td)
	if err != nil {
		return nil, err
	}
	ptr := reflect.New(d.t.raw.Elem())
	if err := assign(ptr.Elem(), v); err != nil {
		return nil, ctx.ReportInvalidType(d.t, p, err)
	}
	return ptr.Interface(), nil
}

func (d *pointerDeserializer) NullValue(*Parser, *Context) (any, error) {
	return reflect.Zero(d.t.raw).Interface(), nil
}
