package databind

import (
	"reflect"

	"github.com/reoring/containerjson"
)

// mapDeserializer reads objects into Go maps with string keys.
type mapDeserializer struct {
	t      Type
	value  Deserializer
	td     TypeDeserializer
	nuller NullValueProvider
}

func (d *mapDeserializer) CreateContextual(ctx *Context, prop *Property) (Deserializer, error) {
	valueType, _ := d.t.ContentType()
	value, err := ctx.FindConvertingContentDeserializer(prop, d.value)
	if err != nil {
		return nil, err
	}
	switch {
	case value == nil:
		value, err = ctx.FindContextualValueDeserializer(valueType, prop)
	case value == d.value:
		value, err = ctx.HandleSecondaryContextualization(value, prop, valueType)
	}
	if err != nil {
		return nil, err
	}
	td := d.td
	if td == nil {
		td = ctx.FindTypeDeserializer(valueType)
	}
	if td != nil {
		td = td.ForProperty(prop)
	}
	nuller := ctx.FindContentNullProvider(prop, value, d.t)
	if value == d.value && td == d.td && nuller == d.nuller {
		return d, nil
	}
	return &mapDeserializer{t: d.t, value: value, td: td, nuller: nuller}, nil
}

func (d *mapDeserializer) Deserialize(p *Parser, ctx *Context) (any, error) {
	if p.CurrentToken() != containerjson.TokenBeginObject {
		return nil, ctx.HandleUnexpectedToken(d.t, p, "")
	}
	rt := d.t.raw
	out := reflect.MakeMap(rt)
	for {
		if err := ctx.Err(); err != nil {
			return nil, containerjson.ToIssues(err)
		}
		tok, err := p.NextToken()
		if err != nil {
			return nil, containerjson.ToIssues(err)
		}
		if tok == containerjson.TokenEndObject {
			return out.Interface(), nil
		}
		key := p.Text()
		if _, err := p.NextToken(); err != nil {
			return nil, containerjson.ToIssues(err)
		}
		var v any
		if p.IsNull() {
			if IsSkipper(d.nuller) {
				continue
			}
			if d.nuller != nil {
				v, err = d.nuller.NullValue(p, ctx)
			}
		} else {
			v, err = DeserializeWithType(d.value, p, ctx, d.td)
		}
		if err != nil {
			return nil, err
		}
		ev := reflect.New(rt.Elem()).Elem()
		if err := assign(ev, v); err != nil {
			return nil, ctx.ReportInvalidType(d.t, p, err)
		}
		out.SetMapIndex(reflect.ValueOf(key).Convert(rt.Key()), ev)
	}
}

// NullValue is a nil map.
func (d *mapDeserializer) NullValue(*Parser, *Context) (any, error) {
	return reflect.Zero(d.t.raw).Interface(), nil
}

func (d *mapDeserializer) EmptyValue(*Context) (any, error) {
	return reflect.MakeMap(d.t.raw).Interface(), nil
}
