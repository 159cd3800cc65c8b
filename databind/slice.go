package databind

import (
	"reflect"

	"github.com/reoring/containerjson"
)

// sliceDeserializer reads arrays into Go slices, with optional single-value
// coercion and per-property null handling.
type sliceDeserializer struct {
	t            Type
	elem         Deserializer
	td           TypeDeserializer
	nuller       NullValueProvider
	unwrapSingle containerjson.OptBool
}

func (d *sliceDeserializer) CreateContextual(ctx *Context, prop *Property) (Deserializer, error) {
	unwrap := d.unwrapSingle
	if o := ctx.FindFormatFeature(prop, containerjson.AcceptSingleValueAsArray); o != containerjson.Default {
		unwrap = o
	}
	elemType, _ := d.t.ContentType()
	elem, err := ctx.FindConvertingContentDeserializer(prop, d.elem)
	if err != nil {
		return nil, err
	}
	switch {
	case elem == nil:
		elem, err = ctx.FindContextualValueDeserializer(elemType, prop)
	case elem == d.elem:
		elem, err = ctx.HandleSecondaryContextualization(elem, prop, elemType)
	}
	if err != nil {
		return nil, err
	}
	td := d.td
	if td == nil {
		td = ctx.FindTypeDeserializer(elemType)
	}
	if td != nil {
		td = td.ForProperty(prop)
	}
	nuller := ctx.FindContentNullProvider(prop, elem, d.t)
	if elem == d.elem && td == d.td && nuller == d.nuller && unwrap == d.unwrapSingle {
		return d, nil
	}
	return &sliceDeserializer{t: d.t, elem: elem, td: td, nuller: nuller, unwrapSingle: unwrap}, nil
}

func (d *sliceDeserializer) Deserialize(p *Parser, ctx *Context) (any, error) {
	out := reflect.MakeSlice(d.t.raw, 0, 4)
	if !p.IsExpectedStartArrayToken() {
		if !d.unwrapSingle.Resolve(ctx.IsEnabled(containerjson.AcceptSingleValueAsArray)) {
			return nil, ctx.HandleUnexpectedToken(d.t, p, "")
		}
		if p.IsNull() && IsSkipper(d.nuller) {
			return out.Interface(), nil
		}
		return d.appendOne(out, p, ctx)
	}
	for {
		kind, err := p.NextToken()
		if err != nil {
			return nil, containerjson.ToIssues(err)
		}
		if kind == containerjson.TokenEndArray {
			return out.Interface(), nil
		}
		if kind == containerjson.TokenNull && IsSkipper(d.nuller) {
			continue
		}
		if out, err = d.appendOneValue(out, p, ctx); err != nil {
			return nil, err
		}
	}
}

func (d *sliceDeserializer) appendOne(out reflect.Value, p *Parser, ctx *Context) (any, error) {
	out, err := d.appendOneValue(out, p, ctx)
	if err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

func (d *sliceDeserializer) appendOneValue(out reflect.Value, p *Parser, ctx *Context) (reflect.Value, error) {
	var v any
	var err error
	if p.IsNull() {
		if d.nuller != nil {
			v, err = d.nuller.NullValue(p, ctx)
		}
	} else {
		v, err = DeserializeWithType(d.elem, p, ctx, d.td)
	}
	if err != nil {
		return out, err
	}
	ev := reflect.New(d.t.raw.Elem()).Elem()
	if err := assign(ev, v); err != nil {
		return out, ctx.ReportInvalidType(d.t, p, err)
	}
	return reflect.Append(out, ev), nil
}

func (d *sliceDeserializer) DeserializeWithType(p *Parser, ctx *Context, td TypeDeserializer) (any, error) {
	return td.DeserializeTypedFromArray(p, ctx)
}

// NullValue is a nil slice.
func (d *sliceDeserializer) NullValue(*Parser, *Context) (any, error) {
	return reflect.Zero(d.t.raw).Interface(), nil
}

func (d *sliceDeserializer) EmptyValue(*Context) (any, error) {
	return reflect.MakeSlice(d.t.raw, 0, 0).Interface(), nil
}
