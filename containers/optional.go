package containers

import (
	"github.com/reoring/containerjson/collect"
	"github.com/reoring/containerjson/databind"
)

// OptionalDeserializer reads an Optional. Null is Absent, which also makes it
// the null surrogate for containers of optionals.
type OptionalDeserializer struct {
	t     databind.Type
	opt   collect.OptionalValue
	inner databind.Deserializer
	td    databind.TypeDeserializer
}

func (d *OptionalDeserializer) CreateContextual(ctx *databind.Context, prop *databind.Property) (databind.Deserializer, error) {
	ct, ok := d.t.ContentType()
	if !ok {
		return nil, ctx.ReportBadDefinition(d.t, nil, "cannot find the value type of "+d.t.String())
	}
	inner := d.inner
	var err error
	if inner == nil {
		inner, err = ctx.FindContextualValueDeserializer(ct, prop)
	} else {
		inner, err = ctx.HandleSecondaryContextualization(inner, prop, ct)
	}
	if err != nil {
		return nil, err
	}
	td := d.td
	if td == nil {
		td = ctx.FindTypeDeserializer(ct)
	}
	if td != nil {
		td = td.ForProperty(prop)
	}
	if inner == d.inner && td == d.td {
		return d, nil
	}
	return &OptionalDeserializer{t: d.t, opt: d.opt, inner: inner, td: td}, nil
}

func (d *OptionalDeserializer) Deserialize(p *databind.Parser, ctx *databind.Context) (any, error) {
	v, err := databind.ReadValue(d.inner, p, ctx, d.td)
	if err != nil {
		return nil, err
	}
	out, err := d.opt.Wrap(v)
	if err != nil {
		return nil, ctx.ReportInvalidType(d.t, p, err)
	}
	return out, nil
}

func (d *OptionalDeserializer) NullValue(*databind.Parser, *databind.Context) (any, error) {
	return d.opt.AbsentValue(), nil
}

func (d *OptionalDeserializer) EmptyValue(*databind.Context) (any, error) {
	return d.opt.AbsentValue(), nil
}
