package containers

import (
	"fmt"
	"reflect"

	"github.com/reoring/containerjson"
	"github.com/reoring/containerjson/collect"
	"github.com/reoring/containerjson/databind"
)

// RangeSetDeserializer reads a list of ranges and merges them into a RangeSet.
type RangeSetDeserializer struct {
	t            databind.Type
	shape        collect.Shape
	ranges       databind.Deserializer
	unwrapSingle containerjson.OptBool
}

// CreateContextual finds the list-of-ranges type from the contextual type, then
// from the property. When neither is known the handler is returned unchanged
// and fails when used.
func (d *RangeSetDeserializer) CreateContextual(ctx *databind.Context, prop *databind.Property) (databind.Deserializer, error) {
	unwrap := d.unwrapSingle
	if o := ctx.FindFormatFeature(prop, containerjson.AcceptSingleValueAsArray); o != containerjson.Default {
		unwrap = o
	}
	lt, ok := rangeListType(ctx.ContextualType())
	if !ok && prop != nil {
		lt, ok = rangeListType(prop.Type)
	}
	if !ok {
		if unwrap == d.unwrapSingle {
			return d, nil
		}
		return &RangeSetDeserializer{t: d.t, shape: d.shape, ranges: d.ranges, unwrapSingle: unwrap}, nil
	}
	// The list holds *Range[C]; ranges are read one at a time.
	ranges, err := ctx.FindContextualValueDeserializer(databind.TypeOf(lt.Elem().Elem()), nil)
	if err != nil {
		return nil, err
	}
	if ranges == d.ranges && unwrap == d.unwrapSingle {
		return d, nil
	}
	return &RangeSetDeserializer{t: d.t, shape: d.shape, ranges: ranges, unwrapSingle: unwrap}, nil
}

func rangeListType(t databind.Type) (reflect.Type, bool) {
	if t.IsZero() || t.IsErased() {
		return nil, false
	}
	rs, ok := reflect.Zero(t.Raw()).Interface().(collect.RangeSetShaped)
	if !ok {
		return nil, false
	}
	return rs.RangeListType(), true
}

func (d *RangeSetDeserializer) Deserialize(p *databind.Parser, ctx *databind.Context) (any, error) {
	if d.ranges == nil {
		return nil, ctx.ReportBadDefinition(d.t, p,
			fmt.Sprintf("handler for %s is not contextualized: the range type is not available from type arguments", d.t))
	}
	b := d.shape.NewBuilder()
	if !p.IsExpectedStartArrayToken() {
		if !d.unwrapSingle.Resolve(ctx.IsEnabled(containerjson.AcceptSingleValueAsArray)) {
			return nil, ctx.WrongTokenError(d.t, p, containerjson.TokenBeginArray,
				fmt.Sprintf("expected begin-array for %s, got %s", d.t, p.CurrentToken()))
		}
		if err := d.addRange(p, ctx, b, 0); err != nil {
			return nil, err
		}
		return d.build(p, ctx, b)
	}
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return nil, containerjson.ToIssues(err)
		}
		tok, err := p.NextToken()
		if err != nil {
			return nil, containerjson.ToIssues(err)
		}
		if tok == containerjson.TokenEndArray {
			return d.build(p, ctx, b)
		}
		if err := d.addRange(p, ctx, b, i); err != nil {
			return nil, err
		}
	}
}

func (d *RangeSetDeserializer) addRange(p *databind.Parser, ctx *databind.Context, b collect.Builder, i int) error {
	if p.IsNull() {
		return ctx.ReportNullRejected(d.t, p, fmt.Sprintf("%s does not accept null ranges (index %d)", d.t, i))
	}
	r, err := d.ranges.Deserialize(p, ctx)
	if err != nil {
		return err
	}
	if err := b.Add(r); err != nil {
		return ctx.ReportInvalidType(d.t, p, err)
	}
	return nil
}

func (d *RangeSetDeserializer) build(p *databind.Parser, ctx *databind.Context, b collect.Builder) (any, error) {
	out, err := b.Build()
	if err != nil {
		return nil, ctx.ReportInvalidType(d.t, p, err)
	}
	return out, nil
}

func (d *RangeSetDeserializer) EmptyValue(*databind.Context) (any, error) {
	return d.shape.Empty(), nil
}
