package containers

import (
	"fmt"
	"strings"

	"github.com/reoring/containerjson"
	"github.com/reoring/containerjson/collect"
	"github.com/reoring/containerjson/databind"
)

// Object form field names of a range.
const (
	fieldLowerEndpoint  = "lowerEndpoint"
	fieldLowerBoundType = "lowerBoundType"
	fieldUpperEndpoint  = "upperEndpoint"
	fieldUpperBoundType = "upperBoundType"
)

// RangeDeserializer reads a range from bracket notation ("[1..5)") or from the
// object form written by Range.MarshalJSON.
type RangeDeserializer struct {
	t        databind.Type
	maker    collect.RangeMaker
	endpoint databind.Deserializer
}

func (d *RangeDeserializer) CreateContextual(ctx *databind.Context, _ *databind.Property) (databind.Deserializer, error) {
	if d.endpoint != nil {
		return d, nil
	}
	ct, ok := d.t.ContentType()
	if !ok {
		return nil, ctx.ReportBadDefinition(d.t, nil, fmt.Sprintf("cannot find the endpoint type of %s", d.t))
	}
	endpoint, err := ctx.FindContextualValueDeserializer(ct, nil)
	if err != nil {
		return nil, err
	}
	return &RangeDeserializer{t: d.t, maker: d.maker, endpoint: endpoint}, nil
}

func (d *RangeDeserializer) Deserialize(p *databind.Parser, ctx *databind.Context) (any, error) {
	var lower, upper collect.AnyEndpoint
	var err error
	switch p.CurrentToken() {
	case containerjson.TokenString:
		lower, upper, err = d.fromText(p, ctx)
	case containerjson.TokenBeginObject:
		lower, upper, err = d.fromObject(p, ctx)
	default:
		return nil, ctx.HandleUnexpectedToken(d.t, p, fmt.Sprintf("%s must be a string like \"[1..5)\" or an object", d.t))
	}
	if err != nil {
		return nil, err
	}
	r, err := d.maker.MakeRange(lower, upper)
	if err != nil {
		return nil, ctx.ReportInvalidFormat(d.t, p, fmt.Sprint(lower.Value, "..", upper.Value), err)
	}
	return r, nil
}

func (d *RangeDeserializer) fromText(p *databind.Parser, ctx *databind.Context) (lower, upper collect.AnyEndpoint, err error) {
	text := p.Text()
	lo, hi, err := collect.SplitRangeText(text)
	if err != nil {
		return lower, upper, ctx.ReportInvalidFormat(d.t, p, text, err)
	}
	if lower, err = d.textEndpoint(p, ctx, lo); err != nil {
		return lower, upper, err
	}
	upper, err = d.textEndpoint(p, ctx, hi)
	return lower, upper, err
}

func (d *RangeDeserializer) textEndpoint(p *databind.Parser, ctx *databind.Context, e collect.TextEndpoint) (collect.AnyEndpoint, error) {
	if !e.Bounded {
		return collect.AnyEndpoint{}, nil
	}
	sub, err := p.Sub(strings.TrimSpace(e.Text))
	if err != nil {
		return collect.AnyEndpoint{}, containerjson.ToIssues(err)
	}
	v, err := d.endpoint.Deserialize(sub, ctx)
	if err != nil {
		return collect.AnyEndpoint{}, err
	}
	return collect.AnyEndpoint{Value: v, Type: e.Type, Bounded: true}, nil
}

func (d *RangeDeserializer) fromObject(p *databind.Parser, ctx *databind.Context) (lower, upper collect.AnyEndpoint, err error) {
	lower.Type, upper.Type = collect.Closed, collect.Closed
	for {
		tok, err := p.NextToken()
		if err != nil {
			return lower, upper, containerjson.ToIssues(err)
		}
		if tok == containerjson.TokenEndObject {
			return lower, upper, nil
		}
		key := p.Text()
		if _, err := p.NextToken(); err != nil {
			return lower, upper, containerjson.ToIssues(err)
		}
		switch key {
		case fieldLowerEndpoint:
			lower.Value, lower.Bounded, err = d.endpointValue(p, ctx)
		case fieldUpperEndpoint:
			upper.Value, upper.Bounded, err = d.endpointValue(p, ctx)
		case fieldLowerBoundType:
			lower.Type, err = d.boundType(p, ctx)
		case fieldUpperBoundType:
			upper.Type, err = d.boundType(p, ctx)
		default:
			if ctx.IsEnabled(containerjson.FailOnUnknownProperties) {
				return lower, upper, ctx.ReportUnknownProperty(d.t, p, key)
			}
			err = p.SkipChildren()
		}
		if err != nil {
			return lower, upper, containerjson.ToIssues(err)
		}
	}
}

func (d *RangeDeserializer) endpointValue(p *databind.Parser, ctx *databind.Context) (any, bool, error) {
	if p.IsNull() {
		return nil, false, nil
	}
	v, err := d.endpoint.Deserialize(p, ctx)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (d *RangeDeserializer) boundType(p *databind.Parser, ctx *databind.Context) (collect.BoundType, error) {
	if p.CurrentToken() != containerjson.TokenString {
		return collect.Closed, ctx.WrongTokenError(d.t, p, containerjson.TokenString, "")
	}
	bt, err := collect.ParseBoundType(p.Text())
	if err != nil {
		return collect.Closed, ctx.ReportInvalidFormat(d.t, p, p.Text(), err)
	}
	return bt, nil
}
