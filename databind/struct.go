package databind

import (
	"reflect"

	"github.com/reoring/containerjson"
)

type boundProperty struct {
	prop *Property
	d    Deserializer
	td   TypeDeserializer
}

// structDeserializer binds JSON objects to exported struct fields. Property
// handlers are resolved after the struct handler is registered, so a struct may
// refer to itself.
type structDeserializer struct {
	t      Type
	byName map[string]*boundProperty
}

func (d *structDeserializer) Resolve(ctx *Context) error {
	rt := d.t.raw
	byName := make(map[string]*boundProperty, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		prop := PropertyOf(sf)
		if prop.Name == "-" {
			continue
		}
		pd, err := ctx.FindContextualValueDeserializer(prop.Type, prop)
		if err != nil {
			return err
		}
		var td TypeDeserializer
		if _, isPtr := pd.(*pointerDeserializer); !isPtr {
			if td = ctx.FindTypeDeserializer(prop.Type); td != nil {
				td = td.ForProperty(prop)
			}
		}
		byName[prop.Name] = &boundProperty{prop: prop, d: pd, td: td}
	}
	d.byName = byName
	ctx.Logger().Debug("databind: struct resolved", "type", d.t.String(), "properties", len(byName))
	return nil
}

func (d *structDeserializer) Deserialize(p *Parser, ctx *Context) (any, error) {
	if p.CurrentToken() != containerjson.TokenBeginObject {
		return nil, ctx.WrongTokenError(d.t, p, containerjson.TokenBeginObject, "")
	}
	out := reflect.New(d.t.raw).Elem()
	for {
		if err := ctx.Err(); err != nil {
			return nil, containerjson.ToIssues(err)
		}
		kind, err := p.NextToken()
		if err != nil {
			return nil, containerjson.ToIssues(err)
		}
		if kind == containerjson.TokenEndObject {
			return out.Interface(), nil
		}
		key := p.Text()
		bp, known := d.byName[key]
		if !known && ctx.IsEnabled(containerjson.FailOnUnknownProperties) {
			return nil, ctx.ReportUnknownProperty(d.t, p, key)
		}
		if _, err := p.NextToken(); err != nil {
			return nil, containerjson.ToIssues(err)
		}
		if !known {
			if err := p.SkipChildren(); err != nil {
				return nil, containerjson.ToIssues(err)
			}
			continue
		}
		v, err := ReadValue(bp.d, p, ctx, bp.td)
		if err != nil {
			return nil, err
		}
		if err := assign(out.FieldByIndex(bp.prop.Index), v); err != nil {
			return nil, ctx.ReportInvalidType(bp.prop.Type, p, err)
		}
	}
}
