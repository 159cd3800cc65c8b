package containers

import (
	"errors"
	"fmt"

	"github.com/reoring/containerjson"
	"github.com/reoring/containerjson/collect"
	"github.com/reoring/containerjson/databind"
)

// kind is a container family the engine can build.
type kind interface {
	// content returns the element handler the family supplies itself, or nil
	// to look it up from the declared content type.
	content(ctx *databind.Context, owner databind.Type, prop *databind.Property) (databind.Deserializer, error)
	// elemType is the element type known from the family alone.
	elemType(owner databind.Type) (databind.Type, bool)
	newBuilder() collect.Builder
	createEmpty() any
	createSingle(v any) (any, error)
}

// shapeKind builds any collect container described by a Shape.
type shapeKind struct {
	shape collect.Shape
}

func (k shapeKind) content(*databind.Context, databind.Type, *databind.Property) (databind.Deserializer, error) {
	return nil, nil
}

func (k shapeKind) elemType(owner databind.Type) (databind.Type, bool) { return owner.ContentType() }

func (k shapeKind) newBuilder() collect.Builder     { return k.shape.NewBuilder() }
func (k shapeKind) createEmpty() any                { return k.shape.Empty() }
func (k shapeKind) createSingle(v any) (any, error) { return k.shape.Of(v) }

// ContainerDeserializer reads a JSON array into an immutable container. A
// contextualized instance never changes and may be shared.
type ContainerDeserializer struct {
	containerType  databind.Type
	kind           kind
	valueDeser     databind.Deserializer
	valueTypeDeser databind.TypeDeserializer
	nuller         databind.NullValueProvider
	unwrapSingle   containerjson.OptBool
}

// CreateContextual resolves the element handler, the element type resolver,
// the null provider and the single-value setting for prop. It returns d itself
// when none of them change.
func (d *ContainerDeserializer) CreateContextual(ctx *databind.Context, prop *databind.Property) (databind.Deserializer, error) {
	unwrap := d.unwrapSingle
	if o := ctx.FindFormatFeature(prop, containerjson.AcceptSingleValueAsArray); o != containerjson.Default {
		unwrap = o
	}
	valueDeser, err := ctx.FindConvertingContentDeserializer(prop, d.valueDeser)
	if err != nil {
		return nil, err
	}
	if valueDeser == nil {
		valueDeser, err = d.kind.content(ctx, d.containerType, prop)
		if err != nil {
			return nil, err
		}
	}
	valueTypeDeser := d.valueTypeDeser
	switch {
	case valueDeser == nil:
		ct, err := d.contentType(ctx)
		if err != nil {
			return nil, err
		}
		if valueDeser, err = ctx.FindContextualValueDeserializer(ct, prop); err != nil {
			return nil, err
		}
		if valueTypeDeser == nil {
			valueTypeDeser = ctx.FindTypeDeserializer(ct)
		}
	case valueDeser == d.valueDeser:
		ct, err := d.contentType(ctx)
		if err != nil {
			return nil, err
		}
		if valueDeser, err = ctx.HandleSecondaryContextualization(valueDeser, prop, ct); err != nil {
			return nil, err
		}
	}
	if valueTypeDeser != nil {
		valueTypeDeser = valueTypeDeser.ForProperty(prop)
	}
	nuller := ctx.FindContentNullProvider(prop, valueDeser, d.containerType)
	return d.withResolved(ctx, valueDeser, valueTypeDeser, nuller, unwrap), nil
}

func (d *ContainerDeserializer) withResolved(ctx *databind.Context, valueDeser databind.Deserializer,
	valueTypeDeser databind.TypeDeserializer, nuller databind.NullValueProvider, unwrap containerjson.OptBool,
) *ContainerDeserializer {
	if valueDeser == d.valueDeser && valueTypeDeser == d.valueTypeDeser &&
		nuller == d.nuller && unwrap == d.unwrapSingle {
		return d
	}
	ctx.Logger().Debug("containers: handler resolved", "type", d.containerType.String(), "typed", valueTypeDeser != nil)
	return &ContainerDeserializer{
		containerType:  d.containerType,
		kind:           d.kind,
		valueDeser:     valueDeser,
		valueTypeDeser: valueTypeDeser,
		nuller:         nuller,
		unwrapSingle:   unwrap,
	}
}

// contentType returns the declared element type. A container whose type
// arguments were erased falls back to the contextual type being bound.
func (d *ContainerDeserializer) contentType(ctx *databind.Context) (databind.Type, error) {
	if ct, ok := d.kind.elemType(d.containerType); ok {
		return ct, nil
	}
	if cur := ctx.ContextualType(); cur.Raw() == d.containerType.Raw() {
		if ct, ok := cur.ContentType(); ok {
			return ct, nil
		}
	}
	return databind.Type{}, ctx.ReportBadDefinition(d.containerType, nil,
		fmt.Sprintf("cannot find the element type of %s: its type arguments are not available", d.containerType))
}

// ContainerType returns the declared type the handler builds.
func (d *ContainerDeserializer) ContainerType() databind.Type { return d.containerType }

func (d *ContainerDeserializer) Deserialize(p *databind.Parser, ctx *databind.Context) (any, error) {
	if d.valueDeser == nil {
		return nil, ctx.ReportBadDefinition(d.containerType, p,
			fmt.Sprintf("handler for %s was used without being bound to a type", d.containerType))
	}
	if p.IsExpectedStartArrayToken() {
		return d.deserializeContents(p, ctx)
	}
	return d.handleNonArray(p, ctx)
}

func (d *ContainerDeserializer) DeserializeWithType(p *databind.Parser, ctx *databind.Context, td databind.TypeDeserializer) (any, error) {
	return td.DeserializeTypedFromArray(p, ctx)
}

func (d *ContainerDeserializer) EmptyValue(*databind.Context) (any, error) {
	return d.kind.createEmpty(), nil
}

func (d *ContainerDeserializer) deserializeContents(p *databind.Parser, ctx *databind.Context) (any, error) {
	b := d.kind.newBuilder()
	for {
		tok, err := p.NextToken()
		if err != nil {
			return nil, containerjson.ToIssues(err)
		}
		if tok == containerjson.TokenEndArray {
			break
		}
		var v any
		if tok == containerjson.TokenNull {
			if databind.IsSkipper(d.nuller) {
				continue
			}
			if d.nuller != nil {
				if v, err = d.nuller.NullValue(p, ctx); err != nil {
					return nil, err
				}
			}
			if v == nil {
				if err := d.tryToAddNull(p, ctx, b); err != nil {
					return nil, err
				}
				continue
			}
		} else if v, err = databind.DeserializeWithType(d.valueDeser, p, ctx, d.valueTypeDeser); err != nil {
			return nil, err
		}
		if err := b.Add(v); err != nil {
			return nil, d.builderError(p, ctx, err)
		}
	}
	out, err := b.Build()
	if err != nil {
		return nil, d.builderError(p, ctx, err)
	}
	return out, nil
}

func (d *ContainerDeserializer) handleNonArray(p *databind.Parser, ctx *databind.Context) (any, error) {
	if !d.unwrapSingle.Resolve(ctx.IsEnabled(containerjson.AcceptSingleValueAsArray)) {
		return nil, ctx.WrongTokenError(d.containerType, p, containerjson.TokenBeginArray,
			fmt.Sprintf("expected %s for %s, got %s", containerjson.TokenBeginArray, d.containerType, p.CurrentToken()))
	}
	var v any
	var err error
	if p.IsNull() {
		if databind.IsSkipper(d.nuller) {
			return d.kind.createEmpty(), nil
		}
		if d.nuller != nil {
			if v, err = d.nuller.NullValue(p, ctx); err != nil {
				return nil, err
			}
		}
		if v == nil {
			return nil, d.tryToAddNull(p, ctx, d.kind.newBuilder())
		}
	} else if v, err = databind.DeserializeWithType(d.valueDeser, p, ctx, d.valueTypeDeser); err != nil {
		return nil, err
	}
	out, err := d.kind.createSingle(v)
	if err != nil {
		return nil, d.builderError(p, ctx, err)
	}
	return out, nil
}

// tryToAddNull adds a null element, turning the container's refusal into a
// null_rejected issue.
func (d *ContainerDeserializer) tryToAddNull(p *databind.Parser, ctx *databind.Context, b collect.Builder) error {
	if err := b.Add(nil); err != nil {
		return d.builderError(p, ctx, err)
	}
	return nil
}

func (d *ContainerDeserializer) builderError(p *databind.Parser, ctx *databind.Context, err error) error {
	if errors.Is(err, collect.ErrNullElement) {
		return ctx.ReportNullRejected(d.containerType, p, "")
	}
	return ctx.ReportInvalidType(d.containerType, p, err)
}
