package databind

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/ygrebnov/errorc"

	"github.com/reoring/containerjson"
	"github.com/reoring/containerjson/i18n"
)

// Context carries the state of one binding pass: configuration, the registry,
// the stack of types being contextualized and handlers still being resolved.
// A Context belongs to a single goroutine.
type Context struct {
	std        context.Context
	cfg        containerjson.Config
	reg        *Registry
	types      []Type
	incomplete map[reflect.Type]Deserializer
}

// NewContext returns a binding context.
func NewContext(std context.Context, cfg containerjson.Config, reg *Registry) *Context {
	if std == nil {
		std = context.Background()
	}
	return &Context{std: std, cfg: cfg, reg: reg, incomplete: make(map[reflect.Type]Deserializer)}
}

func (c *Context) Context() context.Context               { return c.std }
func (c *Context) Config() containerjson.Config           { return c.cfg }
func (c *Context) Registry() *Registry                    { return c.reg }
func (c *Context) Logger() *slog.Logger                   { return c.cfg.Log() }
func (c *Context) IsEnabled(f containerjson.Feature) bool { return c.cfg.IsEnabled(f) }

// Err reports cancellation of the underlying context.Context.
func (c *Context) Err() error { return c.std.Err() }

// ContextualType returns the type whose handler is being contextualized, or the
// zero Type outside contextualization.
func (c *Context) ContextualType() Type {
	if n := len(c.types); n > 0 {
		return c.types[n-1]
	}
	return Type{}
}

// FindRootValueDeserializer returns the contextualized handler for a root value.
func (c *Context) FindRootValueDeserializer(t Type) (Deserializer, error) {
	return c.FindContextualValueDeserializer(t, nil)
}

// FindContextualValueDeserializer returns the handler for t specialized for prop.
func (c *Context) FindContextualValueDeserializer(t Type, prop *Property) (Deserializer, error) {
	d, err := c.findValueDeserializer(t)
	if err != nil {
		return nil, err
	}
	return c.HandleSecondaryContextualization(d, prop, t)
}

// HandleSecondaryContextualization specializes an already found handler for
// prop, with t as the contextual type.
func (c *Context) HandleSecondaryContextualization(d Deserializer, prop *Property, t Type) (Deserializer, error) {
	cd, ok := d.(ContextualDeserializer)
	if !ok {
		return d, nil
	}
	c.types = append(c.types, t)
	defer func() { c.types = c.types[:len(c.types)-1] }()
	return cd.CreateContextual(c, prop)
}

func (c *Context) findValueDeserializer(t Type) (Deserializer, error) {
	if t.IsZero() {
		return nil, c.ReportBadDefinition(t, nil, "no type to resolve a handler for")
	}
	if d, ok := c.reg.cached(t); ok {
		return d, nil
	}
	if d, ok := c.incomplete[t.raw]; ok {
		return d, nil
	}
	d, err := c.reg.create(c, t)
	if err != nil {
		return nil, err
	}
	if rd, ok := d.(ResolvableDeserializer); ok {
		c.incomplete[t.raw] = d
		err := rd.Resolve(c)
		delete(c.incomplete, t.raw)
		if err != nil {
			return nil, err
		}
		d = c.reg.store(t, d)
	}
	return d, nil
}

// FindTypeDeserializer returns the polymorphic handler registered for t, or nil.
func (c *Context) FindTypeDeserializer(t Type) TypeDeserializer {
	return c.reg.TypeDeserializerFor(t)
}

// FindContentNullProvider selects how null elements of a container of type
// owner are handled, from the property's nulls setting and the element handler.
func (c *Context) FindContentNullProvider(prop *Property, d Deserializer, owner Type) NullValueProvider {
	nulls := containerjson.NullsDefault
	if prop != nil {
		nulls = prop.Format.ContentNulls
	}
	switch nulls {
	case containerjson.NullsSkip:
		return skipNulls
	case containerjson.NullsFail:
		return failNulls{typeName: owner.String()}
	case containerjson.NullsAsEmpty:
		if ep, ok := d.(EmptyValueProvider); ok {
			return emptyNulls{d: ep}
		}
	}
	if np, ok := d.(NullValueProvider); ok {
		return np
	}
	return nil
}

// FindConvertingContentDeserializer wraps d with the converter named by the
// property, if any. With no existing handler the converter's input type is
// looked up.
func (c *Context) FindConvertingContentDeserializer(prop *Property, d Deserializer) (Deserializer, error) {
	if prop == nil || prop.Format.ContentConverter == "" {
		return d, nil
	}
	name := prop.Format.ContentConverter
	if cd, ok := d.(*ConvertingDeserializer); ok && cd.name == name {
		return d, nil
	}
	conv, ok := c.reg.converter(name)
	if !ok {
		return nil, c.ReportBadDefinition(prop.Type, nil, fmt.Sprintf("no converter registered as %q", name))
	}
	delegate := d
	if delegate == nil {
		var err error
		if delegate, err = c.FindContextualValueDeserializer(conv.In, prop); err != nil {
			return nil, err
		}
	}
	return &ConvertingDeserializer{name: name, conv: conv, delegate: delegate}, nil
}

// FindFormatFeature returns the per-property override of f.
func (c *Context) FindFormatFeature(prop *Property, f containerjson.Feature) containerjson.OptBool {
	if prop == nil {
		return containerjson.Default
	}
	if f == containerjson.AcceptSingleValueAsArray {
		return prop.Format.AcceptSingleValueAsArray
	}
	return containerjson.Default
}

// ---- error reporting ----

func (c *Context) issue(code string, typeName string, p *Parser, hint string, cause error) error {
	path, off := "/", int64(-1)
	if p != nil {
		path, off = p.Path(), p.Location()
	}
	return containerjson.Issues{containerjson.Issue{
		Path:    path,
		Code:    code,
		Message: i18n.T(code, map[string]string{"type": typeName}),
		Hint:    hint,
		Cause:   cause,
		Offset:  off,
		Params:  map[string]any{"type": typeName},
	}}
}

func actualToken(p *Parser) string {
	if p == nil || !p.HasToken() {
		return "end-of-input"
	}
	return p.CurrentToken().String()
}

// HandleUnexpectedToken reports that the current token cannot start a t.
func (c *Context) HandleUnexpectedToken(t Type, p *Parser, hint string) error {
	actual := actualToken(p)
	if hint == "" {
		hint = fmt.Sprintf("cannot deserialize %s from %s", t, actual)
	}
	return c.issue(containerjson.CodeUnexpectedToken, t.String(), p, hint,
		errorc.With(containerjson.ErrUnexpectedToken,
			errorc.String(containerjson.ErrorFieldType, t.String()),
			errorc.String(containerjson.ErrorFieldActual, actual)))
}

// WrongTokenError reports that t needed a different token than the current one.
func (c *Context) WrongTokenError(t Type, p *Parser, expected containerjson.TokenKind, hint string) error {
	actual := actualToken(p)
	if hint == "" {
		hint = fmt.Sprintf("expected %s, got %s", expected, actual)
	}
	return c.issue(containerjson.CodeUnexpectedToken, t.String(), p, hint,
		errorc.With(containerjson.ErrUnexpectedToken,
			errorc.String(containerjson.ErrorFieldType, t.String()),
			errorc.String(containerjson.ErrorFieldExpected, expected.String()),
			errorc.String(containerjson.ErrorFieldActual, actual)))
}

// ReportBadDefinition reports a handler that cannot be resolved for t.
func (c *Context) ReportBadDefinition(t Type, p *Parser, hint string) error {
	return c.issue(containerjson.CodeUnresolvedType, t.String(), p, hint,
		errorc.With(containerjson.ErrUnresolvedType, errorc.String(containerjson.ErrorFieldType, t.String())))
}

// ReportNullRejected reports a null element refused by container t.
func (c *Context) ReportNullRejected(t Type, p *Parser, hint string) error {
	if hint == "" {
		hint = fmt.Sprintf("%s does not accept null values", t)
	}
	return c.issue(containerjson.CodeNullRejected, t.String(), p, hint,
		errorc.With(containerjson.ErrNullRejected, errorc.String(containerjson.ErrorFieldType, t.String())))
}

func (c *Context) nullRejected(typeName string, p *Parser) error {
	return c.issue(containerjson.CodeNullRejected, typeName, p, typeName+" does not accept null values",
		errorc.With(containerjson.ErrNullRejected, errorc.String(containerjson.ErrorFieldType, typeName)))
}

// ReportInvalidFormat reports text that cannot be converted to t.
func (c *Context) ReportInvalidFormat(t Type, p *Parser, value string, cause error) error {
	hint := fmt.Sprintf("cannot convert %q to %s", value, t)
	if cause != nil {
		hint += ": " + cause.Error()
	}
	return c.issue(containerjson.CodeInvalidFormat, t.String(), p, hint,
		errorc.With(containerjson.ErrInvalidFormat,
			errorc.String(containerjson.ErrorFieldType, t.String()),
			errorc.String(containerjson.ErrorFieldValue, value)))
}

// ReportInvalidType reports a value of the wrong Go type produced for t.
func (c *Context) ReportInvalidType(t Type, p *Parser, cause error) error {
	return c.issue(containerjson.CodeInvalidType, t.String(), p, cause.Error(), cause)
}

// ReportUnknownProperty reports a key with no matching property on t.
func (c *Context) ReportUnknownProperty(t Type, p *Parser, key string) error {
	return c.issue(containerjson.CodeUnknownKey, t.String(), p, fmt.Sprintf("unknown property %q for %s", key, t),
		errorc.With(containerjson.ErrUnknownProperty,
			errorc.String(containerjson.ErrorFieldType, t.String()),
			errorc.String(containerjson.ErrorFieldValue, key)))
}

// ReportTypeID reports a missing or unknown type id for base type t.
func (c *Context) ReportTypeID(code string, t Type, p *Parser, id string, hint string) error {
	return c.issue(code, t.String(), p, hint,
		errorc.With(containerjson.ErrTypeID,
			errorc.String(containerjson.ErrorFieldType, t.String()),
			errorc.String(containerjson.ErrorFieldValue, id)))
}
