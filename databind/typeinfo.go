package databind

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/reoring/containerjson"
)

// DefaultTypeProperty is the object property holding type ids unless TypeInfo
// names another.
const DefaultTypeProperty = "@type"

// TypeDeserializer recovers the concrete subtype of a value from type metadata
// embedded in the stream.
type TypeDeserializer interface {
	BaseType() Type
	PropertyName() string
	// ForProperty narrows the resolver to a binding site. It returns the
	// receiver when the property changes nothing.
	ForProperty(prop *Property) TypeDeserializer
	// DeserializeTypedFromObject reads {"@type": id, ...}.
	DeserializeTypedFromObject(p *Parser, ctx *Context) (any, error)
	// DeserializeTypedFromArray reads the wrapper form [id, value].
	DeserializeTypedFromArray(p *Parser, ctx *Context) (any, error)
	DeserializeTypedFromAny(p *Parser, ctx *Context) (any, error)
}

type typeResolver struct {
	base     Type
	info     TypeInfo
	excluded map[string]bool
	root     *typeResolver
	narrowed sync.Map // joined exclusions -> *typeResolver
}

func newTypeResolver(base Type, info TypeInfo) *typeResolver {
	tr := &typeResolver{base: base, info: info}
	tr.root = tr
	return tr
}

func (r *typeResolver) BaseType() Type       { return r.base }
func (r *typeResolver) PropertyName() string { return r.info.Property }

func (r *typeResolver) ForProperty(prop *Property) TypeDeserializer {
	if prop == nil || len(prop.Format.ExcludeTypeIDs) == 0 {
		return r
	}
	ids := slices.Clone(prop.Format.ExcludeTypeIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	key := strings.Join(ids, "|")
	if v, ok := r.root.narrowed.Load(key); ok {
		return v.(*typeResolver)
	}
	excluded := make(map[string]bool, len(ids))
	for _, id := range ids {
		excluded[id] = true
	}
	nr := &typeResolver{base: r.base, info: r.info, excluded: excluded, root: r.root}
	v, _ := r.root.narrowed.LoadOrStore(key, nr)
	return v.(*typeResolver)
}

func (r *typeResolver) subtype(ctx *Context, p *Parser, id string) (reflect.Type, error) {
	if r.excluded[id] {
		return nil, ctx.ReportTypeID(containerjson.CodeDiscriminatorUnknown, r.base, p, id,
			fmt.Sprintf("type id %q is not allowed here", id))
	}
	st, ok := r.info.Subtypes[id]
	if !ok {
		return nil, ctx.ReportTypeID(containerjson.CodeDiscriminatorUnknown, r.base, p, id,
			fmt.Sprintf("unknown type id %q for %s", id, r.base))
	}
	return st, nil
}

func (r *typeResolver) DeserializeTypedFromObject(p *Parser, ctx *Context) (any, error) {
	if p.CurrentToken() != containerjson.TokenBeginObject {
		return nil, ctx.WrongTokenError(r.base, p, containerjson.TokenBeginObject, "")
	}
	tree, err := p.ReadValueAsTree()
	if err != nil {
		return nil, containerjson.ToIssues(err)
	}
	obj, _ := tree.(map[string]any)
	raw, ok := obj[r.info.Property]
	if !ok {
		return nil, ctx.ReportTypeID(containerjson.CodeDiscriminatorMissing, r.base, p, "",
			fmt.Sprintf("missing type property %q", r.info.Property))
	}
	id, ok := raw.(string)
	if !ok {
		return nil, ctx.ReportTypeID(containerjson.CodeDiscriminatorMissing, r.base, p, fmt.Sprint(raw),
			fmt.Sprintf("type property %q must be a string", r.info.Property))
	}
	st, err := r.subtype(ctx, p, id)
	if err != nil {
		return nil, err
	}
	delete(obj, r.info.Property)
	sub, err := p.Sub(obj)
	if err != nil {
		return nil, containerjson.ToIssues(err)
	}
	d, err := ctx.FindRootValueDeserializer(TypeOf(st))
	if err != nil {
		return nil, err
	}
	return d.Deserialize(sub, ctx)
}

func (r *typeResolver) DeserializeTypedFromArray(p *Parser, ctx *Context) (any, error) {
	if !p.IsExpectedStartArrayToken() {
		return nil, ctx.WrongTokenError(r.base, p, containerjson.TokenBeginArray, "")
	}
	kind, err := p.NextToken()
	if err != nil {
		return nil, containerjson.ToIssues(err)
	}
	if kind != containerjson.TokenString {
		return nil, ctx.ReportTypeID(containerjson.CodeDiscriminatorMissing, r.base, p, "",
			"wrapper array must start with a type id string")
	}
	st, err := r.subtype(ctx, p, p.Text())
	if err != nil {
		return nil, err
	}
	d, err := ctx.FindRootValueDeserializer(TypeOf(st))
	if err != nil {
		return nil, err
	}
	if _, err := p.NextToken(); err != nil {
		return nil, containerjson.ToIssues(err)
	}
	v, err := ReadValue(d, p, ctx, nil)
	if err != nil {
		return nil, err
	}
	kind, err = p.NextToken()
	if err != nil {
		return nil, containerjson.ToIssues(err)
	}
	if kind != containerjson.TokenEndArray {
		return nil, ctx.WrongTokenError(r.base, p, containerjson.TokenEndArray, "wrapper array must hold exactly a type id and a value")
	}
	return v, nil
}

func (r *typeResolver) DeserializeTypedFromAny(p *Parser, ctx *Context) (any, error) {
	switch p.CurrentToken() {
	case containerjson.TokenBeginObject:
		return r.DeserializeTypedFromObject(p, ctx)
	case containerjson.TokenBeginArray:
		return r.DeserializeTypedFromArray(p, ctx)
	}
	return nil, ctx.ReportTypeID(containerjson.CodeDiscriminatorMissing, r.base, p, "",
		fmt.Sprintf("%s needs an object with %q or a [id, value] array", r.base, r.info.Property))
}
