// Package containers teaches databind to read and write the immutable
// containers of package collect.
//
//	m := databind.NewMapper(containerjson.Config{}, containers.NewModule())
//	tags, err := databind.Unmarshal[collect.Multiset[string]](ctx, m, []byte(`["a","a","b"]`))
//
// Container handlers resolve their element handler from the declared type
// arguments when they are bound to a property, and are immutable afterwards.
package containers

import (
	"reflect"

	"github.com/reoring/containerjson/collect"
	"github.com/reoring/containerjson/databind"
)

// Module registers the container handlers.
type Module struct {
	// AbsentsAsNulls makes absent optional properties behave like nil ones
	// when structs are serialized.
	AbsentsAsNulls bool
}

// NewModule returns a Module with AbsentsAsNulls enabled.
func NewModule() *Module { return &Module{AbsentsAsNulls: true} }

func (m *Module) Name() string { return "containers" }

func (m *Module) Setup(r *databind.Registry) {
	r.AddDeserializerFinder(m)
	if m.AbsentsAsNulls {
		r.AddSerializerModifier(OptionalPropertyModifier{})
	}
}

var hostAndPortType = reflect.TypeFor[collect.HostAndPort]()

// FindDeserializer returns the uncontextualized handler for t, or nil when t
// is not a collect type.
func (m *Module) FindDeserializer(t databind.Type, r *databind.Registry) (databind.Deserializer, error) {
	rt := t.Raw()
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, nil
	}
	if rt == hostAndPortType {
		return HostAndPortDeserializer{}, nil
	}
	if prim, ok := primitives[rt]; ok {
		return &ContainerDeserializer{containerType: t, kind: prim}, nil
	}
	switch z := reflect.Zero(rt).Interface().(type) {
	case collect.RangeSetShaped:
		return &RangeSetDeserializer{t: t, shape: z.Shape()}, nil
	case collect.Shaped:
		d := &ContainerDeserializer{containerType: t, kind: shapeKind{shape: z.Shape()}}
		if ct, ok := t.ContentType(); ok {
			d.valueTypeDeser = r.TypeDeserializerFor(ct)
		}
		return d, nil
	case collect.RangeMaker:
		return &RangeDeserializer{t: t, maker: z}, nil
	case collect.OptionalValue:
		return &OptionalDeserializer{t: t, opt: z}, nil
	}
	return nil, nil
}
