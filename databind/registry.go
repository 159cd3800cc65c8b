package databind

import (
	"encoding/json"
	"log/slog"
	"reflect"
	"sync"

	"github.com/reoring/containerjson"
)

// Module bundles handler registrations.
type Module interface {
	Name() string
	Setup(r *Registry)
}

// DeserializerFinder returns a handler for t, or nil when it does not handle t.
type DeserializerFinder interface {
	FindDeserializer(t Type, r *Registry) (Deserializer, error)
}

// FinderFunc adapts a function to DeserializerFinder.
type FinderFunc func(t Type, r *Registry) (Deserializer, error)

func (f FinderFunc) FindDeserializer(t Type, r *Registry) (Deserializer, error) { return f(t, r) }

// Converter turns a value read as In into the declared content type.
type Converter struct {
	In      Type
	Convert func(v any) (any, error)
}

// TypeInfo declares the subtypes of an interface type and the object property
// holding their ids.
type TypeInfo struct {
	Property string // defaults to "@type"
	Subtypes map[string]reflect.Type
}

// Registry holds modules, finders, subtypes, converters, serializer modifiers
// and the cache of resolved struct handlers. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	log        *slog.Logger
	modules    []string
	finders    []DeserializerFinder
	subtypes   map[reflect.Type]*typeResolver
	converters map[string]Converter
	modifiers  []SerializerModifier
	cache      map[string]Deserializer
	beans      sync.Map // reflect.Type -> *beanSerializer
}

// NewRegistry returns a registry with the given modules set up.
func NewRegistry(cfg containerjson.Config, modules ...Module) *Registry {
	r := &Registry{
		log:        cfg.Log(),
		subtypes:   make(map[reflect.Type]*typeResolver),
		converters: make(map[string]Converter),
		cache:      make(map[string]Deserializer),
	}
	for _, m := range modules {
		r.Register(m)
	}
	return r
}

// Register sets up a module once; repeated registrations by name are ignored.
func (r *Registry) Register(m Module) {
	r.mu.Lock()
	for _, n := range r.modules {
		if n == m.Name() {
			r.mu.Unlock()
			return
		}
	}
	r.modules = append(r.modules, m.Name())
	r.mu.Unlock()
	m.Setup(r)
	r.log.Debug("databind: module registered", "module", m.Name())
}

// Modules returns the names of registered modules.
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.modules...)
}

func (r *Registry) Logger() *slog.Logger { return r.log }

// AddDeserializerFinder adds a finder consulted before the built-in handlers.
// Later finders take precedence.
func (r *Registry) AddDeserializerFinder(f DeserializerFinder) {
	r.mu.Lock()
	r.finders = append(r.finders, f)
	r.mu.Unlock()
}

// RegisterSubtypes declares the subtypes of base.
func (r *Registry) RegisterSubtypes(base reflect.Type, info TypeInfo) {
	if info.Property == "" {
		info.Property = DefaultTypeProperty
	}
	r.mu.Lock()
	r.subtypes[base] = newTypeResolver(TypeOf(base), info)
	r.mu.Unlock()
}

// TypeDeserializerFor returns the polymorphic handler declared for t, or nil.
func (r *Registry) TypeDeserializerFor(t Type) TypeDeserializer {
	if t.IsZero() {
		return nil
	}
	r.mu.RLock()
	tr, ok := r.subtypes[t.raw]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return tr
}

// RegisterConverter names a content converter for use in `cj:"convert=name"`.
func (r *Registry) RegisterConverter(name string, c Converter) {
	r.mu.Lock()
	r.converters[name] = c
	r.mu.Unlock()
}

func (r *Registry) converter(name string) (Converter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.converters[name]
	return c, ok
}

// AddSerializerModifier adds a modifier applied to every struct serializer
// built afterwards.
func (r *Registry) AddSerializerModifier(m SerializerModifier) {
	r.mu.Lock()
	r.modifiers = append(r.modifiers, m)
	r.mu.Unlock()
}

func (r *Registry) serializerModifiers() []SerializerModifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]SerializerModifier(nil), r.modifiers...)
}

func (r *Registry) cached(t Type) (Deserializer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.cache[t.key()]
	return d, ok
}

// store caches a resolved handler; the first stored handler wins.
func (r *Registry) store(t Type, d Deserializer) Deserializer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.cache[t.key()]; ok {
		return prev
	}
	r.cache[t.key()] = d
	r.log.Debug("databind: handler cached", "type", t.String())
	return d
}

// create builds an uncontextualized handler for t.
func (r *Registry) create(ctx *Context, t Type) (Deserializer, error) {
	r.mu.RLock()
	finders := append([]DeserializerFinder(nil), r.finders...)
	r.mu.RUnlock()
	for i := len(finders) - 1; i >= 0; i-- {
		d, err := finders[i].FindDeserializer(t, r)
		if err != nil {
			return nil, err
		}
		if d != nil {
			r.log.Debug("databind: handler created by finder", "type", t.String())
			return d, nil
		}
	}
	return r.builtin(ctx, t)
}

var jsonNumberType = reflect.TypeFor[json.Number]()

func (r *Registry) builtin(ctx *Context, t Type) (Deserializer, error) {
	rt := t.raw
	if rt == jsonNumberType {
		return &scalarDeserializer{t: t}, nil
	}
	switch rt.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return &scalarDeserializer{t: t}, nil
	case reflect.Interface:
		if rt.NumMethod() == 0 {
			return &treeDeserializer{t: t}, nil
		}
		return &abstractDeserializer{t: t}, nil
	case reflect.Pointer:
		return &pointerDeserializer{t: t}, nil
	case reflect.Slice:
		return &sliceDeserializer{t: t}, nil
	case reflect.Map:
		if rt.Key().Kind() != reflect.String {
			return nil, ctx.ReportBadDefinition(t, nil, "map keys must be strings: "+t.String())
		}
		return &mapDeserializer{t: t}, nil
	case reflect.Struct:
		return &structDeserializer{t: t}, nil
	}
	return nil, ctx.ReportBadDefinition(t, nil, "no handler for "+t.String())
}
