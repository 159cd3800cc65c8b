package containers

import (
	"errors"
	"reflect"
	"unicode/utf8"

	"github.com/ygrebnov/errorc"

	"github.com/reoring/containerjson"
	"github.com/reoring/containerjson/collect"
	"github.com/reoring/containerjson/databind"
)

// primitiveKind builds a primitive-backed list. Elements are accumulated
// boxed and compacted into the list when the builder is finished.
type primitiveKind struct {
	elem    reflect.Type
	char    bool
	compact func(vs []any) (any, error)
}

func newPrimitive[P any, L any](mk func(...P) L) *primitiveKind {
	return &primitiveKind{
		elem: reflect.TypeFor[P](),
		compact: func(vs []any) (any, error) {
			out := make([]P, len(vs))
			for i, v := range vs {
				e, ok := v.(P)
				if !ok {
					return nil, errorc.With(collect.ErrElementType,
						errorc.String(collect.ErrorFieldElementType, reflect.TypeFor[P]().String()),
						errorc.String(collect.ErrorFieldValueType, reflect.TypeOf(v).String()))
				}
				out[i] = e
			}
			return mk(out...), nil
		},
	}
}

var primitives = map[reflect.Type]*primitiveKind{
	reflect.TypeFor[collect.Booleans](): newPrimitive(collect.NewBooleans),
	reflect.TypeFor[collect.Bytes]():    newPrimitive(collect.NewBytes),
	reflect.TypeFor[collect.Chars]():    charsKind(),
	reflect.TypeFor[collect.Doubles]():  newPrimitive(collect.NewDoubles),
	reflect.TypeFor[collect.Floats]():   newPrimitive(collect.NewFloats),
	reflect.TypeFor[collect.Ints]():     newPrimitive(collect.NewInts),
	reflect.TypeFor[collect.Longs]():    newPrimitive(collect.NewLongs),
	reflect.TypeFor[collect.Shorts]():   newPrimitive(collect.NewShorts),
}

func charsKind() *primitiveKind {
	k := newPrimitive(collect.NewChars)
	k.char = true
	return k
}

// content converts tokens with the scalar handler of the element type, or
// with charDeserializer for Chars.
func (k *primitiveKind) content(ctx *databind.Context, owner databind.Type, prop *databind.Property) (databind.Deserializer, error) {
	if k.char {
		return &charDeserializer{owner: owner}, nil
	}
	return ctx.FindContextualValueDeserializer(databind.TypeOf(k.elem), prop)
}

func (k *primitiveKind) elemType(databind.Type) (databind.Type, bool) {
	return databind.TypeOf(k.elem), true
}

func (k *primitiveKind) newBuilder() collect.Builder { return &boxedBuilder{kind: k} }

func (k *primitiveKind) createEmpty() any {
	out, _ := k.compact(nil)
	return out
}

func (k *primitiveKind) createSingle(v any) (any, error) {
	b := k.newBuilder()
	if err := b.Add(v); err != nil {
		return nil, err
	}
	return b.Build()
}

// boxedBuilder is a plain growable slice; compaction makes the result immutable.
type boxedBuilder struct {
	kind  *primitiveKind
	vals  []any
	built bool
}

func (b *boxedBuilder) Add(v any) error {
	if b.built {
		return collect.ErrBuilderConsumed
	}
	if v == nil {
		return collect.ErrNullElement
	}
	b.vals = append(b.vals, v)
	return nil
}

func (b *boxedBuilder) Build() (any, error) {
	if b.built {
		return nil, collect.ErrBuilderConsumed
	}
	b.built = true
	return b.kind.compact(b.vals)
}

// charDeserializer reads the first character of a string or number token.
type charDeserializer struct {
	owner databind.Type
}

func (d *charDeserializer) Deserialize(p *databind.Parser, ctx *databind.Context) (any, error) {
	switch p.CurrentToken() {
	case containerjson.TokenString, containerjson.TokenNumber:
	default:
		return nil, ctx.HandleUnexpectedToken(d.owner, p, "")
	}
	text := p.Text()
	r, size := utf8.DecodeRuneInString(text)
	if size == 0 {
		return nil, ctx.ReportInvalidFormat(d.owner, p, text, errEmptyChar)
	}
	if r == utf8.RuneError && size == 1 {
		return nil, ctx.ReportInvalidFormat(d.owner, p, text, errBadChar)
	}
	return r, nil
}

var (
	errEmptyChar = errors.New("empty string has no character")
	errBadChar   = errors.New("not valid UTF-8")
)
