package databind

import (
	"reflect"
	"slices"
	"strings"
)

// parameterized is implemented by generic containers that report their type
// arguments on the zero value.
type parameterized interface {
	TypeParams() []reflect.Type
}

// Type is a declared type: the raw Go type plus its ordered type arguments.
// An erased Type keeps the raw type but has lost its arguments.
type Type struct {
	raw    reflect.Type
	params []reflect.Type
	erased bool
}

// TypeOf captures the declared type of rt.
func TypeOf(rt reflect.Type) Type {
	if rt == nil {
		return Type{}
	}
	t := Type{raw: rt}
	switch rt.Kind() {
	case reflect.Slice, reflect.Array, reflect.Pointer:
		t.params = []reflect.Type{rt.Elem()}
	case reflect.Map:
		t.params = []reflect.Type{rt.Key(), rt.Elem()}
	case reflect.Interface:
	default:
		if pz, ok := reflect.Zero(rt).Interface().(parameterized); ok {
			t.params = pz.TypeParams()
		}
	}
	return t
}

// TypeFor returns the declared type of T.
func TypeFor[T any]() Type { return TypeOf(reflect.TypeFor[T]()) }

// Erased returns rt without type arguments.
func Erased(rt reflect.Type) Type { return Type{raw: rt, erased: true} }

func (t Type) Raw() reflect.Type { return t.raw }
func (t Type) IsZero() bool      { return t.raw == nil }
func (t Type) IsErased() bool    { return t.erased }

// Params returns a copy of the type arguments.
func (t Type) Params() []reflect.Type { return slices.Clone(t.params) }

// Param returns the i-th type argument.
func (t Type) Param(i int) (Type, bool) {
	if i < 0 || i >= len(t.params) {
		return Type{}, false
	}
	return TypeOf(t.params[i]), true
}

// ContentType returns the element type of a container (its last type argument
// for maps, its first otherwise).
func (t Type) ContentType() (Type, bool) {
	if t.raw != nil && t.raw.Kind() == reflect.Map {
		return t.Param(1)
	}
	return t.Param(0)
}

// String renders the type; erased types lose their bracketed arguments.
func (t Type) String() string {
	if t.raw == nil {
		return "<nil>"
	}
	s := t.raw.String()
	if t.erased {
		if i := strings.IndexByte(s, '['); i > 0 {
			s = s[:i]
		}
	}
	return s
}

// Equal reports whether both types have the same raw type and arguments.
func (t Type) Equal(o Type) bool {
	return t.raw == o.raw && t.erased == o.erased && slices.Equal(t.params, o.params)
}

func (t Type) key() string {
	if t.erased {
		return "erased:" + t.String()
	}
	return t.String()
}
