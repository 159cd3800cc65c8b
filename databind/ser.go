package databind

import (
	"bytes"
	"fmt"
	"iter"
	"reflect"
	"slices"

	"github.com/goccy/go-json"

	"github.com/reoring/containerjson"
)

// PropertyWriter writes one property of a struct value.
type PropertyWriter interface {
	Name() string
	// Type is the declared type of the property.
	Type() Type
	Value(bean reflect.Value) any
	OmitEmpty() bool
	WriteProperty(w *ObjectWriter, bean reflect.Value) error
}

// SerializerModifier adjusts the property writers of a struct serializer when
// it is built. It may change the slice in place and must return it.
type SerializerModifier interface {
	ChangeProperties(cfg containerjson.Config, bean Type, props []PropertyWriter) []PropertyWriter
}

type fieldWriter struct {
	name      string
	t         Type
	index     []int
	omitEmpty bool
}

func (f *fieldWriter) Name() string    { return f.name }
func (f *fieldWriter) Type() Type      { return f.t }
func (f *fieldWriter) OmitEmpty() bool { return f.omitEmpty }

func (f *fieldWriter) Value(bean reflect.Value) any {
	return bean.FieldByIndex(f.index).Interface()
}

func (f *fieldWriter) WriteProperty(w *ObjectWriter, bean reflect.Value) error {
	fv := bean.FieldByIndex(f.index)
	if f.omitEmpty && isEmptyValue(fv) {
		return nil
	}
	return w.Field(f.name, fv.Interface())
}

// isEmptyValue follows the omitempty rules of encoding/json.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}

// ObjectWriter writes the members of one JSON object.
type ObjectWriter struct {
	buf *bytes.Buffer
	enc *encoder
	n   int
}

// Field writes name and the encoding of v.
func (w *ObjectWriter) Field(name string, v any) error {
	if w.n > 0 {
		w.buf.WriteByte(',')
	}
	w.n++
	key, err := json.Marshal(name)
	if err != nil {
		return err
	}
	w.buf.Write(key)
	w.buf.WriteByte(':')
	return w.enc.encode(w.buf, reflect.ValueOf(v))
}

// Null writes name with a null value.
func (w *ObjectWriter) Null(name string) error { return w.Field(name, nil) }

type beanSerializer struct {
	t     Type
	props []PropertyWriter
}

func (b *beanSerializer) write(buf *bytes.Buffer, enc *encoder, v reflect.Value) error {
	buf.WriteByte('{')
	w := &ObjectWriter{buf: buf, enc: enc}
	for _, pw := range b.props {
		if err := pw.WriteProperty(w, v); err != nil {
			return fmt.Errorf("databind: write %s.%s: %w", b.t, pw.Name(), err)
		}
	}
	buf.WriteByte('}')
	return nil
}

type encoder struct {
	reg *Registry
	cfg containerjson.Config
}

// Sequence is implemented by container values written as a JSON array. The
// encoder writes each element itself, so struct elements are serialized with
// the registry's modifiers like any other struct.
type Sequence interface {
	Values() iter.Seq[any]
}

// Holder is implemented by values that wrap at most one value, written as
// that value or null.
type Holder interface {
	IsPresent() bool
	Value() any
}

var (
	marshalerType = reflect.TypeFor[json.Marshaler]()
	sequenceType  = reflect.TypeFor[Sequence]()
	holderType    = reflect.TypeFor[Holder]()
)

func (e *encoder) encode(buf *bytes.Buffer, v reflect.Value) error {
	if !v.IsValid() {
		buf.WriteString("null")
		return nil
	}
	if v.Kind() == reflect.Struct {
		switch {
		case v.Type().Implements(sequenceType):
			return e.sequence(buf, v.Interface().(Sequence))
		case v.Type().Implements(holderType):
			h := v.Interface().(Holder)
			if !h.IsPresent() {
				buf.WriteString("null")
				return nil
			}
			return e.encode(buf, reflect.ValueOf(h.Value()))
		}
	}
	if v.Type().Implements(marshalerType) {
		if v.Kind() == reflect.Pointer && v.IsNil() {
			buf.WriteString("null")
			return nil
		}
		return e.raw(buf, v.Interface())
	}
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			buf.WriteString("null")
			return nil
		}
		return e.encode(buf, v.Elem())
	case reflect.Struct:
		return e.bean(v.Type()).write(buf, e, v)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		if v.IsNil() {
			buf.WriteString("null")
			return nil
		}
		return e.array(buf, v)
	case reflect.Array:
		return e.array(buf, v)
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			break
		}
		if v.IsNil() {
			buf.WriteString("null")
			return nil
		}
		return e.object(buf, v)
	}
	return e.raw(buf, v.Interface())
}

func (e *encoder) raw(buf *bytes.Buffer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func (e *encoder) array(buf *bytes.Buffer, v reflect.Value) error {
	buf.WriteByte('[')
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := e.encode(buf, v.Index(i)); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func (e *encoder) sequence(buf *bytes.Buffer, s Sequence) error {
	buf.WriteByte('[')
	i := 0
	for el := range s.Values() {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++
		if err := e.encode(buf, reflect.ValueOf(el)); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func (e *encoder) object(buf *bytes.Buffer, v reflect.Value) error {
	keys := v.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		switch {
		case a.String() < b.String():
			return -1
		case a.String() > b.String():
			return 1
		}
		return 0
	})
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k.String())
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		if err := e.encode(buf, v.MapIndex(k)); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// bean returns the cached serializer of struct type rt, building it with the
// registry's modifiers on first use.
func (e *encoder) bean(rt reflect.Type) *beanSerializer {
	if v, ok := e.reg.beans.Load(rt); ok {
		return v.(*beanSerializer)
	}
	t := TypeOf(rt)
	var props []PropertyWriter
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := containerjson.ResolveStructKey(sf)
		if name == "-" {
			continue
		}
		props = append(props, &fieldWriter{name: name, t: TypeOf(sf.Type), index: sf.Index, omitEmpty: containerjson.OmitEmpty(sf)})
	}
	for _, m := range e.reg.serializerModifiers() {
		props = m.ChangeProperties(e.cfg, t, props)
	}
	v, _ := e.reg.beans.LoadOrStore(rt, &beanSerializer{t: t, props: props})
	return v.(*beanSerializer)
}
