package containers

import (
	"reflect"

	"github.com/reoring/containerjson"
	"github.com/reoring/containerjson/collect"
	"github.com/reoring/containerjson/databind"
)

var optionalValueType = reflect.TypeFor[collect.OptionalValue]()

// OptionalPropertyModifier decorates the writers of Optional properties so an
// absent value is written the way a nil value would be: left out under
// omitempty, null otherwise.
type OptionalPropertyModifier struct{}

func (OptionalPropertyModifier) ChangeProperties(_ containerjson.Config, _ databind.Type, props []databind.PropertyWriter) []databind.PropertyWriter {
	for i, pw := range props {
		if rt := pw.Type().Raw(); rt != nil && rt.Kind() == reflect.Struct && rt.Implements(optionalValueType) {
			props[i] = &optionalWriter{PropertyWriter: pw}
		}
	}
	return props
}

type optionalWriter struct {
	databind.PropertyWriter
}

func (w *optionalWriter) WriteProperty(ow *databind.ObjectWriter, bean reflect.Value) error {
	if ov, ok := w.Value(bean).(collect.OptionalValue); ok && !ov.IsPresent() {
		if w.OmitEmpty() {
			return nil
		}
		return ow.Null(w.Name())
	}
	return w.PropertyWriter.WriteProperty(ow, bean)
}
