package databind

import (
	"reflect"

	"github.com/reoring/containerjson"
)

// Format holds per-property binding overrides, usually read from a `cj` tag.
type Format struct {
	AcceptSingleValueAsArray containerjson.OptBool
	ContentNulls             containerjson.Nulls
	ContentConverter         string
	ExcludeTypeIDs           []string
}

// Property is the binding site of a value: a struct field, or nil for a root value.
type Property struct {
	Name   string
	Type   Type
	Index  []int
	Format Format
}

// PropertyOf builds a Property for a struct field.
func PropertyOf(sf reflect.StructField) *Property {
	ft := containerjson.ParseFieldTag(sf)
	return &Property{
		Name:  containerjson.ResolveStructKey(sf),
		Type:  TypeOf(sf.Type),
		Index: sf.Index,
		Format: Format{
			AcceptSingleValueAsArray: ft.Single,
			ContentNulls:             ft.Nulls,
			ContentConverter:         ft.Convert,
			ExcludeTypeIDs:           ft.Exclude,
		},
	}
}

// PropertyName returns the name of prop, or "" for a root value.
func PropertyName(prop *Property) string {
	if prop == nil {
		return ""
	}
	return prop.Name
}
