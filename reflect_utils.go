package containerjson

import (
	"reflect"
	"strings"
)

// TagName is the struct tag carrying per-property binding settings.
const TagName = "cj"

// FieldTag is the parsed form of a `cj:"..."` struct tag.
//
//	Items collect.ImmutableList[string] `json:"items" cj:"single,nulls=skip"`
type FieldTag struct {
	Name    string   // name=...
	Single  OptBool  // single / nosingle
	Nulls   Nulls    // nulls=skip|fail|empty
	Convert string   // convert=<registered converter>
	Exclude []string // exclude=a|b
}

// ParseFieldTag parses the `cj` tag of a struct field. Unknown entries are ignored.
func ParseFieldTag(sf reflect.StructField) FieldTag {
	var ft FieldTag
	tag := sf.Tag.Get(TagName)
	if tag == "" {
		return ft
	}
	for _, p := range strings.Split(tag, ",") {
		p = strings.TrimSpace(p)
		key, val, _ := strings.Cut(p, "=")
		switch key {
		case "name":
			ft.Name = val
		case "single":
			ft.Single = True
		case "nosingle":
			ft.Single = False
		case "nulls":
			switch val {
			case "skip":
				ft.Nulls = NullsSkip
			case "fail":
				ft.Nulls = NullsFail
			case "empty":
				ft.Nulls = NullsAsEmpty
			}
		case "convert":
			ft.Convert = val
		case "exclude":
			if val != "" {
				ft.Exclude = strings.Split(val, "|")
			}
		}
	}
	return ft
}

// ResolveStructKey resolves a struct field's external key.
// Priority: cj:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if n := ParseFieldTag(sf).Name; n != "" {
		return n
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			if i == 0 {
				return sf.Name
			}
			return jt[:i]
		}
		return jt
	}
	return sf.Name
}

// OmitEmpty reports whether the json tag carries omitempty.
func OmitEmpty(sf reflect.StructField) bool {
	jt := sf.Tag.Get("json")
	_, opts, _ := strings.Cut(jt, ",")
	for _, o := range strings.Split(opts, ",") {
		if o == "omitempty" {
			return true
		}
	}
	return false
}
