package containerjson

// Package containerjson provides:
//
// - A pull-based token Source SPI with pluggable drivers (go-json by default,
//   encoding/json and YAML as alternatives)
// - A stable error model via Issues (JSON Pointer, code, message, cause)
// - Binding configuration (features, per-property overrides, null policies)
//
// The binding engine lives in databind/, the immutable containers in collect/,
// and the module that teaches the engine about those containers in containers/.
//
// Design policy:
// - Keep only shared public types in the root package; put token plumbing under internal/.
// - Drivers live under source/, the CLI under cmd/containerjson.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	m := databind.NewMapper(containerjson.Config{}, containers.NewModule())
//	set, err := databind.Unmarshal[collect.Multiset[string]](ctx, m, data)
//	out, err := m.Marshal(set)
