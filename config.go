package containerjson

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type configFile struct {
	AcceptSingleValueAsArray *bool  `yaml:"accept_single_value_as_array"`
	FailOnUnknownProperties  *bool  `yaml:"fail_on_unknown_properties"`
	FailOnTrailingTokens     *bool  `yaml:"fail_on_trailing_tokens"`
	OnDuplicateKey           string `yaml:"on_duplicate_key"`
	MaxDepth                 int    `yaml:"max_depth"`
	MaxBytes                 int64  `yaml:"max_bytes"`
}

// LoadConfigYAML parses a YAML configuration document.
//
//	accept_single_value_as_array: true
//	on_duplicate_key: error
//	max_depth: 64
func LoadConfigYAML(data []byte) (Config, error) {
	var cf configFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return Config{}, fmt.Errorf("containerjson: decode config: %w", err)
	}
	var cfg Config
	set := func(p *bool, f Feature) {
		if p != nil && *p {
			cfg.Features |= f
		}
	}
	set(cf.AcceptSingleValueAsArray, AcceptSingleValueAsArray)
	set(cf.FailOnUnknownProperties, FailOnUnknownProperties)
	set(cf.FailOnTrailingTokens, FailOnTrailingTokens)
	sev, err := ParseSeverity(cf.OnDuplicateKey)
	if err != nil {
		return Config{}, err
	}
	cfg.Strictness.OnDuplicateKey = sev
	if cf.MaxDepth < 0 || cf.MaxBytes < 0 {
		return Config{}, fmt.Errorf("containerjson: max_depth and max_bytes must not be negative")
	}
	cfg.MaxDepth = cf.MaxDepth
	cfg.MaxBytes = cf.MaxBytes
	return cfg, nil
}

// LoadConfigFile reads and parses a YAML configuration file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("containerjson: read config: %w", err)
	}
	return LoadConfigYAML(data)
}

// ParseSeverity maps "ignore", "warn" and "error" to a Severity. Empty means Ignore.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ignore":
		return Ignore, nil
	case "warn":
		return Warn, nil
	case "error":
		return Error, nil
	}
	return Ignore, fmt.Errorf("containerjson: unknown severity %q", s)
}
