package containerjson

import (
	"io"
	"log/slog"
)

// Feature is a global binding toggle.
type Feature uint32

const (
	// AcceptSingleValueAsArray lets a container accept a non-array JSON value as
	// its only element.
	AcceptSingleValueAsArray Feature = 1 << iota
	// FailOnUnknownProperties rejects object keys with no matching struct field.
	FailOnUnknownProperties
	// FailOnTrailingTokens rejects input with more than one root value.
	FailOnTrailingTokens
)

func (f Feature) String() string {
	switch f {
	case AcceptSingleValueAsArray:
		return "ACCEPT_SINGLE_VALUE_AS_ARRAY"
	case FailOnUnknownProperties:
		return "FAIL_ON_UNKNOWN_PROPERTIES"
	case FailOnTrailingTokens:
		return "FAIL_ON_TRAILING_TOKENS"
	default:
		return "UNKNOWN_FEATURE"
	}
}

// OptBool is a tri-state override; Default means "use the enclosing setting".
type OptBool int

const (
	Default OptBool = iota
	True
	False
)

// Resolve returns the explicit value, or fallback when unset.
func (o OptBool) Resolve(fallback bool) bool {
	switch o {
	case True:
		return true
	case False:
		return false
	}
	return fallback
}

// Nulls selects how null content elements are handled.
type Nulls int

const (
	NullsDefault Nulls = iota // Use the content handler's own null value.
	NullsSkip                 // Drop null elements.
	NullsFail                 // Reject null elements.
	NullsAsEmpty              // Replace null elements with the handler's empty value.
)

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	OnDuplicateKey Severity // Ignore, Warn (logged) or Error.
}

// Config bundles binding options.
type Config struct {
	Features   Feature
	Strictness Strictness
	MaxDepth   int
	MaxBytes   int64
	// Logger receives debug records about handler resolution. Nil discards them.
	Logger *slog.Logger
}

// IsEnabled reports whether f is set.
func (c Config) IsEnabled(f Feature) bool { return c.Features&f != 0 }

// Enable returns a copy with the given features set.
func (c Config) Enable(fs ...Feature) Config {
	for _, f := range fs {
		c.Features |= f
	}
	return c
}

// Disable returns a copy with the given features cleared.
func (c Config) Disable(fs ...Feature) Config {
	for _, f := range fs {
		c.Features &^= f
	}
	return c
}

// Log returns the configured logger or a discarding one.
func (c Config) Log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return discardLogger
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
