package containerjson

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ygrebnov/errorc"
)

// Issue codes.
const (
	CodeUnresolvedType       = "unresolved_type"
	CodeUnexpectedToken      = "unexpected_token"
	CodeNullRejected         = "null_rejected"
	CodeInvalidFormat        = "invalid_format"
	CodeInvalidType          = "invalid_type"
	CodeUnknownKey           = "unknown_key"
	CodeDuplicateKey         = "duplicate_key"
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeParseError           = "parse_error"
	CodeTruncated            = "truncated"
)

var namespace = errorc.Namespace("containerjson")

// Sentinel causes attached to issues. Use errors.Is on the returned error.
var (
	ErrUnresolvedType  = namespace.NewError("unresolved content type")
	ErrUnexpectedToken = namespace.NewError("unexpected token")
	ErrNullRejected    = namespace.NewError("null value rejected")
	ErrInvalidFormat   = namespace.NewError("invalid format")
	ErrUnknownProperty = namespace.NewError("unknown property")
	ErrTypeID          = namespace.NewError("type id")
)

var newKey = errorc.KeyFactory("containerjson")

const (
	keySegmentToken = "token"
)

// Structured error field keys.
var (
	ErrorFieldType     = newKey("type")                      // containerjson.type
	ErrorFieldExpected = newKey("expected", keySegmentToken) // containerjson.token.expected
	ErrorFieldActual   = newKey("actual", keySegmentToken)   // containerjson.token.actual
	ErrorFieldValue    = newKey("value")                     // containerjson.value
)

// Issue represents a single binding failure.
type Issue struct {
	Path    string // JSON Pointer (for example: /ranges/2).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Specific diagnostic, e.g. "expected begin-array, got string".
	Cause   error  // Optional: underlying error.
	Offset  int64  // Byte offset in the input source (-1 when unknown).
	// Params carries structured parameters (e.g., {"type":"ImmutableList[string]"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of binding errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. null_rejected at /items/1: ...
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Hint != "" {
			fmt.Fprintf(b, ": %s", it.Hint)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes so errors.Is matches the sentinels above.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// Codes returns the issue codes in order.
func (iss Issues) Codes() []string {
	out := make([]string, 0, len(iss))
	for _, it := range iss {
		out = append(out, it.Code)
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
