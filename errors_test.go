package containerjson_test

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ygrebnov/errorc"

	"github.com/reoring/containerjson"
)

func TestIssues_ErrorSummary(t *testing.T) {
	iss := containerjson.Issues{
		{Code: containerjson.CodeNullRejected, Path: "/items/1", Hint: "ImmutableList[string] does not accept null values"},
		{Code: containerjson.CodeInvalidFormat, Path: "/a"},
		{Code: containerjson.CodeUnknownKey, Path: "/b"},
		{Code: containerjson.CodeTruncated, Path: "/"},
	}
	assert.Equal(t,
		"null_rejected at /items/1: ImmutableList[string] does not accept null values; invalid_format at /a; unknown_key at /b; ... (total 4)",
		iss.Error())
	assert.Equal(t, []string{"null_rejected", "invalid_format", "unknown_key", "truncated"}, iss.Codes())
	assert.Equal(t, "", containerjson.Issues{}.Error())
}

func TestIssues_UnwrapMatchesSentinels(t *testing.T) {
	cause := errorc.With(containerjson.ErrNullRejected, errorc.String(containerjson.ErrorFieldType, "ImmutableList[int]"))
	var err error = containerjson.Issues{{Code: containerjson.CodeNullRejected, Path: "/0", Cause: cause}}
	err = fmt.Errorf("bind: %w", err)

	assert.ErrorIs(t, err, containerjson.ErrNullRejected)
	assert.NotErrorIs(t, err, containerjson.ErrInvalidFormat)

	iss, ok := containerjson.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "/0", iss[0].Path)

	_, ok = containerjson.AsIssues(errors.New("plain"))
	assert.False(t, ok)
	_, ok = containerjson.AsIssues(nil)
	assert.False(t, ok)
}

func TestToIssues(t *testing.T) {
	assert.Nil(t, containerjson.ToIssues(nil))

	iss := containerjson.ToIssues(io.ErrUnexpectedEOF)
	require.Len(t, iss, 1)
	assert.Equal(t, containerjson.CodeTruncated, iss[0].Code)

	iss = containerjson.ToIssues(errors.New("bad byte"))
	assert.Equal(t, containerjson.CodeParseError, iss[0].Code)
	assert.Equal(t, "/", iss[0].Path)

	orig := containerjson.Issues{{Code: containerjson.CodeUnknownKey, Path: "/x"}}
	assert.Equal(t, orig, containerjson.ToIssues(orig))
}

func TestAppendIssues(t *testing.T) {
	var dst containerjson.Issues
	dst = containerjson.AppendIssues(dst)
	assert.NotNil(t, dst)
	dst = containerjson.AppendIssues(dst, containerjson.Issue{Code: containerjson.CodeInvalidType})
	assert.Len(t, dst, 1)
}
