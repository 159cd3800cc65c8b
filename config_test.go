package containerjson_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/containerjson"
)

func TestLoadConfigYAML(t *testing.T) {
	cfg, err := containerjson.LoadConfigYAML([]byte(`
accept_single_value_as_array: true
fail_on_unknown_properties: false
on_duplicate_key: Warn
max_depth: 32
max_bytes: 4096
`))
	require.NoError(t, err)
	assert.True(t, cfg.IsEnabled(containerjson.AcceptSingleValueAsArray))
	assert.False(t, cfg.IsEnabled(containerjson.FailOnUnknownProperties))
	assert.False(t, cfg.IsEnabled(containerjson.FailOnTrailingTokens))
	assert.Equal(t, containerjson.Warn, cfg.Strictness.OnDuplicateKey)
	assert.Equal(t, 32, cfg.MaxDepth)
	assert.Equal(t, int64(4096), cfg.MaxBytes)
}

func TestLoadConfigYAML_Errors(t *testing.T) {
	for name, doc := range map[string]string{
		"severity": "on_duplicate_key: loud",
		"negative": "max_depth: -1",
		"syntax":   "max_depth: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := containerjson.LoadConfigYAML([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fail_on_trailing_tokens: true\n"), 0o644))
	cfg, err := containerjson.LoadConfigFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.IsEnabled(containerjson.FailOnTrailingTokens))

	_, err = containerjson.LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestConfig_EnableDisable(t *testing.T) {
	base := containerjson.Config{}
	on := base.Enable(containerjson.AcceptSingleValueAsArray, containerjson.FailOnTrailingTokens)
	assert.False(t, base.IsEnabled(containerjson.AcceptSingleValueAsArray))
	assert.True(t, on.IsEnabled(containerjson.FailOnTrailingTokens))

	off := on.Disable(containerjson.FailOnTrailingTokens)
	assert.True(t, off.IsEnabled(containerjson.AcceptSingleValueAsArray))
	assert.False(t, off.IsEnabled(containerjson.FailOnTrailingTokens))
	assert.NotNil(t, off.Log())
}

func TestOptBool_Resolve(t *testing.T) {
	assert.True(t, containerjson.Default.Resolve(true))
	assert.False(t, containerjson.Default.Resolve(false))
	assert.True(t, containerjson.True.Resolve(false))
	assert.False(t, containerjson.False.Resolve(true))
	assert.Equal(t, "ACCEPT_SINGLE_VALUE_AS_ARRAY", containerjson.AcceptSingleValueAsArray.String())
}
