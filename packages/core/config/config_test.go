package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.True(t, c.IsDefault())
	assert.True(t, c.GetFollowRedirects())
	assert.True(t, c.GetValidateSSL())
	assert.False(t, c.GetParallel())
	assert.Equal(t, "console", c.Output)
	assert.Equal(t, int64(30000), c.TimeoutDuration().Milliseconds())
}

func TestFindAndLoadConfig_NoFile(t *testing.T) {
	c, err := FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.True(t, c.IsDefault())
}

func TestLoadConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".hitcall.json", `{
		"timeout": 5000,
		"validateSSL": false,
		"headers": {"X-Trace": "1"},
		"defaults": {"api_call": {"request": {"base_url": "http://localhost", "headers": {"Accept": "application/json"}}}},
		"data": {"users": {"admin": {"email": "admin@example.com"}}}
	}`)

	c, err := FindAndLoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 5000, c.Timeout)
	assert.False(t, c.GetValidateSSL())
	assert.True(t, c.GetFollowRedirects())
	assert.Equal(t, map[string]string{"X-Trace": "1"}, c.Headers)

	apiCall, ok := c.Defaults.Get("api_call")
	require.True(t, ok)
	assert.True(t, value.Equal(
		value.MustParse(`{"request": {"base_url": "http://localhost", "headers": {"Accept": "application/json"}}}`),
		apiCall,
	))
	req, _ := apiCall.(*value.Object).Get("request")
	assert.Equal(t, []string{"base_url", "headers"}, req.(*value.Object).Keys())
	assert.False(t, c.IsDefault())
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hitcall.yaml", `
timeout: 1000
parallel: true
concurrency: 2
rate: 10
defaults:
  api_call:
    request:
      path: /users
      base_url: http://localhost
data:
  token: abc
`)

	c, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 1000, c.Timeout)
	assert.True(t, c.GetParallel())
	assert.Equal(t, 2, c.Concurrency)
	assert.Equal(t, 10.0, c.Rate)

	apiCall, _ := c.Defaults.Get("api_call")
	req, _ := apiCall.(*value.Object).Get("request")
	assert.Equal(t, []string{"path", "base_url"}, req.(*value.Object).Keys())

	token, _ := c.Data.Get("token")
	assert.Equal(t, "abc", token)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	path := writeFile(t, dir, "bad.json", `{"timeout": `)
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config")

	path = writeFile(t, dir, "bad.yaml", "defaults: [1, 2]\n")
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestConfig_Merge(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"A": "1"}
	base.Defaults = value.MustParse(`{"api_call": {"request": {"method": "GET", "base_url": "http://a"}}}`).(*value.Object)

	other := &Config{
		Timeout:  100,
		Bail:     BoolPtr(true),
		Headers:  map[string]string{"B": "2"},
		Defaults: value.MustParse(`{"api_call": {"request": {"base_url": "http://b"}}}`).(*value.Object),
		Data:     value.MustParse(`{"x": 1}`).(*value.Object),
	}

	merged := base.Merge(other)
	assert.Equal(t, 100, merged.Timeout)
	assert.True(t, merged.GetBail())
	assert.True(t, merged.GetFollowRedirects())
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, merged.Headers)
	assert.Equal(t, map[string]string{"A": "1"}, base.Headers)
	assert.True(t, value.Equal(
		value.MustParse(`{"api_call": {"request": {"method": "GET", "base_url": "http://b"}}}`),
		merged.Defaults,
	))
	assert.True(t, value.Equal(value.MustParse(`{"x": 1}`), merged.Data))

	assert.Same(t, base, base.Merge(nil))
}

func TestConfig_SaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hitcall.json")
	c := DefaultConfig()
	c.Data = value.MustParse(`{"b": 1, "a": 2}`).(*value.Object)
	require.NoError(t, c.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, loaded.Data.Keys())
}
