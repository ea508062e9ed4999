package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tansive/nanobanana/internal/gateway/params"
	"github.com/tansive/nanobanana/internal/gateway/resilience"
)

const sampleConfig = `
format_version = "0.1.0"
output_dir = "images"
default_model = "flash"
log_level = "debug"

[retry]
enabled = true
initial_delay = "500ms"
max_delay = "10s"
multiplier = 1.5
timeout = "1m"

[transport]
mode = "http"
listen_addr = "127.0.0.1:9000"
handle_cors = true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nanobanana.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	require.NoError(t, LoadConfig(writeConfig(t, sampleConfig)))
	c := Config()
	require.NotNil(t, c)

	assert.True(t, filepath.IsAbs(c.OutputDir))
	assert.Equal(t, "images", filepath.Base(c.OutputDir))
	assert.Equal(t, params.ModelFlash, c.DefaultModel)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, TransportHTTP, c.Transport.Mode)
	assert.Equal(t, "127.0.0.1:9000", c.Transport.ListenAddr)
	assert.True(t, c.Transport.HandleCORS)

	p, err := c.RetryPolicy()
	require.NoError(t, err)
	assert.Equal(t, resilience.Policy{
		Enabled:      true,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   1.5,
		Timeout:      time.Minute,
	}, p)
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, name := range []string{"", filepath.Join(t.TempDir(), "missing.conf")} {
		require.NoError(t, LoadConfig(name))
		c := Config()
		assert.Equal(t, params.DefaultModel, c.DefaultModel)
		assert.Equal(t, TransportStdio, c.Transport.Mode)
		p, err := c.RetryPolicy()
		require.NoError(t, err)
		assert.Equal(t, resilience.DefaultPolicy(), p)
	}
}

func TestParseConfigPartialKeepsDefaults(t *testing.T) {
	c, err := ParseConfig([]byte("output_dir = \"/tmp/out\"\n[retry]\nenabled = false\n"))
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(c))
	assert.Equal(t, "/tmp/out", c.OutputDir)
	assert.False(t, c.Retry.Enabled)
	assert.Equal(t, "2s", c.Retry.InitialDelay)
	assert.Equal(t, ConfigFormatVersion, c.FormatVersion)
}

func TestParseConfigErrors(t *testing.T) {
	_, err := ParseConfig([]byte("output_dir = "))
	assert.ErrorIs(t, err, ErrParseConfig)

	_, err = ParseConfig([]byte("outptu_dir = \"x\""))
	assert.ErrorIs(t, err, ErrParseConfig)
	assert.Contains(t, err.Error(), "outptu_dir")
}

func TestValidateConfigRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *ConfigParam)
		target error
		detail string
	}{
		{"format too new", func(c *ConfigParam) { c.FormatVersion = "0.2.0" }, ErrUnsupportedFormat, ""},
		{"format major", func(c *ConfigParam) { c.FormatVersion = "1.0.0" }, ErrUnsupportedFormat, ""},
		{"format garbage", func(c *ConfigParam) { c.FormatVersion = "latest" }, ErrInvalidConfig, "format_version"},
		{"unknown model", func(c *ConfigParam) { c.DefaultModel = "dall-e" }, params.ErrInvalidModel, ""},
		{"bad mode", func(c *ConfigParam) { c.Transport.Mode = "grpc" }, ErrInvalidConfig, "transport.mode"},
		{"http without addr", func(c *ConfigParam) {
			c.Transport.Mode = TransportHTTP
			c.Transport.ListenAddr = ""
		}, ErrInvalidConfig, "transport.listen_addr"},
		{"bad duration", func(c *ConfigParam) { c.Retry.MaxDelay = "forever" }, ErrInvalidConfig, "retry.max_delay"},
		{"flat multiplier", func(c *ConfigParam) { c.Retry.Multiplier = 1 }, ErrInvalidConfig, "retry.multiplier"},
		{"inverted delays", func(c *ConfigParam) { c.Retry.InitialDelay = "2m" }, resilience.ErrInvalidPolicy, ""},
		{"bad log level", func(c *ConfigParam) { c.LogLevel = "loud" }, ErrInvalidConfig, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := ValidateConfig(c)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			if tt.detail != "" {
				assert.True(t, strings.Contains(err.(interface{ ErrorAll() string }).ErrorAll(), tt.detail), err.Error())
			}
		})
	}
}

func TestValidateConfigAcceptsPatchVersions(t *testing.T) {
	c := DefaultConfig()
	c.FormatVersion = "0.1.7"
	assert.NoError(t, ValidateConfig(c))
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "from-env")
	c := DefaultConfig()
	assert.Equal(t, "from-env", c.ResolveAPIKey())

	c.APIKey = "from-file"
	assert.Equal(t, "from-file", c.ResolveAPIKey())
}

func TestRedactedAndEncode(t *testing.T) {
	c := DefaultConfig()
	c.APIKey = "secret"
	r := c.Redacted()
	assert.Equal(t, "secret", c.APIKey)
	assert.NotEqual(t, "secret", r.APIKey)

	out, err := r.Encode()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret")

	back, err := ParseConfig(out)
	require.NoError(t, err)
	assert.Equal(t, r.Transport, back.Transport)
	assert.Equal(t, r.Retry, back.Retry)
}
