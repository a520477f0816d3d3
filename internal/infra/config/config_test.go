package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stylemcp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validConfig = `
upstream:
  baseUrl: https://api.example.com
  appId: demo-shop
  region: us
  locale: en-US
cache:
  enabled: true
  ttlMillis: 60000
features:
  trackEvent: true
`

func TestLoad_FileAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.Upstream.BaseURL)
	assert.Equal(t, "demo-shop", cfg.Upstream.AppID)
	assert.Equal(t, "us", cfg.Upstream.Region)

	// Defaults fill what the file omits.
	assert.Equal(t, DefaultAPIVersion, cfg.Upstream.APIVersion)
	assert.Equal(t, DefaultRetryCount, cfg.Upstream.RetryCount)
	assert.Equal(t, time.Second, cfg.Upstream.RetryDelay())
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout())
	assert.Equal(t, time.Minute, cfg.Cache.TTL())

	assert.True(t, cfg.Features.TrackEvent)
	assert.False(t, cfg.Features.UpdateItemDetails)
	assert.Equal(t, DefaultObservabilityAddr, cfg.Observability.ListenAddress)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("STYLEMCP_UPSTREAM_BASEURL", "https://env.example.com")
	t.Setenv("STYLEMCP_UPSTREAM_APPID", "env-shop")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.Upstream.BaseURL)
	assert.Equal(t, "env-shop", cfg.Upstream.AppID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Upstream: UpstreamConfig{
			BaseURL:          "https://api.example.com",
			AppID:            "demo-shop",
			RetryDelayMillis: 1000,
			TimeoutMillis:    10000,
		},
		Cache: CacheConfig{Enabled: true, TTLMillis: 1000},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing base url", func(c *Config) { c.Upstream.BaseURL = "" }},
		{"relative base url", func(c *Config) { c.Upstream.BaseURL = "api.example.com/path" }},
		{"missing app id", func(c *Config) { c.Upstream.AppID = "  " }},
		{"negative retry count", func(c *Config) { c.Upstream.RetryCount = -1 }},
		{"zero timeout", func(c *Config) { c.Upstream.TimeoutMillis = 0 }},
		{"cache enabled without ttl", func(c *Config) { c.Cache.TTLMillis = 0 }},
		{"negative store bound", func(c *Config) { c.Store.MaxEntries = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDump_RoundTrips(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	data, err := cfg.Dump()
	require.NoError(t, err)

	var decoded Config
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, cfg, decoded)
}
