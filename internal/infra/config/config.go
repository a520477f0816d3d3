// Package config loads and validates the process-wide configuration.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIVersion          = "v1"
	DefaultCacheTTLMillis      = 300_000
	DefaultSweepIntervalMillis = 60_000
	DefaultRetryCount          = 3
	DefaultRetryDelayMillis    = 1000
	DefaultTimeoutMillis       = 10_000
	DefaultObservabilityAddr   = "127.0.0.1:9190"

	envPrefix = "STYLEMCP"
)

// UpstreamConfig configures the upstream API client.
type UpstreamConfig struct {
	BaseURL          string `mapstructure:"baseUrl" yaml:"baseUrl"`
	AppID            string `mapstructure:"appId" yaml:"appId"`
	APIVersion       string `mapstructure:"apiVersion" yaml:"apiVersion"`
	Region           string `mapstructure:"region" yaml:"region"`
	Locale           string `mapstructure:"locale" yaml:"locale"`
	SessionID        string `mapstructure:"sessionId" yaml:"sessionId"`
	RetryCount       int    `mapstructure:"retryCount" yaml:"retryCount"`
	RetryDelayMillis int    `mapstructure:"retryDelayMillis" yaml:"retryDelayMillis"`
	TimeoutMillis    int    `mapstructure:"timeoutMillis" yaml:"timeoutMillis"`
}

func (u UpstreamConfig) RetryDelay() time.Duration {
	return time.Duration(u.RetryDelayMillis) * time.Millisecond
}

func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutMillis) * time.Millisecond
}

// CacheConfig configures the read-response cache.
type CacheConfig struct {
	Enabled             bool `mapstructure:"enabled" yaml:"enabled"`
	TTLMillis           int  `mapstructure:"ttlMillis" yaml:"ttlMillis"`
	SweepIntervalMillis int  `mapstructure:"sweepIntervalMillis" yaml:"sweepIntervalMillis"`
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMillis) * time.Millisecond
}

func (c CacheConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMillis) * time.Millisecond
}

// StoreConfig configures the resource store. MaxEntries zero keeps the
// store unbounded.
type StoreConfig struct {
	MaxEntries int `mapstructure:"maxEntries" yaml:"maxEntries"`
}

// Features gates whether the write operations are reachable from the
// routing layer at all.
type Features struct {
	TrackEvent        bool `mapstructure:"trackEvent" yaml:"trackEvent"`
	UpdateItemDetails bool `mapstructure:"updateItemDetails" yaml:"updateItemDetails"`
}

// ObservabilityConfig configures the metrics/health endpoint.
type ObservabilityConfig struct {
	ListenAddress string `mapstructure:"listenAddress" yaml:"listenAddress"`
	Metrics       bool   `mapstructure:"metrics" yaml:"metrics"`
	Healthz       bool   `mapstructure:"healthz" yaml:"healthz"`
}

// Config is the validated process configuration.
type Config struct {
	Upstream      UpstreamConfig      `mapstructure:"upstream" yaml:"upstream"`
	Cache         CacheConfig         `mapstructure:"cache" yaml:"cache"`
	Store         StoreConfig         `mapstructure:"store" yaml:"store"`
	Features      Features            `mapstructure:"features" yaml:"features"`
	Observability ObservabilityConfig `mapstructure:"observability" yaml:"observability"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("upstream.baseUrl", "")
	v.SetDefault("upstream.appId", "")
	v.SetDefault("upstream.apiVersion", DefaultAPIVersion)
	v.SetDefault("upstream.region", "")
	v.SetDefault("upstream.locale", "")
	v.SetDefault("upstream.sessionId", "")
	v.SetDefault("upstream.retryCount", DefaultRetryCount)
	v.SetDefault("upstream.retryDelayMillis", DefaultRetryDelayMillis)
	v.SetDefault("upstream.timeoutMillis", DefaultTimeoutMillis)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttlMillis", DefaultCacheTTLMillis)
	v.SetDefault("cache.sweepIntervalMillis", DefaultSweepIntervalMillis)

	v.SetDefault("store.maxEntries", 0)

	v.SetDefault("features.trackEvent", false)
	v.SetDefault("features.updateItemDetails", false)

	v.SetDefault("observability.listenAddress", DefaultObservabilityAddr)
	v.SetDefault("observability.metrics", true)
	v.SetDefault("observability.healthz", true)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the YAML file at path (optional; defaults and STYLEMCP_*
// environment overrides apply either way) and validates the result.
func Load(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants the rest of the system assumes.
func (c Config) Validate() error {
	base := strings.TrimSpace(c.Upstream.BaseURL)
	if base == "" {
		return fmt.Errorf("upstream.baseUrl is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("upstream.baseUrl %q is not an absolute URL", base)
	}
	if strings.TrimSpace(c.Upstream.AppID) == "" {
		return fmt.Errorf("upstream.appId is required")
	}
	if c.Upstream.RetryCount < 0 {
		return fmt.Errorf("upstream.retryCount must be >= 0")
	}
	if c.Upstream.RetryDelayMillis < 0 {
		return fmt.Errorf("upstream.retryDelayMillis must be >= 0")
	}
	if c.Upstream.TimeoutMillis <= 0 {
		return fmt.Errorf("upstream.timeoutMillis must be > 0")
	}
	if c.Cache.Enabled && c.Cache.TTLMillis <= 0 {
		return fmt.Errorf("cache.ttlMillis must be > 0 when the cache is enabled")
	}
	if c.Store.MaxEntries < 0 {
		return fmt.Errorf("store.maxEntries must be >= 0")
	}
	return nil
}

// Dump renders the effective configuration as YAML.
func (c Config) Dump() ([]byte, error) {
	return yaml.Marshal(c)
}
