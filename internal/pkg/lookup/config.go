package lookup

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hashicorp-forge/pipeline-steps/internal/helper"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/logger"
)

const (
	BackendStatic = "static"
	BackendHTTP   = "http"
)

type Config struct {
	Backend string          `hcl:"backend,optional"`
	HTTP    *HTTPConfig     `hcl:"http,block"`
	Cache   *CacheConfig    `hcl:"cache,block"`
	Static  []*StaticOption `hcl:"option,block"`
}

type HTTPConfig struct {
	Addr    string `hcl:"addr,optional"`
	Token   string `hcl:"token,optional"`
	Timeout string `hcl:"timeout,optional"`
}

type CacheConfig struct {
	Enabled  *bool  `hcl:"enabled,optional"`
	TTL      string `hcl:"ttl,optional"`
	MaxBytes int    `hcl:"max_bytes,optional"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend: BackendStatic,
		HTTP: &HTTPConfig{
			Timeout: "5s",
		},
		Cache: &CacheConfig{
			Enabled:  helper.PointerOf(true),
			TTL:      "1m",
			MaxBytes: 32 * 1024 * 1024,
		},
	}
}

func (c *Config) Merge(other *Config) *Config {
	if c == nil {
		return other
	}
	if other == nil {
		return c
	}

	result := *c

	if other.Backend != "" {
		result.Backend = other.Backend
	}

	if other.HTTP != nil {
		merged := HTTPConfig{}
		if result.HTTP != nil {
			merged = *result.HTTP
		}
		if other.HTTP.Addr != "" {
			merged.Addr = other.HTTP.Addr
		}
		if other.HTTP.Token != "" {
			merged.Token = other.HTTP.Token
		}
		if other.HTTP.Timeout != "" {
			merged.Timeout = other.HTTP.Timeout
		}
		result.HTTP = &merged
	}

	if other.Cache != nil {
		merged := CacheConfig{}
		if result.Cache != nil {
			merged = *result.Cache
		}
		if other.Cache.Enabled != nil {
			merged.Enabled = other.Cache.Enabled
		}
		if other.Cache.TTL != "" {
			merged.TTL = other.Cache.TTL
		}
		if other.Cache.MaxBytes != 0 {
			merged.MaxBytes = other.Cache.MaxBytes
		}
		result.Cache = &merged
	}

	if len(other.Static) > 0 {
		result.Static = append(append([]*StaticOption{}, result.Static...), other.Static...)
	}

	return &result
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendStatic:
	case BackendHTTP:
		if c.HTTP == nil || c.HTTP.Addr == "" {
			return fmt.Errorf("lookup backend %q requires an address", BackendHTTP)
		}
		if _, err := time.ParseDuration(c.HTTP.Timeout); err != nil {
			return fmt.Errorf("invalid lookup timeout: %w", err)
		}
	default:
		return fmt.Errorf("unsupported lookup backend: %s", c.Backend)
	}

	if c.Cache != nil && c.Cache.Enabled != nil && *c.Cache.Enabled {
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			return fmt.Errorf("invalid lookup cache ttl: %w", err)
		}
	}

	for _, opt := range c.Static {
		if _, err := ParseKind(opt.Kind); err != nil {
			return err
		}
	}

	return nil
}

// New builds the configured lookup, wrapped in a cache when enabled.
func New(cfg *Config, zLogger *zap.Logger) (Lookup, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lookupLogger := zLogger.Named(logger.ComponentNameLookup)

	var l Lookup

	switch cfg.Backend {
	case BackendHTTP:
		timeout, _ := time.ParseDuration(cfg.HTTP.Timeout)
		l = NewHTTP(cfg.HTTP.Addr, cfg.HTTP.Token, timeout, lookupLogger)
	default:
		l = NewStatic(cfg.Static)
	}

	if cfg.Cache != nil && cfg.Cache.Enabled != nil && *cfg.Cache.Enabled {
		ttl, _ := time.ParseDuration(cfg.Cache.TTL)
		l = NewCached(l, cfg.Cache.MaxBytes, ttl)
	}

	lookupLogger.Info("configured lookup backend", zap.String("backend", cfg.Backend))

	return l, nil
}
