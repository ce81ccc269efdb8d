package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/state"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/lookup"
)

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
log {
  level = "debug"
  json  = true
}

http {
  addr = "http://127.0.0.1:9090"
}

state {
  backend = "redis"

  redis {
    addr   = "redis.internal:6379"
    prefix = "steps"
  }
}

lookup {
  option "regions" {
    value = "us-east-1"
    scope = { connectorRef = "aws" }
  }
}
`), 0o644))

	fileCfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	require.Nil(t, fileCfg.Metrics)

	cfg := DefaultConfig().Merge(fileCfg)
	require.Equal(t, "debug", cfg.Log.Level)
	require.True(t, *cfg.Log.JSON)
	require.Equal(t, "http://127.0.0.1:9090", cfg.HTTP.Addr)
	require.Equal(t, "debug", cfg.HTTP.AccessLogLevel)
	require.Equal(t, state.BackendRedis, cfg.State.Backend)
	require.Equal(t, "redis.internal:6379", cfg.State.Redis.Addr)
	require.Equal(t, "steps", cfg.State.Redis.Prefix)
	require.True(t, *cfg.State.Redis.CacheEnabled)
	require.Equal(t, lookup.BackendStatic, cfg.Lookup.Backend)
	require.Len(t, cfg.Lookup.Static, 1)
	require.True(t, *cfg.Metrics.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`http { addr = `), 0o644))

	_, err := LoadConfigFile(path)
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig().Merge(&Config{
		HTTP:  &HTTPConfig{AccessLogLevel: "trace"},
		State: &state.Config{Backend: "etcd"},
	})

	err := cfg.Validate()
	require.Error(t, err)
	require.ErrorContains(t, err, "unsupported access log level")
	require.ErrorContains(t, err, "unsupported state backend: etcd")
}
