package state

import (
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/server/state"
	"github.com/hashicorp-forge/pipeline-steps/internal/controller/state/dev"
	"github.com/hashicorp-forge/pipeline-steps/internal/controller/state/redis"
	"github.com/hashicorp-forge/pipeline-steps/internal/helper"
)

const (
	BackendDev   = "dev"
	BackendRedis = "redis"
)

type Config struct {
	Backend string       `hcl:"backend,optional"`
	Redis   *RedisConfig `hcl:"redis,block"`
}

type RedisConfig struct {
	Addr     string `hcl:"addr,optional"`
	Password string `hcl:"password,optional"`
	DB       int    `hcl:"db,optional"`

	// Prefix namespaces every key so several deployments can share one
	// Redis database.
	Prefix string `hcl:"prefix,optional"`

	CacheEnabled *bool `hcl:"cache_enabled,optional"`
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

	if other.Redis != nil {
		merged := RedisConfig{}
		if result.Redis != nil {
			merged = *result.Redis
		}
		if other.Redis.Addr != "" {
			merged.Addr = other.Redis.Addr
		}
		if other.Redis.Password != "" {
			merged.Password = other.Redis.Password
		}
		if other.Redis.DB != 0 {
			merged.DB = other.Redis.DB
		}
		if other.Redis.Prefix != "" {
			merged.Prefix = other.Redis.Prefix
		}
		if other.Redis.CacheEnabled != nil {
			merged.CacheEnabled = other.Redis.CacheEnabled
		}
		result.Redis = &merged
	}

	return &result
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendDev:
		return nil
	case BackendRedis:
		if c.Redis == nil || c.Redis.Addr == "" {
			return errors.New("redis state backend requires an address")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("invalid redis database: %d", c.Redis.DB)
		}
		return nil
	default:
		return fmt.Errorf("unsupported state backend: %s", c.Backend)
	}
}

func DefaultConfig() *Config {
	return &Config{
		Backend: BackendDev,
		Redis: &RedisConfig{
			Addr:         "127.0.0.1:6379",
			Prefix:       "pipeline-steps",
			CacheEnabled: helper.PointerOf(true),
		},
	}
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "state-backend",
			Usage:   "The state backend to use (dev or redis)",
			Sources: cli.EnvVars("PIPELINE_STEPS_STATE_BACKEND"),
		},
		&cli.StringFlag{
			Name:    "state-redis-addr",
			Usage:   "The address of the Redis server for the redis state backend",
			Sources: cli.EnvVars("PIPELINE_STEPS_STATE_REDIS_ADDR"),
		},
		&cli.StringFlag{
			Name:    "state-redis-password",
			Usage:   "The password used to authenticate with Redis",
			Sources: cli.EnvVars("PIPELINE_STEPS_STATE_REDIS_PASSWORD"),
		},
	}
}

func ConfigFromCLI(cmd *cli.Command) *Config {
	cfg := Config{
		Backend: cmd.String("state-backend"),
	}

	if addr, password := cmd.String("state-redis-addr"), cmd.String("state-redis-password"); addr != "" || password != "" {
		cfg.Redis = &RedisConfig{Addr: addr, Password: password}
	}

	return &cfg
}

func NewBackend(cfg *Config, logger *zap.Logger) (state.State, error) {
	switch cfg.Backend {
	case BackendDev:
		return dev.New(), nil
	case BackendRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache := cfg.Redis.CacheEnabled == nil || *cfg.Redis.CacheEnabled
		return redis.New(client, cfg.Redis.Prefix, cache, logger)
	default:
		return nil, fmt.Errorf("unsupported state backend: %s", cfg.Backend)
	}
}
