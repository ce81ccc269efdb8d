package server

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/state"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/hcl"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/logger"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/lookup"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/metrics"
)

type Config struct {
	Log     *logger.Config  `hcl:"log,block"`
	HTTP    *HTTPConfig     `hcl:"http,block"`
	State   *state.Config   `hcl:"state,block"`
	Lookup  *lookup.Config  `hcl:"lookup,block"`
	Metrics *metrics.Config `hcl:"metrics,block"`
}

type HTTPConfig struct {
	Addr           string `hcl:"addr,optional"`
	AccessLogLevel string `hcl:"access_log_level,optional"`
}

func DefaultConfig() *Config {
	return &Config{
		Log: logger.DefaultServerConfig(),
		HTTP: &HTTPConfig{
			Addr:           "http://localhost:8080",
			AccessLogLevel: zap.DebugLevel.String(),
		},
		State:   state.DefaultConfig(),
		Lookup:  lookup.DefaultConfig(),
		Metrics: metrics.DefaultConfig(),
	}
}

// LoadConfigFile decodes an HCL server configuration file. Blocks left out
// of the file are nil so they merge as no-ops.
func LoadConfigFile(path string) (*Config, error) {
	var cfg Config
	if err := hcl.ParseConfigFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Flags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "The path to an HCL server configuration file",
			Sources: cli.EnvVars("PIPELINE_STEPS_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "http-addr",
			Usage:   "The HTTP server address",
			Sources: cli.EnvVars("PIPELINE_STEPS_HTTP_ADDR"),
		},
		&cli.StringFlag{
			Name:    "http-access-log-level",
			Usage:   "The HTTP access log level (debug, info)",
			Sources: cli.EnvVars("PIPELINE_STEPS_HTTP_ACCESS_LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "lookup-backend",
			Usage:   "The lookup backend used to populate options (static, http)",
			Sources: cli.EnvVars("PIPELINE_STEPS_LOOKUP_BACKEND"),
		},
		&cli.StringFlag{
			Name:    "lookup-http-addr",
			Usage:   "The address of the HTTP lookup service",
			Sources: cli.EnvVars("PIPELINE_STEPS_LOOKUP_HTTP_ADDR"),
		},
		&cli.StringFlag{
			Name:    "lookup-http-token",
			Usage:   "The bearer token sent to the HTTP lookup service",
			Sources: cli.EnvVars("PIPELINE_STEPS_LOOKUP_HTTP_TOKEN"),
		},
		&cli.BoolFlag{
			Name:    "metrics-enabled",
			Usage:   "Serve Prometheus metrics on /metrics",
			Sources: cli.EnvVars("PIPELINE_STEPS_METRICS_ENABLED"),
		},
	}, state.Flags()...)
}

func ConfigFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		HTTP: &HTTPConfig{
			Addr:           cmd.String("http-addr"),
			AccessLogLevel: cmd.String("http-access-log-level"),
		},
		State: state.ConfigFromCLI(cmd),
		Lookup: &lookup.Config{
			Backend: cmd.String("lookup-backend"),
		},
	}

	if addr, token := cmd.String("lookup-http-addr"), cmd.String("lookup-http-token"); addr != "" || token != "" {
		cfg.Lookup.HTTP = &lookup.HTTPConfig{Addr: addr, Token: token}
	}

	if cmd.IsSet("metrics-enabled") {
		enabled := cmd.Bool("metrics-enabled")
		cfg.Metrics = &metrics.Config{Enabled: &enabled}
	}

	return cfg
}

func (c *Config) Merge(other *Config) *Config {
	if c == nil {
		return other
	}
	if other == nil {
		return c
	}

	result := *c

	if other.HTTP != nil {
		merged := HTTPConfig{}
		if result.HTTP != nil {
			merged = *result.HTTP
		}
		if other.HTTP.Addr != "" {
			merged.Addr = other.HTTP.Addr
		}
		if other.HTTP.AccessLogLevel != "" {
			merged.AccessLogLevel = other.HTTP.AccessLogLevel
		}
		result.HTTP = &merged
	}

	result.Log = result.Log.Merge(other.Log)
	result.State = result.State.Merge(other.State)
	result.Lookup = result.Lookup.Merge(other.Lookup)
	result.Metrics = result.Metrics.Merge(other.Metrics)

	return &result
}

// Validate reports every invalid block at once.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP == nil || c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http address is required"))
	} else {
		switch c.HTTP.AccessLogLevel {
		case zap.DebugLevel.String(), zap.InfoLevel.String():
		default:
			errs = append(errs, fmt.Errorf("unsupported access log level: %q", c.HTTP.AccessLogLevel))
		}
	}

	if c.Log != nil {
		if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
			errs = append(errs, fmt.Errorf("invalid log level: %w", err))
		}
	}

	if c.State == nil {
		errs = append(errs, errors.New("state configuration is required"))
	} else if err := c.State.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Lookup != nil {
		if err := c.Lookup.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
