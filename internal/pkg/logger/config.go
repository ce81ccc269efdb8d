package logger

import (
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/hashicorp-forge/pipeline-steps/internal/helper"
)

type Config struct {
	Level            string      `hcl:"level,optional"`
	JSON             *bool       `hcl:"json,optional"`
	IncludeLine      *bool       `hcl:"include_line,optional"`
	EnableStacktrace *bool       `hcl:"enable_stacktrace,optional"`
	File             *FileConfig `hcl:"file,block"`
}

// FileConfig enables an additional, rotated JSON log file.
type FileConfig struct {
	Path       string `hcl:"path,optional"`
	MaxSizeMB  int    `hcl:"max_size_mb,optional"`
	MaxBackups int    `hcl:"max_backups,optional"`
	MaxAgeDays int    `hcl:"max_age_days,optional"`
	Compress   *bool  `hcl:"compress,optional"`
}

func DefaultServerConfig() *Config {
	return &Config{
		Level:            zap.InfoLevel.String(),
		JSON:             helper.PointerOf(false),
		IncludeLine:      helper.PointerOf(false),
		EnableStacktrace: helper.PointerOf(false),
		File: &FileConfig{
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   helper.PointerOf(true),
		},
	}
}

// DefaultCLIConfig is used by commands that log locally, such as watched
// validation.
func DefaultCLIConfig() *Config {
	return &Config{
		Level:            zap.WarnLevel.String(),
		JSON:             helper.PointerOf(false),
		IncludeLine:      helper.PointerOf(false),
		EnableStacktrace: helper.PointerOf(false),
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

	if other.Level != "" {
		result.Level = other.Level
	}
	if other.JSON != nil {
		result.JSON = other.JSON
	}
	if other.IncludeLine != nil {
		result.IncludeLine = other.IncludeLine
	}
	if other.EnableStacktrace != nil {
		result.EnableStacktrace = other.EnableStacktrace
	}

	if other.File != nil {
		merged := FileConfig{}
		if result.File != nil {
			merged = *result.File
		}
		if other.File.Path != "" {
			merged.Path = other.File.Path
		}
		if other.File.MaxSizeMB != 0 {
			merged.MaxSizeMB = other.File.MaxSizeMB
		}
		if other.File.MaxBackups != 0 {
			merged.MaxBackups = other.File.MaxBackups
		}
		if other.File.MaxAgeDays != 0 {
			merged.MaxAgeDays = other.File.MaxAgeDays
		}
		if other.File.Compress != nil {
			merged.Compress = other.File.Compress
		}
		result.File = &merged
	}

	return &result
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "The threshold level for logging",
			Sources: cli.EnvVars("PIPELINE_STEPS_LOG_LEVEL"),
		},
		&cli.BoolFlag{
			Name:  "log-json",
			Usage: "If the output should be in JSON format",
		},
		&cli.BoolFlag{
			Name:  "log-include-line",
			Usage: "Include file and line information in each log line",
		},
		&cli.BoolFlag{
			Name:  "log-enable-stacktrace",
			Usage: "Enable stacktrace capturing for error level logs",
		},
		&cli.StringFlag{
			Name:    "log-file",
			Usage:   "Also write JSON logs to this file, rotating it by size",
			Sources: cli.EnvVars("PIPELINE_STEPS_LOG_FILE"),
		},
	}
}

func ConfigFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Level: cmd.String("log-level"),
		JSON: func() *bool {
			if cmd.IsSet("log-json") {
				val := cmd.Bool("log-json")
				return &val
			}
			return nil
		}(),
		IncludeLine: func() *bool {
			if cmd.IsSet("log-include-line") {
				val := cmd.Bool("log-include-line")
				return &val
			}
			return nil
		}(),
		EnableStacktrace: func() *bool {
			if cmd.IsSet("log-enable-stacktrace") {
				val := cmd.Bool("log-enable-stacktrace")
				return &val
			}
			return nil
		}(),
	}

	if path := cmd.String("log-file"); path != "" {
		cfg.File = &FileConfig{Path: path}
	}

	return cfg
}
