package server

import (
	"github.com/urfave/cli/v3"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:            "server",
		Usage:           "Run pipeline steps servers",
		HideHelpCommand: true,
		UsageText:       "pipeline-steps server <command> [options] [args]",
		Commands: []*cli.Command{
			runCommand(),
		},
	}
}
