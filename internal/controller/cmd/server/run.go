package server

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/cmd/helper"
	"github.com/hashicorp-forge/pipeline-steps/internal/controller/server"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/logger"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:     "run",
		Category: "server",
		Usage:    "Run a pipeline steps server",
		Flags:    append(logger.Flags(), server.Flags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			defaultCfg := server.DefaultConfig()

			// The config file sits between the defaults and the CLI flags.
			if path := cmd.String("config"); path != "" {
				fileCfg, err := server.LoadConfigFile(path)
				if err != nil {
					return cli.Exit(helper.FormatError("failed to load server config", err), 1)
				}
				defaultCfg = defaultCfg.Merge(fileCfg)
			}

			// Merge logger config from CLI
			defaultCfg.Log = defaultCfg.Log.Merge(logger.ConfigFromCLI(cmd))

			// Merge server config from CLI
			defaultCfg = defaultCfg.Merge(server.ConfigFromCLI(cmd))

			srv, err := server.NewServer(defaultCfg)
			if err != nil {
				return cli.Exit(helper.FormatError("failed to run a pipeline steps server", err), 1)
			}
			srv.Start()
			srv.WaitForSignals()
			return nil
		},
	}
}
