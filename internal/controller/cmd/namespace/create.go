package namespace

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	cliHelper "github.com/hashicorp-forge/pipeline-steps/internal/controller/cmd/helper"
	"github.com/hashicorp-forge/pipeline-steps/pkg/api/v1"
)

func createCommand() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Category:  "namespace",
		Usage:     "Create a namespace to store steps in",
		UsageText: "pipeline-steps namespace create [options] [namespace-id]",
		Flags: append(cliHelper.ClientFlags(cliHelper.ClientFlagsWithoutNamespace),
			&cli.StringFlag{
				Name:  "description",
				Usage: "A description of the namespace",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			if numArgs := cmd.Args().Len(); numArgs != 1 {
				return cli.Exit(cliHelper.FormatError(createCommandCLIErrorMsg, fmt.Errorf("expected 1 argument, got %v", numArgs)), 1)
			}

			client := api.NewClient(cliHelper.ClientConfigFromFlags(cmd))

			req := api.NamespaceCreateReq{Namespace: &api.Namespace{
				ID:          cmd.Args().First(),
				Description: cmd.String("description"),
			}}

			resp, _, err := client.Namespaces().Create(ctx, &req)
			if err != nil {
				return cli.Exit(cliHelper.FormatError(createCommandCLIErrorMsg, err), 1)
			}

			outputNamespace(resp.Namespace)
			return nil
		},
	}
}
