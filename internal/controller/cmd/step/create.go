package step

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/cmd/helper"
	"github.com/hashicorp-forge/pipeline-steps/pkg/api/v1"
)

func createCommand() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Category:  "step",
		Usage:     "Validate and store a step",
		UsageText: "pipeline-steps step create [options] [step-file]",
		Flags:     helper.ClientFlags(helper.ClientFlagsWithNamespace),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			if numArgs := cmd.Args().Len(); numArgs != 1 {
				return cli.Exit(helper.FormatError(createCommandCLIErrorMsg, fmt.Errorf("expected 1 argument, got %v", numArgs)), 1)
			}

			stepDoc, err := api.ParseStepFile(cmd.Args().First())
			if err != nil {
				return cli.Exit(helper.FormatError(createCommandCLIErrorMsg, err), 1)
			}

			client := api.NewClient(helper.ClientConfigFromFlags(cmd))

			resp, _, err := client.Steps().Create(ctx, &api.StepCreateReq{Step: stepDoc})
			if err != nil {
				return exitWithFieldErrors(createCommandCLIErrorMsg, err)
			}

			outputStepRecord(resp.Step, false)
			return nil
		},
	}
}
