package step

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/cmd/helper"
	"github.com/hashicorp-forge/pipeline-steps/pkg/api/v1"
)

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Category:  "step",
		Usage:     "Validate and replace a stored step",
		UsageText: "pipeline-steps step update [options] [step-file]",
		Flags: append(helper.ClientFlags(helper.ClientFlagsWithNamespace),
			&cli.StringFlag{
				Name:  "revision",
				Usage: "Only update when the stored step is at this revision",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			if numArgs := cmd.Args().Len(); numArgs != 1 {
				return cli.Exit(helper.FormatError(updateCommandCLIErrorMsg, fmt.Errorf("expected 1 argument, got %v", numArgs)), 1)
			}

			stepDoc, err := api.ParseStepFile(cmd.Args().First())
			if err != nil {
				return cli.Exit(helper.FormatError(updateCommandCLIErrorMsg, err), 1)
			}

			client := api.NewClient(helper.ClientConfigFromFlags(cmd))

			resp, _, err := client.Steps().Update(ctx, &api.StepUpdateReq{
				Step:     stepDoc,
				Revision: cmd.String("revision"),
			})
			if err != nil {
				return exitWithFieldErrors(updateCommandCLIErrorMsg, err)
			}

			outputStepRecord(resp.Step, false)
			return nil
		},
	}
}
