package step

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/cmd/helper"
	"github.com/hashicorp-forge/pipeline-steps/pkg/api/v1"
)

func inputSetCommand() *cli.Command {
	return &cli.Command{
		Name:      "input-set",
		Category:  "step",
		Usage:     "Merge an input set into a stored step",
		UsageText: "pipeline-steps step input-set [options] [step-id] [inputs-file]",
		Flags:     helper.ClientFlags(helper.ClientFlagsWithNamespace),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			if numArgs := cmd.Args().Len(); numArgs != 2 {
				return cli.Exit(helper.FormatError(inputSetCommandCLIErrorMsg, fmt.Errorf("expected 2 arguments, got %v", numArgs)), 1)
			}

			inputs, err := api.ParseStepFile(cmd.Args().Get(1))
			if err != nil {
				return cli.Exit(helper.FormatError(inputSetCommandCLIErrorMsg, err), 1)
			}

			client := api.NewClient(helper.ClientConfigFromFlags(cmd))

			resp, _, err := client.Steps().InputSet(ctx, &api.StepInputSetReq{
				ID:     cmd.Args().First(),
				Inputs: inputs,
			})
			if err != nil {
				return exitWithFieldErrors(inputSetCommandCLIErrorMsg, err)
			}

			pterm.DefaultBasicText.Print(helper.FormatYAML(resp.Step))
			return nil
		},
	}
}
