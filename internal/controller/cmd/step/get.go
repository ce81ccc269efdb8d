package step

import (
	"context"
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/cmd/helper"
	"github.com/hashicorp-forge/pipeline-steps/pkg/api/v1"
)

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Category:  "step",
		Usage:     "Get a stored step",
		UsageText: "pipeline-steps step get [options] [step-id]",
		Flags:     helper.ClientFlags(helper.ClientFlagsWithNamespace),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			if numArgs := cmd.Args().Len(); numArgs != 1 {
				return cli.Exit(helper.FormatError(getCommandCLIErrorMsg, fmt.Errorf("expected 1 argument, got %v", numArgs)), 1)
			}

			client := api.NewClient(helper.ClientConfigFromFlags(cmd))

			resp, _, err := client.Steps().Get(ctx, &api.StepGetReq{ID: cmd.Args().First()})
			if err != nil {
				return cli.Exit(helper.FormatError(getCommandCLIErrorMsg, err), 1)
			}

			outputStepRecord(resp.Step, true)
			return nil
		},
	}
}

func outputStepRecord(s *api.StepRecord, withConfig bool) {
	name, _ := s.Config["name"].(string)
	stepType, _ := s.Config["type"].(string)

	pterm.DefaultBasicText.Println(helper.FormatKV([]string{
		fmt.Sprintf("ID|%s", s.ID),
		fmt.Sprintf("Namespace|%s", s.Namespace),
		fmt.Sprintf("Name|%s", name),
		fmt.Sprintf("Type|%s", stepType),
		fmt.Sprintf("Revision|%s", s.Revision),
		fmt.Sprintf("Create Time|%s", helper.FormatTime(s.CreateTime)),
		fmt.Sprintf("Update Time|%s", helper.FormatTime(s.UpdateTime)),
	}))

	if withConfig {
		pterm.DefaultSection.Println("Config")
		pterm.DefaultBasicText.Print(helper.FormatYAML(s.Config))
	}
}

// exitWithFieldErrors prints the field errors of a rejected step before
// exiting.
func exitWithFieldErrors(cliMsg string, err error) error {
	var respErr *api.ResponseError
	if errors.As(err, &respErr) && helper.OutputErrors(respErr.Errors) {
		plain := *respErr
		plain.Errors = nil
		return cli.Exit(helper.FormatError(cliMsg, &plain), 1)
	}
	return cli.Exit(helper.FormatError(cliMsg, err), 1)
}
