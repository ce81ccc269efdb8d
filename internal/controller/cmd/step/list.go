package step

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/cmd/helper"
	"github.com/hashicorp-forge/pipeline-steps/pkg/api/v1"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Category:  "step",
		Usage:     "List stored steps",
		UsageText: "pipeline-steps step list [options]",
		Flags:     helper.ClientFlags(helper.ClientFlagsWithNamespace),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			if numArgs := cmd.Args().Len(); numArgs != 0 {
				return cli.Exit(helper.FormatError(listCommandCLIErrorMsg, fmt.Errorf("expected 0 arguments, got %v", numArgs)), 1)
			}

			client := api.NewClient(helper.ClientConfigFromFlags(cmd))

			resp, _, err := client.Steps().List(ctx, &api.StepListReq{})
			if err != nil {
				return cli.Exit(helper.FormatError(listCommandCLIErrorMsg, err), 1)
			}

			outputStepList(cmd, resp.Steps)
			return nil
		},
	}
}

func outputStepList(cmd *cli.Command, steps []*api.StepStub) {
	if len(steps) == 0 {
		_, _ = fmt.Fprint(cmd.Writer, "No steps found\n")
		return
	}

	out := pterm.TableData{{"ID", "Namespace", "Name", "Type", "Updated"}}

	for _, s := range steps {
		out = append(out, []string{
			s.ID,
			s.Namespace,
			s.Name,
			s.Type,
			helper.FormatTime(s.UpdateTime),
		})
	}

	_ = pterm.DefaultTable.WithHasHeader().WithData(out).Render()
}
