package namespace

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/cmd/helper"
	"github.com/hashicorp-forge/pipeline-steps/pkg/api/v1"
)

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Category:  "namespace",
		Usage:     "Show a namespace and the steps stored in it",
		UsageText: "pipeline-steps namespace get [options] [namespace-id]",
		Flags:     helper.ClientFlags(helper.ClientFlagsWithoutNamespace),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			if numArgs := cmd.Args().Len(); numArgs != 1 {
				return cli.Exit(helper.FormatError(getCommandCLIErrorMsg, fmt.Errorf("expected 1 argument, got %v", numArgs)), 1)
			}

			client := api.NewClient(helper.ClientConfigFromFlags(cmd))
			name := cmd.Args().First()

			resp, _, err := client.Namespaces().Get(ctx, &api.NamespaceGetReq{Name: name})
			if err != nil {
				return cli.Exit(helper.FormatError(getCommandCLIErrorMsg, err), 1)
			}

			stepsResp, _, err := client.Steps().List(ctx, &api.StepListReq{Namespace: name})
			if err != nil {
				return cli.Exit(helper.FormatError(getCommandCLIErrorMsg, err), 1)
			}

			outputNamespace(resp.Namespace)
			outputNamespaceSteps(stepsResp.Steps)
			return nil
		},
	}
}

func outputNamespace(namespace *api.Namespace) {
	pterm.DefaultBasicText.Println(helper.FormatKV([]string{
		fmt.Sprintf("ID|%s", namespace.ID),
		fmt.Sprintf("Description|%s", namespace.Description),
		fmt.Sprintf("Create Time|%s", helper.FormatTime(namespace.CreateTime)),
	}))
}

func outputNamespaceSteps(steps []*api.StepStub) {
	pterm.DefaultSection.Printfln("Steps (%d)", len(steps))
	if len(steps) == 0 {
		return
	}

	out := pterm.TableData{{"ID", "Type", "Revision"}}
	for _, s := range steps {
		out = append(out, []string{s.ID, s.Type, s.Revision})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(out).Render()
}
