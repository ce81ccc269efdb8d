package step

import (
	"context"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/cmd/helper"
	"github.com/hashicorp-forge/pipeline-steps/pkg/api/v1"
)

func templateCommand() *cli.Command {
	return &cli.Command{
		Name:      "template",
		Category:  "step",
		Usage:     "Show the runtime input template of a stored step",
		UsageText: "pipeline-steps step template [options] [step-id]",
		Flags:     helper.ClientFlags(helper.ClientFlagsWithNamespace),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			if numArgs := cmd.Args().Len(); numArgs != 1 {
				return cli.Exit(helper.FormatError(templateCommandCLIErrorMsg, fmt.Errorf("expected 1 argument, got %v", numArgs)), 1)
			}

			client := api.NewClient(helper.ClientConfigFromFlags(cmd))

			resp, _, err := client.Steps().Template(ctx, &api.StepTemplateReq{ID: cmd.Args().First()})
			if err != nil {
				return cli.Exit(helper.FormatError(templateCommandCLIErrorMsg, err), 1)
			}

			if len(resp.RuntimePaths) == 0 {
				_, _ = fmt.Fprint(cmd.Writer, "Step has no runtime inputs\n")
				return nil
			}

			pterm.DefaultBasicText.Println(helper.FormatKV([]string{
				fmt.Sprintf("Runtime Inputs|%s", strings.Join(resp.RuntimePaths, ", ")),
			}))
			pterm.DefaultSection.Println("Template")
			pterm.DefaultBasicText.Print(helper.FormatYAML(resp.Template))
			return nil
		},
	}
}
