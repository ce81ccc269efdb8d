package steptype

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/cmd/helper"
	"github.com/hashicorp-forge/pipeline-steps/pkg/api/v1"
)

const (
	getCommandCLIErrorMsg  = "failed to get step type"
	listCommandCLIErrorMsg = "failed to list step types"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:            "step-type",
		Usage:           "Discover the step types the server supports",
		HideHelpCommand: true,
		UsageText:       "pipeline-steps step-type <command> [options] [args]",
		Commands: []*cli.Command{
			getCommand(),
			listCommand(),
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Category:  "step-type",
		Usage:     "List the supported step types",
		UsageText: "pipeline-steps step-type list [options]",
		Flags:     helper.ClientFlags(helper.ClientFlagsWithoutNamespace),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			if numArgs := cmd.Args().Len(); numArgs != 0 {
				return cli.Exit(helper.FormatError(listCommandCLIErrorMsg, fmt.Errorf("expected 0 arguments, got %v", numArgs)), 1)
			}

			client := api.NewClient(helper.ClientConfigFromFlags(cmd))

			resp, _, err := client.StepTypes().List(ctx)
			if err != nil {
				return cli.Exit(helper.FormatError(listCommandCLIErrorMsg, err), 1)
			}

			out := pterm.TableData{{"Type", "Name", "Category", "Timeout"}}
			for _, st := range resp.StepTypes {
				out = append(out, []string{st.Type, st.Name, st.Category, fmt.Sprint(st.RequiresTimeout)})
			}

			_ = pterm.DefaultTable.WithHasHeader().WithData(out).Render()
			return nil
		},
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Category:  "step-type",
		Usage:     "Show a step type and its default configuration",
		UsageText: "pipeline-steps step-type get [options] [type]",
		Flags:     helper.ClientFlags(helper.ClientFlagsWithoutNamespace),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			if numArgs := cmd.Args().Len(); numArgs != 1 {
				return cli.Exit(helper.FormatError(getCommandCLIErrorMsg, fmt.Errorf("expected 1 argument, got %v", numArgs)), 1)
			}

			client := api.NewClient(helper.ClientConfigFromFlags(cmd))

			resp, _, err := client.StepTypes().Get(ctx, cmd.Args().First())
			if err != nil {
				return cli.Exit(helper.FormatError(getCommandCLIErrorMsg, err), 1)
			}

			st := resp.StepType
			pterm.DefaultBasicText.Println(helper.FormatKV([]string{
				fmt.Sprintf("Type|%s", st.Type),
				fmt.Sprintf("Name|%s", st.Name),
				fmt.Sprintf("Icon|%s", st.Icon),
				fmt.Sprintf("Category|%s", st.Category),
				fmt.Sprintf("Requires Timeout|%v", st.RequiresTimeout),
			}))

			pterm.DefaultSection.Println("Defaults")
			pterm.DefaultBasicText.Print(helper.FormatYAML(st.Defaults))

			if resp.Form != nil && len(resp.Form.Fields) > 0 {
				out := pterm.TableData{{"Path", "Label", "Kind", "Required", "Allowed"}}
				for _, f := range resp.Form.Fields {
					out = append(out, []string{f.Path, f.Label, f.Kind, fmt.Sprint(f.Required), fmt.Sprint(f.AllowedTypes)})
				}
				pterm.DefaultSection.Println("Fields")
				_ = pterm.DefaultTable.WithHasHeader().WithData(out).Render()
			}
			return nil
		},
	}
}
