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

func formCommand() *cli.Command {
	return &cli.Command{
		Name:      "form",
		Category:  "step",
		Usage:     "Render the edit, input-set or variables view of a stored step",
		UsageText: "pipeline-steps step form [options] [step-id]",
		Flags: append(helper.ClientFlags(helper.ClientFlagsWithNamespace),
			&cli.StringFlag{
				Name:  "view",
				Usage: "The view to render: edit, input-set or variables",
				Value: "edit",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			if numArgs := cmd.Args().Len(); numArgs != 1 {
				return cli.Exit(helper.FormatError(formCommandCLIErrorMsg, fmt.Errorf("expected 1 argument, got %v", numArgs)), 1)
			}

			client := api.NewClient(helper.ClientConfigFromFlags(cmd))

			resp, _, err := client.Steps().Form(ctx, &api.StepFormReq{
				ID:   cmd.Args().First(),
				View: cmd.String("view"),
			})
			if err != nil {
				return cli.Exit(helper.FormatError(formCommandCLIErrorMsg, err), 1)
			}

			outputForm(resp.Form)
			return nil
		},
	}
}

func outputForm(frm *api.Form) {
	if frm == nil {
		return
	}

	pterm.DefaultBasicText.Println(helper.FormatKV([]string{
		fmt.Sprintf("Step Type|%s", frm.StepType),
		fmt.Sprintf("View|%s", frm.View),
	}))

	if len(frm.Variables) > 0 {
		out := pterm.TableData{{"Path", "Value"}}
		for _, v := range frm.Variables {
			out = append(out, []string{v.Path, v.Value})
		}
		pterm.DefaultSection.Println("Variables")
		_ = pterm.DefaultTable.WithHasHeader().WithData(out).Render()
	}

	if len(frm.Fields) > 0 {
		out := pterm.TableData{{"Path", "Label", "Kind", "Mode", "Allowed", "Value", "Options"}}
		for _, f := range frm.Fields {
			label := f.Label
			if f.Required {
				label += " *"
			}
			if f.Disabled {
				label += " (disabled)"
			}
			out = append(out, []string{
				f.Path,
				label,
				f.Kind,
				f.InputType,
				strings.Join(f.AllowedTypes, ","),
				formatValue(f.Value),
				formatOptions(f.Options),
			})
		}
		pterm.DefaultSection.Println("Fields")
		_ = pterm.DefaultTable.WithHasHeader().WithData(out).Render()
	}

	if len(frm.FetchErrors) > 0 {
		out := pterm.TableData{{"Source", "Path", "Retryable", "Message"}}
		for _, e := range frm.FetchErrors {
			out = append(out, []string{e.Source, e.Path, fmt.Sprint(e.Retryable), e.Message})
		}
		pterm.DefaultSection.Println("Fetch Errors")
		_ = pterm.DefaultTable.WithHasHeader().WithData(out).Render()
	}

	if len(frm.Errors) > 0 {
		pterm.DefaultSection.Println("Errors")
		helper.OutputErrors(frm.Errors)
	}
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return strings.TrimSpace(helper.FormatYAML(v))
	}
}

// formatOptions lists up to a handful of option values.
func formatOptions(opts []*api.FormOption) string {
	const limit = 5

	vals := make([]string, 0, limit)
	for i, o := range opts {
		if i == limit {
			vals = append(vals, fmt.Sprintf("+%d", len(opts)-limit))
			break
		}
		vals = append(vals, o.Value)
	}
	return strings.Join(vals, ",")
}
