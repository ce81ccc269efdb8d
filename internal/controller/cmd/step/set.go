package step

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"
	"sigs.k8s.io/yaml"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/cmd/helper"
	"github.com/hashicorp-forge/pipeline-steps/pkg/api/v1"
)

func setCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Category:  "step",
		Usage:     "Change one field of a stored step and reconcile its dependents",
		UsageText: "pipeline-steps step set [options] [step-id] [path] [value]",
		Flags: append(helper.ClientFlags(helper.ClientFlagsWithNamespace),
			&cli.BoolFlag{
				Name:  "delete",
				Usage: "Remove the field instead of setting it",
			},
			&cli.StringFlag{
				Name:  "revision",
				Usage: "Only change the step when it is at this revision",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			wantArgs := 3
			if cmd.Bool("delete") {
				wantArgs = 2
			}
			if numArgs := cmd.Args().Len(); numArgs != wantArgs {
				return cli.Exit(helper.FormatError(setCommandCLIErrorMsg, fmt.Errorf("expected %v arguments, got %v", wantArgs, numArgs)), 1)
			}

			req := api.StepSetFieldReq{
				ID:       cmd.Args().First(),
				Path:     cmd.Args().Get(1),
				Revision: cmd.String("revision"),
			}

			if !cmd.Bool("delete") {
				val, err := parseValue(cmd.Args().Get(2))
				if err != nil {
					return cli.Exit(helper.FormatError(setCommandCLIErrorMsg, err), 1)
				}
				req.Value = val
			}

			client := api.NewClient(helper.ClientConfigFromFlags(cmd))

			resp, _, err := client.Steps().SetField(ctx, &req)
			if err != nil {
				return exitWithFieldErrors(setCommandCLIErrorMsg, err)
			}

			outputStepRecord(resp.Step, false)

			if len(resp.Resets) > 0 {
				out := pterm.TableData{{"Path", "From", "To"}}
				for _, r := range resp.Resets {
					out = append(out, []string{r.Path, r.From, r.To})
				}
				pterm.DefaultSection.Println("Reset Fields")
				_ = pterm.DefaultTable.WithHasHeader().WithData(out).Render()
			}

			if len(resp.Errors) > 0 {
				pterm.DefaultSection.Println("Errors")
				helper.OutputErrors(resp.Errors)
			}
			return nil
		},
	}
}

// parseValue reads a command line value as YAML so numbers, booleans, lists
// and maps can be given. A value that is not valid YAML is taken as a
// string.
func parseValue(raw string) (any, error) {
	var out any
	if err := yaml.Unmarshal([]byte(raw), &out); err != nil {
		return raw, nil
	}
	if out == nil {
		return nil, fmt.Errorf("value %q is empty, use --delete to remove a field", raw)
	}
	return out, nil
}
