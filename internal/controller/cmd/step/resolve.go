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

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Category:  "step",
		Usage:     "Apply inputs and pipeline variables to a stored step",
		UsageText: "pipeline-steps step resolve [options] [step-id]",
		Flags: append(helper.ClientFlags(helper.ClientFlagsWithNamespace),
			&cli.StringFlag{
				Name:  "inputs",
				Usage: "A YAML or JSON input set to merge before resolving",
			},
			&cli.StringSliceFlag{
				Name:  "var",
				Usage: "A pipeline variable in key=value form, may be repeated",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Fail when an expression references an unknown variable",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			if numArgs := cmd.Args().Len(); numArgs != 1 {
				return cli.Exit(helper.FormatError(resolveCommandCLIErrorMsg, fmt.Errorf("expected 1 argument, got %v", numArgs)), 1)
			}

			req := api.StepResolveReq{
				ID:     cmd.Args().First(),
				Strict: cmd.Bool("strict"),
			}

			if path := cmd.String("inputs"); path != "" {
				inputs, err := api.ParseStepFile(path)
				if err != nil {
					return cli.Exit(helper.FormatError(resolveCommandCLIErrorMsg, err), 1)
				}
				req.Inputs = inputs
			}

			vars, err := parseVars(cmd.StringSlice("var"))
			if err != nil {
				return cli.Exit(helper.FormatError(resolveCommandCLIErrorMsg, err), 1)
			}
			req.Variables = vars

			client := api.NewClient(helper.ClientConfigFromFlags(cmd))

			resp, _, err := client.Steps().Resolve(ctx, &req)
			if err != nil {
				return exitWithFieldErrors(resolveCommandCLIErrorMsg, err)
			}

			pterm.DefaultBasicText.Print(helper.FormatYAML(resp.Step))
			return nil
		},
	}
}

func parseVars(in []string) (map[string]any, error) {
	if len(in) == 0 {
		return nil, nil
	}

	out := make(map[string]any, len(in))
	for _, kv := range in {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("variable %q must be in key=value form", kv)
		}
		out[k] = v
	}
	return out, nil
}
