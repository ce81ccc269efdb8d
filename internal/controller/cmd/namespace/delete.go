package namespace

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	cliHelper "github.com/hashicorp-forge/pipeline-steps/internal/controller/cmd/helper"
	"github.com/hashicorp-forge/pipeline-steps/pkg/api/v1"
)

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Category:  "namespace",
		Usage:     "Delete an empty namespace, or all of its steps first with --cascade",
		UsageText: "pipeline-steps namespace delete [options] [namespace-id]",
		Flags: append(cliHelper.ClientFlags(cliHelper.ClientFlagsWithoutNamespace),
			&cli.BoolFlag{
				Name:  "cascade",
				Usage: "Delete the steps stored in the namespace before the namespace",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			if numArgs := cmd.Args().Len(); numArgs != 1 {
				return cli.Exit(cliHelper.FormatError(deleteCommandCLIErrorMsg, fmt.Errorf("expected 1 argument, got %v", numArgs)), 1)
			}

			client := api.NewClient(cliHelper.ClientConfigFromFlags(cmd))
			name := cmd.Args().First()

			if cmd.Bool("cascade") {
				removed, err := emptyNamespace(ctx, client, name)
				for _, id := range removed {
					_, _ = fmt.Fprintf(cmd.Writer, "Step '%s' deleted\n", id)
				}
				if err != nil {
					return cli.Exit(cliHelper.FormatError(deleteCommandCLIErrorMsg, err), 1)
				}
			}

			if _, err := client.Namespaces().Delete(ctx, &api.NamespaceDeleteReq{Name: name}); err != nil {
				return cli.Exit(cliHelper.FormatError(deleteCommandCLIErrorMsg, err), 1)
			}

			_, _ = fmt.Fprintf(cmd.Writer, "Namespace '%s' deleted successfully\n", name)
			return nil
		},
	}
}

// emptyNamespace deletes every step stored in the namespace and returns the
// IDs it removed, including those removed before a failure.
func emptyNamespace(ctx context.Context, client *api.Client, name string) ([]string, error) {
	resp, _, err := client.Steps().List(ctx, &api.StepListReq{Namespace: name})
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}

	removed := make([]string, 0, len(resp.Steps))
	for _, s := range resp.Steps {
		if _, err := client.Steps().Delete(ctx, &api.StepDeleteReq{ID: s.ID, Namespace: name}); err != nil {
			return removed, fmt.Errorf("failed to delete step %q: %w", s.ID, err)
		}
		removed = append(removed, s.ID)
	}
	return removed, nil
}
