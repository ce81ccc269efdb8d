package namespace

import "github.com/urfave/cli/v3"

const (
	createCommandCLIErrorMsg = "failed to create namespace"
	deleteCommandCLIErrorMsg = "failed to delete namespace"
	getCommandCLIErrorMsg    = "failed to get namespace"
	listCommandCLIErrorMsg   = "failed to list namespaces"
)

// Command groups the namespace commands. Namespaces scope stored steps, and
// the step commands pick one with --namespace.
func Command() *cli.Command {
	return &cli.Command{
		Name:            "namespace",
		Usage:           "Manage the namespaces steps are stored in",
		HideHelpCommand: true,
		UsageText:       "pipeline-steps namespace <command> [options] [args]",
		Commands: []*cli.Command{
			createCommand(),
			deleteCommand(),
			getCommand(),
			listCommand(),
		},
	}
}
