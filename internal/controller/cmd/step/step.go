package step

import "github.com/urfave/cli/v3"

const (
	createCommandCLIErrorMsg   = "failed to create step"
	deleteCommandCLIErrorMsg   = "failed to delete step"
	getCommandCLIErrorMsg      = "failed to get step"
	listCommandCLIErrorMsg     = "failed to list steps"
	updateCommandCLIErrorMsg   = "failed to update step"
	formCommandCLIErrorMsg     = "failed to render step form"
	templateCommandCLIErrorMsg = "failed to get step template"
	inputSetCommandCLIErrorMsg = "failed to apply input set"
	resolveCommandCLIErrorMsg  = "failed to resolve step"
	setCommandCLIErrorMsg      = "failed to set step field"
	validateCommandCLIErrorMsg = "failed to validate step"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:            "step",
		Usage:           "Author, store and validate pipeline steps",
		HideHelpCommand: true,
		UsageText:       "pipeline-steps step <command> [options] [args]",
		Commands: []*cli.Command{
			createCommand(),
			deleteCommand(),
			formCommand(),
			getCommand(),
			inputSetCommand(),
			listCommand(),
			resolveCommand(),
			setCommand(),
			templateCommand(),
			updateCommand(),
			validateCommand(),
		},
	}
}
