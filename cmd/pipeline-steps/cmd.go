package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/cmd/helper"
	"github.com/hashicorp-forge/pipeline-steps/internal/controller/cmd/namespace"
	"github.com/hashicorp-forge/pipeline-steps/internal/controller/cmd/server"
	"github.com/hashicorp-forge/pipeline-steps/internal/controller/cmd/step"
	"github.com/hashicorp-forge/pipeline-steps/internal/controller/cmd/steptype"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/version"
)

func main() {

	cli.VersionPrinter = func(cmd *cli.Command) {
		_, _ = fmt.Fprint(cmd.Writer, helper.FormatKV([]string{
			fmt.Sprintf("Version|%s", cmd.Version),
			fmt.Sprintf("Build Time|%s", version.BuildTime),
			fmt.Sprintf("Build Commit|%s", version.BuildCommit),
		}))
		_, _ = fmt.Fprint(cmd.Writer, "\n")
	}

	cliApp := cli.Command{
		Commands: []*cli.Command{
			namespace.Command(),
			server.Command(),
			step.Command(),
			steptype.Command(),
		},
		Name:  "pipeline-steps",
		Usage: "Author and validate pipeline step configuration",
		Description: strings.TrimSpace(`
Pipeline Steps stores the configuration of pipeline steps and checks it
against each step type's schema. Fields may hold fixed values, runtime
inputs or expressions, and the server renders the edit and input-set forms
a step needs before it can run.`),
		Version:         version.Get(),
		HideHelpCommand: true,
	}

	if err := cliApp.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprint(os.Stderr, err.Error()+"\n")
		os.Exit(1)
	}
}
