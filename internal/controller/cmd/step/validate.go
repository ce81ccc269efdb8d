package step

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/cmd/helper"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/inputset"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/logger"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/step"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/steps"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/validate"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/watch"
	"github.com/hashicorp-forge/pipeline-steps/pkg/api/v1"
)

var errInvalidStep = errors.New("step is not valid")

func validateCommand() *cli.Command {
	flags := append(helper.ClientFlags(helper.ClientFlagsWithoutNamespace),
		&cli.BoolFlag{
			Name:  "remote",
			Usage: "Validate with the server instead of locally",
		},
		&cli.BoolFlag{
			Name:  "watch",
			Usage: "Validate again every time the file changes",
		},
		&cli.StringFlag{
			Name:  "template",
			Usage: "Validate the file as an input set for this template file",
		},
	)

	return &cli.Command{
		Name:      "validate",
		Category:  "step",
		Usage:     "Validate a step file",
		UsageText: "pipeline-steps step validate [options] [step-file]",
		Flags:     append(flags, logger.Flags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			if numArgs := cmd.Args().Len(); numArgs != 1 {
				return cli.Exit(helper.FormatError(validateCommandCLIErrorMsg, fmt.Errorf("expected 1 argument, got %v", numArgs)), 1)
			}

			v := validator{
				path:         cmd.Args().First(),
				templatePath: cmd.String("template"),
				getString:    i18n.FromAcceptLanguage(cmd.String("language")),
			}
			if cmd.Bool("remote") {
				v.client = api.NewClient(helper.ClientConfigFromFlags(cmd))
			}

			if !cmd.Bool("watch") {
				if err := v.run(ctx); err != nil {
					return cli.Exit(helper.FormatError(validateCommandCLIErrorMsg, err), 1)
				}
				_, _ = fmt.Fprint(cmd.Writer, "Step is valid\n")
				return nil
			}

			zLogger, err := logger.NewZap(logger.DefaultCLIConfig().Merge(logger.ConfigFromCLI(cmd)))
			if err != nil {
				return cli.Exit(helper.FormatError(validateCommandCLIErrorMsg, err), 1)
			}
			defer func() { _ = zLogger.Sync() }()

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			v.report(ctx)

			err = watch.File(ctx, zLogger, v.path, watch.DefaultQuiet, func(string) {
				zLogger.Debug("validating changed file", zap.String("path", v.path))
				v.report(ctx)
			})
			if err != nil {
				return cli.Exit(helper.FormatError(validateCommandCLIErrorMsg, err), 1)
			}
			return nil
		},
	}
}

type validator struct {
	path         string
	templatePath string
	getString    i18n.GetString

	// client is set when validation happens on the server.
	client *api.Client
}

// report validates once and prints the outcome without stopping a watch.
func (v *validator) report(ctx context.Context) {
	pterm.DefaultSection.Println(v.path)
	if err := v.run(ctx); err != nil {
		if !errors.Is(err, errInvalidStep) {
			pterm.Error.Println(err.Error())
		}
		return
	}
	pterm.Success.Println("Step is valid")
}

// run validates the file and prints any field errors. It returns
// errInvalidStep when there were some.
func (v *validator) run(ctx context.Context) error {
	errs, err := v.errors(ctx)
	if err != nil {
		return err
	}
	if helper.OutputErrors(errs) {
		return errInvalidStep
	}
	return nil
}

func (v *validator) errors(ctx context.Context) (map[string]string, error) {
	doc, err := api.ParseStepFile(v.path)
	if err != nil {
		return nil, err
	}

	var tpl api.Step
	if v.templatePath != "" {
		if tpl, err = api.ParseStepFile(v.templatePath); err != nil {
			return nil, err
		}
	}

	if v.client != nil {
		resp, _, err := v.client.Validate(ctx, &api.ValidateReq{Step: doc, Template: tpl})
		if err != nil {
			return nil, err
		}
		return resp.Errors, nil
	}

	return validateLocal(doc, tpl, v.getString).Map(), nil
}

func validateLocal(doc, tpl step.Config, getString i18n.GetString) *validate.Errors {
	registry := steps.Registry()

	if tpl != nil {
		return inputset.Validate(registry.For(tpl), tpl, doc, getString)
	}

	step.Normalize(registry.For(doc), doc)
	return registry.Validate(doc, getString)
}
