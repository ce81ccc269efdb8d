package helper

import (
	"github.com/urfave/cli/v3"

	"github.com/hashicorp-forge/pipeline-steps/pkg/api/v1"
)

const (
	addressCLIFlag  = "address"
	namespaceFlag   = "namespace"
	languageCLIFlag = "language"

	ClientFlagsWithNamespace    = true
	ClientFlagsWithoutNamespace = false
)

func ClientFlags(namespace bool) []cli.Flag {
	f := []cli.Flag{
		&cli.StringFlag{
			Aliases: []string{"a"},
			Sources: cli.EnvVars("PIPELINE_STEPS_ADDR"),
			Name:    addressCLIFlag,
			Value:   "http://127.0.0.1:8080",
			Usage:   "Pipeline steps server address to make API requests to",
		},
		&cli.StringFlag{
			Sources: cli.EnvVars("PIPELINE_STEPS_LANGUAGE"),
			Name:    languageCLIFlag,
			Usage:   "Language of labels and validation messages, such as en or de",
		},
	}

	if namespace {
		f = append(f, &cli.StringFlag{
			Aliases: []string{"n"},
			Sources: cli.EnvVars("PIPELINE_STEPS_NAMESPACE"),
			Name:    namespaceFlag,
			Value:   api.DefaultNamespace,
			Usage:   "Pipeline steps namespace to make API requests to",
		})
	}

	return f
}

func ClientConfigFromFlags(cmd *cli.Command) *api.Config {

	defaultConfig := api.DefaultConfig()

	if addr := cmd.String(addressCLIFlag); addr != "" {
		defaultConfig.Address = addr
	}
	if namespace := cmd.String(namespaceFlag); namespace != "" {
		defaultConfig.Namespace = namespace
	}
	if language := cmd.String(languageCLIFlag); language != "" {
		defaultConfig.Language = language
	}

	return defaultConfig
}
