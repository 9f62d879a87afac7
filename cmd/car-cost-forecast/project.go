package main

import (
	"os"

	"github.com/iwvelando/car-cost-forecast/internal/config"
	"github.com/iwvelando/car-cost-forecast/internal/forecast"
	"github.com/iwvelando/car-cost-forecast/pkg/output"
	"github.com/iwvelando/car-cost-forecast/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project the lifetime cost of every active scenario",
	RunE:  runProject,
}

func init() {
	rootCmd.AddCommand(projectCmd)
}

// outputSettings applies the --output-format override and parses categories.
func outputSettings(conf *config.Configuration) (string, output.Options, error) {
	outputFormat := conf.Output.Format
	if override := settings.GetString("output-format"); override != "" {
		outputFormat = override
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return "", output.Options{}, err
	}

	categories, err := conf.Output.ParsedCategories()
	if err != nil {
		return "", output.Options{}, err
	}
	return outputFormat, output.Options{
		Categories:     categories,
		Yearly:         conf.Output.Yearly,
		CurrencySymbol: conf.Output.CurrencySymbol,
	}, nil
}

func runProject(cmd *cobra.Command, _ []string) error {
	conf, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat, opts, err := outputSettings(conf)
	if err != nil {
		return err
	}
	if err := prepare(cmd.Context(), logger, conf); err != nil {
		return err
	}

	results, err := forecast.GetForecast(logger, *conf)
	if err != nil {
		logger.Error("failed to compute forecast",
			zap.String("op", "main.runProject"),
			zap.Error(err),
		)
		return err
	}

	return output.Write(os.Stdout, outputFormat, results, opts)
}
