package main

import (
	"os"

	"github.com/iwvelando/car-cost-forecast/internal/forecast"
	"github.com/iwvelando/car-cost-forecast/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print the loan amortization schedule of every active scenario",
	RunE:  runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
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

	schedules, err := forecast.GetSchedules(logger, *conf)
	if err != nil {
		logger.Error("failed to build amortization schedules",
			zap.String("op", "main.runSchedule"),
			zap.Error(err),
		)
		return err
	}

	return output.WriteSchedules(os.Stdout, outputFormat, schedules, opts)
}
