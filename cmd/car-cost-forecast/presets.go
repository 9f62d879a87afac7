package main

import (
	"context"
	"fmt"
	"os"

	"github.com/iwvelando/car-cost-forecast/internal/config"
	"github.com/iwvelando/car-cost-forecast/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Manage named parameter presets",
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withPresets(cmd.Context(), func(_ *config.Configuration, presets store.Store) error {
			names, err := presets.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		})
	},
}

var presetsShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a stored preset as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPresets(cmd.Context(), func(_ *config.Configuration, presets store.Store) error {
			params, err := presets.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			if err := enc.Encode(params); err != nil {
				return err
			}
			return enc.Close()
		})
	},
}

var presetsSaveCmd = &cobra.Command{
	Use:   "save NAME",
	Short: "Store the inline parameters of a configured scenario as a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scenarioName, err := cmd.Flags().GetString("scenario")
		if err != nil {
			return err
		}
		if scenarioName == "" {
			scenarioName = args[0]
		}

		return withPresets(cmd.Context(), func(conf *config.Configuration, presets store.Store) error {
			for _, scenario := range conf.Scenarios {
				if scenario.Name != scenarioName {
					continue
				}
				if scenario.Preset != "" {
					return fmt.Errorf("scenario %s has no inline parameters, it uses preset %q", scenario.Name, scenario.Preset)
				}
				if err := scenario.Parameters.Validate(); err != nil {
					return fmt.Errorf("scenario %s: %w", scenario.Name, err)
				}
				return presets.Save(cmd.Context(), args[0], scenario.Parameters)
			}
			return fmt.Errorf("scenario %s not found in configuration", scenarioName)
		})
	},
}

var presetsDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Remove a stored preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPresets(cmd.Context(), func(_ *config.Configuration, presets store.Store) error {
			return presets.Delete(cmd.Context(), args[0])
		})
	},
}

func init() {
	presetsSaveCmd.Flags().String("scenario", "", "scenario to copy parameters from (defaults to NAME)")

	presetsCmd.AddCommand(presetsListCmd, presetsShowCmd, presetsSaveCmd, presetsDeleteCmd)
	rootCmd.AddCommand(presetsCmd)
}

// withPresets opens the preset store configured in --config for the duration of fn.
func withPresets(ctx context.Context, fn func(*config.Configuration, store.Store) error) error {
	conf, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	presets, err := store.New(ctx, logger, conf.Store)
	if err != nil {
		return fmt.Errorf("failed to open preset store: %w", err)
	}
	defer func() {
		if err := presets.Close(); err != nil {
			logger.Warn("failed to close preset store",
				zap.String("op", "main.withPresets"),
				zap.Error(err),
			)
		}
	}()

	return fn(conf, presets)
}
