// Package config defines the data structures related to configuration and
// includes functions for loading, validating and resolving the config.
package config

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/car-cost-forecast/pkg/configprocessor"
	"github.com/iwvelando/car-cost-forecast/pkg/constants"
	"github.com/iwvelando/car-cost-forecast/pkg/costmodel"
	"github.com/iwvelando/car-cost-forecast/pkg/validation"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = constants.DateTimeLayout

// EnvPrefix prefixes environment variables that override configuration keys,
// e.g. CAR_COST_FORECAST_OUTPUT_FORMAT.
const EnvPrefix = "CAR_COST_FORECAST"

// Configuration holds all configuration for car-cost-forecast.
type Configuration struct {
	Logging   LoggingConfig `yaml:"logging,omitempty" mapstructure:"logging"`
	Output    OutputConfig  `yaml:"output,omitempty" mapstructure:"output"`
	Store     StoreConfig   `yaml:"store,omitempty" mapstructure:"store"`
	Scenarios []Scenario    `yaml:"scenarios" mapstructure:"scenarios"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format         string   `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
	Categories     []string `yaml:"categories,omitempty" mapstructure:"categories"`
	Yearly         bool     `yaml:"yearly,omitempty" mapstructure:"yearly"`
	CurrencySymbol string   `yaml:"currencySymbol,omitempty" mapstructure:"currencySymbol"`
}

// StoreConfig selects where named parameter presets are kept.
type StoreConfig struct {
	Backend       string `yaml:"backend,omitempty" mapstructure:"backend"` // file, sqlite, redis
	Path          string `yaml:"path,omitempty" mapstructure:"path"`
	RedisAddr     string `yaml:"redisAddr,omitempty" mapstructure:"redisAddr"`
	RedisPassword string `yaml:"redisPassword,omitempty" mapstructure:"redisPassword"`
	RedisDB       int    `yaml:"redisDB,omitempty" mapstructure:"redisDB"`
	RedisPrefix   string `yaml:"redisPrefix,omitempty" mapstructure:"redisPrefix"`
}

// Scenario holds one vehicle purchase to project. Parameters come either inline
// or from the preset store when Preset is set.
type Scenario struct {
	Name       string               `yaml:"name" mapstructure:"name"`
	Active     bool                 `yaml:"active" mapstructure:"active"`
	StartDate  string               `yaml:"startDate,omitempty" mapstructure:"startDate"`
	Preset     string               `yaml:"preset,omitempty" mapstructure:"preset"`
	Parameters costmodel.Parameters `yaml:"parameters,omitempty" mapstructure:"parameters"`
}

// PresetLoader looks up named parameter records.
type PresetLoader interface {
	Load(ctx context.Context, name string) (costmodel.Parameters, error)
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	configuration.applyDefaults()
	return &configuration, nil
}

func (c *Configuration) applyDefaults() {
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
	if c.Store.Backend == "" {
		c.Store.Backend = constants.StoreBackendFile
	}
	if c.Store.Path == "" {
		switch c.Store.Backend {
		case constants.StoreBackendFile:
			c.Store.Path = constants.DefaultPresetFile
		case constants.StoreBackendSQLite:
			c.Store.Path = constants.DefaultPresetDatabase
		}
	}
	if c.Store.Backend == constants.StoreBackendRedis && c.Store.RedisAddr == "" {
		c.Store.RedisAddr = constants.DefaultRedisAddr
	}
	if c.Store.RedisPrefix == "" {
		c.Store.RedisPrefix = constants.DefaultRedisPrefix
	}
}

// ParsedCategories returns the configured output categories, or all of them when
// none are configured. Repeats are dropped so no category is counted twice.
func (o OutputConfig) ParsedCategories() ([]costmodel.Category, error) {
	if len(o.Categories) == 0 {
		return costmodel.AllCategories, nil
	}
	seen := make(map[costmodel.Category]bool, len(o.Categories))
	categories := make([]costmodel.Category, 0, len(o.Categories))
	for _, name := range o.Categories {
		c, err := costmodel.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		categories = append(categories, c)
	}
	return categories, nil
}

// Validate rejects settings that would make the run fail later on.
func (c *Configuration) Validate() error {
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}
	if _, err := c.Output.ParsedCategories(); err != nil {
		return err
	}
	switch c.Store.Backend {
	case constants.StoreBackendFile, constants.StoreBackendSQLite, constants.StoreBackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	for _, scenario := range c.Scenarios {
		if scenario.Name == "" {
			return fmt.Errorf("every scenario needs a name")
		}
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	scenarios := make([]configprocessor.ScenarioInfo, 0, len(c.Scenarios))
	for _, scenario := range c.Scenarios {
		scenarios = append(scenarios, configprocessor.ScenarioInfo{
			Name:       scenario.Name,
			Active:     scenario.Active,
			StartDate:  scenario.StartDate,
			Preset:     scenario.Preset,
			Parameters: scenario.Parameters,
		})
	}

	processor := configprocessor.NewProcessor()
	return processor.ValidateConfiguration(scenarios)
}

// ResolvePresets loads the parameters of every active scenario that names a
// preset. Inline parameters and a preset are mutually exclusive.
func (c *Configuration) ResolvePresets(ctx context.Context, loader PresetLoader) error {
	for i := range c.Scenarios {
		scenario := &c.Scenarios[i]
		if !scenario.Active || scenario.Preset == "" {
			continue
		}
		if scenario.Parameters != (costmodel.Parameters{}) {
			return fmt.Errorf("scenario %s sets both preset %q and inline parameters", scenario.Name, scenario.Preset)
		}
		if loader == nil {
			return fmt.Errorf("scenario %s uses preset %q but no preset store is configured", scenario.Name, scenario.Preset)
		}
		params, err := loader.Load(ctx, scenario.Preset)
		if err != nil {
			return fmt.Errorf("loading preset %q for scenario %s: %w", scenario.Preset, scenario.Name, err)
		}
		scenario.Parameters = params
	}
	return nil
}

// HasPresets reports whether any active scenario needs the preset store.
func (c *Configuration) HasPresets() bool {
	for _, scenario := range c.Scenarios {
		if scenario.Active && scenario.Preset != "" {
			return true
		}
	}
	return false
}
