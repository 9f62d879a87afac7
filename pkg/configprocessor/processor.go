// Package configprocessor provides shared configuration processing utilities.
package configprocessor

import (
	"fmt"

	"github.com/iwvelando/car-cost-forecast/pkg/costmodel"
	"github.com/iwvelando/car-cost-forecast/pkg/datetime"
	"github.com/iwvelando/car-cost-forecast/pkg/validation"
)

// ScenarioInfo represents scenario configuration information
type ScenarioInfo struct {
	Name       string
	Active     bool
	StartDate  string
	Preset     string
	Parameters costmodel.Parameters
}

// Processor handles configuration processing and validation
type Processor struct{}

// NewProcessor creates a new configuration processor
func NewProcessor() *Processor {
	return &Processor{}
}

// ValidateConfiguration validates the configuration and returns warnings. Hard
// errors such as negative prices are left to the projection itself.
func (p *Processor) ValidateConfiguration(scenarios []ScenarioInfo) []string {
	var warnings []string

	active := 0
	seen := make(map[string]bool)
	for _, scenario := range scenarios {
		if seen[scenario.Name] {
			warnings = append(warnings, fmt.Sprintf("Scenario name '%s' is used more than once", scenario.Name))
		}
		seen[scenario.Name] = true

		if !scenario.Active {
			continue // Skip inactive scenarios
		}
		active++

		if err := datetime.ValidateStartDate(scenario.StartDate); err != nil {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' %v - months will be numbered instead", scenario.Name, err))
		}

		// Presets are resolved later; their values are checked once loaded.
		if scenario.Preset != "" {
			continue
		}

		params := scenario.Parameters
		if w := validation.ValidateBalloon(scenario.Name, params.BalloonPayment, params.PurchasePrice); w != "" {
			warnings = append(warnings, w)
		}
		if w := validation.ValidateFinancingHorizon(scenario.Name, params.FinancingYears, params.LifetimeYears); w != "" {
			warnings = append(warnings, w)
		}
	}

	if len(scenarios) > 0 && active == 0 {
		warnings = append(warnings, "No scenario is active - nothing will be projected")
	}

	if len(warnings) == 0 {
		return nil
	}
	return warnings
}
