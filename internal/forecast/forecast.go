// Package forecast defines the data structures related to a given forecast and
// includes functions for computing the forecasts.
package forecast

import (
	"fmt"

	"github.com/iwvelando/car-cost-forecast/internal/config"
	"github.com/iwvelando/car-cost-forecast/pkg/costmodel"
	"github.com/iwvelando/car-cost-forecast/pkg/loans"
	"github.com/iwvelando/car-cost-forecast/pkg/projection"
	"go.uber.org/zap"
)

// Forecast holds all information related to a specific forecast.
type Forecast struct {
	Name       string                        `json:"name"`
	StartDate  string                        `json:"startDate,omitempty"`
	Parameters costmodel.Parameters          `json:"parameters"`
	Summary    costmodel.LifetimeCostSummary `json:"summary"`
}

// Schedule holds the amortization schedule of a scenario's loan.
type Schedule struct {
	Name          string          `json:"name"`
	StartDate     string          `json:"startDate,omitempty"`
	Payments      []loans.Payment `json:"payments"`
	TotalPaid     float64         `json:"totalPaid"`
	TotalInterest float64         `json:"totalInterest"`
}

// GetForecast processes the Forecasts for all active Scenarios. Presets must
// already be resolved.
func GetForecast(logger *zap.Logger, conf config.Configuration) ([]Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := projection.NewEngine(logger)
	var results []Forecast
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "forecast.GetForecast"),
			)
			continue
		}

		summary, err := engine.Run(scenario.Parameters)
		if err != nil {
			return results, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}

		results = append(results, Forecast{
			Name:       scenario.Name,
			StartDate:  scenario.StartDate,
			Parameters: scenario.Parameters,
			Summary:    summary,
		})
	}

	return results, nil
}

// GetSchedules builds the amortization schedule for every active scenario.
// Cash purchases yield an empty schedule.
func GetSchedules(logger *zap.Logger, conf config.Configuration) ([]Schedule, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	generator := loans.NewAmortizationScheduleGenerator(logger)
	var results []Schedule
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			continue
		}
		schedule, err := BuildSchedule(generator, scenario.Name, scenario.Parameters)
		if err != nil {
			return results, err
		}
		schedule.StartDate = scenario.StartDate
		results = append(results, schedule)
	}
	return results, nil
}

// BuildSchedule validates params and generates the loan schedule for them.
func BuildSchedule(generator *loans.AmortizationScheduleGenerator, name string, params costmodel.Parameters) (Schedule, error) {
	v, plan, _, _, err := params.Inputs()
	if err != nil {
		return Schedule{}, fmt.Errorf("scenario %s: %w", name, err)
	}
	payments, err := generator.GenerateSchedule(loans.LoanConfigFromPlan(name, v, plan))
	if err != nil {
		return Schedule{}, fmt.Errorf("scenario %s: %w", name, err)
	}
	totalPaid, totalInterest := loans.ScheduleTotals(payments)
	return Schedule{
		Name:          name,
		Payments:      payments,
		TotalPaid:     totalPaid,
		TotalInterest: totalInterest,
	}, nil
}
