package output

import (
	"encoding/json"
	"io"

	"github.com/iwvelando/car-cost-forecast/internal/forecast"
	"github.com/iwvelando/car-cost-forecast/pkg/costmodel"
)

// Report is the JSON document written for a single forecast.
type Report struct {
	forecast.Forecast
	Periods       []Period `json:"periods,omitempty"`
	SelectedTotal *float64 `json:"selectedTotal,omitempty"`
}

// NewReport attaches the display-side figures requested by opts to a forecast.
// Yearly roll-ups and category selections never change the summary itself.
func NewReport(result forecast.Forecast, opts Options) (Report, error) {
	report := Report{Forecast: result}
	if opts.Yearly {
		periods, err := Periods(result, opts)
		if err != nil {
			return Report{}, err
		}
		report.Periods = periods
	}
	if len(opts.Categories) > 0 && len(opts.Categories) < len(costmodel.AllCategories) {
		total := SelectedTotal(result.Summary.ComponentTotals, opts.Categories)
		report.SelectedTotal = &total
	}
	return report, nil
}

// JSONFormat outputs the forecasts as an indented JSON array.
func JSONFormat(w io.Writer, results []forecast.Forecast, opts Options) error {
	reports := make([]Report, 0, len(results))
	for _, result := range results {
		report, err := NewReport(result, opts)
		if err != nil {
			return err
		}
		reports = append(reports, report)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

// JSONSchedules outputs amortization schedules as an indented JSON array.
func JSONSchedules(w io.Writer, schedules []forecast.Schedule) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(schedules)
}
