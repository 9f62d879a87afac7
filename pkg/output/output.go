// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"fmt"
	"io"

	"github.com/iwvelando/car-cost-forecast/internal/forecast"
	"github.com/iwvelando/car-cost-forecast/pkg/constants"
	"github.com/iwvelando/car-cost-forecast/pkg/costmodel"
	"github.com/iwvelando/car-cost-forecast/pkg/datetime"
	"github.com/iwvelando/car-cost-forecast/pkg/mathutil"
)

// Options controls which parts of a forecast are rendered.
type Options struct {
	Categories     []costmodel.Category
	Yearly         bool
	CurrencySymbol string
}

func (o Options) categories() []costmodel.Category {
	if len(o.Categories) == 0 {
		return costmodel.AllCategories
	}
	return o.Categories
}

// Period is one row of rendered output: a month or a year.
type Period struct {
	Label     string  `json:"label"`
	Financing float64 `json:"financing"`
	Operation float64 `json:"operation"`
	Insurance float64 `json:"insurance"`
	Fuel      float64 `json:"fuel"`
	Total     float64 `json:"total"`
}

// Get returns the share of a single category.
func (p Period) Get(c costmodel.Category) float64 {
	return costmodel.MonthlyCostBreakdown{
		Financing: p.Financing,
		Operation: p.Operation,
		Insurance: p.Insurance,
		Fuel:      p.Fuel,
	}.Get(c)
}

// SelectedTotal sums the given categories of a lifetime total. It is the
// display-side total shown when only some categories are rendered.
func SelectedTotal(totals costmodel.ComponentTotals, categories []costmodel.Category) float64 {
	var sum float64
	for _, c := range categories {
		sum += totals.Get(c)
	}
	return mathutil.Round(sum)
}

// Yearly rolls the monthly breakdowns up into one period per year. Like the
// monthly figures, yearly totals exclude any balloon payment.
func Yearly(summary costmodel.LifetimeCostSummary, startDate string) ([]Period, error) {
	var periods []Period
	for i, m := range summary.MonthlyBreakdowns {
		if i%constants.MonthsPerYear == 0 {
			label, err := datetime.YearLabel(startDate, i/constants.MonthsPerYear+1)
			if err != nil {
				return nil, err
			}
			periods = append(periods, Period{Label: label})
		}
		p := &periods[len(periods)-1]
		p.Financing += m.Financing
		p.Operation += m.Operation
		p.Insurance += m.Insurance
		p.Fuel += m.Fuel
		p.Total += m.Total
	}
	for i := range periods {
		p := &periods[i]
		p.Financing = mathutil.Round(p.Financing)
		p.Operation = mathutil.Round(p.Operation)
		p.Insurance = mathutil.Round(p.Insurance)
		p.Fuel = mathutil.Round(p.Fuel)
		p.Total = mathutil.Round(p.Total)
	}
	return periods, nil
}

// Monthly labels every monthly breakdown.
func Monthly(summary costmodel.LifetimeCostSummary, startDate string) ([]Period, error) {
	periods := make([]Period, 0, summary.Months())
	for _, m := range summary.MonthlyBreakdowns {
		label, err := datetime.MonthLabel(startDate, m.Month)
		if err != nil {
			return nil, err
		}
		periods = append(periods, Period{
			Label:     label,
			Financing: m.Financing,
			Operation: m.Operation,
			Insurance: m.Insurance,
			Fuel:      m.Fuel,
			Total:     m.Total,
		})
	}
	return periods, nil
}

// Periods returns the rows of a forecast according to opts. The Total column
// only covers the selected categories.
func Periods(result forecast.Forecast, opts Options) ([]Period, error) {
	var periods []Period
	var err error
	if opts.Yearly {
		periods, err = Yearly(result.Summary, result.StartDate)
	} else {
		periods, err = Monthly(result.Summary, result.StartDate)
	}
	if err != nil {
		return nil, fmt.Errorf("labelling %s: %w", result.Name, err)
	}

	if len(opts.Categories) == 0 {
		return periods, nil
	}
	for i := range periods {
		var sum float64
		for _, c := range opts.categories() {
			sum += periods[i].Get(c)
		}
		periods[i].Total = mathutil.Round(sum)
	}
	return periods, nil
}

// Write renders forecasts in the given output format.
func Write(w io.Writer, format string, results []forecast.Forecast, opts Options) error {
	switch format {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, results, opts)
	case constants.OutputFormatCSV:
		return CsvFormat(w, results, opts)
	case constants.OutputFormatJSON:
		return JSONFormat(w, results, opts)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// WriteSchedules renders amortization schedules in the given output format.
func WriteSchedules(w io.Writer, format string, schedules []forecast.Schedule, opts Options) error {
	switch format {
	case constants.OutputFormatPretty:
		return PrettySchedules(w, schedules, opts)
	case constants.OutputFormatCSV:
		return CsvSchedules(w, schedules)
	case constants.OutputFormatJSON:
		return JSONSchedules(w, schedules)
	}
	return fmt.Errorf("unsupported output format %q", format)
}
