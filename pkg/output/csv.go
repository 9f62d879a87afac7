package output

import (
	"encoding/csv"
	"io"

	"github.com/iwvelando/car-cost-forecast/internal/forecast"
	"github.com/iwvelando/car-cost-forecast/pkg/datetime"
	"github.com/iwvelando/car-cost-forecast/pkg/format"
)

// CsvFormat outputs in comma-separated value format, one row per scenario and
// period.
func CsvFormat(w io.Writer, results []forecast.Forecast, opts Options) error {
	cw := csv.NewWriter(w)
	categories := opts.categories()

	header := []string{"scenario", "period"}
	for _, c := range categories {
		header = append(header, string(c))
	}
	header = append(header, "total")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, result := range results {
		periods, err := Periods(result, opts)
		if err != nil {
			return err
		}
		for _, p := range periods {
			record := []string{result.Name, p.Label}
			for _, c := range categories {
				record = append(record, format.Plain(p.Get(c)))
			}
			record = append(record, format.Plain(p.Total))
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// CsvSchedules outputs amortization schedules in comma-separated value format.
func CsvSchedules(w io.Writer, schedules []forecast.Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"scenario", "month", "payment", "principal", "interest", "balloon", "remaining"}); err != nil {
		return err
	}
	for _, schedule := range schedules {
		for _, p := range schedule.Payments {
			label, err := datetime.MonthLabel(schedule.StartDate, p.Month)
			if err != nil {
				return err
			}
			record := []string{
				schedule.Name,
				label,
				format.Plain(p.Payment),
				format.Plain(p.Principal),
				format.Plain(p.Interest),
				format.Plain(p.Balloon),
				format.Plain(p.RemainingPrincipal),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
