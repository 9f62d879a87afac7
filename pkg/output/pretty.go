package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/iwvelando/car-cost-forecast/internal/forecast"
	"github.com/iwvelando/car-cost-forecast/pkg/costmodel"
	"github.com/iwvelando/car-cost-forecast/pkg/datetime"
	"github.com/iwvelando/car-cost-forecast/pkg/format"
)

var (
	colorAccent = lipgloss.Color("#3AA99F")
	colorBorder = lipgloss.Color("#575653")
	colorTotal  = lipgloss.Color("#879A39")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	totalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTotal)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 {
				return cellStyle
			}
			return cellStyle.Align(lipgloss.Right)
		})
}

func categoryHeader(c costmodel.Category) string {
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, results []forecast.Forecast, opts Options) error {
	symbol := opts.CurrencySymbol
	categories := opts.categories()

	for i, result := range results {
		periods, err := Periods(result, opts)
		if err != nil {
			return err
		}

		period := "Month"
		if opts.Yearly {
			period = "Year"
		}
		headers := []string{period}
		for _, c := range categories {
			headers = append(headers, categoryHeader(c))
		}
		headers = append(headers, "Total")

		t := newTable(headers...)
		for _, p := range periods {
			row := []string{p.Label}
			for _, c := range categories {
				row = append(row, format.Currency(symbol, p.Get(c)))
			}
			row = append(row, format.Currency(symbol, p.Total))
			t.Row(row...)
		}

		summary := result.Summary
		var b strings.Builder
		b.WriteString(titleStyle.Render(fmt.Sprintf("Results for scenario %s", result.Name)))
		b.WriteString("\n")
		if result.Parameters.FinancingYears == 0 {
			b.WriteString("No financing - purchase is paid in cash\n")
		} else {
			fmt.Fprintf(&b, "Monthly loan payment: %s\n", format.Currency(symbol, summary.MonthlyPayment))
		}
		if result.Parameters.BalloonPayment > 0 && result.Parameters.FinancingYears > 0 {
			fmt.Fprintf(&b, "Balloon payment:      %s (due with the last installment, not part of the table totals)\n",
				format.Currency(symbol, result.Parameters.BalloonPayment))
		}
		b.WriteString(t.Render())
		b.WriteString("\n")

		for _, c := range categories {
			fmt.Fprintf(&b, "%-10s %s\n", categoryHeader(c)+":", format.Currency(symbol, summary.ComponentTotals.Get(c)))
		}
		if len(categories) < len(costmodel.AllCategories) {
			fmt.Fprintf(&b, "%s\n", totalStyle.Render(fmt.Sprintf("Selected lifetime cost: %s",
				format.Currency(symbol, SelectedTotal(summary.ComponentTotals, categories)))))
		}
		fmt.Fprintf(&b, "%s\n", totalStyle.Render(fmt.Sprintf("Total lifetime cost: %s",
			format.Currency(symbol, summary.TotalLifetimeCost))))
		if i < len(results)-1 {
			b.WriteString("\n")
		}

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// PrettySchedules outputs each amortization schedule as a table.
func PrettySchedules(w io.Writer, schedules []forecast.Schedule, opts Options) error {
	symbol := opts.CurrencySymbol
	for i, schedule := range schedules {
		var b strings.Builder
		b.WriteString(titleStyle.Render(fmt.Sprintf("Amortization schedule for %s", schedule.Name)))
		b.WriteString("\n")

		if len(schedule.Payments) == 0 {
			b.WriteString("No financing - purchase is paid in cash\n")
		} else {
			t := newTable("Month", "Payment", "Principal", "Interest", "Balloon", "Remaining")
			for _, p := range schedule.Payments {
				label, err := datetime.MonthLabel(schedule.StartDate, p.Month)
				if err != nil {
					return fmt.Errorf("labelling %s: %w", schedule.Name, err)
				}
				balloon := ""
				if p.Balloon > 0 {
					balloon = format.Currency(symbol, p.Balloon)
				}
				t.Row(label,
					format.Currency(symbol, p.Payment),
					format.Currency(symbol, p.Principal),
					format.Currency(symbol, p.Interest),
					balloon,
					format.Currency(symbol, p.RemainingPrincipal),
				)
			}
			b.WriteString(t.Render())
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "Total paid:     %s\n", format.Currency(symbol, schedule.TotalPaid))
		fmt.Fprintf(&b, "Total interest: %s\n", format.Currency(symbol, schedule.TotalInterest))
		if i < len(schedules)-1 {
			b.WriteString("\n")
		}

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}
