// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/car-cost-forecast/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the output
	// date format.
	DateTimeLayout = constants.DateTimeLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// ValidateStartDate checks that a start date uses DateTimeLayout. An empty date
// is allowed and means months are shown by number.
func ValidateStartDate(date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse(DateTimeLayout, date); err != nil {
		return fmt.Errorf("start date %q must use the YYYY-MM format: %w", date, err)
	}
	return nil
}

// MonthLabel names a 1-based projection month. Month 1 is the start date
// itself; without a usable start date the label is "month N".
func MonthLabel(startDate string, month int) (string, error) {
	if startDate == "" || ValidateStartDate(startDate) != nil {
		return fmt.Sprintf("month %d", month), nil
	}
	return OffsetDate(startDate, DateTimeLayout, month-1)
}

// YearLabel names a 1-based projection year, using the calendar year of its
// first month when a usable start date is known and "year N" otherwise.
func YearLabel(startDate string, year int) (string, error) {
	if startDate == "" || ValidateStartDate(startDate) != nil {
		return fmt.Sprintf("year %d", year), nil
	}
	date, err := OffsetDate(startDate, DateTimeLayout, (year-1)*constants.MonthsPerYear)
	if err != nil {
		return "", err
	}
	return MustParseTime(DateTimeLayout, date).Format("2006"), nil
}
