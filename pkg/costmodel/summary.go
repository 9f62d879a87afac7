package costmodel

import (
	"fmt"
	"strings"
)

// Category names one of the four cost components.
type Category string

const (
	CategoryFinancing Category = "financing"
	CategoryOperation Category = "operation"
	CategoryInsurance Category = "insurance"
	CategoryFuel      Category = "fuel"
)

// AllCategories lists the cost components in display order.
var AllCategories = []Category{CategoryFinancing, CategoryOperation, CategoryInsurance, CategoryFuel}

// ParseCategory converts a case-insensitive name into a Category.
func ParseCategory(name string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range AllCategories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown cost category %q", name)
}

// MonthlyCostBreakdown holds one month of costs, each share rounded to cents.
// Financing excludes any balloon payment.
type MonthlyCostBreakdown struct {
	Month     int     `json:"month"`
	Financing float64 `json:"financing"`
	Operation float64 `json:"operation"`
	Insurance float64 `json:"insurance"`
	Fuel      float64 `json:"fuel"`
	Total     float64 `json:"total"`
}

// Get returns the share of a single category.
func (m MonthlyCostBreakdown) Get(c Category) float64 {
	switch c {
	case CategoryFinancing:
		return m.Financing
	case CategoryOperation:
		return m.Operation
	case CategoryInsurance:
		return m.Insurance
	case CategoryFuel:
		return m.Fuel
	}
	return 0
}

// ComponentTotals holds the lifetime sum of each category.
type ComponentTotals struct {
	Financing float64 `json:"financing"`
	Operation float64 `json:"operation"`
	Insurance float64 `json:"insurance"`
	Fuel      float64 `json:"fuel"`
}

// Get returns the total of a single category.
func (c ComponentTotals) Get(category Category) float64 {
	switch category {
	case CategoryFinancing:
		return c.Financing
	case CategoryOperation:
		return c.Operation
	case CategoryInsurance:
		return c.Insurance
	case CategoryFuel:
		return c.Fuel
	}
	return 0
}

// Sum adds all four categories.
func (c ComponentTotals) Sum() float64 {
	return c.Financing + c.Operation + c.Insurance + c.Fuel
}

// LifetimeCostSummary is the result of a projection.
//
// TotalLifetimeCost and ComponentTotals.Financing include the balloon payment
// exactly once, so TotalLifetimeCost may exceed the sum of the monthly Total
// fields, which never include it.
type LifetimeCostSummary struct {
	MonthlyPayment    float64                `json:"monthlyPayment"`
	MonthlyBreakdowns []MonthlyCostBreakdown `json:"monthlyBreakdowns"`
	TotalLifetimeCost float64                `json:"totalLifetimeCost"`
	ComponentTotals   ComponentTotals        `json:"componentTotals"`
}

// Months returns the number of projected months.
func (s LifetimeCostSummary) Months() int {
	return len(s.MonthlyBreakdowns)
}
