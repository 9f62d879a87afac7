package projection

import (
	"math"
	"testing"

	"github.com/iwvelando/car-cost-forecast/pkg/costmodel"
	"github.com/iwvelando/car-cost-forecast/pkg/validation"
)

func concreteScenario() costmodel.Parameters {
	return costmodel.Parameters{
		PurchasePrice:       20000,
		MonthlyRunningCost:  100,
		FuelConsumption:     6,
		InterestRate:        0,
		FinancingYears:      5,
		BalloonPayment:      0,
		InsuranceAnnualCost: 600,
		KmPerYear:           12000,
		FuelPrice:           1.80,
		LifetimeYears:       5,
		InflationPercent:    0,
	}
}

func project(t *testing.T, p costmodel.Parameters, monthlyPayment float64) costmodel.LifetimeCostSummary {
	t.Helper()
	summary, err := Project(p.Vehicle(), p.FinancingPlan(), p.InsurancePolicy(), p.UsageProfile(), monthlyPayment)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	return summary
}

func TestProjectConcreteScenario(t *testing.T) {
	summary := project(t, concreteScenario(), 20000.0/60)

	if summary.MonthlyPayment != 333.33 {
		t.Errorf("MonthlyPayment = %.2f, expected 333.33", summary.MonthlyPayment)
	}

	first := summary.MonthlyBreakdowns[0]
	expected := costmodel.MonthlyCostBreakdown{
		Month:     1,
		Financing: 333.33,
		Operation: 100.00,
		Insurance: 50.00,
		Fuel:      108.00,
		Total:     591.33,
	}
	if first != expected {
		t.Errorf("month 1 = %+v, expected %+v", first, expected)
	}

	var monthlySum float64
	for _, m := range summary.MonthlyBreakdowns {
		monthlySum += m.Total
	}
	if math.Abs(monthlySum-35479.80) > 0.001 {
		t.Errorf("sum of monthly totals = %.2f, expected 35479.80", monthlySum)
	}

	// Full precision accumulation recovers the cents lost to monthly rounding.
	if summary.TotalLifetimeCost != 35480.00 {
		t.Errorf("TotalLifetimeCost = %.2f, expected 35480.00", summary.TotalLifetimeCost)
	}

	totals := costmodel.ComponentTotals{Financing: 20000, Operation: 6000, Insurance: 3000, Fuel: 6480}
	if summary.ComponentTotals != totals {
		t.Errorf("ComponentTotals = %+v, expected %+v", summary.ComponentTotals, totals)
	}
}

func TestProjectSequenceLength(t *testing.T) {
	for _, years := range []int{1, 2, 7, 30} {
		p := concreteScenario()
		p.LifetimeYears = years
		summary := project(t, p, 250)

		if summary.Months() != years*12 {
			t.Fatalf("lifetime %d: got %d months, expected %d", years, summary.Months(), years*12)
		}
		for i, m := range summary.MonthlyBreakdowns {
			if m.Month != i+1 {
				t.Fatalf("lifetime %d: entry %d has month %d", years, i, m.Month)
			}
		}
	}
}

func TestProjectBalloonExcludedFromMonthlyTotal(t *testing.T) {
	p := costmodel.Parameters{
		PurchasePrice:  30000,
		FinancingYears: 4,
		BalloonPayment: 6000,
		LifetimeYears:  5,
	}
	summary := project(t, p, 500)

	last := summary.MonthlyBreakdowns[47]
	if last.Financing != 500 || last.Total != 500 {
		t.Errorf("final financed month = %+v, expected financing and total of 500", last)
	}
	if after := summary.MonthlyBreakdowns[48]; after.Financing != 0 {
		t.Errorf("month 49 financing = %.2f, expected 0", after.Financing)
	}

	if summary.ComponentTotals.Financing != 30000 {
		t.Errorf("financing total = %.2f, expected 30000 with balloon", summary.ComponentTotals.Financing)
	}
	if summary.TotalLifetimeCost != 30000 {
		t.Errorf("TotalLifetimeCost = %.2f, expected 30000", summary.TotalLifetimeCost)
	}

	var monthlySum float64
	for _, m := range summary.MonthlyBreakdowns {
		monthlySum += m.Total
	}
	if math.Abs(summary.TotalLifetimeCost-monthlySum-6000) > 0.001 {
		t.Errorf("lifetime total %.2f should exceed monthly sum %.2f by the balloon", summary.TotalLifetimeCost, monthlySum)
	}
}

func TestProjectBalloonBeyondLifetime(t *testing.T) {
	p := concreteScenario()
	p.FinancingYears = 8
	p.BalloonPayment = 4000
	p.LifetimeYears = 5
	summary := project(t, p, 200)

	if summary.ComponentTotals.Financing != 200*60 {
		t.Errorf("financing total = %.2f, expected only the projected installments", summary.ComponentTotals.Financing)
	}
}

func TestProjectInflationMonotonicity(t *testing.T) {
	p := concreteScenario()
	p.InflationPercent = 3
	p.LifetimeYears = 4
	summary := project(t, p, 333.33)

	for year := 0; year < 3; year++ {
		this := summary.MonthlyBreakdowns[year*12]
		next := summary.MonthlyBreakdowns[(year+1)*12]
		for _, c := range []costmodel.Category{costmodel.CategoryOperation, costmodel.CategoryInsurance, costmodel.CategoryFuel} {
			if next.Get(c) <= this.Get(c) {
				t.Errorf("year %d %s = %.2f did not increase from %.2f", year+2, c, next.Get(c), this.Get(c))
			}
		}
		// Within a year the factor stays constant.
		if end := summary.MonthlyBreakdowns[year*12+11]; end.Operation != this.Operation {
			t.Errorf("year %d operation changed inside the year: %.2f vs %.2f", year+1, end.Operation, this.Operation)
		}
	}

	if got := summary.MonthlyBreakdowns[12].Operation; got != 103 {
		t.Errorf("year 2 operation = %.2f, expected 103.00", got)
	}
	if got := summary.MonthlyBreakdowns[24].Operation; got != 106.09 {
		t.Errorf("year 3 operation = %.2f, expected 106.09", got)
	}
}

func TestProjectZeroCostsStayFlat(t *testing.T) {
	p := concreteScenario()
	p.MonthlyRunningCost = 0
	p.InflationPercent = 5
	p.LifetimeYears = 3
	summary := project(t, p, 0)

	for _, m := range summary.MonthlyBreakdowns {
		if m.Operation != 0 || m.Financing != 0 {
			t.Fatalf("month %d expected no operation or financing cost, got %+v", m.Month, m)
		}
	}
}

func TestProjectFuel(t *testing.T) {
	tests := []struct {
		name        string
		consumption float64
		kmPerYear   float64
		expected    float64
	}{
		{"Regular driving", 6, 12000, 108},
		{"No consumption", 0, 12000, 0},
		{"No driving", 6, 0, 0},
		{"Thirsty", 12.5, 24000, 450},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := concreteScenario()
			p.FuelConsumption = tt.consumption
			p.KmPerYear = tt.kmPerYear
			summary := project(t, p, 0)
			if got := summary.MonthlyBreakdowns[0].Fuel; got != tt.expected {
				t.Errorf("fuel = %.2f, expected %.2f", got, tt.expected)
			}
		})
	}
}

func TestProjectCategorySumIdentity(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*costmodel.Parameters)
		payment float64
	}{
		{"Concrete", func(p *costmodel.Parameters) {}, 333.333333},
		{"Inflation and balloon", func(p *costmodel.Parameters) {
			p.InflationPercent = 2.7
			p.BalloonPayment = 3333.33
			p.LifetimeYears = 12
		}, 287.4419},
		{"Deflation", func(p *costmodel.Parameters) {
			p.InflationPercent = -1.3
			p.MonthlyRunningCost = 77.77
			p.InsuranceAnnualCost = 913
		}, 151.019},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := concreteScenario()
			tt.mutate(&p)
			summary := project(t, p, tt.payment)
			tolerance := 0.01 * float64(summary.Months())
			if diff := math.Abs(summary.ComponentTotals.Sum() - summary.TotalLifetimeCost); diff > tolerance {
				t.Errorf("component sum %.2f differs from lifetime total %.2f by %.4f",
					summary.ComponentTotals.Sum(), summary.TotalLifetimeCost, diff)
			}
			for _, m := range summary.MonthlyBreakdowns {
				if math.Abs(m.Financing+m.Operation+m.Insurance+m.Fuel-m.Total) > 1e-9 {
					t.Fatalf("month %d total %.2f is not the sum of its shares", m.Month, m.Total)
				}
			}
		})
	}
}

func TestProjectValidation(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*costmodel.Parameters)
		payment       float64
		expectedField string
	}{
		{"Negative payment", func(p *costmodel.Parameters) {}, -1, FieldMonthlyPayment},
		{"NaN payment", func(p *costmodel.Parameters) {}, math.NaN(), FieldMonthlyPayment},
		{"Infinite payment", func(p *costmodel.Parameters) {}, math.Inf(1), FieldMonthlyPayment},
		{"Zero lifetime", func(p *costmodel.Parameters) { p.LifetimeYears = 0 }, 100, costmodel.FieldLifetimeYears},
		{"Negative fuel price", func(p *costmodel.Parameters) { p.FuelPrice = -2 }, 100, costmodel.FieldFuelPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := concreteScenario()
			tt.mutate(&p)
			_, err := Project(p.Vehicle(), p.FinancingPlan(), p.InsurancePolicy(), p.UsageProfile(), tt.payment)
			verr, ok := validation.AsValidationError(err)
			if !ok {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.expectedField {
				t.Errorf("field = %s, expected %s", verr.Field, tt.expectedField)
			}
		})
	}
}

func TestMonthsMatchesProject(t *testing.T) {
	p := concreteScenario()
	p.InflationPercent = 4
	p.BalloonPayment = 2000
	summary := project(t, p, 300)

	i := 0
	for m := range Months(p.Vehicle(), p.FinancingPlan(), p.InsurancePolicy(), p.UsageProfile(), 300) {
		if m != summary.MonthlyBreakdowns[i] {
			t.Fatalf("month %d: Months() = %+v, Project() = %+v", i+1, m, summary.MonthlyBreakdowns[i])
		}
		i++
	}
	if i != summary.Months() {
		t.Errorf("Months() yielded %d entries, expected %d", i, summary.Months())
	}
}

func TestMonthsStopsEarly(t *testing.T) {
	p := concreteScenario()
	count := 0
	for m := range Months(p.Vehicle(), p.FinancingPlan(), p.InsurancePolicy(), p.UsageProfile(), 100) {
		count++
		if m.Month == 3 {
			break
		}
	}
	if count != 3 {
		t.Errorf("expected iteration to stop after 3 months, got %d", count)
	}
}
