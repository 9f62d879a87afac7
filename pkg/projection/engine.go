package projection

import (
	"fmt"

	"github.com/iwvelando/car-cost-forecast/pkg/costmodel"
	"github.com/iwvelando/car-cost-forecast/pkg/loans"
	"go.uber.org/zap"
)

// Engine coordinates the payment calculation and the cost projection for a
// single parameter record.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a new projection engine.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Run validates the parameters, computes the monthly loan payment on the
// purchase price and projects the lifetime costs.
func (e *Engine) Run(params costmodel.Parameters) (costmodel.LifetimeCostSummary, error) {
	v, plan, ins, usage, err := params.Inputs()
	if err != nil {
		e.logger.Debug("rejected projection parameters",
			zap.String("op", "projection.Run"),
			zap.Error(err),
		)
		return costmodel.LifetimeCostSummary{}, err
	}

	monthlyPayment, err := loans.CalculateMonthlyPayment(v.PurchasePrice, plan.AnnualInterestRatePercent, plan.DurationYears, plan.BalloonPayment)
	if err != nil {
		e.logger.Debug("monthly payment calculation failed",
			zap.String("op", "projection.Run"),
			zap.String("kind", ErrorKind(err)),
			zap.Error(err),
		)
		return costmodel.LifetimeCostSummary{}, fmt.Errorf("calculating monthly payment: %w", err)
	}

	summary, err := Project(v, plan, ins, usage, monthlyPayment)
	if err != nil {
		return costmodel.LifetimeCostSummary{}, err
	}

	e.logger.Debug(fmt.Sprintf("projected %d months with a monthly payment of %.2f", summary.Months(), summary.MonthlyPayment),
		zap.String("op", "projection.Run"),
		zap.Float64("totalLifetimeCost", summary.TotalLifetimeCost),
	)
	return summary, nil
}
