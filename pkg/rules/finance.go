package rules

import (
	"github.com/shopspring/decimal"

	"p9e.in/sitecore/models"
)

// FinanceSummary is the portfolio-wide money position.
type FinanceSummary struct {
	TotalInvested float64 `json:"totalInvested"`
	AbleToBill    float64 `json:"ableToBill"`
	Pending       float64 `json:"pending"`
	// Two-decimal rendering, e.g. "63.33"
	Efficiency      string  `json:"efficiency"`
	EfficiencyValue float64 `json:"efficiencyValue"`
	ProjectCount    int     `json:"projectCount"`
}

var hundred = decimal.NewFromInt(100)

// AggregateFinances folds every record into one summary. Efficiency is
// ableToBill / totalInvested * 100, or 0 when nothing has been invested.
func AggregateFinances(records []models.Finance) FinanceSummary {
	invested := decimal.Zero
	billable := decimal.Zero
	for i := range records {
		invested = invested.Add(decimal.NewFromFloat(records[i].TotalInvested))
		billable = billable.Add(decimal.NewFromFloat(records[i].AbleToBill))
	}

	efficiency := decimal.Zero
	if invested.IsPositive() {
		efficiency = billable.Div(invested).Mul(hundred)
	}
	efficiency = efficiency.Round(2)

	return FinanceSummary{
		TotalInvested:   invested.InexactFloat64(),
		AbleToBill:      billable.InexactFloat64(),
		Pending:         invested.Sub(billable).InexactFloat64(),
		Efficiency:      efficiency.StringFixed(2),
		EfficiencyValue: efficiency.InexactFloat64(),
		ProjectCount:    len(records),
	}
}
