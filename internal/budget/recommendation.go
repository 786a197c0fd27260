package budget

import (
	"fjacquet/finance-advisor/internal/models"

	"github.com/shopspring/decimal"
)

// Shares of the 50/30/20 rule.
var (
	needsShare   = decimal.RequireFromString("0.50")
	wantsShare   = decimal.RequireFromString("0.30")
	savingsShare = decimal.RequireFromString("0.20")
)

// Recommend splits monthlyIncome by the 50/30/20 rule and reports actual
// spend per bucket next to it.
func Recommend(monthlyIncome decimal.Decimal, byCategory map[string]decimal.Decimal) *models.BudgetRecommendation {
	rec := &models.BudgetRecommendation{
		MonthlyIncome: monthlyIncome,
		Needs:         monthlyIncome.Mul(needsShare).Round(2),
		Wants:         monthlyIncome.Mul(wantsShare).Round(2),
		Savings:       monthlyIncome.Mul(savingsShare).Round(2),
		ActualNeeds:   decimal.Zero,
		ActualWants:   decimal.Zero,
		ActualSavings: decimal.Zero,
	}

	for category, amount := range byCategory {
		switch models.BudgetBucket(category) {
		case models.BucketNeeds:
			rec.ActualNeeds = rec.ActualNeeds.Add(amount)
		case models.BucketSavings:
			rec.ActualSavings = rec.ActualSavings.Add(amount)
		default:
			rec.ActualWants = rec.ActualWants.Add(amount)
		}
	}
	return rec
}
