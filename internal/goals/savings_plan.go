package goals

import (
	"fmt"

	"fjacquet/finance-advisor/internal/models"

	"github.com/shopspring/decimal"
)

// Share of monthly income above which a plan is flagged.
const (
	warnIncomeShare       = 30.0
	infeasibleIncomeShare = 50.0
	milestoneEveryMonths  = 3
)

// SavingsPlan computes what reaching g on its own would take. When
// monthlyIncome is given the plan is checked against it: above 30% of income
// it carries a warning, above 50% it is not feasible.
func (p *Planner) SavingsPlan(g models.Goal, monthlyIncome *decimal.Decimal) models.SavingsPlan {
	scored := p.Score(g)
	plan := models.SavingsPlan{
		MonthsRemaining: scored.MonthsRemaining,
		RemainingAmount: g.Gap(),
		MonthlyRequired: scored.RequiredMonthly,
		Feasible:        true,
		Milestones:      milestones(g, scored.RequiredMonthly, scored.MonthsRemaining),
	}
	if scored.Overdue && plan.RemainingAmount.IsPositive() {
		plan.Warning = "The deadline has passed; the remaining amount is due now."
	}

	if monthlyIncome != nil && monthlyIncome.IsPositive() {
		pct := plan.MonthlyRequired.Div(*monthlyIncome).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
		plan.PercentOfIncome = &pct
		switch {
		case pct > infeasibleIncomeShare:
			plan.Feasible = false
			plan.Warning = fmt.Sprintf("This goal requires %.1f%% of your income, which may not be sustainable.", pct)
		case pct > warnIncomeShare:
			plan.Warning = fmt.Sprintf("This goal requires %.1f%% of your income. Consider extending the deadline.", pct)
		}
	}
	return plan
}

// milestones places a checkpoint every quarter and one at the deadline.
func milestones(g models.Goal, monthly decimal.Decimal, months int) []models.Milestone {
	out := []models.Milestone{}
	if !g.Gap().IsPositive() {
		return out
	}
	for m := milestoneEveryMonths; ; m += milestoneEveryMonths {
		if m > months {
			m = months
		}
		target := decimal.Min(g.CurrentAmount.Add(monthly.Mul(decimal.NewFromInt(int64(m)))), g.TargetAmount)
		if m == months {
			target = g.TargetAmount
		}
		out = append(out, models.Milestone{
			Month:        m,
			TargetAmount: target.Round(2),
			Percentage:   target.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64(),
		})
		if m == months {
			return out
		}
	}
}

// Progress reports how far along g is.
func Progress(g models.Goal) models.GoalProgress {
	pct := g.ProgressPercent()
	progress := models.GoalProgress{Percent: decimal.NewFromFloat(pct).Round(1).InexactFloat64()}
	switch {
	case pct >= 100:
		progress.Status = models.GoalCompleted
		progress.Message = "Goal achieved!"
	case pct >= 75:
		progress.Status = models.GoalOnTrack
		progress.Message = "Great progress! You're almost there."
	case pct >= 50:
		progress.Status = models.GoalOnTrack
		progress.Message = "You're halfway to your goal!"
	case pct >= 25:
		progress.Status = models.GoalNeedsAttention
		progress.Message = "Keep going, you're making progress."
	default:
		progress.Status = models.GoalNeedsAttention
		progress.Message = "Consider increasing your monthly savings to stay on track."
	}
	return progress
}
