// Package goals ranks savings goals and distributes a limited monthly
// savings capacity across them.
package goals

import (
	"fmt"
	"sort"
	"time"

	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/dateutils"
	"fjacquet/finance-advisor/internal/models"

	"github.com/shopspring/decimal"
)

// Planner computes priority scores and allocations. The clock is injectable
// so that plans are reproducible.
type Planner struct {
	now func() time.Time
}

// NewPlanner returns a Planner using now, or time.Now when nil.
func NewPlanner(now func() time.Time) *Planner {
	if now == nil {
		now = time.Now
	}
	return &Planner{now: now}
}

// DefaultHorizonMonths applies to goals without a deadline.
const DefaultHorizonMonths = 12

// MonthsRemaining returns the whole months left until deadline, at least 1,
// and whether the deadline has already passed.
func (p *Planner) MonthsRemaining(deadline models.Date) (months int, overdue bool) {
	if deadline.IsZero() {
		return DefaultHorizonMonths, false
	}
	today := models.DateOf(p.now().UTC())
	if deadline.Before(today.Time) {
		return 1, true
	}
	months = dateutils.MonthsBetween(today.Time, deadline.Time)
	if months < 1 {
		months = 1
	}
	return months, false
}

// Score annotates g with its urgency, gap ratio, priority and required
// monthly contribution. CurrentAmount above the target counts as fully
// funded.
func (p *Planner) Score(g models.Goal) models.PlannedGoal {
	months, overdue := p.MonthsRemaining(g.Deadline)
	gap := g.Gap()

	gapRatio := 0.0
	if g.TargetAmount.IsPositive() {
		gapRatio = clamp01(gap.Div(g.TargetAmount).InexactFloat64())
	}
	urgency := 1 / float64(months)

	return models.PlannedGoal{
		Goal:               g,
		MonthsRemaining:    months,
		Overdue:            overdue,
		Urgency:            urgency,
		GapRatio:           gapRatio,
		PriorityScore:      urgency * gapRatio,
		RequiredMonthly:    gap.Div(decimal.NewFromInt(int64(months))).Round(2),
		RecommendedMonthly: decimal.Zero,
	}
}

// Plan ranks goals by priority (ties: earlier deadline, then id) and fills
// them greedily: each goal in turn receives the smaller of its required
// monthly amount and what is left of available. No goal receives more than
// it requires and the total never exceeds available.
func (p *Planner) Plan(goals []models.Goal, available decimal.Decimal) (*models.AllocationPlan, error) {
	if available.IsNegative() {
		return nil, apperror.NewValidationError("available_monthly_savings", available.String(), "must not be negative")
	}
	for i, g := range goals {
		if err := ValidateGoal(g); err != nil {
			return nil, fmt.Errorf("goal %d: %w", i, err)
		}
	}

	planned := make([]models.PlannedGoal, len(goals))
	for i, g := range goals {
		planned[i] = p.Score(g)
	}
	sort.SliceStable(planned, func(i, j int) bool {
		a, b := planned[i], planned[j]
		if a.PriorityScore != b.PriorityScore {
			return a.PriorityScore > b.PriorityScore
		}
		if !a.Deadline.Equal(b.Deadline.Time) {
			return a.Deadline.Before(b.Deadline.Time)
		}
		return a.ID < b.ID
	})

	remaining := available
	for i := range planned {
		give := decimal.Min(planned[i].RequiredMonthly, remaining)
		planned[i].RecommendedMonthly = give
		planned[i].Rank = i + 1
		remaining = remaining.Sub(give)
	}

	return &models.AllocationPlan{
		AvailableMonthly: available,
		Allocated:        available.Sub(remaining),
		Unallocated:      remaining,
		Goals:            planned,
	}, nil
}

// ValidateGoal checks the amounts of a goal.
func ValidateGoal(g models.Goal) error {
	if !g.TargetAmount.IsPositive() {
		return apperror.NewValidationError("target_amount", g.TargetAmount.String(), "must be greater than zero")
	}
	if g.CurrentAmount.IsNegative() {
		return apperror.NewValidationError("current_amount", g.CurrentAmount.String(), "must not be negative")
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
