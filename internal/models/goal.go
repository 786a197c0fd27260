package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal progress statuses.
const (
	GoalCompleted      = "completed"
	GoalOnTrack        = "on_track"
	GoalNeedsAttention = "needs_attention"
)

// Goal is a savings target. CurrentAmount may exceed TargetAmount; the raw
// value is kept and planning clamps it.
type Goal struct {
	ID            string          `json:"id" yaml:"id"`
	Name          string          `json:"name" yaml:"name"`
	Description   string          `json:"description,omitempty" yaml:"description,omitempty"`
	TargetAmount  decimal.Decimal `json:"target_amount" yaml:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount" yaml:"current_amount"`
	Deadline      Date            `json:"deadline" yaml:"deadline"`
	CreatedAt     time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" yaml:"updated_at"`
	Contributions []Contribution  `json:"contributions,omitempty" yaml:"contributions,omitempty"`
}

// Contribution is an amount added to a goal.
type Contribution struct {
	Amount    decimal.Decimal `json:"amount" yaml:"amount"`
	Note      string          `json:"note,omitempty" yaml:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
}

// Gap is the amount still missing, never negative.
func (g Goal) Gap() decimal.Decimal {
	gap := g.TargetAmount.Sub(g.CurrentAmount)
	if gap.IsNegative() {
		return decimal.Zero
	}
	return gap
}

// ProgressPercent is current/target as a percentage, capped at 100.
func (g Goal) ProgressPercent() float64 {
	if !g.TargetAmount.IsPositive() {
		return 0
	}
	pct := g.CurrentAmount.Div(g.TargetAmount).InexactFloat64() * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// PlannedGoal is a goal annotated by the planner.
type PlannedGoal struct {
	Goal
	Rank               int             `json:"rank" yaml:"rank"`
	MonthsRemaining    int             `json:"months_remaining" yaml:"months_remaining"`
	Overdue            bool            `json:"overdue" yaml:"overdue"`
	Urgency            float64         `json:"urgency" yaml:"urgency"`
	GapRatio           float64         `json:"gap_ratio" yaml:"gap_ratio"`
	PriorityScore      float64         `json:"priority_score" yaml:"priority_score"`
	RequiredMonthly    decimal.Decimal `json:"required_monthly" yaml:"required_monthly"`
	RecommendedMonthly decimal.Decimal `json:"recommended_monthly_contribution" yaml:"recommended_monthly_contribution"`
}

// AllocationPlan is the outcome of distributing monthly savings across goals.
type AllocationPlan struct {
	AvailableMonthly decimal.Decimal `json:"available_monthly_savings" yaml:"available_monthly_savings"`
	Allocated        decimal.Decimal `json:"allocated" yaml:"allocated"`
	Unallocated      decimal.Decimal `json:"unallocated" yaml:"unallocated"`
	Goals            []PlannedGoal   `json:"goals" yaml:"goals"`
}

// Milestone is an intermediate checkpoint of a savings plan.
type Milestone struct {
	Month        int             `json:"month" yaml:"month"`
	TargetAmount decimal.Decimal `json:"target_amount" yaml:"target_amount"`
	Percentage   float64         `json:"percentage" yaml:"percentage"`
}

// SavingsPlan describes how to reach a single goal on its own.
type SavingsPlan struct {
	MonthsRemaining int             `json:"months_remaining" yaml:"months_remaining"`
	RemainingAmount decimal.Decimal `json:"remaining_amount" yaml:"remaining_amount"`
	MonthlyRequired decimal.Decimal `json:"monthly_required" yaml:"monthly_required"`
	// PercentOfIncome is set only when a monthly income was supplied.
	PercentOfIncome *float64    `json:"percent_of_income,omitempty" yaml:"percent_of_income,omitempty"`
	Feasible        bool        `json:"feasible" yaml:"feasible"`
	Warning         string      `json:"warning,omitempty" yaml:"warning,omitempty"`
	Milestones      []Milestone `json:"milestones" yaml:"milestones"`
}

// GoalProgress summarizes how far along a goal is.
type GoalProgress struct {
	Percent float64 `json:"percent" yaml:"percent"`
	Status  string  `json:"status" yaml:"status"`
	Message string  `json:"message" yaml:"message"`
}

// GoalDetails bundles a goal with its progress, standalone plan and
// coaching recommendations.
type GoalDetails struct {
	Goal            Goal         `json:"goal" yaml:"goal"`
	Progress        GoalProgress `json:"progress" yaml:"progress"`
	Plan            SavingsPlan  `json:"plan" yaml:"plan"`
	Recommendations []string     `json:"recommendations" yaml:"recommendations"`
}
