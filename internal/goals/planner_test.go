package goals

import (
	"fmt"
	"testing"
	"time"

	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func goal(id, target, current string, deadline models.Date) models.Goal {
	return models.Goal{ID: id, Name: id, TargetAmount: dec(target), CurrentAmount: dec(current), Deadline: deadline}
}

func TestPlan_Scenario(t *testing.T) {
	p := NewPlanner(clock)
	plan, err := p.Plan([]models.Goal{
		goal("g2", "10000", "8000", models.NewDate(2024, time.May, 15)),
		goal("g1", "10000", "1000", models.NewDate(2024, time.July, 15)),
	}, dec("1000"))
	require.NoError(t, err)
	require.Len(t, plan.Goals, 2)

	first, second := plan.Goals[0], plan.Goals[1]
	assert.Equal(t, "g1", first.ID)
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, 6, first.MonthsRemaining)
	assert.InDelta(t, 0.15, first.PriorityScore, 1e-9)
	assert.True(t, dec("1500").Equal(first.RequiredMonthly))
	assert.True(t, dec("1000").Equal(first.RecommendedMonthly))

	assert.Equal(t, "g2", second.ID)
	assert.Equal(t, 4, second.MonthsRemaining)
	assert.InDelta(t, 0.05, second.PriorityScore, 1e-9)
	assert.True(t, dec("500").Equal(second.RequiredMonthly))
	assert.True(t, second.RecommendedMonthly.IsZero())

	assert.True(t, dec("1000").Equal(plan.Allocated))
	assert.True(t, plan.Unallocated.IsZero())
}

func TestPlan_TieBreaks(t *testing.T) {
	p := NewPlanner(clock)
	deadline := models.NewDate(2024, time.July, 15)
	plan, err := p.Plan([]models.Goal{
		goal("b", "100", "0", deadline),
		goal("a", "100", "0", deadline),
		goal("c", "100", "0", models.NewDate(2024, time.July, 20)),
	}, dec("0"))
	require.NoError(t, err)

	ids := []string{plan.Goals[0].ID, plan.Goals[1].ID, plan.Goals[2].ID}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestPlan_OverdueAndOverfunded(t *testing.T) {
	p := NewPlanner(clock)
	plan, err := p.Plan([]models.Goal{
		goal("late", "1200", "200", models.NewDate(2023, time.December, 1)),
		goal("done", "500", "650", models.NewDate(2024, time.March, 1)),
		goal("soon", "300", "0", models.NewDate(2024, time.January, 30)),
	}, dec("5000"))
	require.NoError(t, err)

	byID := map[string]models.PlannedGoal{}
	for _, g := range plan.Goals {
		byID[g.ID] = g
	}

	late := byID["late"]
	assert.True(t, late.Overdue)
	assert.Equal(t, 1, late.MonthsRemaining)
	assert.True(t, dec("1000").Equal(late.RecommendedMonthly))

	done := byID["done"]
	assert.Equal(t, 0.0, done.GapRatio)
	assert.True(t, done.RecommendedMonthly.IsZero())
	assert.True(t, dec("650").Equal(done.CurrentAmount), "raw current amount is retained")

	soon := byID["soon"]
	assert.False(t, soon.Overdue)
	assert.Equal(t, 1, soon.MonthsRemaining)

	assert.True(t, dec("1300").Equal(plan.Allocated))
	assert.True(t, dec("3700").Equal(plan.Unallocated))
}

func TestPlan_AllocationBounds(t *testing.T) {
	p := NewPlanner(clock)
	for n := 1; n <= 8; n++ {
		var goals []models.Goal
		for i := 0; i < n; i++ {
			goals = append(goals, goal(
				fmt.Sprintf("g%d", i),
				fmt.Sprintf("%d", 1000*(i+1)),
				fmt.Sprintf("%d", 150*i),
				models.NewDate(2024, time.Month(2+i), 15),
			))
		}
		for _, available := range []string{"0", "123.45", "800", "100000"} {
			plan, err := p.Plan(goals, dec(available))
			require.NoError(t, err)

			total := decimal.Zero
			for i, g := range plan.Goals {
				assert.True(t, g.RecommendedMonthly.LessThanOrEqual(g.RequiredMonthly))
				assert.False(t, g.RecommendedMonthly.IsNegative())
				total = total.Add(g.RecommendedMonthly)
				if i > 0 {
					assert.GreaterOrEqual(t, plan.Goals[i-1].PriorityScore, g.PriorityScore)
				}
			}
			assert.True(t, total.LessThanOrEqual(dec(available)))
			assert.True(t, total.Equal(plan.Allocated))
		}
	}
}

func TestPlan_Validation(t *testing.T) {
	p := NewPlanner(clock)

	_, err := p.Plan(nil, dec("-1"))
	assert.Equal(t, apperror.KindValidation, apperror.Kind(err))

	_, err = p.Plan([]models.Goal{goal("x", "0", "0", models.NewDate(2024, time.May, 1))}, dec("1"))
	assert.Equal(t, apperror.KindValidation, apperror.Kind(err))

	_, err = p.Plan([]models.Goal{goal("x", "10", "-1", models.NewDate(2024, time.May, 1))}, dec("1"))
	assert.Equal(t, apperror.KindValidation, apperror.Kind(err))

	plan, err := p.Plan([]models.Goal{}, dec("100"))
	require.NoError(t, err)
	assert.Empty(t, plan.Goals)
	assert.True(t, dec("100").Equal(plan.Unallocated))
}

func TestMonthsRemaining_NoDeadline(t *testing.T) {
	months, overdue := NewPlanner(clock).MonthsRemaining(models.Date{})
	assert.Equal(t, DefaultHorizonMonths, months)
	assert.False(t, overdue)
}

func TestSavingsPlan(t *testing.T) {
	p := NewPlanner(clock)
	g := goal("car", "6000", "0", models.NewDate(2024, time.July, 15))

	tests := []struct {
		name        string
		income      string
		feasible    bool
		warning     string
		percent     float64
		withPercent bool
	}{
		{name: "no income", feasible: true},
		{name: "comfortable", income: "5000", feasible: true, percent: 20, withPercent: true},
		{name: "stretch", income: "2500", feasible: true, warning: "Consider extending the deadline", percent: 40, withPercent: true},
		{name: "unsustainable", income: "1500", feasible: false, warning: "may not be sustainable", percent: 66.7, withPercent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var income *decimal.Decimal
			if tt.income != "" {
				v := dec(tt.income)
				income = &v
			}
			plan := p.SavingsPlan(g, income)
			assert.Equal(t, 6, plan.MonthsRemaining)
			assert.True(t, dec("1000").Equal(plan.MonthlyRequired))
			assert.Equal(t, tt.feasible, plan.Feasible)
			if tt.warning == "" {
				assert.Empty(t, plan.Warning)
			} else {
				assert.Contains(t, plan.Warning, tt.warning)
			}
			if tt.withPercent {
				require.NotNil(t, plan.PercentOfIncome)
				assert.InDelta(t, tt.percent, *plan.PercentOfIncome, 0.001)
			} else {
				assert.Nil(t, plan.PercentOfIncome)
			}

			require.Len(t, plan.Milestones, 2)
			assert.Equal(t, 3, plan.Milestones[0].Month)
			assert.True(t, dec("3000").Equal(plan.Milestones[0].TargetAmount))
			assert.Equal(t, 50.0, plan.Milestones[0].Percentage)
			assert.Equal(t, 6, plan.Milestones[1].Month)
			assert.Equal(t, 100.0, plan.Milestones[1].Percentage)
		})
	}
}

func TestSavingsPlan_MilestonesIncludeDeadline(t *testing.T) {
	plan := NewPlanner(clock).SavingsPlan(goal("trip", "700", "0", models.NewDate(2024, time.August, 20)), nil)
	months := []int{}
	for _, m := range plan.Milestones {
		months = append(months, m.Month)
	}
	assert.Equal(t, []int{3, 6, 7}, months)

	funded := NewPlanner(clock).SavingsPlan(goal("done", "100", "100", models.NewDate(2024, time.August, 20)), nil)
	assert.Empty(t, funded.Milestones)
	assert.True(t, funded.RemainingAmount.IsZero())
}

func TestProgress(t *testing.T) {
	deadline := models.NewDate(2024, time.June, 1)
	tests := []struct {
		current string
		status  string
		percent float64
	}{
		{"0", models.GoalNeedsAttention, 0},
		{"300", models.GoalNeedsAttention, 30},
		{"500", models.GoalOnTrack, 50},
		{"999", models.GoalOnTrack, 99.9},
		{"1000", models.GoalCompleted, 100},
		{"1500", models.GoalCompleted, 100},
	}
	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			got := Progress(goal("g", "1000", tt.current, deadline))
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.percent, got.Percent)
			assert.NotEmpty(t, got.Message)
		})
	}
}
