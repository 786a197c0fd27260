package goals

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"
	"fjacquet/finance-advisor/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	s := NewService(store.NewMemoryGoalStore(), clock, logging.NewMockLogger())
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("goal-%d", n)
	}
	return s
}

func TestService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	deadline := models.NewDate(2024, time.July, 15)
	created, err := s.Create(ctx, CreateInput{
		Name:         "  Emergency fund ",
		TargetAmount: dec("6000"),
		Deadline:     &deadline,
	})
	require.NoError(t, err)
	assert.Equal(t, "goal-1", created.ID)
	assert.Equal(t, "Emergency fund", created.Name)
	assert.Equal(t, fixedNow, created.CreatedAt)

	income := dec("5000")
	details, err := s.Get(ctx, created.ID, &income)
	require.NoError(t, err)
	assert.Equal(t, created.ID, details.Goal.ID)
	assert.Equal(t, models.GoalNeedsAttention, details.Progress.Status)
	assert.True(t, dec("1000").Equal(details.Plan.MonthlyRequired))
	assert.True(t, details.Plan.Feasible)
	require.Len(t, details.Recommendations, 3)
	assert.Equal(t, "Save 1000.00 per month to reach your goal on time.", details.Recommendations[0])

	_, err = s.Get(ctx, "missing", nil)
	assert.Equal(t, apperror.KindNotFound, apperror.Kind(err))
}

func TestService_CreateDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	g, err := s.Create(ctx, CreateInput{Name: "House", TargetAmount: dec("50000")})
	require.NoError(t, err)
	assert.Equal(t, models.NewDate(2025, time.January, 15), g.Deadline)

	tests := []struct {
		name  string
		in    CreateInput
		field string
	}{
		{"missing name", CreateInput{TargetAmount: dec("1")}, "name"},
		{"zero target", CreateInput{Name: "x", TargetAmount: decimal.Zero}, "target_amount"},
		{"negative current", CreateInput{Name: "x", TargetAmount: dec("1"), CurrentAmount: dec("-1")}, "current_amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, tt.in)
			var ve *apperror.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestService_UpdateAndContribute(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	g, err := s.Create(ctx, CreateInput{Name: "Trip", TargetAmount: dec("1000")})
	require.NoError(t, err)

	newName := "Japan trip"
	target := dec("2000")
	updated, err := s.Update(ctx, g.ID, UpdateInput{Name: &newName, TargetAmount: &target})
	require.NoError(t, err)
	assert.Equal(t, "Japan trip", updated.Name)
	assert.True(t, target.Equal(updated.TargetAmount))

	bad := dec("0")
	_, err = s.Update(ctx, g.ID, UpdateInput{TargetAmount: &bad})
	assert.Equal(t, apperror.KindValidation, apperror.Kind(err))

	_, err = s.Contribute(ctx, g.ID, dec("-5"), "")
	assert.Equal(t, apperror.KindValidation, apperror.Kind(err))

	after, err := s.Contribute(ctx, g.ID, dec("250.50"), " bonus ")
	require.NoError(t, err)
	assert.True(t, dec("250.50").Equal(after.CurrentAmount))
	require.Len(t, after.Contributions, 1)
	assert.Equal(t, "bonus", after.Contributions[0].Note)

	_, err = s.Contribute(ctx, "missing", dec("1"), "")
	assert.Equal(t, apperror.KindNotFound, apperror.Kind(err))
}

func TestService_PrioritizeStored(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	d1 := models.NewDate(2024, time.July, 15)
	d2 := models.NewDate(2024, time.May, 15)
	_, err := s.Create(ctx, CreateInput{Name: "first", TargetAmount: dec("10000"), CurrentAmount: dec("1000"), Deadline: &d1})
	require.NoError(t, err)
	_, err = s.Create(ctx, CreateInput{Name: "second", TargetAmount: dec("10000"), CurrentAmount: dec("8000"), Deadline: &d2})
	require.NoError(t, err)

	plan, err := s.PrioritizeStored(ctx, dec("1000"))
	require.NoError(t, err)
	require.Len(t, plan.Goals, 2)
	assert.Equal(t, "first", plan.Goals[0].Name)
	assert.True(t, dec("1000").Equal(plan.Goals[0].RecommendedMonthly))
	assert.True(t, plan.Goals[1].RecommendedMonthly.IsZero())

	require.NoError(t, s.Ping(ctx))
}
