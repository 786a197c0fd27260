package goals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository stores goals. Implementations live in the store package.
type Repository interface {
	Create(ctx context.Context, goal models.Goal) error
	Get(ctx context.Context, id string) (models.Goal, error)
	List(ctx context.Context) ([]models.Goal, error)
	Update(ctx context.Context, goal models.Goal) error
	AddContribution(ctx context.Context, id string, c models.Contribution) (models.Goal, error)
	Ping(ctx context.Context) error
}

// CreateInput carries the fields of a new goal. A nil Deadline defaults to
// twelve months from now.
type CreateInput struct {
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      *models.Date    `json:"deadline,omitempty"`
}

// UpdateInput changes the non-nil fields of a goal.
type UpdateInput struct {
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	TargetAmount  *decimal.Decimal `json:"target_amount,omitempty"`
	CurrentAmount *decimal.Decimal `json:"current_amount,omitempty"`
	Deadline      *models.Date     `json:"deadline,omitempty"`
}

// Service manages stored goals and plans them.
type Service struct {
	repo      Repository
	planner   *Planner
	completer aiclient.Completer
	logger    logging.Logger
	now       func() time.Time
	newID     func() string
}

// NewService creates a Service. now may be nil.
func NewService(repo Repository, now func() time.Time, logger logging.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Service{
		repo:    repo,
		planner: NewPlanner(now),
		logger:  logger,
		now:     now,
		newID:   uuid.NewString,
	}
}

// Planner exposes the planner used by the service.
func (s *Service) Planner() *Planner { return s.planner }

// Create validates in and stores a new goal.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.Goal, error) {
	now := s.now().UTC()
	goal := models.Goal{
		ID:            s.newID(),
		Name:          strings.TrimSpace(in.Name),
		Description:   strings.TrimSpace(in.Description),
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.Deadline != nil && !in.Deadline.IsZero() {
		goal.Deadline = *in.Deadline
	} else {
		goal.Deadline = models.DateOf(now.AddDate(0, DefaultHorizonMonths, 0))
	}

	if goal.Name == "" {
		return models.Goal{}, apperror.NewValidationError("name", "", "is required")
	}
	if err := ValidateGoal(goal); err != nil {
		return models.Goal{}, err
	}

	if err := s.repo.Create(ctx, goal); err != nil {
		return models.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	s.logger.Info("Created goal", logging.F(logging.FieldGoalID, goal.ID), logging.F("name", goal.Name))
	return goal, nil
}

// Get returns the goal with its progress, a standalone savings plan and
// coaching recommendations for that plan.
func (s *Service) Get(ctx context.Context, id string, monthlyIncome *decimal.Decimal) (*models.GoalDetails, error) {
	goal, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	plan := s.planner.SavingsPlan(goal, monthlyIncome)
	return &models.GoalDetails{
		Goal:            goal,
		Progress:        Progress(goal),
		Plan:            plan,
		Recommendations: s.Recommendations(ctx, goal, plan),
	}, nil
}

// List returns all stored goals.
func (s *Service) List(ctx context.Context) ([]models.Goal, error) {
	return s.repo.List(ctx)
}

// Update applies the non-nil fields of in.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (models.Goal, error) {
	goal, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Goal{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return models.Goal{}, apperror.NewValidationError("name", "", "is required")
		}
		goal.Name = name
	}
	if in.Description != nil {
		goal.Description = strings.TrimSpace(*in.Description)
	}
	if in.TargetAmount != nil {
		goal.TargetAmount = *in.TargetAmount
	}
	if in.CurrentAmount != nil {
		goal.CurrentAmount = *in.CurrentAmount
	}
	if in.Deadline != nil {
		goal.Deadline = *in.Deadline
	}
	if err := ValidateGoal(goal); err != nil {
		return models.Goal{}, err
	}

	goal.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, goal); err != nil {
		return models.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Contribute adds a positive amount to a goal's balance.
func (s *Service) Contribute(ctx context.Context, id string, amount decimal.Decimal, note string) (models.Goal, error) {
	if !amount.IsPositive() {
		return models.Goal{}, apperror.NewValidationError("amount", amount.String(), "must be greater than zero")
	}
	goal, err := s.repo.AddContribution(ctx, id, models.Contribution{
		Amount:    amount,
		Note:      strings.TrimSpace(note),
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return models.Goal{}, err
	}
	s.logger.Info("Recorded goal contribution",
		logging.F(logging.FieldGoalID, id),
		logging.F("amount", amount.String()),
		logging.F(logging.FieldStatus, Progress(goal).Status))
	return goal, nil
}

// Prioritize ranks goals and allocates available across them.
func (s *Service) Prioritize(goals []models.Goal, available decimal.Decimal) (*models.AllocationPlan, error) {
	plan, err := s.planner.Plan(goals, available)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Prioritized goals",
		logging.F(logging.FieldCount, len(plan.Goals)),
		logging.F("allocated", plan.Allocated.String()),
		logging.F("unallocated", plan.Unallocated.String()))
	return plan, nil
}

// PrioritizeStored plans every stored goal.
func (s *Service) PrioritizeStored(ctx context.Context, available decimal.Decimal) (*models.AllocationPlan, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return s.Prioritize(stored, available)
}

// Ping checks the repository.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
