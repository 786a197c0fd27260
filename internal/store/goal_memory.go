package store

import (
	"context"
	"sort"
	"sync"

	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/models"
)

// MemoryGoalStore keeps goals in process memory. Safe for concurrent use.
type MemoryGoalStore struct {
	mu    sync.RWMutex
	goals map[string]models.Goal
}

// NewMemoryGoalStore returns an empty store.
func NewMemoryGoalStore() *MemoryGoalStore {
	return &MemoryGoalStore{goals: make(map[string]models.Goal)}
}

func (s *MemoryGoalStore) Create(_ context.Context, goal models.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.goals[goal.ID]; exists {
		return apperror.NewValidationError("id", goal.ID, "goal already exists")
	}
	s.goals[goal.ID] = cloneGoal(goal)
	return nil
}

func (s *MemoryGoalStore) Get(_ context.Context, id string) (models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	goal, ok := s.goals[id]
	if !ok {
		return models.Goal{}, &apperror.NotFoundError{Resource: "goal", ID: id}
	}
	return cloneGoal(goal), nil
}

// List returns all goals ordered by creation time, then id.
func (s *MemoryGoalStore) List(_ context.Context) ([]models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Goal, 0, len(s.goals))
	for _, goal := range s.goals {
		out = append(out, cloneGoal(goal))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryGoalStore) Update(_ context.Context, goal models.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.goals[goal.ID]
	if !ok {
		return &apperror.NotFoundError{Resource: "goal", ID: goal.ID}
	}
	goal.Contributions = existing.Contributions
	goal.CreatedAt = existing.CreatedAt
	s.goals[goal.ID] = cloneGoal(goal)
	return nil
}

// AddContribution records c and adds its amount to the goal's balance in one
// step.
func (s *MemoryGoalStore) AddContribution(_ context.Context, id string, c models.Contribution) (models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	goal, ok := s.goals[id]
	if !ok {
		return models.Goal{}, &apperror.NotFoundError{Resource: "goal", ID: id}
	}
	goal = cloneGoal(goal)
	goal.CurrentAmount = goal.CurrentAmount.Add(c.Amount)
	goal.Contributions = append(goal.Contributions, c)
	goal.UpdatedAt = c.CreatedAt
	s.goals[id] = goal
	return cloneGoal(goal), nil
}

// Ping always succeeds.
func (s *MemoryGoalStore) Ping(context.Context) error { return nil }

func (s *MemoryGoalStore) Close() error { return nil }

func cloneGoal(g models.Goal) models.Goal {
	if g.Contributions != nil {
		g.Contributions = append([]models.Contribution(nil), g.Contributions...)
	}
	return g
}
