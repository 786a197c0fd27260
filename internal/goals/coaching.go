package goals

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"
	"fjacquet/finance-advisor/internal/textutils"
)

const (
	maxRecommendations      = 3
	minRecommendationLength = 20
)

const coachSystemPrompt = `You are a supportive financial coach. Give exactly 3 specific, actionable
recommendations that help the user reach their savings goal. Write each
recommendation on its own line, one sentence each.`

// WithCompleter enables model-written recommendations in Get. Without one
// the recommendations come from templates.
func (s *Service) WithCompleter(c aiclient.Completer) *Service {
	s.completer = c
	return s
}

// Recommendations returns up to three coaching lines for reaching g with
// plan. A missing, failing or terse completer yields the templated lines.
func (s *Service) Recommendations(ctx context.Context, g models.Goal, plan models.SavingsPlan) []string {
	fallback := FallbackRecommendations(plan)
	if s.completer == nil {
		return fallback
	}

	text, err := s.completer.Complete(ctx, aiclient.CompletionRequest{
		System:      coachSystemPrompt,
		Prompt:      coachPrompt(g, plan),
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		s.logger.WithError(err).Warn("Goal coaching failed, using templated recommendations",
			logging.F(logging.FieldGoalID, g.ID),
			logging.F(logging.FieldProvider, s.completer.Name()))
		return fallback
	}

	lines := ParseRecommendations(text)
	if len(lines) == 0 {
		s.logger.Warn("Goal coaching answer was empty, using templated recommendations",
			logging.F(logging.FieldGoalID, g.ID))
		return fallback
	}
	return lines
}

func coachPrompt(g models.Goal, plan models.SavingsPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Goal: %s\n", g.Name)
	fmt.Fprintf(&b, "Remaining amount: %s\n", plan.RemainingAmount.StringFixed(2))
	fmt.Fprintf(&b, "Monthly savings needed: %s\n", plan.MonthlyRequired.StringFixed(2))
	fmt.Fprintf(&b, "Months remaining: %d\n", plan.MonthsRemaining)
	fmt.Fprintf(&b, "Feasible: %t\n", plan.Feasible)
	if plan.Warning != "" {
		fmt.Fprintf(&b, "Warning: %s\n", plan.Warning)
	}
	b.WriteString("\nProvide 3 recommendations.")
	return b.String()
}

// ParseRecommendations keeps the first three lines of a completion that are
// longer than a fragment, with list markers stripped.
func ParseRecommendations(text string) []string {
	var out []string
	for _, line := range textutils.SplitLines(text) {
		line = textutils.StripListMarker(line)
		if len(line) <= minRecommendationLength {
			continue
		}
		out = append(out, line)
		if len(out) == maxRecommendations {
			break
		}
	}
	return out
}

// FallbackRecommendations are the templated coaching lines for plan.
func FallbackRecommendations(plan models.SavingsPlan) []string {
	first := fmt.Sprintf("Save %s per month to reach your goal on time.", plan.MonthlyRequired.StringFixed(2))
	if !plan.RemainingAmount.IsPositive() {
		first = "You have reached this goal; consider setting a new one."
	}
	return []string{
		first,
		"Set up automatic transfers to your savings account on payday.",
		"Review your budget monthly and adjust as needed.",
	}
}
