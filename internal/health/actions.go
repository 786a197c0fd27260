package health

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"
	"fjacquet/finance-advisor/internal/textutils"
)

// Action item selection.
const (
	ActionThreshold   = 70.0
	HighPriorityBelow = 40.0
	MaxActionItems    = 3
)

// TipSearcher retrieves knowledge snippets for action items.
type TipSearcher interface {
	Search(ctx context.Context, query string, k int) ([]models.SearchResult, error)
}

var actionAreas = map[string]struct {
	area   string
	target string
}{
	models.MetricSavingsRate:        {"Savings Rate", "20%+ of income"},
	models.MetricDebtToIncome:       {"Debt To Income", "debt under 50% of annual income (excellent under 15%)"},
	models.MetricEmergencyFund:      {"Emergency Fund", "3-6 months of expenses"},
	models.MetricSpendingDiscipline: {"Spending Discipline", "expenses under 70% of income"},
}

const actionSystemPrompt = `You are a financial advisor. Answer with one specific, actionable
recommendation in a single sentence.`

// WithAdvice lets Assess draw action item tips from tips and phrase them
// with completer. Either may be nil.
func (s *Scorer) WithAdvice(completer aiclient.Completer, tips TipSearcher) *Scorer {
	s.completer = completer
	s.tips = tips
	return s
}

// Assess scores in and attaches action items for the weakest areas.
func (s *Scorer) Assess(ctx context.Context, in models.HealthInput) (*models.HealthScoreReport, error) {
	report, err := s.Score(in)
	if err != nil {
		return nil, err
	}
	report.ActionItems = s.ActionItems(ctx, report.Breakdown)
	return report, nil
}

// ActionItems returns an item for each of the three weakest sub-scores
// below ActionThreshold. Items under HighPriorityBelow are high priority.
func (s *Scorer) ActionItems(ctx context.Context, breakdown map[string]float64) []models.ActionItem {
	weakest := sortedBelow(breakdown, ActionThreshold)
	if len(weakest) > MaxActionItems {
		weakest = weakest[:MaxActionItems]
	}

	items := make([]models.ActionItem, 0, len(weakest))
	for _, metric := range weakest {
		a := actionAreas[metric]
		item := models.ActionItem{
			Area:         a.area,
			Metric:       metric,
			CurrentScore: breakdown[metric],
			Target:       a.target,
			Priority:     models.PriorityMedium,
		}
		if item.CurrentScore < HighPriorityBelow {
			item.Priority = models.PriorityHigh
		}
		item.Tip = s.lookupTip(ctx, item.Area)
		item.Recommendation = s.recommend(ctx, item)
		items = append(items, item)
	}
	return items
}

func (s *Scorer) lookupTip(ctx context.Context, area string) string {
	if s.tips == nil {
		return ""
	}
	results, err := s.tips.Search(ctx, "improve "+strings.ToLower(area), 1)
	if err != nil {
		s.logger.WithError(err).Debug("Tip lookup failed", logging.F("area", area))
		return ""
	}
	if len(results) == 0 {
		return ""
	}
	return results[0].Document.Text
}

func (s *Scorer) recommend(ctx context.Context, item models.ActionItem) string {
	fallback := fmt.Sprintf("Focus on improving %s to reach target: %s", strings.ToLower(item.Area), item.Target)
	if s.completer == nil {
		return fallback
	}

	prompt := fmt.Sprintf("Area: %s\nCurrent score: %.0f/100\nTarget: %s\n", item.Area, item.CurrentScore, item.Target)
	if item.Tip != "" {
		prompt += "Relevant advice: " + item.Tip + "\n"
	}
	prompt += "\nGive one specific recommendation to improve this area."

	text, err := s.completer.Complete(ctx, aiclient.CompletionRequest{
		System:      actionSystemPrompt,
		Prompt:      prompt,
		Temperature: 0.5,
		MaxTokens:   100,
	})
	if err != nil {
		s.logger.WithError(err).Warn("Action item generation failed, using template",
			logging.F("area", item.Area),
			logging.F(logging.FieldProvider, s.completer.Name()))
		return fallback
	}
	for _, line := range textutils.SplitLines(text) {
		if line = textutils.StripListMarker(line); line != "" {
			return line
		}
	}
	return fallback
}
