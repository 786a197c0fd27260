package budget

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/textutils"
)

const (
	minInsights      = 2
	minInsightLength = 20
	tipCount         = 2
)

const insightSystemPrompt = `You are a friendly financial advisor. Generate 3-4 specific, actionable insights
about the user's spending. Be encouraging but honest. Cover one notable observation,
one area for improvement with a concrete suggestion, and one positive aspect.
Write each insight on its own line, one or two sentences each.`

// generateInsights asks the completer for insights and falls back to the
// statistical ones when it is missing, fails, or answers with too little.
func (a *Analyzer) generateInsights(ctx context.Context, summary Summary) []string {
	fallback := capInsights(summary.FallbackInsights(), a.opts.MaxInsights)
	if a.completer == nil {
		return fallback
	}

	prompt := summary.PromptText()
	if tips := a.lookupTips(ctx, summary); len(tips) > 0 {
		prompt += "\nRelevant tips:\n- " + strings.Join(tips, "\n- ") + "\n"
	}
	prompt += "\nGenerate insights about this spending pattern."

	text, err := a.completer.Complete(ctx, aiclient.CompletionRequest{
		System:      insightSystemPrompt,
		Prompt:      prompt,
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		a.logger.WithError(err).Warn("Insight generation failed, using statistical insights",
			logging.F(logging.FieldProvider, a.completer.Name()))
		return fallback
	}

	insights := ParseInsights(text, a.opts.MaxInsights)
	if len(insights) < minInsights {
		a.logger.Warn("Insight response too short, using statistical insights",
			logging.F(logging.FieldCount, len(insights)))
		return fallback
	}
	return insights
}

func (a *Analyzer) lookupTips(ctx context.Context, summary Summary) []string {
	if a.tips == nil {
		return nil
	}
	topic := "general budgeting"
	if len(summary.TopCategories) > 0 {
		topic = summary.TopCategories[0].Category
	}
	results, err := a.tips.Search(ctx, fmt.Sprintf("budgeting tips for %s", topic), tipCount)
	if err != nil {
		a.logger.WithError(err).Debug("Tip lookup failed")
		return nil
	}
	tips := make([]string, 0, len(results))
	for _, r := range results {
		tips = append(tips, r.Document.Text)
	}
	return tips
}

// ParseInsights splits a completion into insight lines: list markers are
// stripped, short fragments dropped and the result capped at limit.
func ParseInsights(text string, limit int) []string {
	var out []string
	for _, line := range textutils.SplitLines(text) {
		line = textutils.StripListMarker(line)
		if len(line) <= minInsightLength {
			continue
		}
		out = append(out, line)
	}
	return capInsights(out, limit)
}

func capInsights(insights []string, limit int) []string {
	if limit > 0 && len(insights) > limit {
		return insights[:limit]
	}
	return insights
}
