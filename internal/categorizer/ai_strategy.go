package categorizer

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"
	"fjacquet/finance-advisor/internal/textutils"
)

const aiSystemPrompt = "You are a financial transaction classifier. " +
	"Answer with exactly one category name from the list you are given and nothing else."

// AIStrategy asks the completion capability to pick a label from the closed
// category list. Answers outside the list are rejected.
type AIStrategy struct {
	completer aiclient.Completer
	logger    logging.Logger
}

// NewAIStrategy creates an AIStrategy. A nil completer makes the strategy a
// no-op.
func NewAIStrategy(completer aiclient.Completer, logger logging.Logger) *AIStrategy {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &AIStrategy{completer: completer, logger: logger}
}

func (s *AIStrategy) Name() string {
	return models.SourceAI
}

func (s *AIStrategy) Categorize(ctx context.Context, tx models.Transaction) (string, bool, error) {
	if s.completer == nil || strings.TrimSpace(tx.Description) == "" {
		return "", false, nil
	}

	answer, err := s.completer.Complete(ctx, aiclient.CompletionRequest{
		System:    aiSystemPrompt,
		Prompt:    buildCategorizationPrompt(tx),
		MaxTokens: 16,
	})
	if err != nil {
		return "", false, fmt.Errorf("classify %q: %w", tx.Description, err)
	}

	category, ok := models.CanonicalCategory(textutils.CleanLabel(answer))
	if !ok {
		s.logger.Debug("Language model answered outside the category list",
			logging.F(logging.FieldStrategy, s.Name()),
			logging.F(logging.FieldDescription, tx.Description),
			logging.F("answer", textutils.Preview(answer, 40)))
		return "", false, nil
	}

	s.logger.Debug("Transaction categorized using language model",
		logging.F(logging.FieldStrategy, s.Name()),
		logging.F(logging.FieldProvider, s.completer.Name()),
		logging.F(logging.FieldDescription, tx.Description),
		logging.F(logging.FieldCategory, category))
	return category, true, nil
}

func buildCategorizationPrompt(tx models.Transaction) string {
	var b strings.Builder
	b.WriteString("Categories: ")
	b.WriteString(strings.Join(models.Categories(), ", "))
	b.WriteString("\n\nTransaction description: ")
	b.WriteString(textutils.NormalizeDescription(tx.Description))
	direction := "expense"
	if tx.IsIncome() {
		direction = "income"
	}
	fmt.Fprintf(&b, "\nDirection: %s\n\nCategory:", direction)
	return b.String()
}
