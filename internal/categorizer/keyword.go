package categorizer

import (
	"context"
	"strings"

	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"
	"fjacquet/finance-advisor/internal/textutils"
)

// KeywordStrategy matches the ordered rule table against the normalized
// description. The first rule whose keyword occurs at the start of a word
// wins, so "rent" matches "rent" and "rental" but not "current".
type KeywordStrategy struct {
	rules  []models.CategoryRule
	logger logging.Logger
}

// NewKeywordStrategy copies rules, normalizing keywords the same way
// descriptions are normalized. Rules with an empty keyword are dropped.
func NewKeywordStrategy(rules []models.CategoryRule, logger logging.Logger) *KeywordStrategy {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	normalized := make([]models.CategoryRule, 0, len(rules))
	for _, r := range rules {
		kw := textutils.NormalizeDescription(r.Keyword)
		if kw == "" {
			continue
		}
		normalized = append(normalized, models.CategoryRule{Keyword: kw, Category: r.Category})
	}
	return &KeywordStrategy{rules: normalized, logger: logger}
}

func (s *KeywordStrategy) Name() string {
	return models.SourceKeyword
}

func (s *KeywordStrategy) Categorize(_ context.Context, tx models.Transaction) (string, bool, error) {
	desc := textutils.NormalizeDescription(tx.Description)
	if desc == "" {
		return "", false, nil
	}

	for _, rule := range s.rules {
		if containsAtWordStart(desc, rule.Keyword) {
			s.logger.Debug("Transaction categorized using keyword matching",
				logging.F(logging.FieldStrategy, s.Name()),
				logging.F(logging.FieldDescription, tx.Description),
				logging.F("keyword", rule.Keyword),
				logging.F(logging.FieldCategory, rule.Category))
			return rule.Category, true, nil
		}
	}
	return "", false, nil
}

// Rules returns a copy of the normalized rule table.
func (s *KeywordStrategy) Rules() []models.CategoryRule {
	return append([]models.CategoryRule(nil), s.rules...)
}

// containsAtWordStart reports whether keyword occurs in desc right after the
// start of the string or a space. Both are normalized.
func containsAtWordStart(desc, keyword string) bool {
	for offset := 0; offset <= len(desc)-len(keyword); {
		i := strings.Index(desc[offset:], keyword)
		if i < 0 {
			return false
		}
		i += offset
		if i == 0 || desc[i-1] == ' ' {
			return true
		}
		offset = i + 1
	}
	return false
}
