package models

import (
	"github.com/shopspring/decimal"
)

// Where a transaction's category came from.
const (
	SourceSupplied = "supplied"
	SourceMerchant = "merchant"
	SourceKeyword  = "keyword"
	SourceIncome   = "income"
	SourceAI       = "ai"
	SourceDefault  = "default"
	SourceManual   = "manual"
)

// Transaction is a single signed money movement. Negative amounts are
// expenses. Category is empty until the transaction has been categorized.
type Transaction struct {
	Date           Date            `json:"date" yaml:"date"`
	Description    string          `json:"description" yaml:"description"`
	Amount         decimal.Decimal `json:"amount" yaml:"amount"`
	Category       string          `json:"category,omitempty" yaml:"category,omitempty"`
	CategorySource string          `json:"category_source,omitempty" yaml:"category_source,omitempty"`
}

// IsExpense reports whether the transaction is money going out.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// IsIncome reports whether the transaction is money coming in.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// IsCategorized reports whether a category has been assigned.
func (t Transaction) IsCategorized() bool {
	return t.Category != ""
}

// WithCategory returns a copy carrying the given category and its source.
// The receiver is left untouched.
func (t Transaction) WithCategory(category, source string) Transaction {
	t.Category = category
	t.CategorySource = source
	return t
}

// CategoryOrOther returns the category, or Other when none is set.
func (t Transaction) CategoryOrOther() string {
	if t.Category == "" {
		return CategoryOther
	}
	return t.Category
}

// CategorizationStats summarizes a batch run of the categorizer.
type CategorizationStats struct {
	Total    int            `json:"total" yaml:"total"`
	BySource map[string]int `json:"by_source" yaml:"by_source"`
	// AIFailures counts rows where the language model could not be reached.
	AIFailures int `json:"ai_failures" yaml:"ai_failures"`
}

// NewCategorizationStats returns empty stats.
func NewCategorizationStats() CategorizationStats {
	return CategorizationStats{BySource: make(map[string]int)}
}

// Record counts one categorized transaction.
func (s *CategorizationStats) Record(source string) {
	if s.BySource == nil {
		s.BySource = make(map[string]int)
	}
	s.Total++
	s.BySource[source]++
}

// FallbackRate returns the share of transactions that ended up in the
// default bucket, as a percentage.
func (s CategorizationStats) FallbackRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.BySource[SourceDefault]) / float64(s.Total) * 100
}
