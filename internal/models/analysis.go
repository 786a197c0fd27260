package models

import (
	"fjacquet/finance-advisor/internal/apperror"

	"github.com/shopspring/decimal"
)

// CategorySpend is the spend attributed to one category.
type CategorySpend struct {
	Category string          `json:"category" yaml:"category"`
	Amount   decimal.Decimal `json:"amount" yaml:"amount"`
	Percent  float64         `json:"percent" yaml:"percent"`
	Count    int             `json:"count" yaml:"count"`
}

// MonthlyTotal aggregates one calendar month.
type MonthlyTotal struct {
	Month  string          `json:"month" yaml:"month"`
	Spent  decimal.Decimal `json:"spent" yaml:"spent"`
	Income decimal.Decimal `json:"income" yaml:"income"`
}

// BudgetRecommendation is the 50/30/20 split of a monthly income next to
// what was actually spent in each bucket.
type BudgetRecommendation struct {
	MonthlyIncome decimal.Decimal `json:"monthly_income" yaml:"monthly_income"`
	Needs         decimal.Decimal `json:"needs" yaml:"needs"`
	Wants         decimal.Decimal `json:"wants" yaml:"wants"`
	Savings       decimal.Decimal `json:"savings" yaml:"savings"`
	ActualNeeds   decimal.Decimal `json:"actual_needs" yaml:"actual_needs"`
	ActualWants   decimal.Decimal `json:"actual_wants" yaml:"actual_wants"`
	ActualSavings decimal.Decimal `json:"actual_savings" yaml:"actual_savings"`
}

// AnalysisReport is the result of analyzing a set of categorized
// transactions. The amounts in TopCategories always add up to TotalSpent.
type AnalysisReport struct {
	TotalSpent         decimal.Decimal            `json:"total_spent" yaml:"total_spent"`
	TotalIncome        decimal.Decimal            `json:"total_income" yaml:"total_income"`
	NetCashflow        decimal.Decimal            `json:"net_cashflow" yaml:"net_cashflow"`
	TransactionCount   int                        `json:"transaction_count" yaml:"transaction_count"`
	AverageTransaction decimal.Decimal            `json:"average_transaction" yaml:"average_transaction"`
	TopCategories      []CategorySpend            `json:"top_categories" yaml:"top_categories"`
	ByCategory         map[string]decimal.Decimal `json:"by_category" yaml:"by_category"`
	MonthlyTotals      []MonthlyTotal             `json:"monthly_totals" yaml:"monthly_totals"`
	Insights           []string                   `json:"insights" yaml:"insights"`
	Recommendation     *BudgetRecommendation      `json:"budget_recommendation,omitempty" yaml:"budget_recommendation,omitempty"`
	Warnings           []apperror.ValidationError `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}
