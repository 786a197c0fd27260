package budget

import (
	"fmt"
	"strings"

	"fjacquet/finance-advisor/internal/models"

	"github.com/shopspring/decimal"
)

// MonthDelta compares spend of the last month with the month before.
type MonthDelta struct {
	Month         string
	PreviousMonth string
	Spent         decimal.Decimal
	PreviousSpent decimal.Decimal
	// Percent is nil when the previous month had no spend.
	Percent *float64
}

// LargestExpense describes the single biggest outflow.
type LargestExpense struct {
	Amount   decimal.Decimal
	Category string
	Date     models.Date
}

// Summary is the statistical digest that insight generation works from. It
// never carries the transaction list itself.
type Summary struct {
	TotalSpent     decimal.Decimal
	TotalIncome    decimal.Decimal
	Count          int
	TopCategories  []models.CategorySpend
	MonthOverMonth *MonthDelta
	Largest        *LargestExpense
}

// Summarize derives a Summary from a report and the transactions it was
// computed from.
func Summarize(report *models.AnalysisReport, transactions []models.Transaction) Summary {
	s := Summary{
		TotalSpent:    report.TotalSpent,
		TotalIncome:   report.TotalIncome,
		Count:         report.TransactionCount,
		TopCategories: report.TopCategories,
	}

	if n := len(report.MonthlyTotals); n >= 2 {
		last, prev := report.MonthlyTotals[n-1], report.MonthlyTotals[n-2]
		delta := &MonthDelta{
			Month: last.Month, PreviousMonth: prev.Month,
			Spent: last.Spent, PreviousSpent: prev.Spent,
		}
		if prev.Spent.IsPositive() {
			pct := last.Spent.Sub(prev.Spent).Div(prev.Spent).Mul(hundred).Round(1).InexactFloat64()
			delta.Percent = &pct
		}
		s.MonthOverMonth = delta
	}

	for _, tx := range transactions {
		if !tx.IsExpense() {
			continue
		}
		spend := tx.Amount.Abs()
		if s.Largest == nil || spend.GreaterThan(s.Largest.Amount) {
			s.Largest = &LargestExpense{Amount: spend, Category: tx.CategoryOrOther(), Date: tx.Date}
		}
	}
	return s
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// PromptText renders the summary as the context block of an insight prompt.
func (s Summary) PromptText() string {
	var b strings.Builder
	b.WriteString("Spending summary:\n")
	fmt.Fprintf(&b, "- Transactions: %d\n", s.Count)
	fmt.Fprintf(&b, "- Total spent: %s\n", money(s.TotalSpent))
	fmt.Fprintf(&b, "- Total income: %s\n", money(s.TotalIncome))
	if len(s.TopCategories) > 0 {
		b.WriteString("- Top categories:\n")
		for _, c := range s.TopCategories {
			fmt.Fprintf(&b, "  - %s: %s (%.1f%% of spending)\n", c.Category, money(c.Amount), c.Percent)
		}
	}
	if d := s.MonthOverMonth; d != nil {
		fmt.Fprintf(&b, "- Spending in %s: %s, in %s: %s", d.Month, money(d.Spent), d.PreviousMonth, money(d.PreviousSpent))
		if d.Percent != nil {
			fmt.Fprintf(&b, " (%+.1f%%)", *d.Percent)
		}
		b.WriteString("\n")
	}
	if l := s.Largest; l != nil {
		fmt.Fprintf(&b, "- Largest single expense: %s in %s on %s\n", money(l.Amount), l.Category, l.Date)
	}
	return b.String()
}

// FallbackInsights derives insight sentences from the numbers alone.
func (s Summary) FallbackInsights() []string {
	if len(s.TopCategories) == 0 {
		return []string{
			"No spending was recorded in this period.",
			fmt.Sprintf("Total income was %s.", money(s.TotalIncome)),
		}
	}

	top := s.TopCategories[0]
	insights := []string{
		fmt.Sprintf("Your top spending category is %s, totaling %s (%.1f%% of spending).", top.Category, money(top.Amount), top.Percent),
		fmt.Sprintf("Consider reviewing %s for potential savings opportunities.", top.Category),
	}
	if d := s.MonthOverMonth; d != nil && d.Percent != nil {
		direction := "up"
		if *d.Percent < 0 {
			direction = "down"
		}
		abs := *d.Percent
		if abs < 0 {
			abs = -abs
		}
		insights = append(insights, fmt.Sprintf("Spending in %s was %s %.1f%% compared with %s.", d.Month, direction, abs, d.PreviousMonth))
	}
	if l := s.Largest; l != nil {
		insights = append(insights, fmt.Sprintf("Your largest single expense was %s in %s on %s.", money(l.Amount), l.Category, l.Date))
	}
	if s.TotalIncome.IsPositive() && s.TotalIncome.GreaterThan(s.TotalSpent) {
		insights = append(insights, fmt.Sprintf("You kept %s of your income after spending.", money(s.TotalIncome.Sub(s.TotalSpent))))
	}
	return insights
}
