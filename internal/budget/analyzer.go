// Package budget aggregates categorized transactions into spending totals,
// per-category breakdowns, a 50/30/20 recommendation and narrative insights.
package budget

import (
	"context"
	"sort"
	"time"

	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/dateutils"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"

	"github.com/shopspring/decimal"
)

// Defaults used when Options leaves a field at zero.
const (
	DefaultTopN        = 5
	DefaultMaxInsights = 4
)

var hundred = decimal.NewFromInt(100)

// TipSearcher retrieves knowledge snippets used to flavor insights.
type TipSearcher interface {
	Search(ctx context.Context, query string, k int) ([]models.SearchResult, error)
}

// Options tunes the analyzer.
type Options struct {
	TopN        int
	MaxInsights int
}

// Analyzer builds AnalysisReports. The completer and tip searcher are
// optional; without a completer insights are derived from the statistics.
type Analyzer struct {
	opts      Options
	completer aiclient.Completer
	tips      TipSearcher
	logger    logging.Logger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(opts Options, completer aiclient.Completer, tips TipSearcher, logger logging.Logger) *Analyzer {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.MaxInsights <= 0 {
		opts.MaxInsights = DefaultMaxInsights
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Analyzer{opts: opts, completer: completer, tips: tips, logger: logger}
}

// Analyze aggregates transactions. monthlyIncome is optional; when given it
// must not be negative and a 50/30/20 recommendation is added. Only a
// negative income is an error; insight generation failures fall back to
// statistical insights.
func (a *Analyzer) Analyze(ctx context.Context, transactions []models.Transaction, monthlyIncome *decimal.Decimal) (*models.AnalysisReport, error) {
	if monthlyIncome != nil && monthlyIncome.IsNegative() {
		return nil, apperror.NewValidationError("monthly_income", monthlyIncome.String(), "must not be negative")
	}

	start := time.Now()
	report := Aggregate(transactions, a.opts.TopN)
	if monthlyIncome != nil && monthlyIncome.IsPositive() {
		report.Recommendation = Recommend(*monthlyIncome, report.ByCategory)
	}

	if report.TransactionCount > 0 {
		summary := Summarize(report, transactions)
		report.Insights = a.generateInsights(ctx, summary)
	}

	a.logger.Info("Analyzed transactions",
		logging.F(logging.FieldCount, report.TransactionCount),
		logging.F("categories", len(report.ByCategory)),
		logging.F("insights", len(report.Insights)),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return report, nil
}

// Aggregate computes the numeric part of a report: totals, per-category
// spend, top categories and monthly totals. Uncategorized transactions count
// as Other. The amounts in TopCategories add up to TotalSpent: when there
// are more categories than topN, the smallest ones are folded into Other.
func Aggregate(transactions []models.Transaction, topN int) *models.AnalysisReport {
	if topN <= 0 {
		topN = DefaultTopN
	}

	report := &models.AnalysisReport{
		TotalSpent:         decimal.Zero,
		TotalIncome:        decimal.Zero,
		NetCashflow:        decimal.Zero,
		AverageTransaction: decimal.Zero,
		TransactionCount:   len(transactions),
		TopCategories:      []models.CategorySpend{},
		ByCategory:         map[string]decimal.Decimal{},
		MonthlyTotals:      []models.MonthlyTotal{},
		Insights:           []string{},
	}

	counts := map[string]int{}
	months := map[string]*models.MonthlyTotal{}
	expenses := 0

	for _, tx := range transactions {
		month := dateutils.MonthKey(tx.Date.Time)
		mt, ok := months[month]
		if !ok {
			mt = &models.MonthlyTotal{Month: month, Spent: decimal.Zero, Income: decimal.Zero}
			months[month] = mt
		}

		switch {
		case tx.IsExpense():
			spend := tx.Amount.Abs()
			category := tx.CategoryOrOther()
			report.TotalSpent = report.TotalSpent.Add(spend)
			report.ByCategory[category] = report.ByCategory[category].Add(spend)
			counts[category]++
			mt.Spent = mt.Spent.Add(spend)
			expenses++
		case tx.IsIncome():
			report.TotalIncome = report.TotalIncome.Add(tx.Amount)
			mt.Income = mt.Income.Add(tx.Amount)
		}
	}

	report.NetCashflow = report.TotalIncome.Sub(report.TotalSpent)
	if expenses > 0 {
		report.AverageTransaction = report.TotalSpent.Div(decimal.NewFromInt(int64(expenses))).Round(2)
	}

	all := make([]models.CategorySpend, 0, len(report.ByCategory))
	for category, amount := range report.ByCategory {
		all = append(all, models.CategorySpend{Category: category, Amount: amount, Count: counts[category]})
	}
	sortSpend(all)
	report.TopCategories = withPercent(capTop(all, topN), report.TotalSpent)

	for _, mt := range months {
		report.MonthlyTotals = append(report.MonthlyTotals, *mt)
	}
	sort.Slice(report.MonthlyTotals, func(i, j int) bool {
		return report.MonthlyTotals[i].Month < report.MonthlyTotals[j].Month
	})

	return report
}

// sortSpend orders by amount descending, then category name ascending.
func sortSpend(s []models.CategorySpend) {
	sort.SliceStable(s, func(i, j int) bool {
		if c := s[i].Amount.Cmp(s[j].Amount); c != 0 {
			return c > 0
		}
		return s[i].Category < s[j].Category
	})
}

// capTop keeps the largest n-1 categories other than Other and folds the
// remainder into a single Other entry, preserving the overall sum.
func capTop(sorted []models.CategorySpend, n int) []models.CategorySpend {
	if len(sorted) <= n {
		return sorted
	}

	kept := make([]models.CategorySpend, 0, n)
	other := models.CategorySpend{Category: models.CategoryOther, Amount: decimal.Zero}
	for _, cs := range sorted {
		if cs.Category != models.CategoryOther && len(kept) < n-1 {
			kept = append(kept, cs)
			continue
		}
		other.Amount = other.Amount.Add(cs.Amount)
		other.Count += cs.Count
	}
	kept = append(kept, other)
	sortSpend(kept)
	return kept
}

func withPercent(s []models.CategorySpend, total decimal.Decimal) []models.CategorySpend {
	if total.IsZero() {
		return s
	}
	for i := range s {
		s[i].Percent = s[i].Amount.Div(total).Mul(hundred).Round(1).InexactFloat64()
	}
	return s
}
