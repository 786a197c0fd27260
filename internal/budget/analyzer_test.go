package budget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(month time.Month, day int, description, amount, category string) models.Transaction {
	return models.Transaction{
		Date:        models.NewDate(2024, month, day),
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sumTop(r *models.AnalysisReport) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range r.TopCategories {
		sum = sum.Add(c.Amount)
	}
	return sum
}

func TestAnalyze_Scenario(t *testing.T) {
	a := NewAnalyzer(Options{}, nil, nil, logging.NewMockLogger())
	report, err := a.Analyze(context.Background(), []models.Transaction{
		tx(time.January, 1, "Rent", "-1500", models.CategoryHousing),
		tx(time.January, 3, "Groceries", "-234.56", models.CategoryFoodDining),
		tx(time.January, 15, "Salary", "4500", models.CategoryIncome),
	}, nil)
	require.NoError(t, err)

	assert.True(t, dec("1734.56").Equal(report.TotalSpent), report.TotalSpent.String())
	assert.True(t, dec("4500").Equal(report.TotalIncome))
	assert.True(t, dec("2765.44").Equal(report.NetCashflow))
	assert.Equal(t, 3, report.TransactionCount)
	assert.True(t, dec("867.28").Equal(report.AverageTransaction))

	require.Len(t, report.TopCategories, 2)
	assert.Equal(t, models.CategoryHousing, report.TopCategories[0].Category)
	assert.Equal(t, models.CategoryFoodDining, report.TopCategories[1].Category)
	assert.InDelta(t, 86.5, report.TopCategories[0].Percent, 0.05)
	assert.True(t, sumTop(report).Equal(report.TotalSpent))
	assert.Nil(t, report.Recommendation)

	assert.GreaterOrEqual(t, len(report.Insights), 2)
	assert.LessOrEqual(t, len(report.Insights), DefaultMaxInsights)
	assert.Contains(t, report.Insights[0], "Housing")
}

func TestAnalyze_Empty(t *testing.T) {
	completer := &aiclient.FakeCompleter{Responses: []string{"unused"}}
	a := NewAnalyzer(Options{}, completer, nil, nil)

	report, err := a.Analyze(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.True(t, report.TotalSpent.IsZero())
	assert.True(t, report.TotalIncome.IsZero())
	assert.Equal(t, 0, report.TransactionCount)
	assert.NotNil(t, report.TopCategories)
	assert.Empty(t, report.TopCategories)
	assert.NotNil(t, report.Insights)
	assert.Empty(t, report.Insights)
	assert.Equal(t, 0, completer.CallCount())
}

func TestAnalyze_NegativeIncomeRejected(t *testing.T) {
	income := dec("-1")
	_, err := NewAnalyzer(Options{}, nil, nil, nil).Analyze(context.Background(), nil, &income)
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.Kind(err))
}

func TestAggregate_TopCategoriesOrderingAndCap(t *testing.T) {
	var txs []models.Transaction
	amounts := map[string]string{
		models.CategoryHousing:       "-900",
		models.CategoryFoodDining:    "-300",
		models.CategoryShopping:      "-300",
		models.CategoryUtilities:     "-120",
		models.CategoryEntertainment: "-80",
		models.CategoryPersonalCare:  "-40",
		models.CategoryEducation:     "-25.50",
	}
	for category, amount := range amounts {
		txs = append(txs, tx(time.March, 1, category, amount, category))
	}
	txs = append(txs, tx(time.March, 2, "uncategorized", "-10", ""))

	report := Aggregate(txs, 5)
	require.Len(t, report.TopCategories, 5)
	assert.True(t, sumTop(report).Equal(report.TotalSpent))
	assert.Len(t, report.ByCategory, 8)

	names := make([]string, 0, len(report.TopCategories))
	for _, c := range report.TopCategories {
		names = append(names, c.Category)
	}
	// Food & Dining and Shopping tie at 300 and are ordered by name.
	assert.Equal(t, []string{
		models.CategoryHousing, models.CategoryFoodDining, models.CategoryShopping,
		models.CategoryOther, models.CategoryUtilities,
	}, names)

	other := report.TopCategories[3]
	assert.True(t, dec("155.50").Equal(other.Amount), other.Amount.String())
	assert.Equal(t, 4, other.Count)
}

func TestAggregate_SumInvariant(t *testing.T) {
	for n := 0; n < 40; n++ {
		var txs []models.Transaction
		for i := 0; i <= n; i++ {
			category := models.Categories()[i%len(models.Categories())]
			txs = append(txs, tx(time.Month(1+i%12), 1+i%28, "x", fmt.Sprintf("-%d.%02d", 7*i+3, i%100), category))
		}
		for _, topN := range []int{5, 7, 10} {
			report := Aggregate(txs, topN)
			assert.LessOrEqual(t, len(report.TopCategories), topN)
			assert.True(t, sumTop(report).Equal(report.TotalSpent), "n=%d topN=%d", n, topN)
			for i := 1; i < len(report.TopCategories); i++ {
				prev, cur := report.TopCategories[i-1], report.TopCategories[i]
				assert.True(t, prev.Amount.GreaterThanOrEqual(cur.Amount))
			}
		}
	}
}

func TestAggregate_MonthlyTotals(t *testing.T) {
	report := Aggregate([]models.Transaction{
		tx(time.February, 3, "b", "-50", models.CategoryShopping),
		tx(time.January, 3, "a", "-100", models.CategoryShopping),
		tx(time.February, 5, "pay", "2000", models.CategoryIncome),
		tx(time.February, 6, "zero", "0", ""),
	}, 5)

	require.Len(t, report.MonthlyTotals, 2)
	assert.Equal(t, "2024-01", report.MonthlyTotals[0].Month)
	assert.Equal(t, "2024-02", report.MonthlyTotals[1].Month)
	assert.True(t, dec("50").Equal(report.MonthlyTotals[1].Spent))
	assert.True(t, dec("2000").Equal(report.MonthlyTotals[1].Income))
	assert.Equal(t, 4, report.TransactionCount)
}

func TestAnalyze_Recommendation(t *testing.T) {
	income := dec("5000")
	report, err := NewAnalyzer(Options{}, nil, nil, nil).Analyze(context.Background(), []models.Transaction{
		tx(time.January, 1, "Rent", "-1500", models.CategoryHousing),
		tx(time.January, 2, "Movies", "-100", models.CategoryEntertainment),
		tx(time.January, 3, "Brokerage", "-400", models.CategorySavings),
	}, &income)
	require.NoError(t, err)
	require.NotNil(t, report.Recommendation)

	rec := report.Recommendation
	assert.True(t, dec("2500").Equal(rec.Needs))
	assert.True(t, dec("1500").Equal(rec.Wants))
	assert.True(t, dec("1000").Equal(rec.Savings))
	assert.True(t, dec("1500").Equal(rec.ActualNeeds))
	assert.True(t, dec("100").Equal(rec.ActualWants))
	assert.True(t, dec("400").Equal(rec.ActualSavings))
}

func TestAnalyze_InsightsFromCompleter(t *testing.T) {
	completer := &aiclient.FakeCompleter{Responses: []string{
		"1. Housing takes the largest share of your spending this month.\n" +
			"2. **Dining out** could be trimmed by planning meals ahead of time.\n" +
			"ok\n" +
			"- You earned far more than you spent, which is a great position to be in.\n" +
			"* Keep automating a transfer to savings right after payday.\n" +
			"5) A fifth line that should be cut by the configured limit.",
	}}
	tips := &fakeTips{results: []models.SearchResult{{Document: models.KnowledgeDocument{ID: "bt_001", Text: "Track every expense for a month."}}}}
	a := NewAnalyzer(Options{MaxInsights: 4}, completer, tips, nil)

	txs := []models.Transaction{
		tx(time.January, 1, "Secret Landlord LLC", "-1500", models.CategoryHousing),
		tx(time.January, 3, "Corner Bistro", "-234.56", models.CategoryFoodDining),
		tx(time.January, 15, "ACME Payroll", "4500", models.CategoryIncome),
	}
	report, err := a.Analyze(context.Background(), txs, nil)
	require.NoError(t, err)

	require.Len(t, report.Insights, 4)
	assert.Equal(t, "Housing takes the largest share of your spending this month.", report.Insights[0])
	assert.Equal(t, "Dining out could be trimmed by planning meals ahead of time.", report.Insights[1])

	require.Equal(t, 1, completer.CallCount())
	prompt := completer.Requests[0].Prompt
	assert.Contains(t, prompt, "Total spent: $1734.56")
	assert.Contains(t, prompt, "Track every expense for a month.")
	for _, t2 := range txs {
		assert.False(t, strings.Contains(prompt, t2.Description), "raw description %q leaked into prompt", t2.Description)
	}
	assert.Equal(t, "budgeting tips for Housing", tips.query)
}

func TestAnalyze_InsightFallback(t *testing.T) {
	tests := []struct {
		name      string
		completer *aiclient.FakeCompleter
	}{
		{"completion fails", &aiclient.FakeCompleter{Err: errors.New("unreachable")}},
		{"answer too short", &aiclient.FakeCompleter{Responses: []string{"Spend less."}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := logging.NewMockLogger()
			a := NewAnalyzer(Options{MaxInsights: 3}, tt.completer, &fakeTips{err: errors.New("no index")}, mock)
			report, err := a.Analyze(context.Background(), []models.Transaction{
				tx(time.January, 5, "Rent", "-1000", models.CategoryHousing),
				tx(time.February, 5, "Rent", "-1200", models.CategoryHousing),
			}, nil)
			require.NoError(t, err)
			require.Len(t, report.Insights, 3)
			assert.Contains(t, report.Insights[0], "Your top spending category is Housing")
			assert.Equal(t, "Spending in 2024-02 was up 20.0% compared with 2024-01.", report.Insights[2])
			assert.NotEmpty(t, mock.GetEntriesByLevel("WARN"))
		})
	}
}

func TestParseInsights(t *testing.T) {
	got := ParseInsights("\r\n- short\n\n• This line is long enough to count.\r\n", 5)
	assert.Equal(t, []string{"This line is long enough to count."}, got)
}

type fakeTips struct {
	results []models.SearchResult
	err     error
	query   string
}

func (f *fakeTips) Search(_ context.Context, query string, _ int) ([]models.SearchResult, error) {
	f.query = query
	return f.results, f.err
}
