// Package health computes a bounded financial wellness score from a handful
// of ratios: savings rate, debt-to-income, emergency fund coverage and
// spending discipline.
package health

import (
	"fmt"
	"math"
	"sort"

	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"

	"github.com/shopspring/decimal"
)

// Scoring constants.
const (
	// TargetSavingsRate earns a full savings sub-score.
	TargetSavingsRate = 0.20
	// MaxDebtToIncome zeroes the debt sub-score. The ratio is total debt over
	// annual income.
	MaxDebtToIncome = 0.50
	// TargetEmergencyMonths earns a full emergency fund sub-score.
	TargetEmergencyMonths = 6.0
	// TargetSpendingMargin is the share of income left after expenses that
	// earns a full discipline sub-score.
	TargetSpendingMargin = 0.30

	DefaultRecommendationThreshold = 50.0
)

// Weights are the composite weights per sub-score. They must add up to 1.
type Weights struct {
	SavingsRate        float64
	DebtToIncome       float64
	EmergencyFund      float64
	SpendingDiscipline float64
}

// DefaultWeights returns the documented default weights.
func DefaultWeights() Weights {
	return Weights{SavingsRate: 0.25, DebtToIncome: 0.25, EmergencyFund: 0.30, SpendingDiscipline: 0.20}
}

func (w Weights) of(metric string) float64 {
	switch metric {
	case models.MetricSavingsRate:
		return w.SavingsRate
	case models.MetricDebtToIncome:
		return w.DebtToIncome
	case models.MetricEmergencyFund:
		return w.EmergencyFund
	case models.MetricSpendingDiscipline:
		return w.SpendingDiscipline
	}
	return 0
}

// Validate checks that weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	for _, v := range []float64{w.SavingsRate, w.DebtToIncome, w.EmergencyFund, w.SpendingDiscipline} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("health weights must not be negative: %+v", w)
		}
	}
	sum := w.SavingsRate + w.DebtToIncome + w.EmergencyFund + w.SpendingDiscipline
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("health weights must sum to 1, got %.4f", sum)
	}
	return nil
}

// metrics fixes the order sub-scores are reported in.
var metrics = []string{
	models.MetricSavingsRate,
	models.MetricDebtToIncome,
	models.MetricEmergencyFund,
	models.MetricSpendingDiscipline,
}

// Scorer computes HealthScoreReports.
type Scorer struct {
	weights   Weights
	threshold float64
	completer aiclient.Completer
	tips      TipSearcher
	logger    logging.Logger
}

// NewScorer creates a Scorer. A threshold of zero selects the default.
func NewScorer(weights Weights, threshold float64, logger logging.Logger) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if threshold <= 0 {
		threshold = DefaultRecommendationThreshold
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Scorer{weights: weights, threshold: threshold, logger: logger}, nil
}

// Score validates in and computes the report. Every non-negative finite
// input yields a score in [0, 100]; a zero income zeroes the
// income-normalized sub-scores instead of failing.
func (s *Scorer) Score(in models.HealthInput) (*models.HealthScoreReport, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	income := in.MonthlyIncome.InexactFloat64()
	expenses := in.MonthlyExpenses.InexactFloat64()
	debt := in.Debt.InexactFloat64()

	var savingsRate, dti, margin float64
	if income > 0 {
		savingsRate = (income - expenses) / income
		dti = debt / (12 * income)
		margin = 1 - expenses/income
	}

	details := []models.SubScore{
		s.sub(models.MetricSavingsRate, savingsRate, savingsScore(income, savingsRate)),
		s.sub(models.MetricDebtToIncome, dti, debtScore(income, dti)),
		s.sub(models.MetricEmergencyFund, in.EmergencyFundMonths, emergencyScore(in.EmergencyFundMonths)),
		s.sub(models.MetricSpendingDiscipline, margin, disciplineScore(income, margin)),
	}

	report := &models.HealthScoreReport{
		Breakdown: make(map[string]float64, len(details)),
		Details:   details,
	}
	for _, d := range details {
		report.Breakdown[d.Name] = d.Score
	}
	report.Score = s.Composite(report.Breakdown)
	report.Grade = Grade(report.Score)
	report.Status = Status(float64(report.Score))
	report.Summary = Summary(report.Score)
	report.Recommendations = s.Recommendations(report.Breakdown)
	if in.Age > 0 {
		report.PeerComparison = ComparePeers(report.Score, in.Age)
	}

	s.logger.Debug("Computed health score",
		logging.F("score", report.Score),
		logging.F("breakdown", report.Breakdown))
	return report, nil
}

func (s *Scorer) sub(name string, value, score float64) models.SubScore {
	score = round1(clamp(score, 0, 100))
	return models.SubScore{
		Name:   name,
		Score:  score,
		Weight: s.weights.of(name),
		Value:  round3(value),
		Status: Status(score),
	}
}

// Composite is the weighted sum of breakdown, rounded to the nearest integer
// and clamped to [0, 100]. It depends on nothing but its argument and the
// weights.
func (s *Scorer) Composite(breakdown map[string]float64) int {
	total := 0.0
	for _, metric := range metrics {
		total += s.weights.of(metric) * clamp(breakdown[metric], 0, 100)
	}
	return int(clamp(math.Round(total), 0, 100))
}

func savingsScore(income, rate float64) float64 {
	if income <= 0 || rate <= 0 {
		return 0
	}
	return rate / TargetSavingsRate * 100
}

func debtScore(income, dti float64) float64 {
	if income <= 0 {
		return 0
	}
	return (1 - dti/MaxDebtToIncome) * 100
}

func emergencyScore(months float64) float64 {
	return months / TargetEmergencyMonths * 100
}

// disciplineScore rises with the square root of the margin so that the
// first few percent kept matter most.
func disciplineScore(income, margin float64) float64 {
	if income <= 0 || margin <= 0 {
		return 0
	}
	return 100 * math.Sqrt(math.Min(margin/TargetSpendingMargin, 1))
}

func validateInput(in models.HealthInput) error {
	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"income", in.MonthlyIncome},
		{"expenses", in.MonthlyExpenses},
		{"savings", in.Savings},
		{"debt", in.Debt},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return apperror.NewValidationError(a.field, a.value.String(), "must not be negative")
		}
	}
	months := in.EmergencyFundMonths
	if math.IsNaN(months) || math.IsInf(months, 0) || months < 0 {
		return apperror.NewValidationError("emergency_fund_months", fmt.Sprint(months), "must be a non-negative number")
	}
	if in.Age < 0 || in.Age > 130 {
		return apperror.NewValidationError("age", fmt.Sprint(in.Age), "must be between 0 and 130")
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// sortedBelow returns the metrics of breakdown scoring below threshold,
// lowest first and by name on ties.
func sortedBelow(breakdown map[string]float64, threshold float64) []string {
	var below []string
	for _, metric := range metrics {
		if breakdown[metric] < threshold {
			below = append(below, metric)
		}
	}
	sort.SliceStable(below, func(i, j int) bool {
		if breakdown[below[i]] != breakdown[below[j]] {
			return breakdown[below[i]] < breakdown[below[j]]
		}
		return below[i] < below[j]
	})
	return below
}
