package health

import "fjacquet/finance-advisor/internal/models"

// Status maps a 0-100 score to a status label.
func Status(score float64) string {
	switch {
	case score >= 80:
		return models.HealthExcellent
	case score >= 60:
		return models.HealthGood
	case score >= 40:
		return models.HealthFair
	default:
		return models.HealthNeedsImprovement
	}
}

// Grade maps a composite score to a letter.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// Summary is a one-sentence reading of a composite score.
func Summary(score int) string {
	switch Status(float64(score)) {
	case models.HealthExcellent:
		return "Excellent financial health! Keep up the great work."
	case models.HealthGood:
		return "Good financial health with room for improvement."
	case models.HealthFair:
		return "Fair financial health. Focus on key areas for improvement."
	default:
		return "Financial health needs attention. Let's create an improvement plan."
	}
}

var recommendationText = map[string]string{
	models.MetricSavingsRate:        "Raise your savings rate toward 20% of income by automating a transfer to savings on payday.",
	models.MetricDebtToIncome:       "Pay down high-interest debt first; aim to keep total debt below half of your annual income.",
	models.MetricEmergencyFund:      "Build your emergency fund toward 6 months of expenses, starting with a first goal of 3 months.",
	models.MetricSpendingDiscipline: "Trim discretionary spending so that at least 30% of income is left after expenses.",
}

// Recommendations returns one recommendation per sub-score below the
// threshold, weakest first.
func (s *Scorer) Recommendations(breakdown map[string]float64) []string {
	out := []string{}
	for _, metric := range sortedBelow(breakdown, s.threshold) {
		out = append(out, recommendationText[metric])
	}
	return out
}

var peerBrackets = []struct {
	label   string
	maxAge  int
	average int
}{
	{"18-25", 25, 55},
	{"26-35", 35, 62},
	{"36-45", 45, 68},
	{"46-55", 55, 72},
	{"56+", 1 << 30, 75},
}

// ComparePeers places score against the average of the age bracket. The
// averages are fixed reference values.
func ComparePeers(score, age int) *models.PeerComparison {
	bracket := peerBrackets[len(peerBrackets)-1]
	for _, b := range peerBrackets {
		if age <= b.maxAge {
			bracket = b
			break
		}
	}
	diff := score - bracket.average
	percentile := 50 + 2*diff
	if percentile < 1 {
		percentile = 1
	}
	if percentile > 99 {
		percentile = 99
	}
	return &models.PeerComparison{
		AgeBracket:  bracket.label,
		PeerAverage: bracket.average,
		Difference:  diff,
		Percentile:  percentile,
	}
}

// Benchmarks returns the reference ranges per sub-score.
func Benchmarks() []models.Benchmark {
	return []models.Benchmark{
		{
			Metric:      models.MetricSavingsRate,
			Description: "Share of monthly income left after expenses",
			Excellent:   "16% or more",
			Good:        "12-16%",
			Fair:        "8-12%",
			Poor:        "below 8%",
		},
		{
			Metric:      models.MetricDebtToIncome,
			Description: "Total debt divided by annual income",
			Excellent:   "below 10%",
			Good:        "10-20%",
			Fair:        "20-30%",
			Poor:        "above 30%",
		},
		{
			Metric:      models.MetricEmergencyFund,
			Description: "Months of expenses covered by liquid savings",
			Excellent:   "4.8 months or more",
			Good:        "3.6-4.8 months",
			Fair:        "2.4-3.6 months",
			Poor:        "below 2.4 months",
		},
		{
			Metric:      models.MetricSpendingDiscipline,
			Description: "Share of income not consumed by expenses",
			Excellent:   "19% or more",
			Good:        "11-19%",
			Fair:        "5-11%",
			Poor:        "below 5%",
		},
	}
}
