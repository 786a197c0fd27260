package models

import "github.com/shopspring/decimal"

// Health sub-score names.
const (
	MetricSavingsRate        = "savings_rate"
	MetricDebtToIncome       = "debt_to_income"
	MetricEmergencyFund      = "emergency_fund"
	MetricSpendingDiscipline = "spending_discipline"
)

// Health statuses, used for the composite score and each sub-score.
const (
	HealthExcellent        = "excellent"
	HealthGood             = "good"
	HealthFair             = "fair"
	HealthNeedsImprovement = "needs_improvement"
)

// HealthInput holds the facts the health scorer works from. Income and
// expenses are monthly; Savings and Debt are balances.
type HealthInput struct {
	MonthlyIncome       decimal.Decimal `json:"income" yaml:"income"`
	MonthlyExpenses     decimal.Decimal `json:"expenses" yaml:"expenses"`
	Savings             decimal.Decimal `json:"savings" yaml:"savings"`
	Debt                decimal.Decimal `json:"debt" yaml:"debt"`
	EmergencyFundMonths float64         `json:"emergency_fund_months" yaml:"emergency_fund_months"`
	// Age enables the peer comparison when positive.
	Age int `json:"age,omitempty" yaml:"age,omitempty"`
}

// SubScore is one weighted component of the health score.
type SubScore struct {
	Name   string  `json:"name" yaml:"name"`
	Score  float64 `json:"score" yaml:"score"`
	Weight float64 `json:"weight" yaml:"weight"`
	// Value is the underlying ratio (or months for the emergency fund).
	Value  float64 `json:"value" yaml:"value"`
	Status string  `json:"status" yaml:"status"`
}

// PeerComparison places a score against the average of an age bracket.
type PeerComparison struct {
	AgeBracket  string `json:"age_bracket" yaml:"age_bracket"`
	PeerAverage int    `json:"peer_average" yaml:"peer_average"`
	Difference  int    `json:"difference" yaml:"difference"`
	Percentile  int    `json:"percentile" yaml:"percentile"`
}

// HealthScoreReport is the scorer's output. Score is derived from Breakdown
// and the configured weights only.
type HealthScoreReport struct {
	Score           int                `json:"score" yaml:"score"`
	Grade           string             `json:"grade" yaml:"grade"`
	Status          string             `json:"status" yaml:"status"`
	Summary         string             `json:"summary" yaml:"summary"`
	Breakdown       map[string]float64 `json:"breakdown" yaml:"breakdown"`
	Details         []SubScore         `json:"details" yaml:"details"`
	Recommendations []string           `json:"recommendations" yaml:"recommendations"`
	PeerComparison  *PeerComparison    `json:"peer_comparison,omitempty" yaml:"peer_comparison,omitempty"`
	ActionItems     []ActionItem       `json:"action_items,omitempty" yaml:"action_items,omitempty"`
}

// Action item priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

// ActionItem is a concrete next step for one weak sub-score.
type ActionItem struct {
	Area           string  `json:"area" yaml:"area"`
	Metric         string  `json:"metric" yaml:"metric"`
	CurrentScore   float64 `json:"current_score" yaml:"current_score"`
	Target         string  `json:"target" yaml:"target"`
	Priority       string  `json:"priority" yaml:"priority"`
	Recommendation string  `json:"recommendation" yaml:"recommendation"`
	// Tip is the knowledge snippet the recommendation drew on, if any.
	Tip string `json:"tip,omitempty" yaml:"tip,omitempty"`
}

// Benchmark gives the reference ranges for one metric.
type Benchmark struct {
	Metric      string `json:"metric" yaml:"metric"`
	Description string `json:"description" yaml:"description"`
	Excellent   string `json:"excellent" yaml:"excellent"`
	Good        string `json:"good" yaml:"good"`
	Fair        string `json:"fair" yaml:"fair"`
	Poor        string `json:"poor" yaml:"poor"`
}
