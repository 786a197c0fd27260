// Package health implements the financial health score command.
package health

import (
	"encoding/json"
	"fmt"
	"os"

	"fjacquet/finance-advisor/cmd/root"
	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/common"
	scoring "fjacquet/finance-advisor/internal/health"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	income          string
	expenses        string
	savings         string
	debt            string
	emergencyMonths float64
	age             int
)

// Cmd represents the health command
var Cmd = &cobra.Command{
	Use:   "health",
	Short: "Compute a financial health score",
	Long: `Compute a 0-100 financial health score from monthly income and expenses,
savings and debt balances and emergency fund coverage. The input can also be
read from a JSON file with --input using the fields income, expenses, savings,
debt, emergency_fund_months and age.`,
	RunE: run,
}

var benchmarksCmd = &cobra.Command{
	Use:   "benchmarks",
	Short: "Show the reference ranges used by the health score",
	RunE: func(cmd *cobra.Command, args []string) error {
		return root.WriteResult(cmd, map[string][]models.Benchmark{"benchmarks": scoring.Benchmarks()})
	},
}

func init() {
	Cmd.Flags().StringVar(&income, "income", "", "Monthly income")
	Cmd.Flags().StringVar(&expenses, "expenses", "", "Monthly expenses")
	Cmd.Flags().StringVar(&savings, "savings", "0", "Savings balance")
	Cmd.Flags().StringVar(&debt, "debt", "0", "Debt balance")
	Cmd.Flags().Float64Var(&emergencyMonths, "emergency-months", 0, "Months of expenses covered by the emergency fund")
	Cmd.Flags().IntVar(&age, "age", 0, "Age, enables the peer comparison")
	Cmd.AddCommand(benchmarksCmd)
}

func run(cmd *cobra.Command, args []string) error {
	c, err := root.RequireContainer()
	if err != nil {
		return err
	}

	var in models.HealthInput
	if root.SharedFlags.Input != "" {
		in, err = readInput(root.SharedFlags.Input)
	} else {
		in, err = flagInput()
	}
	if err != nil {
		return err
	}

	report, err := c.GetScorer().Assess(root.Context(cmd), in)
	if err != nil {
		return err
	}
	c.GetLogger().Info("Health score computed",
		logging.F("score", report.Score),
		logging.F("grade", report.Grade))
	return root.WriteResult(cmd, report)
}

func readInput(path string) (models.HealthInput, error) {
	var in models.HealthInput
	data, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("read health input: %w", err)
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, apperror.NewValidationError("input", path, fmt.Sprintf("invalid JSON: %v", err))
	}
	return in, nil
}

func flagInput() (models.HealthInput, error) {
	in := models.HealthInput{EmergencyFundMonths: emergencyMonths, Age: age}
	if income == "" || expenses == "" {
		return in, fmt.Errorf("--income and --expenses are required")
	}
	fields := []struct {
		name string
		raw  string
		into *decimal.Decimal
	}{
		{"income", income, &in.MonthlyIncome},
		{"expenses", expenses, &in.MonthlyExpenses},
		{"savings", savings, &in.Savings},
		{"debt", debt, &in.Debt},
	}
	for _, f := range fields {
		value, err := common.ParseAmount(f.raw)
		if err != nil {
			return in, apperror.NewValidationError(f.name, f.raw, "expected a decimal number")
		}
		*f.into = value
	}
	return in, nil
}
