// Package analyze implements the spending analysis command.
package analyze

import (
	"fmt"

	"fjacquet/finance-advisor/cmd/root"
	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/batch"
	"fjacquet/finance-advisor/internal/common"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var income string

// Cmd represents the analyze command
var Cmd = &cobra.Command{
	Use:   "analyze [file or directory...]",
	Short: "Analyze spending across one or more CSV statements",
	Long: `Analyze categorizes the transactions of one or more CSV statements and
reports totals, top categories, monthly totals and insights. Directories are
expanded to the .csv files they contain; statements are merged in date order
and transactions appearing in more than one file are reported.

With --income the report includes a 50/30/20 budget recommendation.`,
	RunE: run,
}

func init() {
	Cmd.Flags().StringVar(&income, "income", "", "Monthly income for the 50/30/20 recommendation")
}

type result struct {
	Range       batch.DateRange            `json:"range" yaml:"range"`
	SourceFiles []string                   `json:"source_files" yaml:"source_files"`
	Duplicates  []batch.Duplicate          `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	Stats       models.CategorizationStats `json:"categorization" yaml:"categorization"`
	Report      *models.AnalysisReport     `json:"report" yaml:"report"`
}

func run(cmd *cobra.Command, args []string) error {
	c, err := root.RequireContainer()
	if err != nil {
		return err
	}

	inputs := append([]string(nil), args...)
	if root.SharedFlags.Input != "" {
		inputs = append(inputs, root.SharedFlags.Input)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("at least one CSV file is required (argument or --input)")
	}

	var monthlyIncome *decimal.Decimal
	if income != "" {
		value, err := common.ParseAmount(income)
		if err != nil {
			return apperror.NewValidationError("income", income, "expected a decimal number")
		}
		monthlyIncome = &value
	}

	files, err := batch.ExpandInputs(inputs)
	if err != nil {
		return err
	}
	ctx := root.Context(cmd)
	merged, err := c.GetAggregator().Merge(ctx, files)
	if err != nil {
		return err
	}

	categorized, stats := c.GetCategorizer().CategorizeAll(ctx, merged.Transactions)
	report, err := c.GetAnalyzer().Analyze(ctx, categorized, monthlyIncome)
	if err != nil {
		return err
	}
	if len(merged.Warnings) > 0 {
		report.Warnings = merged.Warnings
	}

	c.GetLogger().Info("Spending analysis complete",
		logging.F(logging.FieldCount, report.TransactionCount),
		logging.F("range", merged.Range.String()))

	return root.WriteResult(cmd, result{
		Range:       merged.Range,
		SourceFiles: merged.SourceFiles,
		Duplicates:  merged.Duplicates,
		Stats:       stats,
		Report:      report,
	})
}
