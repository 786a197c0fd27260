// Package categorize handles transaction categorization commands
package categorize

import (
	"fmt"
	"io"
	"strings"

	"fjacquet/finance-advisor/cmd/root"
	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/common"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"

	"github.com/spf13/cobra"
)

var (
	description string
	amount      string
	date        string
	category    string
	asCSV       bool
)

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize transactions by description",
	Long: `Categorize a CSV file of transactions (--input) or a single transaction
(--description). Categories come from learned merchant mappings, keyword rules,
the income rule and, when enabled, the AI provider.

Passing --category with --description records a manual mapping that is used
for that merchant from then on.`,
	RunE: run,
}

func init() {
	Cmd.Flags().StringVarP(&description, "description", "d", "", "Transaction description to categorize")
	Cmd.Flags().StringVarP(&amount, "amount", "a", "", "Transaction amount, negative for expenses (optional)")
	Cmd.Flags().StringVarP(&date, "date", "t", "", "Transaction date YYYY-MM-DD (optional)")
	Cmd.Flags().StringVarP(&category, "category", "c", "", "Assign this category and remember it for the merchant")
	Cmd.Flags().BoolVar(&asCSV, "csv", false, "Write categorized transactions as CSV instead of a report")
}

type fileResult struct {
	Transactions []models.Transaction       `json:"transactions" yaml:"transactions"`
	Warnings     []apperror.ValidationError `json:"warnings" yaml:"warnings"`
	Stats        models.CategorizationStats `json:"stats" yaml:"stats"`
}

type singleResult struct {
	Transaction models.Transaction `json:"transaction" yaml:"transaction"`
	Category    string             `json:"category" yaml:"category"`
	Source      string             `json:"source" yaml:"source"`
	AIFailed    bool               `json:"ai_failed" yaml:"ai_failed"`
}

func run(cmd *cobra.Command, args []string) error {
	if root.SharedFlags.Input != "" {
		return categorizeFile(cmd, root.SharedFlags.Input)
	}
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("either --input or --description is required")
	}
	return categorizeOne(cmd)
}

func categorizeFile(cmd *cobra.Command, path string) error {
	c, err := root.RequireContainer()
	if err != nil {
		return err
	}
	logger := c.GetLogger()

	imported, err := c.GetCSVCodec().ReadTransactionsFile(path)
	if err != nil {
		return err
	}
	for _, w := range imported.Warnings {
		logger.Warn("Skipped CSV row", logging.F(logging.FieldRow, w.Row), logging.F(logging.FieldReason, w.Error()))
	}

	categorized, stats := c.GetCategorizer().CategorizeAll(root.Context(cmd), imported.Transactions)
	logger.Info("Categorized transactions",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(categorized)))

	if asCSV {
		return root.WithOutput(cmd, func(w io.Writer) error {
			return c.GetCSVCodec().WriteTransactions(w, categorized)
		})
	}
	warnings := imported.Warnings
	if warnings == nil {
		warnings = []apperror.ValidationError{}
	}
	return root.WriteResult(cmd, fileResult{Transactions: categorized, Warnings: warnings, Stats: stats})
}

func categorizeOne(cmd *cobra.Command) error {
	c, err := root.RequireContainer()
	if err != nil {
		return err
	}

	tx := models.Transaction{Description: strings.TrimSpace(description)}
	if amount != "" {
		if tx.Amount, err = common.ParseAmount(amount); err != nil {
			return apperror.NewValidationError("amount", amount, "expected a signed decimal number")
		}
	}
	if date != "" {
		if tx.Date, err = models.ParseDate(date); err != nil {
			return apperror.NewValidationError("date", date, "expected an ISO date (YYYY-MM-DD)")
		}
	}

	var aiFailed bool
	if category != "" {
		tx, err = c.GetCategorizer().Recategorize(tx, category)
		if err != nil {
			return err
		}
	} else {
		tx, aiFailed = c.GetCategorizer().Categorize(root.Context(cmd), tx)
	}

	c.GetLogger().Info("Transaction categorized",
		logging.F(logging.FieldDescription, tx.Description),
		logging.F(logging.FieldCategory, tx.Category),
		logging.F(logging.FieldSource, tx.CategorySource))

	return root.WriteResult(cmd, singleResult{
		Transaction: tx,
		Category:    tx.Category,
		Source:      tx.CategorySource,
		AIFailed:    aiFailed,
	})
}
