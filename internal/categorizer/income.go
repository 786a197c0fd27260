package categorizer

import (
	"context"

	"fjacquet/finance-advisor/internal/models"
)

// IncomeStrategy classifies every positive amount as Income.
type IncomeStrategy struct{}

func (IncomeStrategy) Name() string { return models.SourceIncome }

func (IncomeStrategy) Categorize(_ context.Context, tx models.Transaction) (string, bool, error) {
	if tx.IsIncome() {
		return models.CategoryIncome, true, nil
	}
	return "", false, nil
}
