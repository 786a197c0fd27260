package categorizer

import (
	"context"

	"fjacquet/finance-advisor/internal/models"
)

// Strategy is one step of the categorization chain.
type Strategy interface {
	// Categorize returns the category label and true when the strategy
	// recognizes the transaction. A non-nil error means the strategy could not
	// decide; the chain moves on to the next step.
	Categorize(ctx context.Context, tx models.Transaction) (string, bool, error)

	// Name identifies the strategy in logs and in CategorySource.
	Name() string
}

// MappingStore is the persistence the categorizer needs for its rule table
// and its manual and learned merchant mappings.
type MappingStore interface {
	LoadRules() ([]models.CategoryRule, error)
	LoadMerchantMappings() (models.MerchantMappings, error)
	SaveMerchantMappings(mappings models.MerchantMappings) error
}
