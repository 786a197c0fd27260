package models

import "strings"

// Category labels. The taxonomy is closed: every categorized transaction
// carries exactly one of these.
const (
	CategoryHousing        = "Housing"
	CategoryTransportation = "Transportation"
	CategoryFoodDining     = "Food & Dining"
	CategoryUtilities      = "Utilities"
	CategoryHealthcare     = "Healthcare"
	CategoryEntertainment  = "Entertainment"
	CategoryShopping       = "Shopping"
	CategoryPersonalCare   = "Personal Care"
	CategoryEducation      = "Education"
	CategorySubscriptions  = "Subscriptions"
	CategoryInsurance      = "Insurance"
	CategoryDebtPayment    = "Debt Payment"
	CategorySavings        = "Savings"
	CategoryIncome         = "Income"
	CategoryOther          = "Other"
)

var taxonomy = []string{
	CategoryHousing,
	CategoryTransportation,
	CategoryFoodDining,
	CategoryUtilities,
	CategoryHealthcare,
	CategoryEntertainment,
	CategoryShopping,
	CategoryPersonalCare,
	CategoryEducation,
	CategorySubscriptions,
	CategoryInsurance,
	CategoryDebtPayment,
	CategorySavings,
	CategoryIncome,
	CategoryOther,
}

// Categories returns the closed category list in display order.
func Categories() []string {
	out := make([]string, len(taxonomy))
	copy(out, taxonomy)
	return out
}

// CanonicalCategory resolves a label case-insensitively to its canonical
// spelling. The second result is false when the label is not in the taxonomy.
func CanonicalCategory(label string) (string, bool) {
	label = strings.TrimSpace(label)
	for _, c := range taxonomy {
		if strings.EqualFold(c, label) {
			return c, true
		}
	}
	return "", false
}

// IsValidCategory reports whether label is in the taxonomy (exact spelling).
func IsValidCategory(label string) bool {
	for _, c := range taxonomy {
		if c == label {
			return true
		}
	}
	return false
}

// Budget buckets of the 50/30/20 rule.
const (
	BucketNeeds   = "needs"
	BucketWants   = "wants"
	BucketSavings = "savings"
)

// BudgetBucket classifies a spending category for the 50/30/20 rule.
func BudgetBucket(category string) string {
	switch category {
	case CategoryHousing, CategoryTransportation, CategoryUtilities,
		CategoryHealthcare, CategoryInsurance, CategoryDebtPayment, CategoryEducation:
		return BucketNeeds
	case CategorySavings:
		return BucketSavings
	default:
		return BucketWants
	}
}
