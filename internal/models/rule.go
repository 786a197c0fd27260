package models

// CategoryRule maps a keyword to a category. Rules are evaluated in slice
// order and the first keyword found at the start of a word of a normalized
// description wins, so specific keywords ("gas bill", "car rental") must
// precede generic ones ("gas", "rent").
type CategoryRule struct {
	Keyword  string `json:"keyword" yaml:"keyword"`
	Category string `json:"category" yaml:"category"`
}

// DefaultRules returns the built-in rule table.
func DefaultRules() []CategoryRule {
	groups := []struct {
		category string
		keywords []string
	}{
		{CategoryTransportation, []string{"car rental", "rental car"}},
		{CategoryHousing, []string{"rent", "mortgage", "property tax", "hoa", "home insurance"}},
		{CategoryUtilities, []string{"gas bill", "electric", "water", "internet", "phone"}},
		{CategoryHealthcare, []string{"health insurance", "doctor", "hospital", "pharmacy", "medical"}},
		{CategoryTransportation, []string{"car payment", "auto insurance", "gas", "fuel", "uber", "lyft", "parking"}},
		{CategoryDebtPayment, []string{"credit card payment", "loan"}},
		{CategoryFoodDining, []string{"grocery", "restaurant", "cafe", "starbucks", "food", "dining"}},
		{CategoryEntertainment, []string{"netflix", "spotify", "movie", "concert", "game"}},
		{CategoryShopping, []string{"amazon", "target", "walmart", "clothing", "electronics"}},
		{CategoryPersonalCare, []string{"gym", "salon", "haircut", "spa"}},
		{CategoryEducation, []string{"tuition", "books", "course"}},
		{CategorySubscriptions, []string{"subscription", "membership"}},
		{CategoryInsurance, []string{"insurance"}},
		{CategorySavings, []string{"savings", "investment"}},
		{CategoryIncome, []string{"salary", "paycheck", "income", "deposit"}},
	}

	var rules []CategoryRule
	for _, g := range groups {
		for _, kw := range g.keywords {
			rules = append(rules, CategoryRule{Keyword: kw, Category: g.category})
		}
	}
	return rules
}

// MerchantMappings holds the normalized description -> category tables.
// Manual corrections are consulted before any rule; Learned holds answers of
// the language model and is only consulted in its place.
type MerchantMappings struct {
	Manual  map[string]string `json:"merchants" yaml:"merchants"`
	Learned map[string]string `json:"learned,omitempty" yaml:"learned,omitempty"`
}
