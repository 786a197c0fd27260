package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCanonicalCategory(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"Food & Dining", CategoryFoodDining, true},
		{"  food & dining ", CategoryFoodDining, true},
		{"HOUSING", CategoryHousing, true},
		{"Groceries", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := CanonicalCategory(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategoriesIsACopy(t *testing.T) {
	list := Categories()
	list[0] = "Tampered"
	assert.Equal(t, CategoryHousing, Categories()[0])
	assert.Contains(t, Categories(), CategoryOther)
}

func TestDefaultRules_OnlyKnownCategories(t *testing.T) {
	rules := DefaultRules()
	require.NotEmpty(t, rules)
	for _, r := range rules {
		assert.True(t, IsValidCategory(r.Category), "rule %q maps to unknown category %q", r.Keyword, r.Category)
	}
}

func TestDefaultRules_SpecificBeforeGeneric(t *testing.T) {
	index := map[string]int{}
	for i, r := range DefaultRules() {
		index[r.Keyword] = i
	}
	assert.Less(t, index["gas bill"], index["gas"])
	assert.Less(t, index["car rental"], index["rent"])
	assert.Less(t, index["home insurance"], index["insurance"])
	assert.Less(t, index["health insurance"], index["insurance"])
	assert.Less(t, index["credit card payment"], index["loan"])
}

func TestDate_JSONAndYAML(t *testing.T) {
	d := NewDate(2024, time.January, 15)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-15"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, d.Equal(back.Time))

	var fromYAML struct {
		Deadline Date `yaml:"deadline"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("deadline: 2025-06-30\n"), &fromYAML))
	assert.Equal(t, "2025-06-30", fromYAML.Deadline.String())

	assert.Error(t, json.Unmarshal([]byte(`"30/06/2025"`), &back))
}

func TestTransaction_WithCategoryDoesNotMutate(t *testing.T) {
	tx := Transaction{Description: "Starbucks", Amount: decimal.RequireFromString("-5.50")}
	categorized := tx.WithCategory(CategoryFoodDining, SourceKeyword)

	assert.Empty(t, tx.Category)
	assert.Equal(t, CategoryFoodDining, categorized.Category)
	assert.True(t, categorized.IsExpense())
	assert.Equal(t, CategoryOther, tx.CategoryOrOther())
}

func TestGoal_GapAndProgress(t *testing.T) {
	g := Goal{TargetAmount: decimal.NewFromInt(1000), CurrentAmount: decimal.NewFromInt(1200)}
	assert.True(t, g.Gap().IsZero())
	assert.Equal(t, 100.0, g.ProgressPercent())

	g.CurrentAmount = decimal.NewFromInt(250)
	assert.Equal(t, "750", g.Gap().String())
	assert.InDelta(t, 25.0, g.ProgressPercent(), 1e-9)
}

func TestCategorizationStats(t *testing.T) {
	var stats CategorizationStats
	stats.Record(SourceKeyword)
	stats.Record(SourceDefault)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 50.0, stats.FallbackRate())
	assert.Equal(t, BucketNeeds, BudgetBucket(CategoryHousing))
	assert.Equal(t, BucketWants, BudgetBucket(CategoryEntertainment))
	assert.Equal(t, BucketSavings, BudgetBucket(CategorySavings))
}
