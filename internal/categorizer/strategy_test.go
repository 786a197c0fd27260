package categorizer

import (
	"context"
	"strings"
	"testing"

	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordStrategy_FirstMatchWins(t *testing.T) {
	s := NewKeywordStrategy([]models.CategoryRule{
		{Keyword: "Whole Foods", Category: models.CategoryFoodDining},
		{Keyword: "", Category: models.CategoryShopping},
		{Keyword: "foods", Category: models.CategoryShopping},
	}, nil)

	assert.Len(t, s.Rules(), 2)

	label, ok, err := s.Categorize(context.Background(), tx(1, "WHOLE-FOODS #123", "-10"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.CategoryFoodDining, label)

	label, ok, _ = s.Categorize(context.Background(), tx(1, "frozen foods", "-10"))
	assert.True(t, ok)
	assert.Equal(t, models.CategoryShopping, label)

	_, ok, _ = s.Categorize(context.Background(), tx(1, "  ", "-10"))
	assert.False(t, ok)

	_, ok, _ = s.Categorize(context.Background(), tx(1, "seafoods market", "-10"))
	assert.False(t, ok, "keywords only match at the start of a word")
}

func TestContainsAtWordStart(t *testing.T) {
	tests := []struct {
		desc    string
		keyword string
		want    bool
	}{
		{"rent january", "rent", true},
		{"hertz car rental", "rent", true},
		{"current account", "rent", false},
		{"current rent", "rent", true},
		{"vegas hotel", "gas", false},
		{"city gas bill", "gas bill", true},
		{"gas", "gas bill", false},
		{"", "gas", false},
	}
	for _, tt := range tests {
		t.Run(tt.desc+"/"+tt.keyword, func(t *testing.T) {
			assert.Equal(t, tt.want, containsAtWordStart(tt.desc, tt.keyword))
		})
	}
}

func TestDirectMappingStrategy(t *testing.T) {
	s := NewDirectMappingStrategy(map[string]string{
		"Joe's Diner": "food & dining",
		"Mystery":     "Not A Category",
	}, nil)

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, models.SourceMerchant, s.Name())

	label, ok, err := s.Categorize(context.Background(), tx(1, "JOE'S DINER", "-10"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.CategoryFoodDining, label)

	_, ok, _ = s.Categorize(context.Background(), tx(1, "Joe's Diner downtown", "-10"))
	assert.False(t, ok, "mapping is an exact match on the normalized description")

	_, dirty := s.Snapshot()
	assert.False(t, dirty)
	assert.True(t, s.Learn("Joe's Diner downtown", models.CategoryFoodDining))
	assert.False(t, s.Learn("joe s diner downtown", models.CategoryFoodDining))
	assert.False(t, s.Learn("!!", models.CategoryFoodDining))

	snapshot, dirty := s.Snapshot()
	assert.True(t, dirty)
	assert.Len(t, snapshot, 2)
	s.MarkClean()
	_, dirty = s.Snapshot()
	assert.False(t, dirty)
}

func TestIncomeStrategy(t *testing.T) {
	var s IncomeStrategy
	label, ok, _ := s.Categorize(context.Background(), tx(1, "x", "0.01"))
	assert.True(t, ok)
	assert.Equal(t, models.CategoryIncome, label)

	_, ok, _ = s.Categorize(context.Background(), tx(1, "x", "0"))
	assert.False(t, ok)
	_, ok, _ = s.Categorize(context.Background(), tx(1, "x", "-1"))
	assert.False(t, ok)
}

func TestAIStrategy_Prompt(t *testing.T) {
	completer := &aiclient.FakeCompleter{Responses: []string{"Utilities"}}
	s := NewAIStrategy(completer, nil)

	label, ok, err := s.Categorize(context.Background(), tx(1, "COMCAST*Cable #42", "-80"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.CategoryUtilities, label)

	require.Len(t, completer.Requests, 1)
	prompt := completer.Requests[0].Prompt
	for _, category := range models.Categories() {
		assert.True(t, strings.Contains(prompt, category), category)
	}
	assert.Contains(t, prompt, "Transaction description: comcast cable 42\n")
	assert.NotContains(t, prompt, "COMCAST*")
	assert.Contains(t, prompt, "Direction: expense")
	assert.NotContains(t, prompt, "-80")
}

func TestAIStrategy_NilCompleter(t *testing.T) {
	_, ok, err := NewAIStrategy(nil, nil).Categorize(context.Background(), tx(1, "x", "-1"))
	assert.NoError(t, err)
	assert.False(t, ok)
}
