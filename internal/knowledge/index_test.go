package knowledge

import (
	"context"
	"errors"
	"testing"

	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocs() []models.KnowledgeDocument {
	return []models.KnowledgeDocument{
		{ID: "b", Text: "beta", Source: models.CollectionBudgetingTips, Embedding: []float32{1, 0}},
		{ID: "a", Text: "alpha", Source: models.CollectionFinancialKnowledge, Embedding: []float32{1, 0}},
		{ID: "c", Text: "gamma", Source: models.CollectionTaxRules, Embedding: []float32{0, 1}},
		{ID: "d", Text: "delta", Source: models.CollectionBudgetingTips, Embedding: []float32{1, 1}},
	}
}

func newTestIndex(t *testing.T) (*Index, *aiclient.FakeEmbedder) {
	t.Helper()
	emb := &aiclient.FakeEmbedder{Vectors: map[string][]float32{"x axis": {1, 0}}}
	idx, err := NewIndex(testDocs(), emb, nil)
	require.NoError(t, err)
	return idx, emb
}

func TestIndex_SearchOrdering(t *testing.T) {
	idx, _ := newTestIndex(t)

	results, err := idx.Search(context.Background(), "x axis", 10)
	require.NoError(t, err)
	require.Len(t, results, 4)

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Document.ID
		assert.Nil(t, r.Document.Embedding)
	}
	assert.Equal(t, []string{"a", "b", "d", "c"}, ids)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-9)
	assert.InDelta(t, 0.7071, results[2].Similarity, 1e-4)
	assert.InDelta(t, 0.0, results[3].Similarity, 1e-9)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Similarity, results[i].Similarity)
	}
}

func TestIndex_SearchLimits(t *testing.T) {
	idx, _ := newTestIndex(t)

	tests := []struct {
		name string
		k    int
		want int
	}{
		{"one", 1, 1},
		{"three", 3, 3},
		{"exactly corpus", 4, 4},
		{"more than corpus", 50, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := idx.Search(context.Background(), "x axis", tt.k)
			require.NoError(t, err)
			assert.Len(t, results, tt.want)
		})
	}
}

func TestIndex_SearchValidation(t *testing.T) {
	idx, emb := newTestIndex(t)

	tests := []struct {
		name  string
		query string
		k     int
	}{
		{"empty query", "", 3},
		{"blank query", "   ", 3},
		{"zero k", "x axis", 0},
		{"negative k", "x axis", -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := idx.Search(context.Background(), tt.query, tt.k)
			require.Error(t, err)
			assert.Equal(t, apperror.KindValidation, apperror.Kind(err))
		})
	}
	assert.Equal(t, 0, emb.CallCount())
}

func TestIndex_SearchEmbeddingFailures(t *testing.T) {
	t.Run("dimension mismatch", func(t *testing.T) {
		emb := &aiclient.FakeEmbedder{Default: []float32{1, 0, 0}}
		idx, err := NewIndex(testDocs(), emb, nil)
		require.NoError(t, err)

		_, err = idx.Search(context.Background(), "anything", 2)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperror.ErrMalformedResponse))
	})

	t.Run("provider error", func(t *testing.T) {
		emb := &aiclient.FakeEmbedder{Err: &apperror.CapabilityError{
			Capability: aiclient.CapabilityEmbedding,
			Provider:   "fake",
			Kind:       apperror.CapabilityKindTimeout,
		}}
		idx, err := NewIndex(testDocs(), emb, nil)
		require.NoError(t, err)

		_, err = idx.Search(context.Background(), "anything", 2)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperror.ErrCapabilityTimeout))
	})
}

func TestIndex_Collection(t *testing.T) {
	idx, _ := newTestIndex(t)

	results, err := idx.Collection(models.CollectionBudgetingTips).Search(context.Background(), "x axis", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].Document.ID)
	assert.Equal(t, "d", results[1].Document.ID)

	results, err = idx.Collection("unknown").Search(context.Background(), "x axis", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNewIndex_Errors(t *testing.T) {
	emb := &aiclient.FakeEmbedder{}

	_, err := NewIndex(testDocs(), nil, nil)
	assert.Error(t, err)

	_, err = NewIndex([]models.KnowledgeDocument{{ID: "x", Text: "no vector"}}, emb, nil)
	assert.Error(t, err)

	_, err = NewIndex([]models.KnowledgeDocument{
		{ID: "x", Text: "x", Embedding: []float32{1, 0}},
		{ID: "y", Text: "y", Embedding: []float32{1, 0, 0}},
	}, emb, nil)
	assert.Error(t, err)

	idx, err := NewIndex(nil, emb, nil)
	require.NoError(t, err)
	results, err := idx.Search(context.Background(), "empty corpus", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIndex_DocumentsAreCopies(t *testing.T) {
	docs := testDocs()
	idx, err := NewIndex(docs, &aiclient.FakeEmbedder{}, nil)
	require.NoError(t, err)

	docs[0].Embedding[0] = 42
	assert.Equal(t, float32(1), idx.docs[0].Embedding[0])

	out := idx.Documents()
	require.Len(t, out, 4)
	assert.Nil(t, out[0].Embedding)
	assert.Equal(t, 4, idx.Len())
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}
