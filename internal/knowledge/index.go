// Package knowledge holds the financial knowledge corpus and retrieves the
// snippets most similar to a query.
package knowledge

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"
)

// Searcher retrieves the k documents most similar to query.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]models.SearchResult, error)
}

// Index is an immutable, embedded corpus. It is safe for concurrent use.
type Index struct {
	docs     []models.KnowledgeDocument
	dims     int
	embedder aiclient.Embedder
	logger   logging.Logger
}

// NewIndex builds an index over docs, which must all carry embeddings of the
// same length. Queries are embedded with embedder.
func NewIndex(docs []models.KnowledgeDocument, embedder aiclient.Embedder, logger logging.Logger) (*Index, error) {
	if embedder == nil {
		return nil, fmt.Errorf("knowledge index: embedder is required")
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	idx := &Index{docs: make([]models.KnowledgeDocument, len(docs)), embedder: embedder, logger: logger}
	for i, doc := range docs {
		if len(doc.Embedding) == 0 {
			return nil, fmt.Errorf("knowledge index: document %s has no embedding", doc.ID)
		}
		if i == 0 {
			idx.dims = len(doc.Embedding)
		} else if len(doc.Embedding) != idx.dims {
			return nil, fmt.Errorf("knowledge index: document %s has %d dimensions, expected %d", doc.ID, len(doc.Embedding), idx.dims)
		}
		doc.Embedding = append([]float32(nil), doc.Embedding...)
		idx.docs[i] = doc
	}
	return idx, nil
}

// Len returns the number of documents.
func (idx *Index) Len() int { return len(idx.docs) }

// Documents returns copies of the indexed documents without embeddings.
func (idx *Index) Documents() []models.KnowledgeDocument {
	out := make([]models.KnowledgeDocument, len(idx.docs))
	for i, d := range idx.docs {
		d.Embedding = nil
		out[i] = d
	}
	return out
}

// Search embeds query and ranks every document by cosine similarity,
// highest first and by id on ties. At most k results are returned.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]models.SearchResult, error) {
	return idx.search(ctx, query, k, "")
}

// Collection returns a Searcher restricted to documents whose source is
// collection.
func (idx *Index) Collection(collection string) Searcher {
	return collectionSearcher{idx: idx, collection: collection}
}

type collectionSearcher struct {
	idx        *Index
	collection string
}

func (c collectionSearcher) Search(ctx context.Context, query string, k int) ([]models.SearchResult, error) {
	return c.idx.search(ctx, query, k, c.collection)
}

func (idx *Index) search(ctx context.Context, query string, k int, collection string) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.NewValidationError("query", "", "must not be empty")
	}
	if k < 1 {
		return nil, apperror.NewValidationError("k", fmt.Sprint(k), "must be at least 1")
	}

	vec, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if idx.dims > 0 && len(vec) != idx.dims {
		return nil, &apperror.CapabilityError{
			Capability: aiclient.CapabilityEmbedding,
			Provider:   idx.embedder.Name(),
			Kind:       apperror.CapabilityKindMalformed,
			Err:        fmt.Errorf("query embedding has %d dimensions, index has %d", len(vec), idx.dims),
		}
	}

	results := make([]models.SearchResult, 0, len(idx.docs))
	for _, doc := range idx.docs {
		if collection != "" && doc.Source != collection {
			continue
		}
		d := doc
		d.Embedding = nil
		results = append(results, models.SearchResult{Document: d, Similarity: Cosine(vec, doc.Embedding)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Document.ID < results[j].Document.ID
	})
	if len(results) > k {
		results = results[:k]
	}

	idx.logger.Debug("Knowledge search",
		logging.F(logging.FieldQuery, query),
		logging.F(logging.FieldCount, len(results)))
	return results, nil
}

// Cosine returns the cosine similarity of a and b, or 0 when either has zero
// length or norm.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(sim) {
		return 0
	}
	return sim
}
