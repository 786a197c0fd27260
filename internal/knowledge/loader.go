package knowledge

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

//go:embed corpus.yaml
var defaultCorpus []byte

type corpusFile struct {
	Documents []models.KnowledgeDocument `yaml:"documents"`
}

// LoadCorpus reads documents from a YAML file, or the built-in corpus when
// path is empty. IDs must be unique and texts non-empty.
func LoadCorpus(path string) ([]models.KnowledgeDocument, error) {
	data := defaultCorpus
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read corpus file: %w", err)
		}
	}
	return ParseCorpus(data)
}

// ParseCorpus decodes a YAML corpus.
func ParseCorpus(data []byte) ([]models.KnowledgeDocument, error) {
	var file corpusFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}

	seen := make(map[string]bool, len(file.Documents))
	docs := make([]models.KnowledgeDocument, 0, len(file.Documents))
	for i, doc := range file.Documents {
		doc.ID = strings.TrimSpace(doc.ID)
		doc.Text = strings.TrimSpace(doc.Text)
		if doc.ID == "" || doc.Text == "" {
			return nil, fmt.Errorf("corpus document %d: id and text are required", i)
		}
		if seen[doc.ID] {
			return nil, fmt.Errorf("corpus document %d: duplicate id %q", i, doc.ID)
		}
		seen[doc.ID] = true
		if doc.Source == "" {
			doc.Source = models.CollectionFinancialKnowledge
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// EmbedCorpus returns copies of docs carrying embeddings. Documents that
// already have one are kept as they are. Up to concurrency documents are
// embedded in parallel; the first failure cancels the rest.
func EmbedCorpus(ctx context.Context, docs []models.KnowledgeDocument, embedder aiclient.Embedder, concurrency int, logger logging.Logger) ([]models.KnowledgeDocument, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	start := time.Now()

	out := make([]models.KnowledgeDocument, len(docs))
	copy(out, docs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range out {
		if len(out[i].Embedding) > 0 {
			continue
		}
		g.Go(func() error {
			vec, err := embedder.Embed(gctx, out[i].Text)
			if err != nil {
				return fmt.Errorf("embed document %s: %w", out[i].ID, err)
			}
			out[i].Embedding = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("Embedded knowledge corpus",
		logging.F(logging.FieldCount, len(out)),
		logging.F(logging.FieldProvider, embedder.Name()),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return out, nil
}
