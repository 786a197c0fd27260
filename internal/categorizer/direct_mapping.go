package categorizer

import (
	"context"
	"sync"

	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"
	"fjacquet/finance-advisor/internal/textutils"
)

// DirectMappingStrategy looks the normalized description up in the merchant
// mapping table. The categorizer keeps one table of manual corrections and
// one of language-model answers.
type DirectMappingStrategy struct {
	mappings map[string]string
	dirty    bool
	logger   logging.Logger
	mu       sync.RWMutex
}

// NewDirectMappingStrategy creates a strategy seeded with mappings. Keys are
// normalized and labels canonicalized; unknown labels are skipped.
func NewDirectMappingStrategy(mappings map[string]string, logger logging.Logger) *DirectMappingStrategy {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	s := &DirectMappingStrategy{
		mappings: make(map[string]string, len(mappings)),
		logger:   logger,
	}
	for key, label := range mappings {
		category, ok := models.CanonicalCategory(label)
		if !ok {
			logger.Warn("Skipping merchant mapping with unknown category",
				logging.F(logging.FieldDescription, key), logging.F(logging.FieldCategory, label))
			continue
		}
		if norm := textutils.NormalizeDescription(key); norm != "" {
			s.mappings[norm] = category
		}
	}
	return s
}

func (s *DirectMappingStrategy) Name() string {
	return models.SourceMerchant
}

func (s *DirectMappingStrategy) Categorize(_ context.Context, tx models.Transaction) (string, bool, error) {
	key := textutils.NormalizeDescription(tx.Description)
	if key == "" {
		return "", false, nil
	}

	s.mu.RLock()
	category, found := s.mappings[key]
	s.mu.RUnlock()

	if found {
		s.logger.Debug("Transaction categorized using merchant mapping",
			logging.F(logging.FieldStrategy, s.Name()),
			logging.F(logging.FieldDescription, tx.Description),
			logging.F(logging.FieldCategory, category))
	}
	return category, found, nil
}

// Learn records description -> category. It reports whether the table changed.
func (s *DirectMappingStrategy) Learn(description, category string) bool {
	key := textutils.NormalizeDescription(description)
	if key == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mappings[key] == category {
		return false
	}
	s.mappings[key] = category
	s.dirty = true
	return true
}

// Snapshot returns a copy of the table and whether it changed since the last
// call to MarkClean.
func (s *DirectMappingStrategy) Snapshot() (map[string]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.mappings))
	for k, v := range s.mappings {
		out[k] = v
	}
	return out, s.dirty
}

// MarkClean resets the dirty flag after a successful save.
func (s *DirectMappingStrategy) MarkClean() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}

// Len returns the number of mappings.
func (s *DirectMappingStrategy) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.mappings)
}
