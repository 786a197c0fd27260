// Package categorizer assigns a category from the closed taxonomy to every
// transaction. Strategies run in a fixed order and the first one that
// recognizes a transaction wins:
//  1. manual merchant corrections
//  2. ordered keyword rules
//  3. positive amounts as Income
//  4. language-model classification, answered from earlier answers for the
//     same merchant when possible
//
// Anything left over is Other.
package categorizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"
)

// Categorizer runs the strategy chain. It is safe for concurrent use.
type Categorizer struct {
	direct     *DirectMappingStrategy
	learned    *DirectMappingStrategy
	keyword    *KeywordStrategy
	strategies []Strategy
	store      MappingStore
	logger     logging.Logger
}

// Options configures optional behavior of NewCategorizer.
type Options struct {
	// Completer enables the language-model step when non-nil.
	Completer aiclient.Completer
	// LearnFromAI remembers language-model answers so the same merchant is
	// not sent to the model twice.
	LearnFromAI bool
}

// NewCategorizer loads the rule table and merchant mappings from store. A
// mapping file that cannot be read is logged and ignored; a rule table that
// cannot be read is an error because it would silently change results.
func NewCategorizer(store MappingStore, opts Options, logger logging.Logger) (*Categorizer, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if store == nil {
		return nil, errors.New("categorizer: mapping store is required")
	}

	rules, err := store.LoadRules()
	if err != nil {
		return nil, fmt.Errorf("load category rules: %w", err)
	}

	mappings, err := store.LoadMerchantMappings()
	if err != nil {
		logger.WithError(err).Warn("Failed to load merchant mappings, starting empty")
		mappings = models.MerchantMappings{}
	}

	c := &Categorizer{
		direct:  NewDirectMappingStrategy(mappings.Manual, logger),
		learned: NewDirectMappingStrategy(mappings.Learned, logger),
		keyword: NewKeywordStrategy(rules, logger),
		store:   store,
		logger:  logger,
	}
	ai := &learningStrategy{learn: opts.LearnFromAI, table: c.learned}
	if opts.Completer != nil {
		ai.inner = NewAIStrategy(opts.Completer, logger)
	}
	c.strategies = []Strategy{c.direct, c.keyword, IncomeStrategy{}, ai}

	logger.Debug("Categorizer initialized",
		logging.F(logging.FieldCount, len(rules)),
		logging.F("merchants", c.direct.Len()),
		logging.F("learned", c.learned.Len()),
		logging.F("ai_enabled", opts.Completer != nil))
	return c, nil
}

// Categorize returns a copy of tx carrying a category. A valid pre-supplied
// category is kept as is, so running Categorize twice is a no-op. aiFailed
// reports that a strategy errored and was skipped.
func (c *Categorizer) Categorize(ctx context.Context, tx models.Transaction) (result models.Transaction, aiFailed bool) {
	if tx.Category != "" {
		if category, ok := models.CanonicalCategory(tx.Category); ok {
			source := tx.CategorySource
			if source == "" {
				source = models.SourceSupplied
			}
			return tx.WithCategory(category, source), false
		}
		c.logger.Warn("Ignoring unknown pre-supplied category",
			logging.F(logging.FieldCategory, tx.Category),
			logging.F(logging.FieldDescription, tx.Description))
	}

	for _, strategy := range c.strategies {
		category, found, err := strategy.Categorize(ctx, tx)
		if err != nil {
			c.logger.WithError(err).Warn("Categorization strategy failed",
				logging.F(logging.FieldStrategy, strategy.Name()),
				logging.F(logging.FieldDescription, tx.Description))
			aiFailed = true
			continue
		}
		if found {
			return tx.WithCategory(category, strategy.Name()), aiFailed
		}
	}

	return tx.WithCategory(models.CategoryOther, models.SourceDefault), aiFailed
}

// CategorizeAll categorizes transactions in order. The returned slice has the
// same length and order as the input, which is never modified.
func (c *Categorizer) CategorizeAll(ctx context.Context, transactions []models.Transaction) ([]models.Transaction, models.CategorizationStats) {
	start := time.Now()
	stats := models.NewCategorizationStats()
	out := make([]models.Transaction, len(transactions))

	for i, tx := range transactions {
		categorized, aiFailed := c.Categorize(ctx, tx)
		out[i] = categorized
		stats.Record(categorized.CategorySource)
		if aiFailed {
			stats.AIFailures++
		}
	}

	c.logger.Info("Categorized transactions",
		logging.F(logging.FieldCount, stats.Total),
		logging.F("fallback_rate", fmt.Sprintf("%.1f%%", stats.FallbackRate())),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return out, stats
}

// Recategorize replaces the category of tx with label and remembers the
// correction for the same merchant.
func (c *Categorizer) Recategorize(tx models.Transaction, label string) (models.Transaction, error) {
	category, ok := models.CanonicalCategory(label)
	if !ok {
		return tx, apperror.NewValidationError("category", label, "not a known category")
	}
	c.direct.Learn(tx.Description, category)
	return tx.WithCategory(category, models.SourceManual), nil
}

// SaveMappings persists manual and learned merchant mappings when either
// changed.
func (c *Categorizer) SaveMappings() error {
	manual, manualDirty := c.direct.Snapshot()
	learned, learnedDirty := c.learned.Snapshot()
	if !manualDirty && !learnedDirty {
		return nil
	}
	if err := c.store.SaveMerchantMappings(models.MerchantMappings{Manual: manual, Learned: learned}); err != nil {
		return fmt.Errorf("save merchant mappings: %w", err)
	}
	c.direct.MarkClean()
	c.learned.MarkClean()
	c.logger.Info("Saved merchant mappings",
		logging.F(logging.FieldCount, len(manual)),
		logging.F("learned", len(learned)))
	return nil
}

// Rules returns the active keyword rule table.
func (c *Categorizer) Rules() []models.CategoryRule {
	return c.keyword.Rules()
}

// learningStrategy answers from earlier language-model answers for the same
// merchant, then asks inner and records what it says. It runs after the
// income rule, so a learned label never overrides a positive amount.
type learningStrategy struct {
	inner Strategy
	learn bool
	table *DirectMappingStrategy
}

func (l *learningStrategy) Name() string { return models.SourceAI }

func (l *learningStrategy) Categorize(ctx context.Context, tx models.Transaction) (string, bool, error) {
	if category, found, _ := l.table.Categorize(ctx, tx); found {
		return category, true, nil
	}
	if l.inner == nil {
		return "", false, nil
	}
	category, found, err := l.inner.Categorize(ctx, tx)
	if found && err == nil && l.learn {
		l.table.Learn(tx.Description, category)
	}
	return category, found, err
}
