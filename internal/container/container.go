// Package container provides dependency injection for the finance advisor.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"io"

	"fjacquet/finance-advisor/internal/advisor"
	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/api"
	"fjacquet/finance-advisor/internal/batch"
	"fjacquet/finance-advisor/internal/budget"
	"fjacquet/finance-advisor/internal/categorizer"
	"fjacquet/finance-advisor/internal/common"
	"fjacquet/finance-advisor/internal/config"
	"fjacquet/finance-advisor/internal/factory"
	"fjacquet/finance-advisor/internal/goals"
	"fjacquet/finance-advisor/internal/health"
	"fjacquet/finance-advisor/internal/knowledge"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"
	"fjacquet/finance-advisor/internal/report"
	"fjacquet/finance-advisor/internal/store"
)

// GoalRepository is a goal store that holds resources.
type GoalRepository interface {
	goals.Repository
	io.Closer
}

// Container holds all application dependencies and provides methods to
// access them. It is immutable after creation.
type Container struct {
	logger logging.Logger
	config *config.Config

	categoryStore *store.CategoryStore
	goalStore     GoalRepository

	completer aiclient.Completer
	embedder  aiclient.Embedder
	checks    []api.ServiceCheck

	csv         *common.CSVCodec
	renderer    *report.Renderer
	aggregator  *batch.Aggregator
	categorizer *categorizer.Categorizer
	analyzer    *budget.Analyzer
	scorer      *health.Scorer
	goals       *goals.Service
	index       *knowledge.Index
	advisor     *advisor.Advisor

	closers []func() error
}

// NewContainer creates and wires all application dependencies with a logrus
// logger built from the configuration.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(ctx, cfg, logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format))
}

// NewContainerWithLogger is NewContainer with a caller-supplied logger.
func NewContainerWithLogger(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	c := &Container{logger: logger, config: cfg}

	if err := c.initProviders(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := c.initServices(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}

	logger.Info("Container initialized successfully",
		logging.F("ai_enabled", c.completer != nil),
		logging.F(logging.FieldProvider, c.ProviderName()),
		logging.F("goal_backend", cfg.Goals.Backend),
		logging.F("knowledge_documents", c.index.Len()))
	return c, nil
}

func (c *Container) initProviders(ctx context.Context) error {
	providers, err := factory.NewProviders(ctx, c.config, c.logger)
	if err != nil {
		return err
	}
	c.completer = providers.Completer
	c.closers = append(c.closers, providers.Closers...)
	for name, check := range providers.Checks {
		c.checks = append(c.checks, api.ServiceCheck{Name: name, Check: check})
	}

	embedder := providers.Embedder
	if c.completer != nil && c.config.Knowledge.CacheSize > 0 {
		cached, err := knowledge.NewCachedEmbedder(embedder, c.config.Knowledge.CacheSize, c.logger)
		if err != nil {
			return err
		}
		c.closers = append(c.closers, func() error { cached.Close(); return nil })
		embedder = cached
	}
	c.embedder = embedder
	return nil
}

func (c *Container) initServices(ctx context.Context) error {
	cfg := c.config

	c.csv = common.NewCSVCodec([]rune(cfg.CSV.Delimiter)[0], c.logger)
	c.renderer = report.NewRenderer(c.logger)
	c.aggregator = batch.NewAggregator(c.csv, c.config.Knowledge.Concurrency, c.logger)

	c.categoryStore = store.NewCategoryStore(cfg.Categorization.RulesFile, cfg.Categorization.MerchantsFile, c.logger)
	catOpts := categorizer.Options{LearnFromAI: true}
	if cfg.Categorization.AIEnabled {
		catOpts.Completer = c.completer
	}
	cat, err := categorizer.NewCategorizer(c.categoryStore, catOpts, c.logger)
	if err != nil {
		return fmt.Errorf("create categorizer: %w", err)
	}
	c.categorizer = cat

	w := cfg.Health.Weights
	c.scorer, err = health.NewScorer(health.Weights{
		SavingsRate:        w.SavingsRate,
		DebtToIncome:       w.DebtToIncome,
		EmergencyFund:      w.EmergencyFund,
		SpendingDiscipline: w.SpendingDiscipline,
	}, cfg.Health.RecommendationThreshold, c.logger)
	if err != nil {
		return fmt.Errorf("create health scorer: %w", err)
	}

	if err := c.initGoalStore(); err != nil {
		return err
	}
	c.goals = goals.NewService(c.goalStore, nil, c.logger).WithCompleter(c.completer)

	if err := c.initKnowledge(ctx); err != nil {
		return err
	}
	c.scorer.WithAdvice(c.completer, c.index.Collection(models.CollectionFinancialKnowledge))

	c.analyzer = budget.NewAnalyzer(budget.Options{
		TopN:        cfg.Analysis.TopN,
		MaxInsights: cfg.Analysis.MaxInsights,
	}, c.completer, c.index.Collection(models.CollectionBudgetingTips), c.logger)

	if c.completer != nil {
		c.advisor, err = advisor.NewAdvisor(c.completer, c.index, advisor.Options{
			TopK:          cfg.Knowledge.TopK,
			HistoryWindow: cfg.Chat.HistoryWindow,
		}, c.logger)
		if err != nil {
			return fmt.Errorf("create advisor: %w", err)
		}
	}

	c.checks = append(c.checks,
		api.ServiceCheck{Name: "goal_store", Check: c.goals.Ping},
		api.ServiceCheck{Name: "knowledge", Check: func(context.Context) error {
			if c.index.Len() == 0 {
				return fmt.Errorf("knowledge index is empty")
			}
			return nil
		}},
	)
	return nil
}

func (c *Container) initGoalStore() error {
	switch c.config.Goals.Backend {
	case config.GoalBackendSQLite:
		st, err := store.NewSQLiteGoalStore(c.config.Goals.SQLitePath)
		if err != nil {
			return fmt.Errorf("open goal store: %w", err)
		}
		c.goalStore = st
	default:
		c.goalStore = store.NewMemoryGoalStore()
	}
	c.closers = append(c.closers, c.goalStore.Close)
	return nil
}

// initKnowledge embeds the corpus. When the configured embedder fails the
// index falls back to local embeddings so retrieval keeps working.
func (c *Container) initKnowledge(ctx context.Context) error {
	docs, err := knowledge.LoadCorpus(c.config.Knowledge.CorpusFile)
	if err != nil {
		return fmt.Errorf("load knowledge corpus: %w", err)
	}

	embedded, err := knowledge.EmbedCorpus(ctx, docs, c.embedder, c.config.Knowledge.Concurrency, c.logger)
	if err != nil {
		c.logger.WithError(err).Warn("Embedding the knowledge corpus failed, using local embeddings",
			logging.F(logging.FieldProvider, c.embedder.Name()))
		c.embedder = aiclient.NewHashEmbedder(factory.LocalEmbeddingDims)
		embedded, err = knowledge.EmbedCorpus(ctx, docs, c.embedder, c.config.Knowledge.Concurrency, c.logger)
		if err != nil {
			return fmt.Errorf("embed knowledge corpus: %w", err)
		}
	}

	c.index, err = knowledge.NewIndex(embedded, c.embedder, c.logger)
	if err != nil {
		return fmt.Errorf("build knowledge index: %w", err)
	}
	return nil
}

// APIDeps returns the services the HTTP layer needs.
func (c *Container) APIDeps() api.Deps {
	return api.Deps{
		Categorizer: c.categorizer,
		CSV:         c.csv,
		Analyzer:    c.analyzer,
		Scorer:      c.scorer,
		Goals:       c.goals,
		Advisor:     c.advisor,
		Knowledge:   c.index,
		TopK:        c.config.Knowledge.TopK,
		Provider:    c.ProviderName(),
		CORSOrigins: c.config.Server.CORSOrigins,
		Checks:      append([]api.ServiceCheck(nil), c.checks...),
	}
}

// ProviderName returns the active completion provider id, or "" when AI is
// disabled.
func (c *Container) ProviderName() string {
	if c.completer == nil {
		return ""
	}
	return c.completer.Name()
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger { return c.logger }

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config { return c.config }

// GetCSVCodec returns the transaction CSV codec.
func (c *Container) GetCSVCodec() *common.CSVCodec { return c.csv }

// GetAggregator returns the multi-statement merger.
func (c *Container) GetAggregator() *batch.Aggregator { return c.aggregator }

// GetRenderer returns the report renderer.
func (c *Container) GetRenderer() *report.Renderer { return c.renderer }

// GetCategorizer returns the container's categorizer instance.
func (c *Container) GetCategorizer() *categorizer.Categorizer { return c.categorizer }

// GetAnalyzer returns the spending analyzer.
func (c *Container) GetAnalyzer() *budget.Analyzer { return c.analyzer }

// GetScorer returns the health scorer.
func (c *Container) GetScorer() *health.Scorer { return c.scorer }

// GetGoalService returns the goal service.
func (c *Container) GetGoalService() *goals.Service { return c.goals }

// GetKnowledgeIndex returns the knowledge index.
func (c *Container) GetKnowledgeIndex() *knowledge.Index { return c.index }

// GetAdvisor returns the chat advisor. Returns nil if AI is not enabled.
func (c *Container) GetAdvisor() *advisor.Advisor { return c.advisor }

// GetCompleter returns the completion client. Returns nil if AI is not
// enabled.
func (c *Container) GetCompleter() aiclient.Completer { return c.completer }

// Close releases provider connections, caches and the goal store.
func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	c.logger.Info("Container closed")
	return firstErr
}
