// Package factory builds the completion and embedding providers named in the
// configuration.
package factory

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/config"
	"fjacquet/finance-advisor/internal/logging"
)

// ProviderType identifies an AI provider.
type ProviderType string

const (
	Gemini       ProviderType = config.ProviderGemini
	GeminiLegacy ProviderType = config.ProviderGeminiLegacy
	Ollama       ProviderType = config.ProviderOllama
)

// provider is what every concrete client offers.
type provider interface {
	aiclient.Completer
	aiclient.Embedder
}

// LocalEmbeddingDims is the size of the offline hash embeddings.
const LocalEmbeddingDims = 256

// Providers holds the wired capabilities. Completer is nil when AI is
// disabled; Embedder always falls back to the offline hash embedder.
type Providers struct {
	Completer aiclient.Completer
	Embedder  aiclient.Embedder
	// Checks are readiness checks keyed by provider name.
	Checks map[string]func(context.Context) error
	// Closers release client resources, in creation order.
	Closers []func() error
}

// GetProvider returns a client for the given provider type.
func GetProvider(ctx context.Context, pt ProviderType, cfg *config.Config, logger logging.Logger) (aiclient.Completer, aiclient.Embedder, error) {
	p, err := newProvider(ctx, pt, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return p, p, nil
}

func newProvider(ctx context.Context, pt ProviderType, cfg *config.Config, logger logging.Logger) (provider, error) {
	switch pt {
	case Gemini:
		return aiclient.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.EmbeddingModel, logger)
	case GeminiLegacy:
		return aiclient.NewLegacyGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.EmbeddingModel, logger)
	case Ollama:
		client := &http.Client{Timeout: timeout(cfg) + time.Second}
		return aiclient.NewOllamaClient(cfg.AI.OllamaURL, cfg.AI.OllamaModel, client, logger), nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", pt)
	}
}

// NewProviders wires the configured primary provider, the optional failover
// provider and per-call timeouts.
func NewProviders(ctx context.Context, cfg *config.Config, logger logging.Logger) (Providers, error) {
	if cfg == nil {
		return Providers{}, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	if !cfg.AI.Enabled {
		logger.Info("AI disabled, using local embeddings and statistical insights")
		return Providers{Embedder: aiclient.NewHashEmbedder(LocalEmbeddingDims)}, nil
	}

	out := Providers{Checks: map[string]func(context.Context) error{}}
	primary, err := out.add(ctx, ProviderType(cfg.AI.Provider), cfg, logger)
	if err != nil {
		out.close()
		return Providers{}, fmt.Errorf("create %s provider: %w", cfg.AI.Provider, err)
	}

	var secondary aiclient.Completer
	if cfg.AI.FallbackProvider != "" {
		secondary, err = out.add(ctx, ProviderType(cfg.AI.FallbackProvider), cfg, logger)
		if err != nil {
			out.close()
			return Providers{}, fmt.Errorf("create %s fallback provider: %w", cfg.AI.FallbackProvider, err)
		}
	}

	// Each attempt gets its own deadline.
	out.Completer = aiclient.NewFailoverCompleter(
		aiclient.WithTimeout(primary, timeout(cfg)),
		aiclient.WithTimeout(secondary, timeout(cfg)),
		logger)
	out.Embedder = aiclient.EmbedderWithTimeout(primary, timeout(cfg))

	logger.Info("AI enabled",
		logging.F(logging.FieldProvider, cfg.AI.Provider),
		logging.F("fallback_provider", cfg.AI.FallbackProvider))
	return out, nil
}

// add creates a provider and records its check and closer.
func (p *Providers) add(ctx context.Context, pt ProviderType, cfg *config.Config, logger logging.Logger) (provider, error) {
	client, err := newProvider(ctx, pt, cfg, logger)
	if err != nil {
		return nil, err
	}
	if pinger, ok := client.(interface{ Ping(context.Context) error }); ok {
		p.Checks[string(pt)] = pinger.Ping
	}
	if closer, ok := client.(interface{ Close() error }); ok {
		p.Closers = append(p.Closers, closer.Close)
	}
	return client, nil
}

func (p *Providers) close() {
	for i := len(p.Closers) - 1; i >= 0; i-- {
		_ = p.Closers[i]()
	}
}

func timeout(cfg *config.Config) time.Duration {
	return time.Duration(cfg.AI.TimeoutSeconds) * time.Second
}
