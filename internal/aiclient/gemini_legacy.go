package aiclient

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/logging"

	legacygenai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ProviderGeminiLegacy is the provider id of LegacyGeminiClient.
const ProviderGeminiLegacy = "gemini-legacy"

// LegacyGeminiClient uses the older generative-ai-go SDK. It is kept for
// deployments pinned to that SDK's model names.
type LegacyGeminiClient struct {
	client    *legacygenai.Client
	model     *legacygenai.GenerativeModel
	embedding *legacygenai.EmbeddingModel
	logger    logging.Logger
}

// NewLegacyGeminiClient creates a client authenticated with apiKey.
func NewLegacyGeminiClient(ctx context.Context, apiKey, model, embeddingModel string, logger logging.Logger) (*LegacyGeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini-legacy: API key is required")
	}
	client, err := legacygenai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &LegacyGeminiClient{
		client:    client,
		model:     client.GenerativeModel(model),
		embedding: client.EmbeddingModel(embeddingModel),
		logger:    logger,
	}, nil
}

func (c *LegacyGeminiClient) Name() string { return ProviderGeminiLegacy }

// Close releases the underlying connection.
func (c *LegacyGeminiClient) Close() error {
	return c.client.Close()
}

func (c *LegacyGeminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	resp, err := c.model.GenerateContent(ctx, legacygenai.Text(joinSystem(req)))
	if err != nil {
		return "", apperror.NewCapabilityError(CapabilityCompletion, ProviderGeminiLegacy, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &apperror.CapabilityError{
			Capability: CapabilityCompletion, Provider: ProviderGeminiLegacy,
			Kind: apperror.CapabilityKindMalformed, Err: fmt.Errorf("no response from Gemini API"),
		}
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(legacygenai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", &apperror.CapabilityError{
			Capability: CapabilityCompletion, Provider: ProviderGeminiLegacy,
			Kind: apperror.CapabilityKindMalformed, Err: fmt.Errorf("response has no text parts"),
		}
	}
	return b.String(), nil
}

func (c *LegacyGeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.embedding.EmbedContent(ctx, legacygenai.Text(text))
	if err != nil {
		return nil, apperror.NewCapabilityError(CapabilityEmbedding, ProviderGeminiLegacy, err)
	}
	if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, &apperror.CapabilityError{
			Capability: CapabilityEmbedding, Provider: ProviderGeminiLegacy,
			Kind: apperror.CapabilityKindMalformed, Err: fmt.Errorf("no embedding returned"),
		}
	}
	return resp.Embedding.Values, nil
}
