package aiclient

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/logging"

	"google.golang.org/genai"
)

// ProviderGemini is the provider id of GeminiClient.
const ProviderGemini = "gemini"

// GeminiClient talks to the Gemini API through the google.golang.org/genai
// SDK. It implements both Completer and Embedder.
type GeminiClient struct {
	client         *genai.Client
	model          string
	embeddingModel string
	logger         logging.Logger
}

// NewGeminiClient creates a client authenticated with apiKey.
func NewGeminiClient(ctx context.Context, apiKey, model, embeddingModel string, logger logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &GeminiClient{client: client, model: model, embeddingModel: embeddingModel, logger: logger}, nil
}

func (c *GeminiClient) Name() string { return ProviderGemini }

// Complete sends one user turn with an optional system instruction.
func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: req.Prompt}},
		},
	}

	cfg := generationConfig(req)

	c.logger.Debug("Sending completion request",
		logging.F(logging.FieldProvider, ProviderGemini),
		logging.F(logging.FieldModel, c.model))

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", apperror.NewCapabilityError(CapabilityCompletion, ProviderGemini, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &apperror.CapabilityError{
			Capability: CapabilityCompletion, Provider: ProviderGemini,
			Kind: apperror.CapabilityKindMalformed, Err: fmt.Errorf("empty response from model"),
		}
	}
	return text, nil
}

// generationConfig maps the request options onto genai. Zero values leave the
// model defaults in place.
func generationConfig(req CompletionRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(req.Temperature)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if strings.TrimSpace(req.System) != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	return cfg
}

// Embed returns the embedding of text.
func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: text}}},
	}

	resp, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, contents, nil)
	if err != nil {
		return nil, apperror.NewCapabilityError(CapabilityEmbedding, ProviderGemini, err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, &apperror.CapabilityError{
			Capability: CapabilityEmbedding, Provider: ProviderGemini,
			Kind: apperror.CapabilityKindMalformed, Err: fmt.Errorf("no embedding returned"),
		}
	}
	return resp.Embeddings[0].Values, nil
}
