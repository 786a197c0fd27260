package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/logging"
)

// ProviderOllama is the provider id of OllamaClient.
const ProviderOllama = "ollama"

// OllamaClient calls a local Ollama server over its REST API.
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     logging.Logger
}

// NewOllamaClient creates a client for the server at baseURL.
func NewOllamaClient(baseURL, model string, httpClient *http.Client, logger logging.Logger) *OllamaClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &OllamaClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *OllamaClient) Name() string { return ProviderOllama }

type ollamaGenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	System  string                 `json:"system,omitempty"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error"`
}

func (c *OllamaClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	options := map[string]interface{}{}
	if req.Temperature > 0 {
		options["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	var out ollamaGenerateResponse
	err := c.post(ctx, "/api/generate", ollamaGenerateRequest{
		Model: c.model, Prompt: req.Prompt, System: req.System, Stream: false, Options: options,
	}, &out)
	if err != nil {
		return "", apperror.NewCapabilityError(CapabilityCompletion, ProviderOllama, err)
	}
	if out.Error != "" || strings.TrimSpace(out.Response) == "" {
		return "", &apperror.CapabilityError{
			Capability: CapabilityCompletion, Provider: ProviderOllama,
			Kind: apperror.CapabilityKindMalformed, Err: fmt.Errorf("empty response: %s", out.Error),
		}
	}
	return out.Response, nil
}

func (c *OllamaClient) Embed(ctx context.Context, text string) ([]float32, error) {
	var out ollamaEmbeddingResponse
	if err := c.post(ctx, "/api/embeddings", ollamaEmbeddingRequest{Model: c.model, Prompt: text}, &out); err != nil {
		return nil, apperror.NewCapabilityError(CapabilityEmbedding, ProviderOllama, err)
	}
	if len(out.Embedding) == 0 {
		return nil, &apperror.CapabilityError{
			Capability: CapabilityEmbedding, Provider: ProviderOllama,
			Kind: apperror.CapabilityKindMalformed, Err: fmt.Errorf("no embedding returned: %s", out.Error),
		}
	}
	return out.Embedding, nil
}

// Ping checks that the server answers.
func (c *OllamaClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperror.NewCapabilityError(CapabilityCompletion, ProviderOllama, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apperror.NewCapabilityError(CapabilityCompletion, ProviderOllama, fmt.Errorf("status %d", resp.StatusCode))
	}
	return nil
}

func (c *OllamaClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Calling Ollama", logging.F(logging.FieldPath, path), logging.F(logging.FieldModel, c.model))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ollama %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
