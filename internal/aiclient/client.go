// Package aiclient wraps the pretrained text-completion and embedding
// capabilities behind small interfaces so the engine can be tested with fakes
// and run against Gemini or a local Ollama server.
package aiclient

import (
	"context"
	"strings"
)

// Capability names used in errors and logs.
const (
	CapabilityCompletion = "completion"
	CapabilityEmbedding  = "embedding"
)

// CompletionRequest is a single-turn prompt.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
	// MaxTokens caps the reply length when the provider supports it. Zero
	// means provider default.
	MaxTokens int
}

// Completer produces text for a prompt.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Name identifies the provider, e.g. "gemini" or "ollama".
	Name() string
}

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Name() string
}

// joinSystem folds a system instruction into the prompt for providers that
// have no separate slot for it.
func joinSystem(req CompletionRequest) string {
	if strings.TrimSpace(req.System) == "" {
		return req.Prompt
	}
	return req.System + "\n\n" + req.Prompt
}
