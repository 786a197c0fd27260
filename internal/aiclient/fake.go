package aiclient

import (
	"context"
	"sync"
)

// FakeCompleter is a scripted Completer for tests. Responses are returned in
// order; the last one repeats. Err, when set, is returned instead.
type FakeCompleter struct {
	ProviderName string
	Responses    []string
	Err          error

	mu       sync.Mutex
	Requests []CompletionRequest
}

func (f *FakeCompleter) Name() string {
	if f.ProviderName == "" {
		return "fake"
	}
	return f.ProviderName
}

func (f *FakeCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, req)
	if f.Err != nil {
		return "", f.Err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(f.Responses) == 0 {
		return "", nil
	}
	i := len(f.Requests) - 1
	if i >= len(f.Responses) {
		i = len(f.Responses) - 1
	}
	return f.Responses[i], nil
}

// CallCount returns the number of Complete calls so far.
func (f *FakeCompleter) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}

// FakeEmbedder returns fixed vectors keyed by exact text, falling back to
// Default (or a HashEmbedder when Default is nil).
type FakeEmbedder struct {
	Vectors map[string][]float32
	Default []float32
	Err     error

	mu    sync.Mutex
	Calls int
}

func (f *FakeEmbedder) Name() string { return "fake" }

func (f *FakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.Calls++
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if v, ok := f.Vectors[text]; ok {
		return append([]float32(nil), v...), nil
	}
	if f.Default != nil {
		return append([]float32(nil), f.Default...), nil
	}
	return NewHashEmbedder(64).Embed(ctx, text)
}

// CallCount returns the number of Embed calls so far.
func (f *FakeEmbedder) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls
}
