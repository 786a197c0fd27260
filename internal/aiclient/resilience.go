package aiclient

import (
	"context"
	"errors"
	"time"

	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/logging"
)

// WithTimeout bounds every Complete call of c by d.
func WithTimeout(c Completer, d time.Duration) Completer {
	if c == nil || d <= 0 {
		return c
	}
	return &timeoutCompleter{inner: c, timeout: d}
}

type timeoutCompleter struct {
	inner   Completer
	timeout time.Duration
}

func (t *timeoutCompleter) Name() string { return t.inner.Name() }

func (t *timeoutCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Complete(ctx, req)
}

// EmbedderWithTimeout bounds every Embed call of e by d.
func EmbedderWithTimeout(e Embedder, d time.Duration) Embedder {
	if e == nil || d <= 0 {
		return e
	}
	return &timeoutEmbedder{inner: e, timeout: d}
}

type timeoutEmbedder struct {
	inner   Embedder
	timeout time.Duration
}

func (t *timeoutEmbedder) Name() string { return t.inner.Name() }

func (t *timeoutEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Embed(ctx, text)
}

// FailoverCompleter tries the primary provider and, when it fails, makes
// exactly one attempt on the secondary. There are no further retries.
type FailoverCompleter struct {
	primary   Completer
	secondary Completer
	logger    logging.Logger
}

// NewFailoverCompleter returns primary unchanged when secondary is nil.
func NewFailoverCompleter(primary, secondary Completer, logger logging.Logger) Completer {
	if secondary == nil {
		return primary
	}
	if primary == nil {
		return secondary
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &FailoverCompleter{primary: primary, secondary: secondary, logger: logger}
}

// Name reports the primary provider, which is the active one.
func (f *FailoverCompleter) Name() string { return f.primary.Name() }

func (f *FailoverCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	text, err := f.primary.Complete(ctx, req)
	if err == nil {
		return text, nil
	}
	// A cancelled caller gets no failover.
	if ctx.Err() != nil {
		return "", err
	}

	f.logger.WithError(err).Warn("Primary completion provider failed, trying secondary",
		logging.F(logging.FieldProvider, f.primary.Name()))

	text, secondErr := f.secondary.Complete(ctx, req)
	if secondErr == nil {
		return text, nil
	}

	f.logger.WithError(secondErr).Error("Secondary completion provider failed",
		logging.F(logging.FieldProvider, f.secondary.Name()))
	return "", apperror.NewCapabilityError(CapabilityCompletion,
		f.primary.Name()+","+f.secondary.Name(), errors.Join(err, secondErr))
}
