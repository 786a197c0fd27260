package aiclient

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestHashEmbedder(t *testing.T) {
	e := NewHashEmbedder(128)
	ctx := context.Background()

	a, err := e.Embed(ctx, "Build an emergency fund covering 3-6 months of expenses")
	require.NoError(t, err)
	require.Len(t, a, 128)

	again, err := e.Embed(ctx, "Build an emergency fund covering 3-6 months of expenses")
	require.NoError(t, err)
	assert.Equal(t, a, again, "deterministic")

	related, _ := e.Embed(ctx, "How big should my emergency fund be?")
	unrelated, _ := e.Embed(ctx, "Tax-loss harvesting offsets capital gains")
	assert.Greater(t, cosine(a, related), cosine(a, unrelated))

	empty, err := e.Embed(ctx, "!!")
	require.NoError(t, err)
	assert.Equal(t, 0.0, cosine(empty, a))
}

func TestHashEmbedder_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHashEmbedder(0).Embed(ctx, "x")
	assert.Error(t, err)
}
