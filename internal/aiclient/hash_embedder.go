package aiclient

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"fjacquet/finance-advisor/internal/textutils"
)

// ProviderLocal is the provider id of HashEmbedder.
const ProviderLocal = "local-hash"

// HashEmbedder is an offline bag-of-words embedder using feature hashing.
// Texts sharing words get similar vectors, which is enough to rank the
// knowledge corpus when no model provider is configured.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder creates an embedder producing vectors of length dims.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = 256
	}
	return &HashEmbedder{dims: dims}
}

func (h *HashEmbedder) Name() string { return ProviderLocal }

// Embed never fails except on a cancelled context.
func (h *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, h.dims)
	for _, token := range strings.Fields(textutils.NormalizeDescription(text)) {
		if len(token) < 3 || stopWords[token] {
			continue
		}
		hasher := fnv.New32a()
		_, _ = hasher.Write([]byte(stem(token)))
		sum := hasher.Sum32()
		sign := float32(1)
		if sum&1 == 1 {
			sign = -1
		}
		vec[int(sum>>1)%h.dims] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

// stem drops a plural "s" so "expenses" and "expense" collide.
func stem(token string) string {
	if len(token) > 4 && strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss") {
		return token[:len(token)-1]
	}
	return token
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "you": true, "your": true, "are": true,
	"with": true, "that": true, "this": true, "what": true, "how": true, "should": true,
	"can": true, "into": true, "from": true, "have": true, "has": true, "not": true,
	"but": true, "all": true, "per": true, "its": true, "than": true, "then": true,
}
