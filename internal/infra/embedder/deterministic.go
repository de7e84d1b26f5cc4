package embedder

import (
	"context"
	"hash/fnv"

	"github.com/xreal/faqbase/internal/domain/faq"
)

// DeterministicEmbedder avoids network calls by hashing text into a vector.
// It keeps the index projection functional without an embeddings API key.
type DeterministicEmbedder struct {
	dim int
}

// NewDeterministicEmbedder constructs the embedder.
func NewDeterministicEmbedder(dim int) *DeterministicEmbedder {
	if dim <= 0 {
		dim = 32
	}
	return &DeterministicEmbedder{dim: dim}
}

// Embed converts the text into a pseudo-random vector.
func (e *DeterministicEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, e.dim)
	hash := fnv.New64a()
	_, _ = hash.Write([]byte(text))
	seed := hash.Sum64()
	for i := 0; i < e.dim; i++ {
		seed = seed*1099511628211 + 1469598103934665603
		vector[i] = float32(seed%997) / 997.0
	}
	return vector, nil
}

var _ faq.Embedder = (*DeterministicEmbedder)(nil)
