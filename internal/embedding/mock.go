package embedding

import (
	"context"
	"hash/fnv"

	"github.com/agentcore/ramengine/internal/model"
)

// MockEmbedder produces deterministic embeddings from a text hash, for
// tests. NewFromEnv never returns it: with no provider configured it
// returns nil.
type MockEmbedder struct{}

// NewMock returns a MockEmbedder.
func NewMock() *MockEmbedder { return &MockEmbedder{} }

// Embed hashes text with FNV-1a and expands it via a linear congruential
// generator into model.Dims values, then normalizes to unit length. Same
// text always yields the same vector.
func (m *MockEmbedder) Embed(_ context.Context, text string) (model.Vector, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make(model.Vector, model.Dims)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed)) / float32(1<<63-1)
	}
	return normalize(vec), nil
}

func (m *MockEmbedder) Dims() int { return model.Dims }
