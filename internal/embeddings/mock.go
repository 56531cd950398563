package embeddings

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
)

// MockClient implements the Client interface for testing purposes.
// It generates deterministic unit vectors from the input text hash.
type MockClient struct {
	dim int
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates a mock embedding client with 1536 dimensions.
func NewMockClient() *MockClient {
	return &MockClient{dim: 1536}
}

// NewMockClientWithDim creates a mock client with custom dimensions.
func NewMockClientWithDim(dim int) *MockClient {
	return &MockClient{dim: dim}
}

// Embed generates a deterministic embedding based on the text hash.
func (c *MockClient) Embed(_ context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	return c.deterministicVector(text), nil
}

// EmbedBatch generates deterministic embeddings for multiple texts.
func (c *MockClient) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts cannot be empty")
	}

	vectors := make([][]float32, len(texts))

	for i, text := range texts {
		if text == "" {
			return nil, fmt.Errorf("text at index %d cannot be empty", i)
		}

		vectors[i] = c.deterministicVector(text)
	}

	return vectors, nil
}

func (c *MockClient) deterministicVector(text string) []float32 {
	hash := sha256.Sum256([]byte(text))
	vec := make([]float32, c.dim)

	for i := range vec {
		// Hash bytes used cyclically, mapped into [-1, 1].
		vec[i] = (float32(hash[i%len(hash)]) / 127.5) - 1.0
	}

	var sum float64
	for _, x := range vec {
		sum += float64(x) * float64(x)
	}

	magnitude := float32(math.Sqrt(sum))
	if magnitude == 0 {
		return vec
	}

	for i := range vec {
		vec[i] /= magnitude
	}

	return vec
}
