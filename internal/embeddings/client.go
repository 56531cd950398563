// Package embeddings provides the external text-to-vector collaborator.
// The matching core never trains or calls a model directly; it only consumes
// vectors through this interface, and the provider may be absent entirely.
package embeddings

import "context"

// Client defines the interface for generating text embeddings.
type Client interface {
	// Embed generates an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embedding vectors for multiple texts in one call.
	// More efficient than calling Embed repeatedly.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
