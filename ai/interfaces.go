package ai

import (
	"context"

	"github.com/poiesic/lunaris/core"
)

// ModelHandle is a ready-to-use chat model.
// Implementations must be thread-safe for concurrent use.
type ModelHandle interface {
	// Generate produces the assistant reply for an ordered transcript.
	// The transcript is sent as-is: callers are responsible for pinning
	// any system turn first.
	// Returns an error if the backend call fails or yields no choices.
	Generate(ctx context.Context, turns []core.Turn) (string, error)
}

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// HandleResolver resolves generation requests to ready model handles.
// The production implementation is *Factory; test doubles live in ai/mock.
type HandleResolver interface {
	// Get resolves a Request to a ModelHandle, consulting the model cache
	// for provider-default configurations.
	Get(ctx context.Context, req Request) (ModelHandle, error)
}
