package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/lunaris/ai"
	"github.com/poiesic/lunaris/core"
	"github.com/poiesic/lunaris/storage"
)

// BatchProcessor reembeds batches of knowledge chunks.
type BatchProcessor struct {
	knowledge      storage.KnowledgeRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(knowledge storage.KnowledgeRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		knowledge:      knowledge,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process reembeds a batch of chunks and writes them back under their
// existing IDs. Vectors are normalized after embedding because the store
// scores candidates by dot product.
func (bp *BatchProcessor) Process(ctx context.Context, chunks []*core.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	var embeddings [][]float32
	err := retryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("generating embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(chunks), len(embeddings))
	}

	for i := range chunks {
		chunks[i].Vector = core.NormalizeVector(embeddings[i])
	}

	if err := bp.knowledge.Upsert(ctx, chunks...); err != nil {
		return fmt.Errorf("updating chunks: %w", err)
	}

	return nil
}
