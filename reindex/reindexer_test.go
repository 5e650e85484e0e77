package reindex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/lunaris/ai/mock"
	"github.com/poiesic/lunaris/core"
	"github.com/poiesic/lunaris/storage"
	"github.com/poiesic/lunaris/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (storage.KnowledgeRepository, storage.CheckpointRepository) {
	backend, err := badger.NewMemoryBackend()
	require.NoError(t, err)

	knowledge, err := badger.NewKnowledgeRepository(backend)
	require.NoError(t, err)

	checkpoints := badger.NewCheckpointRepository(backend)

	t.Cleanup(func() {
		knowledge.Close()
		backend.Close()
	})

	return knowledge, checkpoints
}

// seedChunks stores n chunks and returns their IDs in iteration order.
func seedChunks(t *testing.T, knowledge storage.KnowledgeRepository, n int) []core.ID {
	ctx := context.Background()

	chunks := make([]*core.KnowledgeChunk, n)
	for i := 0; i < n; i++ {
		chunks[i] = &core.KnowledgeChunk{
			Text:   fmt.Sprintf("Kiến thức về Mặt Trăng số %02d", i),
			Vector: []float32{1, 0},
		}
	}
	require.NoError(t, knowledge.Upsert(ctx, chunks...))

	ids := make([]core.ID, 0, n)
	err := knowledge.ForEachBatch(ctx, n, func(ctx context.Context, batch []*core.KnowledgeChunk) error {
		for _, chunk := range batch {
			ids = append(ids, chunk.Id)
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, ids, n)
	return ids
}

func testConfig() *Config {
	return &Config{
		BatchSize:      3,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
		JobName:        "test-reindex",
	}
}

func TestReindexer_Run(t *testing.T) {
	knowledge, checkpoints := setupTestStore(t)
	ctx := context.Background()

	seedChunks(t, knowledge, 10)

	var buf bytes.Buffer
	embedder := mock.NewMockEmbedder()

	reindexer := NewReindexer(knowledge, checkpoints, embedder, testConfig(), &buf)
	err := reindexer.Run(ctx)
	require.NoError(t, err)

	// Every chunk carries a fresh normalized vector
	reindexed := 0
	err = knowledge.ForEachBatch(ctx, 100, func(ctx context.Context, batch []*core.KnowledgeChunk) error {
		for _, chunk := range batch {
			reindexed++
			require.Len(t, chunk.Vector, 384, "chunk %d should have a new embedding", chunk.Id)

			var magnitude float32
			for _, v := range chunk.Vector {
				magnitude += v * v
			}
			assert.InDelta(t, 1.0, magnitude, 0.01, "vector should be normalized")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, reindexed)

	// Checkpoint is cleared on completion
	checkpoint, err := checkpoints.LoadCheckpoint(ctx, "test-reindex")
	require.NoError(t, err)
	assert.Nil(t, checkpoint)

	output := buf.String()
	assert.Contains(t, output, "10/10", "should show completion")
	assert.Contains(t, output, "Reindex complete", "should report completion")
}

func TestReindexer_EmptyStore(t *testing.T) {
	knowledge, checkpoints := setupTestStore(t)

	var buf bytes.Buffer
	embedder := mock.NewMockEmbedder()

	reindexer := NewReindexer(knowledge, checkpoints, embedder, DefaultConfig(), &buf)
	err := reindexer.Run(context.Background())
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "0 chunks", "should report zero chunks")
}

func TestReindexer_ResumesFromCheckpoint(t *testing.T) {
	knowledge, checkpoints := setupTestStore(t)
	ctx := context.Background()

	ids := seedChunks(t, knowledge, 10)

	// Checkpoint left behind by an interrupted run that covered 4 chunks
	err := checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{
		JobName:   "test-reindex",
		Processed: 4,
		LastID:    ids[3],
	})
	require.NoError(t, err)

	embedded := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		embedded += len(texts)
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{0, 1}
		}
		return vectors, nil
	}

	var buf bytes.Buffer
	reindexer := NewReindexer(knowledge, checkpoints, embedder, testConfig(), &buf)
	err = reindexer.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 6, embedded, "only chunks past the checkpoint should be embedded")
	assert.Contains(t, buf.String(), "Resuming from checkpoint: 4 chunks")

	checkpoint, err := checkpoints.LoadCheckpoint(ctx, "test-reindex")
	require.NoError(t, err)
	assert.Nil(t, checkpoint, "checkpoint should be cleared on completion")
}

func TestReindexer_SavesCheckpointOnFailure(t *testing.T) {
	knowledge, checkpoints := setupTestStore(t)
	ctx := context.Background()

	ids := seedChunks(t, knowledge, 10)

	// Fail on the second batch
	calls := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls >= 2 {
			return nil, errors.New("embedder unavailable")
		}
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{0, 1}
		}
		return vectors, nil
	}

	config := testConfig()
	config.MaxRetries = 1

	var buf bytes.Buffer
	reindexer := NewReindexer(knowledge, checkpoints, embedder, config, &buf)
	err := reindexer.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedder unavailable")

	// First batch landed and is checkpointed
	checkpoint, err := checkpoints.LoadCheckpoint(ctx, "test-reindex")
	require.NoError(t, err)
	require.NotNil(t, checkpoint)
	assert.Equal(t, 3, checkpoint.Processed)
	assert.Equal(t, ids[2], checkpoint.LastID)

	// A second run picks up where the first stopped
	embedded := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		embedded += len(texts)
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{0, 1}
		}
		return vectors, nil
	}

	reindexer = NewReindexer(knowledge, checkpoints, embedder, config, &buf)
	err = reindexer.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, embedded, "second run should process the remaining chunks")

	checkpoint, err = checkpoints.LoadCheckpoint(ctx, "test-reindex")
	require.NoError(t, err)
	assert.Nil(t, checkpoint)
}

func TestReindexer_ResumeCoversMixedWidthIDs(t *testing.T) {
	knowledge, checkpoints := setupTestStore(t)
	ctx := context.Background()

	// IDs whose decimal renderings sort against their numeric order; a
	// resume that trusts key order must still reach both chunks.
	require.NoError(t, knowledge.Upsert(ctx,
		&core.KnowledgeChunk{Id: 10, Text: "Trăng khuyết cuối tháng.", Vector: []float32{1, 0}},
		&core.KnowledgeChunk{Id: 2, Text: "Trăng tròn giữa tháng.", Vector: []float32{1, 0}},
	))

	config := testConfig()
	config.BatchSize = 1
	config.MaxRetries = 1

	// First run dies after one batch, leaving a checkpoint behind
	calls := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls >= 2 {
			return nil, errors.New("embedder unavailable")
		}
		return [][]float32{{0, 1}}, nil
	}

	var buf bytes.Buffer
	reindexer := NewReindexer(knowledge, checkpoints, embedder, config, &buf)
	require.Error(t, reindexer.Run(ctx))

	checkpoint, err := checkpoints.LoadCheckpoint(ctx, "test-reindex")
	require.NoError(t, err)
	require.NotNil(t, checkpoint)
	assert.Equal(t, core.ID(2), checkpoint.LastID, "lowest ID streams first")

	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{0, 1}}, nil
	}

	reindexer = NewReindexer(knowledge, checkpoints, embedder, config, &buf)
	require.NoError(t, reindexer.Run(ctx))

	for _, id := range []core.ID{2, 10} {
		chunk, err := knowledge.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []float32{0, 1}, chunk.Vector, "chunk %d should carry the new embedding", id)
	}
}

func TestReindexer_ContextCancellation(t *testing.T) {
	knowledge, checkpoints := setupTestStore(t)

	seedChunks(t, knowledge, 10)

	ctx, cancel := context.WithCancel(context.Background())

	// Cancel after the second batch succeeded
	calls := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{0, 1}
		}
		return vectors, nil
	}

	var buf bytes.Buffer
	reindexer := NewReindexer(knowledge, checkpoints, embedder, testConfig(), &buf)
	err := reindexer.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, calls, 3, "should stop embedding after cancellation")
}

func TestNewReindexer_Defaults(t *testing.T) {
	knowledge, checkpoints := setupTestStore(t)
	embedder := mock.NewMockEmbedder()

	t.Run("nil config uses defaults", func(t *testing.T) {
		reindexer := NewReindexer(knowledge, checkpoints, embedder, nil, nil)
		assert.Equal(t, 100, reindexer.config.BatchSize)
		assert.Equal(t, "knowledge-reindex", reindexer.config.JobName)
		assert.NotNil(t, reindexer.progress)
	})

	t.Run("empty job name falls back to default", func(t *testing.T) {
		config := &Config{BatchSize: 5, ReportInterval: 5, MaxRetries: 1, RetryDelay: time.Millisecond}
		reindexer := NewReindexer(knowledge, checkpoints, embedder, config, nil)
		assert.Equal(t, "knowledge-reindex", reindexer.config.JobName)
	})

	t.Run("nil progress still runs", func(t *testing.T) {
		reindexer := NewReindexer(knowledge, checkpoints, embedder, nil, nil)
		err := reindexer.Run(context.Background())
		require.NoError(t, err)
	})
}

func TestBatchProcessor_Process(t *testing.T) {
	knowledge, _ := setupTestStore(t)
	ctx := context.Background()

	t.Run("reembeds batch", func(t *testing.T) {
		chunk := &core.KnowledgeChunk{Text: "Trăng tròn giữa tháng.", Vector: []float32{1, 0}}
		require.NoError(t, knowledge.Upsert(ctx, chunk))

		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{3, 4}}, nil
		}

		bp := NewBatchProcessor(knowledge, embedder, 3, 10*time.Millisecond)
		err := bp.Process(ctx, []*core.KnowledgeChunk{chunk})
		require.NoError(t, err)

		stored, err := knowledge.Get(ctx, chunk.Id)
		require.NoError(t, err)
		require.Len(t, stored.Vector, 2)
		assert.InDelta(t, 0.6, stored.Vector[0], 1e-6)
		assert.InDelta(t, 0.8, stored.Vector[1], 1e-6)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		bp := NewBatchProcessor(knowledge, embedder, 3, 10*time.Millisecond)

		err := bp.Process(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, embedder.CallCount())
	})

	t.Run("embedding count mismatch", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1, 0}}, nil
		}

		bp := NewBatchProcessor(knowledge, embedder, 1, 10*time.Millisecond)
		err := bp.Process(ctx, []*core.KnowledgeChunk{
			{Id: 1, Text: "một"},
			{Id: 2, Text: "hai"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding result mismatch")
	})

	t.Run("retries transient failures", func(t *testing.T) {
		chunk := &core.KnowledgeChunk{Text: "Trăng non đầu tháng.", Vector: []float32{1, 0}}
		require.NoError(t, knowledge.Upsert(ctx, chunk))

		attempts := 0
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("transient")
			}
			return [][]float32{{0, 1}}, nil
		}

		bp := NewBatchProcessor(knowledge, embedder, 3, time.Millisecond)
		err := bp.Process(ctx, []*core.KnowledgeChunk{chunk})
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})
}
