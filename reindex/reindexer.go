// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/lunaris/ai"
	"github.com/poiesic/lunaris/core"
	"github.com/poiesic/lunaris/storage"
)

// Config holds configuration for a reindexing run.
type Config struct {
	// BatchSize is the number of chunks to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for embedding calls
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// JobName keys the checkpoint that lets an interrupted run resume
	JobName string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		JobName:        "knowledge-reindex",
	}
}

// Reindexer orchestrates the reembedding of every chunk in the knowledge
// base.
type Reindexer struct {
	knowledge   storage.KnowledgeRepository
	checkpoints storage.CheckpointRepository
	config      *Config
	progress    io.Writer
	processor   *BatchProcessor
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr); nil
// discards it.
func NewReindexer(
	knowledge storage.KnowledgeRepository,
	checkpoints storage.CheckpointRepository,
	embedder ai.Embedder,
	config *Config,
	progress io.Writer,
) *Reindexer {
	if config == nil {
		config = DefaultConfig()
	}
	if config.JobName == "" {
		cfg := *config
		cfg.JobName = DefaultConfig().JobName
		config = &cfg
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reindexer{
		knowledge:   knowledge,
		checkpoints: checkpoints,
		config:      config,
		progress:    progress,
		processor:   NewBatchProcessor(knowledge, embedder, config.MaxRetries, config.RetryDelay),
	}
}

// Run executes the reindexing operation.
// Every chunk in the knowledge base is reembedded with the configured
// embedder. A checkpoint is saved after each batch; when a checkpoint from
// an interrupted run exists, chunks it already covers are skipped. The
// checkpoint is cleared on completion.
func (r *Reindexer) Run(ctx context.Context) error {
	total, err := r.knowledge.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting chunks: %w", err)
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "No chunks found in store (0 chunks)\n")
		return nil
	}

	processed := 0
	var resumeID core.ID

	checkpoint, err := r.checkpoints.LoadCheckpoint(ctx, r.config.JobName)
	if err != nil {
		return fmt.Errorf("loading checkpoint: %w", err)
	}
	if checkpoint != nil {
		processed = checkpoint.Processed
		resumeID = checkpoint.LastID
		fmt.Fprintf(r.progress, "Resuming from checkpoint: %d chunks already processed\n", processed)
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d chunks (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()
	if processed > 0 {
		tracker.Advance(processed)
	}

	err = r.knowledge.ForEachBatch(ctx, r.config.BatchSize, func(ctx context.Context, batch []*core.KnowledgeChunk) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Chunks stream in ascending ID order, so everything at or below
		// the checkpointed ID has already been written.
		pending := batch
		if resumeID != 0 {
			filtered := make([]*core.KnowledgeChunk, 0, len(batch))
			for _, chunk := range batch {
				if chunk.Id > resumeID {
					filtered = append(filtered, chunk)
				}
			}
			pending = filtered
		}
		if len(pending) == 0 {
			return nil
		}

		if err := r.processor.Process(ctx, pending); err != nil {
			return fmt.Errorf("processing batch: %w", err)
		}

		processed += len(pending)
		tracker.Advance(len(pending))

		return r.checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{
			JobName:   r.config.JobName,
			Processed: processed,
			LastID:    pending[len(pending)-1].Id,
		})
	})
	if err != nil {
		return err
	}

	tracker.Finish()

	if err := r.checkpoints.ClearCheckpoint(ctx, r.config.JobName); err != nil {
		return fmt.Errorf("clearing checkpoint: %w", err)
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Processed %d chunks in %v (%.1f chunks/sec)\n",
		processed, elapsed.Round(time.Second), float64(processed)/elapsed.Seconds())

	return nil
}
