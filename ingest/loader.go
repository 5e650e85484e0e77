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

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lunaris/ai"
	"github.com/poiesic/lunaris/core"
	"github.com/poiesic/lunaris/storage"
)

// DefaultBatchSize is the default number of knowledge entries embedded per
// worker submission.
const DefaultBatchSize = 100

// Loader seeds the card deck and the knowledge base from fixture files.
// Knowledge entries are embedded in batches on a worker pool.
type Loader struct {
	cards     storage.CardRepository
	knowledge storage.KnowledgeRepository
	embedder  ai.Embedder
	pool      *ants.Pool
	batchSize int
	logger    *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(l *Loader) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if l.pool != nil {
			l.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		l.pool = pool
		return nil
	}
}

// WithBatchSize sets the number of knowledge entries embedded per batch.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(l *Loader) error {
		if size < 1 {
			size = DefaultBatchSize
		}
		l.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a new fixture loader.
func NewLoader(
	cards storage.CardRepository,
	knowledge storage.KnowledgeRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Loader, error) {
	if cards == nil {
		return nil, ErrCardRepositoryRequired
	}
	if knowledge == nil {
		return nil, ErrKnowledgeRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	l := &Loader{
		cards:     cards,
		knowledge: knowledge,
		embedder:  embedder,
		pool:      pool,
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(l); optErr != nil {
			l.Release()
			return nil, optErr
		}
	}

	return l, nil
}

// LoadCards reads a card fixture and writes every card to the card
// repository. Existing cards with the same ID are replaced.
// Returns the number of cards written.
func (l *Loader) LoadCards(ctx context.Context, r io.Reader) (int, error) {
	records, err := decodeCardRecords(r)
	if err != nil {
		return 0, err
	}

	loaded := 0
	for i, rec := range records {
		if rec.ID == "" {
			return loaded, fmt.Errorf("card %d: missing id", i)
		}

		if err := l.cards.Put(ctx, rec.card()); err != nil {
			return loaded, fmt.Errorf("storing card %s: %w", rec.ID, err)
		}
		loaded++
	}

	l.logger.Info("cards loaded", "cards", loaded)
	return loaded, nil
}

// LoadKnowledge reads a knowledge fixture, embeds every entry and upserts
// the resulting chunks. The source label is recorded in chunk metadata.
// Entries with empty content are skipped. Batches run concurrently on the
// worker pool; the call returns once every batch has finished.
// Returns the number of chunks stored.
func (l *Loader) LoadKnowledge(ctx context.Context, source string, r io.Reader) (int, error) {
	records, err := decodeKnowledgeRecords(r)
	if err != nil {
		return 0, err
	}

	entries := make([]knowledgeRecord, 0, len(records))
	for _, rec := range records {
		if rec.Content == "" {
			l.logger.Warn("skipping knowledge entry with empty content", "item", string(rec.ID))
			continue
		}
		entries = append(entries, rec)
	}

	if len(entries) == 0 {
		return 0, nil
	}

	l.logger.Info("loading knowledge fixture", "entries", len(entries), "source", source)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		loaded   int
		loadErrs []error
	)

	for start := 0; start < len(entries); start += l.batchSize {
		end := start + l.batchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[start:end]

		wg.Add(1)
		submitErr := l.pool.Submit(func() {
			defer wg.Done()

			stored, err := l.embedBatch(ctx, source, batch)

			mu.Lock()
			defer mu.Unlock()
			loaded += stored
			if err != nil {
				loadErrs = append(loadErrs, err)
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			loadErrs = append(loadErrs, submitErr)
			mu.Unlock()
			break
		}
	}

	wg.Wait()

	if len(loadErrs) > 0 {
		return loaded, errors.Join(loadErrs...)
	}

	l.logger.Info("knowledge chunks loaded", "chunks", loaded, "source", source)
	return loaded, nil
}

// embedBatch embeds one batch of entries and upserts the chunks.
// Chunk IDs are left zero so the repository derives them from content,
// which makes reseeding idempotent.
func (l *Loader) embedBatch(ctx context.Context, source string, batch []knowledgeRecord) (int, error) {
	texts := make([]string, len(batch))
	for i, rec := range batch {
		texts[i] = rec.Content
	}

	l.logger.Debug("embedding fixture batch", "entries", len(texts))
	embeddings, err := l.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding batch: %w", err)
	}

	if len(embeddings) != len(batch) {
		return 0, fmt.Errorf("embedding result mismatch. expected %d, received %d", len(batch), len(embeddings))
	}

	chunks := make([]*core.KnowledgeChunk, len(batch))
	for i, rec := range batch {
		metadata := map[string]string{"source": source}
		if rec.ID != "" {
			metadata["item"] = string(rec.ID)
		}

		chunks[i] = &core.KnowledgeChunk{
			Text:     rec.Content,
			Vector:   core.NormalizeVector(embeddings[i]),
			Metadata: metadata,
		}
	}

	if err := l.knowledge.Upsert(ctx, chunks...); err != nil {
		return 0, fmt.Errorf("storing chunks: %w", err)
	}

	return len(chunks), nil
}

// Release releases the worker pool.
// The loader should not be used after calling Release.
func (l *Loader) Release() {
	if l.pool != nil {
		l.pool.Release()
	}
}
