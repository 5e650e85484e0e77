package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lunaris/core"
	"github.com/poiesic/lunaris/storage"
)

// KnowledgeRepository implements storage.KnowledgeRepository for BadgerDB.
type KnowledgeRepository struct {
	backend *Backend
}

var _ storage.KnowledgeRepository = (*KnowledgeRepository)(nil)

// NewKnowledgeRepository creates a new KnowledgeRepository.
func NewKnowledgeRepository(backend *Backend) (*KnowledgeRepository, error) {
	return &KnowledgeRepository{
		backend: backend,
	}, nil
}

// Close releases resources. KnowledgeRepository has no resources to release.
func (r *KnowledgeRepository) Close() error {
	return nil
}

// Upsert stores chunks, generating content-based IDs for chunks with ID
// zero.
func (r *KnowledgeRepository) Upsert(ctx context.Context, chunks ...*core.KnowledgeChunk) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			// Use content-based ID if not set
			if chunk.Id == 0 {
				chunk.Id = core.IDFromContent(chunk.Text)
			}

			now := time.Now().UTC()
			if chunk.InsertedAt.IsZero() {
				chunk.InsertedAt = now
			}
			chunk.UpdatedAt = now

			key := makeKnowledgeKey(chunk.Id)
			value := storage.MarshalChunk(chunk)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Get retrieves a single chunk by ID.
func (r *KnowledgeRepository) Get(ctx context.Context, id core.ID) (*core.KnowledgeChunk, error) {
	var result *core.KnowledgeChunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeKnowledgeKey(id)
		var err error
		result, err = readChunk(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrChunkNotFound
		}
		return nil
	}, false)
	return result, err
}

// Count returns the number of stored chunks.
func (r *KnowledgeRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(knowledgeRecordPrefix + ":")
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			if !hasPrefix(iter.Item().Key(), prefix) {
				break
			}
			count++
		}
		return nil
	}, false)
	return count, err
}

// ForEachBatch streams all chunks to fn in batches of batchSize.
func (r *KnowledgeRepository) ForEachBatch(ctx context.Context, batchSize int, fn func(ctx context.Context, batch []*core.KnowledgeChunk) error) error {
	if batchSize <= 0 {
		batchSize = 100
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(knowledgeRecordPrefix + ":")
		batch := make([]*core.KnowledgeChunk, 0, batchSize)

		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			item := iter.Item()
			if !hasPrefix(item.Key(), prefix) {
				break
			}

			var chunk *core.KnowledgeChunk
			err := item.Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}

			batch = append(batch, chunk)
			if len(batch) == batchSize {
				if err := fn(ctx, batch); err != nil {
					return err
				}
				batch = make([]*core.KnowledgeChunk, 0, batchSize)
			}
		}

		if len(batch) > 0 {
			return fn(ctx, batch)
		}
		return nil
	}, false)
}

// NearestByVector scans all chunks and scores them against the query
// vector by dot product (cosine similarity for normalized vectors).
func (r *KnowledgeRepository) NearestByVector(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.KnowledgeMatch, error) {
	var results []*core.KnowledgeMatch

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(knowledgeRecordPrefix + ":")
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			item := iter.Item()
			if !hasPrefix(item.Key(), prefix) {
				break
			}

			var chunk *core.KnowledgeChunk
			err := item.Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk == nil {
				continue
			}

			// Skip chunks without embeddings
			if len(chunk.Vector) == 0 {
				continue
			}

			similarity := dotProduct(vector, chunk.Vector)
			if similarity >= minSimilarity {
				results = append(results, &core.KnowledgeMatch{
					Chunk: chunk,
					Score: similarity,
				})
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.KnowledgeMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Helper methods

// hasPrefix checks if a byte slice has a given prefix
func hasPrefix(s, prefix []byte) bool {
	return len(s) >= len(prefix) && string(s[:len(prefix)]) == string(prefix)
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// readChunk reads a knowledge chunk from the transaction.
func readChunk(tx *badger.Txn, key []byte) (*core.KnowledgeChunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.KnowledgeChunk
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		chunk, unmarshalErr = storage.UnmarshalChunk(val)
		return unmarshalErr
	})
	return chunk, err
}
