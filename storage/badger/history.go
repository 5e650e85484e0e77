package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lunaris/core"
	"github.com/poiesic/lunaris/storage"
)

// HistoryRepository implements storage.HistoryRepository for BadgerDB.
//
// Turns are keyed by a session-scoped prefix followed by a BigEndian
// sequence number, so a plain iteration over the prefix yields insertion
// order and a reverse iteration yields newest-first.
type HistoryRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.HistoryRepository = (*HistoryRepository)(nil)

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(backend *Backend) (*HistoryRepository, error) {
	idSeq, err := backend.GetSequence(historyIDSeq)
	if err != nil {
		return nil, err
	}

	return &HistoryRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *HistoryRepository) Close() error {
	return r.idSeq.Release()
}

// Append adds a turn to a session's log.
func (r *HistoryRepository) Append(ctx context.Context, sessionID string, turn core.Turn) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}

		if turn.Timestamp.IsZero() {
			turn.Timestamp = time.Now().UTC()
		}

		key := makeHistoryKey(sessionID, nextID)
		value := storage.MarshalTurn(&turn)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadRecent returns up to limit most recent turns in oldest-first order.
// A non-empty role restricts the result to turns with that role; the
// limit applies after filtering. limit <= 0 means no limit.
func (r *HistoryRepository) LoadRecent(ctx context.Context, sessionID string, limit int, role core.Role) ([]core.Turn, error) {
	var turns []core.Turn
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makeHistorySeekKey(sessionID)
		prefix := makeHistoryPrefix(sessionID)

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			if limit > 0 && len(turns) >= limit {
				break
			}

			key := iter.Item().Key()
			if !hasPrefix(key, prefix) {
				break
			}

			var turn *core.Turn
			err := iter.Item().Value(func(val []byte) error {
				var err error
				turn, err = storage.UnmarshalTurn(val)
				return err
			})
			if err != nil {
				return err
			}

			if role != "" && turn.Role != role {
				continue
			}
			turns = append(turns, *turn)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Collected newest-first; callers want transcript order.
	slices.Reverse(turns)
	return turns, nil
}
