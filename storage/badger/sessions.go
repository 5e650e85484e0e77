package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lunaris/core"
	"github.com/poiesic/lunaris/storage"
)

// SessionRepository implements storage.SessionRepository for BadgerDB.
type SessionRepository struct {
	backend *Backend
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(backend *Backend) (*SessionRepository, error) {
	return &SessionRepository{
		backend: backend,
	}, nil
}

// Close releases resources. SessionRepository has no resources to release.
func (r *SessionRepository) Close() error {
	return nil
}

// Create persists a new session document. The session must carry a
// non-empty ID and a known provider.
func (r *SessionRepository) Create(ctx context.Context, session *core.Session) error {
	if err := core.ValidateSession(session); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		if session.CreatedAt.IsZero() {
			session.CreatedAt = now
		}
		if session.UpdatedAt.IsZero() {
			session.UpdatedAt = now
		}

		key := makeSessionKey(session.SessionID)
		value := storage.MarshalSession(session)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Get retrieves a session by ID.
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*core.Session, error) {
	var result *core.Session
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSessionKey(sessionID)
		var err error
		result, err = readSession(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrSessionNotFound
		}
		return nil
	}, false)
	return result, err
}

// Update applies a partial update to a session and bumps UpdatedAt.
func (r *SessionRepository) Update(ctx context.Context, sessionID string, update storage.SessionUpdate) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSessionKey(sessionID)
		session, err := readSession(tx, key)
		if err != nil {
			return err
		}
		if session == nil {
			return storage.ErrSessionNotFound
		}

		if update.Model != nil {
			session.Model = *update.Model
		}
		if update.CardIDs != nil {
			session.CardIDs = *update.CardIDs
		}
		session.UpdatedAt = time.Now().UTC()

		value := storage.MarshalSession(session)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// AppendMessage appends a turn to the session transcript.
func (r *SessionRepository) AppendMessage(ctx context.Context, sessionID string, turn core.Turn) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSessionKey(sessionID)
		session, err := readSession(tx, key)
		if err != nil {
			return err
		}
		if session == nil {
			return storage.ErrSessionNotFound
		}

		now := time.Now().UTC()
		if turn.Timestamp.IsZero() {
			turn.Timestamp = now
		}
		session.Messages = append(session.Messages, turn)
		session.UpdatedAt = now

		value := storage.MarshalSession(session)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Delete removes a session document.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSessionKey(sessionID)
		session, err := readSession(tx, key)
		if err != nil {
			return err
		}
		if session == nil {
			return storage.ErrSessionNotFound
		}

		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readSession reads a session from the transaction.
func readSession(tx *badger.Txn, key []byte) (*core.Session, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var session *core.Session
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		session, unmarshalErr = storage.UnmarshalSession(val)
		return unmarshalErr
	})
	return session, err
}
