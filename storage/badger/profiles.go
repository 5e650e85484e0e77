package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lunaris/core"
	"github.com/poiesic/lunaris/storage"
)

// ProfileRepository implements storage.ProfileRepository for BadgerDB.
type ProfileRepository struct {
	backend *Backend
}

var _ storage.ProfileRepository = (*ProfileRepository)(nil)

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(backend *Backend) (*ProfileRepository, error) {
	return &ProfileRepository{
		backend: backend,
	}, nil
}

// Close releases resources. ProfileRepository has no resources to release.
func (r *ProfileRepository) Close() error {
	return nil
}

// AppendContent appends a user message to the profile's content log,
// creating the profile on first use.
func (r *ProfileRepository) AppendContent(ctx context.Context, userID string, content string) (*core.UserProfile, error) {
	var result *core.UserProfile
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeProfileKey(userID)
		profile, err := readProfile(tx, key)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if profile == nil {
			profile = &core.UserProfile{
				UserID:    userID,
				CreatedAt: now,
			}
		}
		profile.Content = append(profile.Content, content)
		profile.UpdatedAt = now

		value := storage.MarshalProfile(profile)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		result = profile
		return nil
	}, true)
	return result, err
}

// SetAbout replaces the profile's model-written summary.
func (r *ProfileRepository) SetAbout(ctx context.Context, userID string, about string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeProfileKey(userID)
		profile, err := readProfile(tx, key)
		if err != nil {
			return err
		}
		if profile == nil {
			return storage.ErrProfileNotFound
		}

		profile.AboutUser = about
		profile.UpdatedAt = time.Now().UTC()

		value := storage.MarshalProfile(profile)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Get retrieves a profile by user ID.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*core.UserProfile, error) {
	var result *core.UserProfile
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeProfileKey(userID)
		var err error
		result, err = readProfile(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrProfileNotFound
		}
		return nil
	}, false)
	return result, err
}

// readProfile reads a profile from the transaction.
func readProfile(tx *badger.Txn, key []byte) (*core.UserProfile, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var profile *core.UserProfile
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		profile, unmarshalErr = storage.UnmarshalProfile(val)
		return unmarshalErr
	})
	return profile, err
}
