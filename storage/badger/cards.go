package badger

import (
	"context"
	"math/rand/v2"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lunaris/core"
	"github.com/poiesic/lunaris/storage"
)

// CardRepository implements storage.CardRepository for BadgerDB.
//
// The deck is small (a few dozen cards), so category filtering and random
// selection scan the card prefix instead of maintaining indexes.
type CardRepository struct {
	backend *Backend
}

var _ storage.CardRepository = (*CardRepository)(nil)

// NewCardRepository creates a new CardRepository.
func NewCardRepository(backend *Backend) (*CardRepository, error) {
	return &CardRepository{
		backend: backend,
	}, nil
}

// Close releases resources. CardRepository has no resources to release.
func (r *CardRepository) Close() error {
	return nil
}

// Put stores a card, replacing any existing card with the same ID.
func (r *CardRepository) Put(ctx context.Context, card *core.Card) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCardKey(card.ID)
		value := storage.MarshalCard(card)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Get retrieves a card by ID.
func (r *CardRepository) Get(ctx context.Context, cardID string) (*core.Card, error) {
	var result *core.Card
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCardKey(cardID)
		var err error
		result, err = readCard(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrCardNotFound
		}
		return nil
	}, false)
	return result, err
}

// List returns all cards in the deck.
func (r *CardRepository) List(ctx context.Context) ([]*core.Card, error) {
	var results []*core.Card
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(cardRecordPrefix + ":")
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			item := iter.Item()
			if !hasPrefix(item.Key(), prefix) {
				break
			}

			var card *core.Card
			err := item.Value(func(val []byte) error {
				var err error
				card, err = storage.UnmarshalCard(val)
				return err
			})
			if err != nil {
				return err
			}

			if card != nil {
				results = append(results, card)
			}
		}
		return nil
	}, false)

	return results, err
}

// ListByCategory returns the cards whose Category matches exactly.
func (r *CardRepository) ListByCategory(ctx context.Context, category string) ([]*core.Card, error) {
	cards, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	var results []*core.Card
	for _, card := range cards {
		if card.Category == category {
			results = append(results, card)
		}
	}
	return results, nil
}

// Random returns a uniformly chosen card, or ErrCardNotFound when the
// deck is empty.
func (r *CardRepository) Random(ctx context.Context) (*core.Card, error) {
	cards, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, storage.ErrCardNotFound
	}
	return cards[rand.IntN(len(cards))], nil
}

// readCard reads a card from the transaction.
func readCard(tx *badger.Txn, key []byte) (*core.Card, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var card *core.Card
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		card, unmarshalErr = storage.UnmarshalCard(val)
		return unmarshalErr
	})
	return card, err
}
