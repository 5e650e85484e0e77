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


package lunaris

import (
	"log/slog"

	"github.com/poiesic/lunaris/ai"
	"github.com/poiesic/lunaris/search"
	"github.com/poiesic/lunaris/storage"
	"github.com/poiesic/lunaris/storage/badger"
)

// Store bundles the Badger backend with every repository built on it:
// sessions, the per-session history log, user profiles, the card deck,
// knowledge chunks and maintenance-job checkpoints.
type Store struct {
	backend     *badger.Backend
	sessions    *badger.SessionRepository
	history     *badger.HistoryRepository
	profiles    *badger.ProfileRepository
	cards       *badger.CardRepository
	knowledge   *badger.KnowledgeRepository
	checkpoints *badger.CheckpointRepository
	logger      *slog.Logger
}

// OpenStore opens the document store at filePath, creating the directory
// if it does not exist.
func OpenStore(filePath string) (*Store, error) {
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}
	return newStore(backend)
}

// OpenMemoryStore opens a store backed by an in-memory Badger instance.
// Nothing survives Close; intended for tests and local experiments.
func OpenMemoryStore() (*Store, error) {
	backend, err := badger.NewMemoryBackend()
	if err != nil {
		return nil, err
	}
	return newStore(backend)
}

func newStore(backend *badger.Backend) (*Store, error) {
	sessions, err := badger.NewSessionRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	history, err := badger.NewHistoryRepository(backend)
	if err != nil {
		sessions.Close()
		backend.Close()
		return nil, err
	}

	profiles, err := badger.NewProfileRepository(backend)
	if err != nil {
		history.Close()
		sessions.Close()
		backend.Close()
		return nil, err
	}

	cards, err := badger.NewCardRepository(backend)
	if err != nil {
		profiles.Close()
		history.Close()
		sessions.Close()
		backend.Close()
		return nil, err
	}

	knowledge, err := badger.NewKnowledgeRepository(backend)
	if err != nil {
		cards.Close()
		profiles.Close()
		history.Close()
		sessions.Close()
		backend.Close()
		return nil, err
	}

	checkpoints := badger.NewCheckpointRepository(backend)

	return &Store{
		backend:     backend,
		sessions:    sessions,
		history:     history,
		profiles:    profiles,
		cards:       cards,
		knowledge:   knowledge,
		checkpoints: checkpoints,
		logger:      slog.Default(),
	}, nil
}

// Close releases the repositories in reverse construction order, then the
// backend.
func (s *Store) Close() error {
	if err := s.knowledge.Close(); err != nil {
		s.logger.Error("error closing knowledge repository", "err", err)
		return err
	}
	if err := s.cards.Close(); err != nil {
		s.logger.Error("error closing card repository", "err", err)
		return err
	}
	if err := s.profiles.Close(); err != nil {
		s.logger.Error("error closing profile repository", "err", err)
		return err
	}
	if err := s.history.Close(); err != nil {
		s.logger.Error("error closing history repository", "err", err)
		return err
	}
	if err := s.sessions.Close(); err != nil {
		s.logger.Error("error closing session repository", "err", err)
		return err
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (s *Store) Sessions() storage.SessionRepository {
	return s.sessions
}

func (s *Store) History() storage.HistoryRepository {
	return s.history
}

func (s *Store) Profiles() storage.ProfileRepository {
	return s.profiles
}

func (s *Store) Cards() storage.CardRepository {
	return s.cards
}

func (s *Store) Knowledge() storage.KnowledgeRepository {
	return s.knowledge
}

func (s *Store) Checkpoints() storage.CheckpointRepository {
	return s.checkpoints
}

// NewSearcher builds a semantic searcher over the knowledge repository.
func (s *Store) NewSearcher(embedder ai.Embedder, opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(s.knowledge, embedder, opts...)
}
