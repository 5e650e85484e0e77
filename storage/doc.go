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


// Package storage provides the storage abstraction layer for lunaris.
//
// This package defines repository interfaces that decouple storage implementation
// from business logic. It allows for different storage backends (BadgerDB, in-memory,
// etc.) to be used interchangeably.
//
// # Architecture
//
// The storage layer follows the Repository pattern, one interface per
// aggregate:
//
//   - SessionRepository: chat session documents and their transcripts
//   - HistoryRepository: the per-session turn log that feeds model context
//   - ProfileRepository: per-user profile documents
//   - CardRepository: the oracle card deck
//   - KnowledgeRepository: embedded reference chunks and similarity search
//
// # Usage
//
// Open a Badger-backed repository set:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	sessions := badger.NewSessionRepository(backend)
//
// Use in tests with in-memory storage:
//
//	backend, err := badger.NewMemoryBackend()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Lookup Misses
//
// Read operations report missing records with the sentinel errors in this
// package (ErrSessionNotFound, ErrProfileNotFound, ErrCardNotFound,
// ErrChunkNotFound). Callers match them with errors.Is and decide whether
// a miss is an error or a branch.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
