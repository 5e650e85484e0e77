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


package storage

import "errors"

var (
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrProfileNotFound indicates that the requested user profile does not exist.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrCardNotFound indicates that the requested card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrChunkNotFound indicates that the requested knowledge chunk does not exist.
	ErrChunkNotFound = errors.New("knowledge chunk not found")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")
)
