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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidTurn indicates a Turn failed validation.
	ErrInvalidTurn = errors.New("invalid turn")

	// ErrInvalidRole indicates an unknown conversation role.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidProvider indicates an unknown model provider.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyContent indicates a message content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidSession indicates a Session failed validation.
	ErrInvalidSession = errors.New("invalid session")

	// ErrEmptySessionID indicates the SessionID field is empty.
	ErrEmptySessionID = errors.New("session id cannot be empty")

	// ErrInvalidProfile indicates a UserProfile failed validation.
	ErrInvalidProfile = errors.New("invalid user profile")

	// ErrEmptyUserID indicates the UserID field is empty.
	ErrEmptyUserID = errors.New("user id cannot be empty")

	// ErrInvalidCard indicates a Card failed validation.
	ErrInvalidCard = errors.New("invalid card")

	// ErrEmptyCardID indicates the card ID field is empty.
	ErrEmptyCardID = errors.New("card id cannot be empty")

	// ErrEmptyCardName indicates the card Name field is empty.
	ErrEmptyCardName = errors.New("card name cannot be empty")

	// ErrInvalidChunk indicates a KnowledgeChunk failed validation.
	ErrInvalidChunk = errors.New("invalid knowledge chunk")

	// ErrEmptyChunkText indicates the chunk Text field is empty.
	ErrEmptyChunkText = errors.New("chunk text cannot be empty")
)
