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

import (
	"fmt"
	"time"
)

// ValidateTurn validates a Turn according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - Role must be valid (user, assistant or system)
//   - Timestamp must not be in the future
func ValidateTurn(turn *Turn) error {
	if turn == nil {
		return fmt.Errorf("%w: turn is nil", ErrInvalidTurn)
	}

	if turn.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, ErrEmptyContent)
	}

	if err := ValidateRole(turn.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, err)
	}

	if !IsValidTimestamp(turn.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateSession validates a Session according to domain rules.
//
// Validation rules:
//   - SessionID must not be empty
//   - Model.Provider must be a known provider
//   - Every message must be a valid Turn
//
// NOT validated:
//   - Model.Name (empty means the provider default)
//   - CardIDs (a session may be created before any cards are drawn)
func ValidateSession(session *Session) error {
	if session == nil {
		return fmt.Errorf("%w: session is nil", ErrInvalidSession)
	}

	if session.SessionID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSession, ErrEmptySessionID)
	}

	if err := ValidateProvider(session.Model.Provider); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	for i := range session.Messages {
		if err := ValidateTurn(&session.Messages[i]); err != nil {
			return fmt.Errorf("%w: message %d: %w", ErrInvalidSession, i, err)
		}
	}

	return nil
}

// ValidateProfile validates a UserProfile according to domain rules.
func ValidateProfile(profile *UserProfile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidProfile)
	}

	if profile.UserID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, ErrEmptyUserID)
	}

	return nil
}

// ValidateCard validates a Card according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Name must not be empty
//
// NOT validated (optional in the source deck data):
//   - ShortMeaning, Kind, Category and the Content sections
func ValidateCard(card *Card) error {
	if card == nil {
		return fmt.Errorf("%w: card is nil", ErrInvalidCard)
	}

	if card.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCard, ErrEmptyCardID)
	}

	if card.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCard, ErrEmptyCardName)
	}

	return nil
}

// ValidateChunk validates a KnowledgeChunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//
// NOT validated (populated at ingest time):
//   - Vector (can be empty until embedded)
//   - Id (0 is valid before content hashing assigns one)
func ValidateChunk(chunk *KnowledgeChunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkText)
	}

	return nil
}

// ValidateRole validates that a Role has a known value.
func ValidateRole(role Role) error {
	if role != RoleUser && role != RoleAssistant && role != RoleSystem {
		return fmt.Errorf("%w: value %q", ErrInvalidRole, role)
	}
	return nil
}

// ValidateProvider validates that a Provider has a known value.
func ValidateProvider(provider Provider) error {
	if provider != ProviderOpenAI && provider != ProviderGemini {
		return fmt.Errorf("%w: value %q", ErrInvalidProvider, provider)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
